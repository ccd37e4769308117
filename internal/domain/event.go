package domain

import (
	"context"
	"slices"
	"strings"
	"time"
)

// EventStatus is the lifecycle label stored on an event.
type EventStatus string

const (
	EventStatusUpcoming  EventStatus = "upcoming"
	EventStatusOngoing   EventStatus = "ongoing"
	EventStatusCompleted EventStatus = "completed"
	EventStatusCancelled EventStatus = "cancelled"
)

// Known event types. Other lowercase slugs are accepted.
const (
	EventTypeHackathon = "hackathon"
	EventTypeCTF       = "ctf"
	EventTypeWorkshop  = "workshop"
)

// TimelineEntry is one row of an event's agenda.
type TimelineEntry struct {
	Time  string `json:"time" validate:"required,max=100"`
	Label string `json:"label" validate:"required,max=200"`
}

// Event represents a hackathon, CTF, workshop or similar gathering.
// swagger:model Event
type Event struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Description     *string         `json:"description"`
	EventType       string          `json:"event_type"`
	ImageURL        *string         `json:"image_url"`
	StartDate       time.Time       `json:"start_date"`
	EndDate         time.Time       `json:"end_date"`
	Location        *string         `json:"location"`
	IsOnline        *bool           `json:"is_online"`
	MaxParticipants *int            `json:"max_participants"`
	PrizePool       *string         `json:"prize_pool"`
	Difficulty      *string         `json:"difficulty"`
	Status          EventStatus     `json:"status"`
	Rules           *string         `json:"rules"`
	Timeline        []TimelineEntry `json:"timeline"`
	Version         int             `json:"version"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Clone returns a deep copy, so edits to the copy never reach the original.
func (e *Event) Clone() *Event {
	if e == nil {
		return nil
	}
	c := *e
	c.Description = cloneString(e.Description)
	c.ImageURL = cloneString(e.ImageURL)
	c.Location = cloneString(e.Location)
	c.PrizePool = cloneString(e.PrizePool)
	c.Difficulty = cloneString(e.Difficulty)
	c.Rules = cloneString(e.Rules)
	if e.IsOnline != nil {
		v := *e.IsOnline
		c.IsOnline = &v
	}
	if e.MaxParticipants != nil {
		v := *e.MaxParticipants
		c.MaxParticipants = &v
	}
	if e.Timeline != nil {
		c.Timeline = append([]TimelineEntry(nil), e.Timeline...)
	}
	return &c
}

// DisplayStatus derives the status shown to readers at now. Storage does not
// reconcile status with the clock, so a cancelled event stays cancelled and
// every other event is labelled from its dates.
func (e *Event) DisplayStatus(now time.Time) EventStatus {
	if e.Status == EventStatusCancelled {
		return EventStatusCancelled
	}
	switch {
	case now.Before(e.StartDate):
		return EventStatusUpcoming
	case now.After(e.EndDate):
		return EventStatusCompleted
	default:
		return EventStatusOngoing
	}
}

// EventFields is the admin-editable part of an event. It doubles as the
// workflow draft and as the create payload.
type EventFields struct {
	Title           string          `json:"title" validate:"required,max=200"`
	Description     *string         `json:"description" validate:"omitempty,max=10000"`
	EventType       string          `json:"event_type" validate:"required,event_type"`
	ImageURL        *string         `json:"image_url" validate:"omitempty,url"`
	StartDate       *time.Time      `json:"start_date" validate:"required"`
	EndDate         *time.Time      `json:"end_date" validate:"required"`
	Location        *string         `json:"location" validate:"omitempty,max=300"`
	IsOnline        *bool           `json:"is_online"`
	MaxParticipants *int            `json:"max_participants" validate:"omitempty,min=1"`
	PrizePool       *string         `json:"prize_pool" validate:"omitempty,max=100"`
	Difficulty      *string         `json:"difficulty" validate:"omitempty,max=50"`
	Status          EventStatus     `json:"status" validate:"omitempty,event_status"`
	Rules           *string         `json:"rules" validate:"omitempty,max=10000"`
	Timeline        []TimelineEntry `json:"timeline" validate:"omitempty,dive"`
}

// FieldsOf copies e into an EventFields value.
func FieldsOf(e *Event) EventFields {
	c := e.Clone()
	start, end := c.StartDate, c.EndDate
	return EventFields{
		Title:           c.Title,
		Description:     c.Description,
		EventType:       c.EventType,
		ImageURL:        c.ImageURL,
		StartDate:       &start,
		EndDate:         &end,
		Location:        c.Location,
		IsOnline:        c.IsOnline,
		MaxParticipants: c.MaxParticipants,
		PrizePool:       c.PrizePool,
		Difficulty:      c.Difficulty,
		Status:          c.Status,
		Rules:           c.Rules,
		Timeline:        c.Timeline,
	}
}

// Clone returns a deep copy of the fields.
func (f EventFields) Clone() EventFields {
	c := f
	c.Description = cloneString(f.Description)
	c.ImageURL = cloneString(f.ImageURL)
	c.Location = cloneString(f.Location)
	c.PrizePool = cloneString(f.PrizePool)
	c.Difficulty = cloneString(f.Difficulty)
	c.Rules = cloneString(f.Rules)
	if f.StartDate != nil {
		v := *f.StartDate
		c.StartDate = &v
	}
	if f.EndDate != nil {
		v := *f.EndDate
		c.EndDate = &v
	}
	if f.IsOnline != nil {
		v := *f.IsOnline
		c.IsOnline = &v
	}
	if f.MaxParticipants != nil {
		v := *f.MaxParticipants
		c.MaxParticipants = &v
	}
	if f.Timeline != nil {
		c.Timeline = append([]TimelineEntry(nil), f.Timeline...)
	}
	return c
}

// Normalize trims the fields, lowercases the event type and turns blank
// optional text into nil. Rich text is left for the sanitizer.
func (f EventFields) Normalize() EventFields {
	f = f.Clone()
	f.Title = strings.TrimSpace(f.Title)
	f.EventType = strings.ToLower(strings.TrimSpace(f.EventType))
	f.Description = blankToNil(f.Description)
	f.Rules = blankToNil(f.Rules)
	f.ImageURL = blankToNil(f.ImageURL)
	f.Location = blankToNil(f.Location)
	f.PrizePool = blankToNil(f.PrizePool)
	f.Difficulty = blankToNil(f.Difficulty)
	return f
}

func blankToNil(v *string) *string {
	if v == nil {
		return nil
	}
	out := strings.TrimSpace(*v)
	if out == "" {
		return nil
	}
	return &out
}

// NewEvent builds an Event from validated fields. ID is set by the repository on create.
func NewEvent(f EventFields, createdAt time.Time) *Event {
	status := f.Status
	if status == "" {
		status = EventStatusUpcoming
	}
	timeline := f.Timeline
	if timeline == nil {
		timeline = []TimelineEntry{}
	}
	e := &Event{
		Title:           f.Title,
		Description:     f.Description,
		EventType:       f.EventType,
		ImageURL:        f.ImageURL,
		Location:        f.Location,
		IsOnline:        f.IsOnline,
		MaxParticipants: f.MaxParticipants,
		PrizePool:       f.PrizePool,
		Difficulty:      f.Difficulty,
		Status:          status,
		Rules:           f.Rules,
		Timeline:        timeline,
		Version:         1,
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}
	if f.StartDate != nil {
		e.StartDate = *f.StartDate
	}
	if f.EndDate != nil {
		e.EndDate = *f.EndDate
	}
	return e.Clone()
}

// Nullable non-text fields an EventPatch can reset. Text fields are cleared
// with an empty string instead.
const (
	FieldIsOnline        = "is_online"
	FieldMaxParticipants = "max_participants"
)

// EventPatch carries a partial update. Nil fields are left unchanged.
type EventPatch struct {
	Title           *string          `json:"title" validate:"omitempty,min=1,max=200"`
	Description     *string          `json:"description" validate:"omitempty,max=10000"`
	EventType       *string          `json:"event_type" validate:"omitempty,event_type"`
	ImageURL        *string          `json:"image_url" validate:"omitempty,url"`
	StartDate       *time.Time       `json:"start_date"`
	EndDate         *time.Time       `json:"end_date"`
	Location        *string          `json:"location" validate:"omitempty,max=300"`
	IsOnline        *bool            `json:"is_online"`
	MaxParticipants *int             `json:"max_participants" validate:"omitempty,min=1"`
	PrizePool       *string          `json:"prize_pool" validate:"omitempty,max=100"`
	Difficulty      *string          `json:"difficulty" validate:"omitempty,max=50"`
	Status          *EventStatus     `json:"status" validate:"omitempty,event_status"`
	Rules           *string          `json:"rules" validate:"omitempty,max=10000"`
	Timeline        *[]TimelineEntry `json:"timeline" validate:"omitempty,dive"`
	// Clear names nullable fields to reset to null. A cleared field must be
	// nil above.
	Clear []string `json:"-" validate:"dive,oneof=is_online max_participants"`
	// ExpectedVersion, when set, turns the update into a conditional write.
	ExpectedVersion *int `json:"-"`
}

// Clears reports whether the patch resets field to null.
func (p EventPatch) Clears(field string) bool {
	return slices.Contains(p.Clear, field)
}

// Empty reports whether the patch changes nothing.
func (p EventPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.EventType == nil && p.ImageURL == nil &&
		p.StartDate == nil && p.EndDate == nil && p.Location == nil && p.IsOnline == nil &&
		p.MaxParticipants == nil && p.PrizePool == nil && p.Difficulty == nil && p.Status == nil &&
		p.Rules == nil && p.Timeline == nil && len(p.Clear) == 0
}

// Diff returns the patch that turns before into after, touching only changed fields.
func Diff(before *Event, after EventFields) EventPatch {
	var p EventPatch
	if after.Title != before.Title {
		p.Title = &after.Title
	}
	if !equalString(after.Description, before.Description) {
		p.Description = orEmpty(after.Description)
	}
	if after.EventType != before.EventType {
		p.EventType = &after.EventType
	}
	if !equalString(after.ImageURL, before.ImageURL) {
		p.ImageURL = orEmpty(after.ImageURL)
	}
	if after.StartDate != nil && !after.StartDate.Equal(before.StartDate) {
		p.StartDate = after.StartDate
	}
	if after.EndDate != nil && !after.EndDate.Equal(before.EndDate) {
		p.EndDate = after.EndDate
	}
	if !equalString(after.Location, before.Location) {
		p.Location = orEmpty(after.Location)
	}
	switch {
	case after.IsOnline == nil && before.IsOnline != nil:
		p.Clear = append(p.Clear, FieldIsOnline)
	case after.IsOnline != nil && (before.IsOnline == nil || *after.IsOnline != *before.IsOnline):
		p.IsOnline = after.IsOnline
	}
	switch {
	case after.MaxParticipants == nil && before.MaxParticipants != nil:
		p.Clear = append(p.Clear, FieldMaxParticipants)
	case after.MaxParticipants != nil && (before.MaxParticipants == nil || *after.MaxParticipants != *before.MaxParticipants):
		p.MaxParticipants = after.MaxParticipants
	}
	if !equalString(after.PrizePool, before.PrizePool) {
		p.PrizePool = orEmpty(after.PrizePool)
	}
	if !equalString(after.Difficulty, before.Difficulty) {
		p.Difficulty = orEmpty(after.Difficulty)
	}
	if after.Status != "" && after.Status != before.Status {
		s := after.Status
		p.Status = &s
	}
	if !equalString(after.Rules, before.Rules) {
		p.Rules = orEmpty(after.Rules)
	}
	if !equalTimeline(after.Timeline, before.Timeline) {
		tl := append([]TimelineEntry{}, after.Timeline...)
		p.Timeline = &tl
	}
	return p
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	List(ctx context.Context, params PaginationParams) ([]*Event, error)
	GetByID(ctx context.Context, id string) (*Event, error)
	Create(ctx context.Context, event *Event) error
	Update(ctx context.Context, id string, patch EventPatch) (*Event, error)
	Delete(ctx context.Context, id string) error
}

// EventService is the event collection façade used by public reads and admin writes.
type EventService interface {
	ListEvents(ctx context.Context, params PaginationParams) ([]*Event, error)
	GetEvent(ctx context.Context, id string) (*Event, error)
	CreateEvent(ctx context.Context, actor Actor, fields EventFields) (*Event, error)
	UpdateEvent(ctx context.Context, actor Actor, id string, patch EventPatch) (*Event, error)
	DeleteEvent(ctx context.Context, actor Actor, id string) error
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func equalString(a, b *string) bool {
	switch {
	case a == nil && b == nil:
		return true
	case a == nil:
		return *b == ""
	case b == nil:
		return *a == ""
	default:
		return *a == *b
	}
}

// orEmpty turns a cleared optional field into an explicit empty string so the
// patch clears the stored value.
func orEmpty(s *string) *string {
	if s == nil {
		v := ""
		return &v
	}
	return s
}

func equalTimeline(a, b []TimelineEntry) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// TextSanitizer strips markup from admin-authored text before it is stored.
type TextSanitizer interface {
	Sanitize(raw string) string
}
