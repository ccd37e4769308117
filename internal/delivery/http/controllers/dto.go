package controllers

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Chakshu098/Everhack/internal/delivery/http/helpers"
	"github.com/Chakshu098/Everhack/internal/domain"
)

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

// Date is a JSON date that accepts "2006-01-02" as well as RFC 3339.
// Dates without a zone are read as UTC.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("invalid date %q: use YYYY-MM-DD or RFC 3339", s)
}

func (d *Date) ptr() *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

// Nullable tells an explicit JSON null apart from an absent field. Set is
// true whenever the field was present; Null is true when it was null.
type Nullable[T any] struct {
	Value T
	Set   bool
	Null  bool
}

func (n *Nullable[T]) UnmarshalJSON(b []byte) error {
	n.Set = true
	if string(b) == "null" {
		n.Null = true
		return nil
	}
	return json.Unmarshal(b, &n.Value)
}

func (n Nullable[T]) ptr() *T {
	if !n.Set || n.Null {
		return nil
	}
	v := n.Value
	return &v
}

// EventRequest is the request body for POST /admin/events and for the
// workflow draft.
type EventRequest struct {
	Title           string                 `json:"title"`
	Description     *string                `json:"description"`
	EventType       string                 `json:"event_type"`
	ImageURL        *string                `json:"image_url"`
	StartDate       *Date                  `json:"start_date" swaggertype:"string" example:"2026-02-15"`
	EndDate         *Date                  `json:"end_date" swaggertype:"string" example:"2026-02-17"`
	Location        *string                `json:"location"`
	IsOnline        *bool                  `json:"is_online"`
	MaxParticipants *int                   `json:"max_participants"`
	PrizePool       *string                `json:"prize_pool"`
	Difficulty      *string                `json:"difficulty"`
	Status          domain.EventStatus     `json:"status"`
	Rules           *string                `json:"rules"`
	Timeline        []domain.TimelineEntry `json:"timeline"`
}

// Fields converts the request to domain fields.
func (r EventRequest) Fields() domain.EventFields {
	return domain.EventFields{
		Title:           r.Title,
		Description:     r.Description,
		EventType:       r.EventType,
		ImageURL:        r.ImageURL,
		StartDate:       r.StartDate.ptr(),
		EndDate:         r.EndDate.ptr(),
		Location:        r.Location,
		IsOnline:        r.IsOnline,
		MaxParticipants: r.MaxParticipants,
		PrizePool:       r.PrizePool,
		Difficulty:      r.Difficulty,
		Status:          r.Status,
		Rules:           r.Rules,
		Timeline:        r.Timeline,
	}
}

// EventPatchRequest is the request body for PATCH /admin/events/{id}. Omitted
// fields are unchanged. An empty string clears an optional text field and
// null clears is_online or max_participants.
type EventPatchRequest struct {
	Title           *string                 `json:"title"`
	Description     *string                 `json:"description"`
	EventType       *string                 `json:"event_type"`
	ImageURL        *string                 `json:"image_url"`
	StartDate       *Date                   `json:"start_date" swaggertype:"string"`
	EndDate         *Date                   `json:"end_date" swaggertype:"string"`
	Location        *string                 `json:"location"`
	IsOnline        Nullable[bool]          `json:"is_online" swaggertype:"boolean"`
	MaxParticipants Nullable[int]           `json:"max_participants" swaggertype:"integer"`
	PrizePool       *string                 `json:"prize_pool"`
	Difficulty      *string                 `json:"difficulty"`
	Status          *domain.EventStatus     `json:"status"`
	Rules           *string                 `json:"rules"`
	Timeline        *[]domain.TimelineEntry `json:"timeline"`
}

// Validate rejects an end date before the start date when both are sent.
func (r EventPatchRequest) Validate() []string {
	if r.StartDate != nil && r.EndDate != nil && r.EndDate.Before(r.StartDate.Time) {
		return []string{"end_date must not be before start_date"}
	}
	return nil
}

// Patch converts the request to a domain patch.
func (r EventPatchRequest) Patch() domain.EventPatch {
	var clears []string
	if r.IsOnline.Null {
		clears = append(clears, domain.FieldIsOnline)
	}
	if r.MaxParticipants.Null {
		clears = append(clears, domain.FieldMaxParticipants)
	}
	return domain.EventPatch{
		Clear:           clears,
		Title:           r.Title,
		Description:     r.Description,
		EventType:       r.EventType,
		ImageURL:        r.ImageURL,
		StartDate:       r.StartDate.ptr(),
		EndDate:         r.EndDate.ptr(),
		Location:        r.Location,
		IsOnline:        r.IsOnline.ptr(),
		MaxParticipants: r.MaxParticipants.ptr(),
		PrizePool:       r.PrizePool,
		Difficulty:      r.Difficulty,
		Status:          r.Status,
		Rules:           r.Rules,
		Timeline:        r.Timeline,
	}
}

// EventResponse is an event as served to readers, with the status derived
// from the current time.
// swagger:model EventResponse
type EventResponse struct {
	*domain.Event
	DisplayStatus domain.EventStatus `json:"display_status"`
}

func newEventResponse(e *domain.Event, now time.Time) EventResponse {
	return EventResponse{Event: e, DisplayStatus: e.DisplayStatus(now)}
}

func newEventResponses(events []*domain.Event, now time.Time) []EventResponse {
	out := make([]EventResponse, 0, len(events))
	for _, e := range events {
		if e != nil {
			out = append(out, newEventResponse(e, now))
		}
	}
	return out
}

// ListEventsResponse is the data of GET /events.
type ListEventsResponse struct {
	Events     []EventResponse         `json:"events"`
	Pagination *helpers.PaginationMeta `json:"pagination,omitempty"`
}

// EventSuccessResponse is the success envelope for single-event endpoints.
type EventSuccessResponse struct {
	Data  EventResponse     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListEventsSuccessResponse is the success envelope for GET /events.
type ListEventsSuccessResponse struct {
	Data  ListEventsResponse `json:"data"`
	Error *helpers.APIError  `json:"error"`
}
