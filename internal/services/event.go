package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Chakshu098/Everhack/internal/domain"
)

// MutationRecorder receives the outcome of every event write.
type MutationRecorder interface {
	RecordEventMutation(op string, err error)
}

type nopRecorder struct{}

func (nopRecorder) RecordEventMutation(string, error) {}

type eventService struct {
	eventRepo      domain.EventRepository
	sanitizer      domain.TextSanitizer
	recorder       MutationRecorder
	contextTimeout time.Duration
	now            func() time.Time
}

// NewEventService returns the EventService over eventRepo. Every write
// requires an admin actor and is validated before it reaches storage.
func NewEventService(
	eventRepo domain.EventRepository,
	sanitizer domain.TextSanitizer,
	recorder MutationRecorder,
	timeout time.Duration,
) domain.EventService {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &eventService{
		eventRepo:      eventRepo,
		sanitizer:      sanitizer,
		recorder:       recorder,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

func (s *eventService) ListEvents(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (s *eventService) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrNotFound
	}
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) CreateEvent(ctx context.Context, actor domain.Actor, fields domain.EventFields) (event *domain.Event, err error) {
	defer func() { s.recorder.RecordEventMutation("create", err) }()

	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	fields = s.normalizeFields(fields)
	if err := domain.ValidateEventFields(fields); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event = domain.NewEvent(fields, s.now().UTC())
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, actor domain.Actor, id string, patch domain.EventPatch) (event *domain.Event, err error) {
	defer func() { s.recorder.RecordEventMutation("update", err) }()

	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	current, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}

	patch = s.normalizePatch(patch)
	if err := domain.ValidateEventPatch(current, patch); err != nil {
		return nil, err
	}

	event, err = s.eventRepo.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, actor domain.Actor, id string) (err error) {
	defer func() { s.recorder.RecordEventMutation("delete", err) }()

	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.eventRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func (s *eventService) normalizeFields(f domain.EventFields) domain.EventFields {
	f = f.Normalize()
	f.Description = nilIfEmpty(s.clean(f.Description))
	f.Rules = nilIfEmpty(s.clean(f.Rules))
	return f
}

func (s *eventService) normalizePatch(p domain.EventPatch) domain.EventPatch {
	if p.Title != nil {
		v := strings.TrimSpace(*p.Title)
		p.Title = &v
	}
	if p.EventType != nil {
		v := strings.ToLower(strings.TrimSpace(*p.EventType))
		p.EventType = &v
	}
	p.Description = s.clean(p.Description)
	p.Rules = s.clean(p.Rules)
	p.ImageURL = trimmed(p.ImageURL)
	p.Location = trimmed(p.Location)
	p.PrizePool = trimmed(p.PrizePool)
	p.Difficulty = trimmed(p.Difficulty)
	return p
}

func (s *eventService) clean(v *string) *string {
	if v == nil {
		return nil
	}
	out := strings.TrimSpace(*v)
	if s.sanitizer != nil {
		out = s.sanitizer.Sanitize(out)
	}
	return &out
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	out := strings.TrimSpace(*v)
	return &out
}

func nilIfEmpty(v *string) *string {
	if v == nil || *v == "" {
		return nil
	}
	return v
}
