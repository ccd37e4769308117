package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Chakshu098/Everhack/internal/domain"
)

type attendeeService struct {
	eventRepo        domain.EventRepository
	registrationRepo domain.EventRegistrationRepository
	contextTimeout   time.Duration
}

// NewAttendeeService creates an AttendeeService with the given repositories.
func NewAttendeeService(
	eventRepo domain.EventRepository,
	registrationRepo domain.EventRegistrationRepository,
	timeout time.Duration,
) domain.AttendeeService {
	return &attendeeService{
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		contextTimeout:   timeout,
	}
}

// RegisterForEvent is idempotent: a second call returns the existing
// registration with created=false. Once max_participants registrations exist
// new ones are waitlisted.
func (s *attendeeService) RegisterForEvent(ctx context.Context, eventID, userID string) (*domain.EventRegistration, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, false, fmt.Errorf("get event: %w", err)
	}

	if existing, err := s.registrationRepo.GetByEventAndUser(ctx, eventID, userID); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, fmt.Errorf("get event registration: %w", err)
	}

	if status := event.DisplayStatus(time.Now()); status == domain.EventStatusCancelled || status == domain.EventStatusCompleted {
		return nil, false, domain.NewValidationError(domain.FieldError{
			Field:   "event_id",
			Message: fmt.Sprintf("event is %s and no longer accepts registrations", status),
		})
	}

	status := domain.RegistrationRegistered
	if event.MaxParticipants != nil {
		n, err := s.registrationRepo.CountRegistered(ctx, eventID)
		if err != nil {
			return nil, false, fmt.Errorf("count registrations: %w", err)
		}
		if n >= *event.MaxParticipants {
			status = domain.RegistrationWaitlisted
		}
	}

	reg := domain.NewEventRegistration(eventID, userID, status, time.Now().UTC())
	if err := s.registrationRepo.Create(ctx, reg); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// Lost a race with a concurrent request for the same user.
			existing, getErr := s.registrationRepo.GetByEventAndUser(ctx, eventID, userID)
			if getErr == nil {
				return existing, false, nil
			}
		}
		return nil, false, fmt.Errorf("create event registration: %w", err)
	}
	return reg, true, nil
}

// ListRegistrationsForUser returns the user's registrations with their events,
// newest first. Entries whose event is missing are skipped.
func (s *attendeeService) ListRegistrationsForUser(ctx context.Context, userID string) ([]*domain.EventRegistrationWithEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	rows, err := s.registrationRepo.ListWithEventsByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}

	result := make([]*domain.EventRegistrationWithEvent, 0, len(rows))
	for _, row := range rows {
		if row == nil || row.Registration == nil || row.Event == nil {
			continue
		}
		result = append(result, row)
	}
	return result, nil
}
