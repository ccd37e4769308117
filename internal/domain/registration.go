package domain

import (
	"context"
	"time"
)

// RegistrationStatus is the state of a member's registration.
type RegistrationStatus string

const (
	RegistrationRegistered RegistrationStatus = "registered"
	RegistrationWaitlisted RegistrationStatus = "waitlisted"
	RegistrationCancelled  RegistrationStatus = "cancelled"
)

// EventRegistration represents a member's registration for an event.
// swagger:model EventRegistration
type EventRegistration struct {
	ID        string             `json:"id"`
	EventID   string             `json:"event_id"`
	UserID    string             `json:"user_id"`
	Status    RegistrationStatus `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// NewEventRegistration creates a new EventRegistration. ID is typically set by the repository on create.
func NewEventRegistration(eventID, userID string, status RegistrationStatus, createdAt time.Time) *EventRegistration {
	return &EventRegistration{
		EventID:   eventID,
		UserID:    userID,
		Status:    status,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

// EventRegistrationRepository defines storage operations for event registrations.
type EventRegistrationRepository interface {
	Create(ctx context.Context, reg *EventRegistration) error
	GetByEventAndUser(ctx context.Context, eventID, userID string) (*EventRegistration, error)
	CountRegistered(ctx context.Context, eventID string) (int, error)
	// ListWithEventsByUserID joins registrations to their events. Registrations
	// whose event no longer exists are not returned.
	ListWithEventsByUserID(ctx context.Context, userID string) ([]*EventRegistrationWithEvent, error)
}

// EventRegistrationWithEvent bundles a registration with its related event.
type EventRegistrationWithEvent struct {
	Registration *EventRegistration `json:"registration"`
	Event        *Event             `json:"event"`
}

// RegistrationReader is the read-only view of a user's registrations.
type RegistrationReader interface {
	ListRegistrationsForUser(ctx context.Context, userID string) ([]*EventRegistrationWithEvent, error)
}

// AttendeeService defines member-facing operations such as event registration.
type AttendeeService interface {
	RegistrationReader
	// RegisterForEvent registers the user for the event. Returns (reg, created, err): created is true if a new registration was created, false if already registered.
	RegisterForEvent(ctx context.Context, eventID, userID string) (*EventRegistration, bool, error)
}
