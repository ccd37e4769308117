package postgres

import (
	"context"
	"database/sql"

	"github.com/Chakshu098/Everhack/internal/domain"
)

type eventRegistrationRepository struct {
	DB *sql.DB
}

func NewEventRegistrationRepository(db *sql.DB) domain.EventRegistrationRepository {
	return &eventRegistrationRepository{
		DB: db,
	}
}

func (r *eventRegistrationRepository) Create(ctx context.Context, reg *domain.EventRegistration) error {
	query := `
		INSERT INTO event_registrations (event_id, user_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, reg.EventID, reg.UserID, string(reg.Status), reg.CreatedAt, reg.UpdatedAt).
		Scan(&reg.ID)
	return classify("create registration", err)
}

func (r *eventRegistrationRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.EventRegistration, error) {
	query := `
		SELECT id, event_id, user_id, status, created_at, updated_at
		FROM event_registrations
		WHERE event_id = $1 AND user_id = $2
	`
	reg := &domain.EventRegistration{}
	var status string
	err := r.DB.QueryRowContext(ctx, query, eventID, userID).
		Scan(&reg.ID, &reg.EventID, &reg.UserID, &status, &reg.CreatedAt, &reg.UpdatedAt)
	if err != nil {
		return nil, classify("get registration", err)
	}
	reg.Status = domain.RegistrationStatus(status)
	return reg, nil
}

func (r *eventRegistrationRepository) CountRegistered(ctx context.Context, eventID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM event_registrations
		WHERE event_id = $1 AND status = 'registered'
	`
	var n int
	if err := r.DB.QueryRowContext(ctx, query, eventID).Scan(&n); err != nil {
		return 0, classify("count registrations", err)
	}
	return n, nil
}

// ListWithEventsByUserID returns the user's registrations joined to their
// events in one query, newest registration first.
func (r *eventRegistrationRepository) ListWithEventsByUserID(ctx context.Context, userID string) ([]*domain.EventRegistrationWithEvent, error) {
	query := `
		SELECT er.id, er.event_id, er.user_id, er.status, er.created_at, er.updated_at,
			` + eventColumns("e") + `
		FROM event_registrations er
		INNER JOIN events e ON e.id = er.event_id
		WHERE er.user_id = $1
		ORDER BY er.created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, classify("list registrations", err)
	}
	defer rows.Close()

	out := make([]*domain.EventRegistrationWithEvent, 0)
	for rows.Next() {
		reg := &domain.EventRegistration{}
		var status string
		e, err := scanEvent(rows, &reg.ID, &reg.EventID, &reg.UserID, &status, &reg.CreatedAt, &reg.UpdatedAt)
		if err != nil {
			return nil, classify("list registrations", err)
		}
		reg.Status = domain.RegistrationStatus(status)
		out = append(out, &domain.EventRegistrationWithEvent{Registration: reg, Event: e})
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list registrations", err)
	}
	return out, nil
}
