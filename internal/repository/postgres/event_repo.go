package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Chakshu098/Everhack/internal/domain"
)

var eventColumnNames = []string{
	"id", "title", "description", "event_type", "image_url", "start_date", "end_date",
	"location", "is_online", "max_participants", "prize_pool", "difficulty", "status", "rules",
	"timeline", "version", "created_at", "updated_at",
}

// eventColumns lists the events columns in scanEvent order, qualified with
// alias when one is given.
func eventColumns(alias string) string {
	if alias == "" {
		return strings.Join(eventColumnNames, ", ")
	}
	cols := make([]string, len(eventColumnNames))
	for i, c := range eventColumnNames {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}

type rowScanner interface {
	Scan(dest ...any) error
}

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

// scanEvent reads one events row. lead receives any columns selected before
// the event columns.
func scanEvent(row rowScanner, lead ...any) (*domain.Event, error) {
	e := &domain.Event{}
	var desc, image, location, prize, difficulty, rules sql.NullString
	var online sql.NullBool
	var maxParticipants sql.NullInt64
	var status string
	var timeline []byte
	dest := append(lead,
		&e.ID, &e.Title, &desc, &e.EventType, &image, &e.StartDate, &e.EndDate,
		&location, &online, &maxParticipants, &prize, &difficulty, &status, &rules,
		&timeline, &e.Version, &e.CreatedAt, &e.UpdatedAt,
	)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	e.Description = stringPtr(desc)
	e.ImageURL = stringPtr(image)
	e.Location = stringPtr(location)
	e.PrizePool = stringPtr(prize)
	e.Difficulty = stringPtr(difficulty)
	e.Rules = stringPtr(rules)
	e.Status = domain.EventStatus(status)
	if online.Valid {
		v := online.Bool
		e.IsOnline = &v
	}
	if maxParticipants.Valid {
		v := int(maxParticipants.Int64)
		e.MaxParticipants = &v
	}
	e.Timeline = []domain.TimelineEntry{}
	if len(timeline) > 0 {
		if err := json.Unmarshal(timeline, &e.Timeline); err != nil {
			return nil, fmt.Errorf("decode timeline for event %s: %w", e.ID, err)
		}
	}
	return e, nil
}

func encodeTimeline(tl []domain.TimelineEntry) (string, error) {
	if tl == nil {
		tl = []domain.TimelineEntry{}
	}
	b, err := json.Marshal(tl)
	if err != nil {
		return "", fmt.Errorf("encode timeline: %w", err)
	}
	return string(b), nil
}

func (r *eventRepository) List(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns("") + `
		FROM events
		ORDER BY start_date DESC, created_at DESC`
	var args []any
	if params.PageSize > 0 {
		query += ` LIMIT $1 OFFSET $2`
		args = append(args, params.PageSize, params.Offset())
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("list events", err)
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, classify("list events", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list events", err)
	}
	return events, nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns("") + ` FROM events WHERE id = $1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, classify("get event", err)
	}
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	timeline, err := encodeTimeline(e.Timeline)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO events (title, description, event_type, image_url, start_date, end_date,
			location, is_online, max_participants, prize_pool, difficulty, status, rules,
			timeline, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, version
	`
	err = r.DB.QueryRowContext(ctx, query,
		e.Title, nullString(e.Description), e.EventType, nullString(e.ImageURL), e.StartDate, e.EndDate,
		nullString(e.Location), nullBool(e.IsOnline), nullInt(e.MaxParticipants), nullString(e.PrizePool),
		nullString(e.Difficulty), string(e.Status), nullString(e.Rules), timeline, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID, &e.Version)
	return classify("create event", err)
}

// Update applies the non-nil fields of patch and bumps the version. An empty
// string clears an optional text column and patch.Clear nulls the others. With patch.ExpectedVersion set, a
// stale version yields domain.ErrConflict.
func (r *eventRepository) Update(ctx context.Context, id string, patch domain.EventPatch) (*domain.Event, error) {
	if patch.Empty() {
		e, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if patch.ExpectedVersion != nil && *patch.ExpectedVersion != e.Version {
			return nil, domain.ErrConflict
		}
		return e, nil
	}

	setClauses := []string{"updated_at = NOW()", "version = version + 1"}
	args := []any{}
	set := func(column string, v any) {
		args = append(args, v)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.Title != nil {
		set("title", *patch.Title)
	}
	if patch.Description != nil {
		set("description", nullString(patch.Description))
	}
	if patch.EventType != nil {
		set("event_type", *patch.EventType)
	}
	if patch.ImageURL != nil {
		set("image_url", nullString(patch.ImageURL))
	}
	if patch.StartDate != nil {
		set("start_date", *patch.StartDate)
	}
	if patch.EndDate != nil {
		set("end_date", *patch.EndDate)
	}
	if patch.Location != nil {
		set("location", nullString(patch.Location))
	}
	switch {
	case patch.IsOnline != nil:
		set("is_online", *patch.IsOnline)
	case patch.Clears(domain.FieldIsOnline):
		setClauses = append(setClauses, "is_online = NULL")
	}
	switch {
	case patch.MaxParticipants != nil:
		set("max_participants", *patch.MaxParticipants)
	case patch.Clears(domain.FieldMaxParticipants):
		setClauses = append(setClauses, "max_participants = NULL")
	}
	if patch.PrizePool != nil {
		set("prize_pool", nullString(patch.PrizePool))
	}
	if patch.Difficulty != nil {
		set("difficulty", nullString(patch.Difficulty))
	}
	if patch.Status != nil {
		set("status", string(*patch.Status))
	}
	if patch.Rules != nil {
		set("rules", nullString(patch.Rules))
	}
	if patch.Timeline != nil {
		timeline, err := encodeTimeline(*patch.Timeline)
		if err != nil {
			return nil, err
		}
		set("timeline", timeline)
	}

	args = append(args, id)
	where := fmt.Sprintf("id = $%d", len(args))
	if patch.ExpectedVersion != nil {
		args = append(args, *patch.ExpectedVersion)
		where += fmt.Sprintf(" AND version = $%d", len(args))
	}
	query := fmt.Sprintf(`
		UPDATE events SET %s
		WHERE %s
		RETURNING %s
	`, strings.Join(setClauses, ", "), where, eventColumns(""))

	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, args...))
	if err == nil {
		return e, nil
	}
	if errors.Is(err, sql.ErrNoRows) && patch.ExpectedVersion != nil {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, domain.ErrConflict
	}
	return nil, classify("update event", err)
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return classify("delete event", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return classify("delete event", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
