package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Chakshu098/Everhack/internal/domain"
	"github.com/lib/pq"
)

// Postgres SQLSTATE codes the repositories react to.
const (
	codeInsufficientPrivilege = "42501"
	codeForeignKeyViolation   = "23503"
	codeUniqueViolation       = "23505"
	codeCheckViolation        = "23514"
	codeInvalidTextRepr       = "22P02"
)

// classify maps a database/sql or lib/pq error onto the domain error set.
// Anything unrecognised is a TransportError so callers never mistake a failed
// read for an empty result.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case codeInsufficientPrivilege:
			return fmt.Errorf("%s: %w", op, domain.ErrForbidden)
		case codeForeignKeyViolation:
			return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
		case codeUniqueViolation:
			return fmt.Errorf("%s: %w", op, domain.ErrConflict)
		case codeCheckViolation, codeInvalidTextRepr:
			return fmt.Errorf("%s: %w: %s", op, domain.ErrInvalidInput, pqErr.Message)
		}
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return domain.NewTransportError(op, err)
}

func nullString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}

func nullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
