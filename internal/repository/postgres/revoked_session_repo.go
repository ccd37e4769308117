package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/Chakshu098/Everhack/internal/domain"
)

type revokedSessionRepository struct {
	DB *sql.DB
}

func NewRevokedSessionRepository(db *sql.DB) domain.RevokedSessionRepository {
	return &revokedSessionRepository{DB: db}
}

// Revoke records sessionID as signed out. Entries whose token has expired are
// pruned on the way, since an expired token is rejected anyway.
func (r *revokedSessionRepository) Revoke(ctx context.Context, sessionID string, expiresAt time.Time) error {
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM revoked_sessions WHERE expires_at < NOW()`); err != nil {
		return classify("prune revoked sessions", err)
	}
	query := `
		INSERT INTO revoked_sessions (session_id, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (session_id) DO NOTHING
	`
	_, err := r.DB.ExecContext(ctx, query, sessionID, expiresAt)
	return classify("revoke session", err)
}

func (r *revokedSessionRepository) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	var revoked bool
	err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM revoked_sessions WHERE session_id = $1)`, sessionID).
		Scan(&revoked)
	if err != nil {
		return false, classify("check revoked session", err)
	}
	return revoked, nil
}
