package postgres

import (
	"context"
	"database/sql"

	"github.com/Chakshu098/Everhack/internal/domain"
)

type profileRepository struct {
	DB *sql.DB
}

func NewProfileRepository(db *sql.DB) domain.ProfileRepository {
	return &profileRepository{DB: db}
}

func (r *profileRepository) Create(ctx context.Context, p *domain.Profile) error {
	query := `
		INSERT INTO profiles (user_id, full_name, email)
		VALUES ($1, $2, $3)
	`
	_, err := r.DB.ExecContext(ctx, query, p.UserID, nullString(p.FullName), p.Email)
	return classify("create profile", err)
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	query := `
		SELECT user_id, full_name, email
		FROM profiles
		WHERE user_id = $1
	`
	p := &domain.Profile{}
	var fullName sql.NullString
	if err := r.DB.QueryRowContext(ctx, query, userID).Scan(&p.UserID, &fullName, &p.Email); err != nil {
		return nil, classify("get profile", err)
	}
	p.FullName = stringPtr(fullName)
	return p, nil
}
