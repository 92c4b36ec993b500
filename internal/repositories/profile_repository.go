package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"messenger-service/internal/models"
)

var ErrProfileNotFound = errors.New("profile not found")

// ProfileRepository reads display profiles owned by the user collaborator.
type ProfileRepository interface {
	GetByID(ctx context.Context, userID int64) (models.Profile, error)
}

// ProfileRepo is a sqlx-backed read-only repository.
type ProfileRepo struct {
	db *sqlx.DB
}

// NewProfileRepo constructs a ProfileRepo.
func NewProfileRepo(db *sqlx.DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

// GetByID fetches a single profile.
func (r *ProfileRepo) GetByID(ctx context.Context, userID int64) (models.Profile, error) {
	var profile models.Profile
	err := r.db.GetContext(ctx, &profile, `SELECT id, full_name, title, bio, avatar_url
        FROM profiles WHERE id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Profile{}, ErrProfileNotFound
	}
	return profile, err
}
