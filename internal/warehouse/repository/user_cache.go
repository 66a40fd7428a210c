package repository

import (
	"context"
	"database/sql"

	"github.com/pharmadist/pharmadist-backend/pkg/database"
)

// CachedUser is event-synced user data kept locally so inspector and manager
// names render without a user-service round trip.
type CachedUser struct {
	UserID   string  `db:"user_id" json:"user_id"`
	Name     string  `db:"name" json:"name"`
	Email    *string `db:"email" json:"email,omitempty"`
	RoleName *string `db:"role_name" json:"role_name,omitempty"`
}

// UserCacheRepository handles cached user persistence
type UserCacheRepository struct {
	db *database.DB
}

// NewUserCacheRepository creates a new user cache repository
func NewUserCacheRepository(db *database.DB) *UserCacheRepository {
	return &UserCacheRepository{db: db}
}

// Set upserts a cached user
func (r *UserCacheRepository) Set(ctx context.Context, user *CachedUser) error {
	query := `
		INSERT INTO user_cache (user_id, name, email, role_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			role_name = EXCLUDED.role_name
	`
	_, err := r.db.ExecContext(ctx, query, user.UserID, user.Name, user.Email, user.RoleName)
	return err
}

// Get returns a cached user, or nil if unknown
func (r *UserCacheRepository) Get(ctx context.Context, userID string) (*CachedUser, error) {
	var user CachedUser
	query := `SELECT user_id, name, email, role_name FROM user_cache WHERE user_id = $1`
	err := r.db.GetContext(ctx, &user, query, userID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// Delete removes a cached user
func (r *UserCacheRepository) Delete(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM user_cache WHERE user_id = $1`, userID)
	return err
}
