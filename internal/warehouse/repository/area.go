package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/pharmadist/pharmadist-backend/internal/warehouse/domain"
	"github.com/pharmadist/pharmadist-backend/pkg/database"
	"github.com/pharmadist/pharmadist-backend/pkg/errors"
)

// AreaRepository handles warehouse area persistence
type AreaRepository struct {
	db *database.DB
}

// NewAreaRepository creates a new area repository
func NewAreaRepository(db *database.DB) *AreaRepository {
	return &AreaRepository{db: db}
}

// Create creates a new area
func (r *AreaRepository) Create(ctx context.Context, area *domain.Area) error {
	if area.ID == "" {
		area.ID = uuid.New().String()
	}

	query := `
		INSERT INTO areas (id, name, description)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query, area.ID, area.Name, area.Description).
		Scan(&area.CreatedAt, &area.UpdatedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	return nil
}

// GetByID gets an area by ID
func (r *AreaRepository) GetByID(ctx context.Context, id string) (*domain.Area, error) {
	var area domain.Area
	query := `
		SELECT id, name, description, created_at, updated_at
		FROM areas WHERE id = $1
	`
	err := r.db.GetContext(ctx, &area, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("area")
	}
	if err != nil {
		return nil, err
	}

	return &area, nil
}

// List lists all areas ordered by name
func (r *AreaRepository) List(ctx context.Context) ([]*domain.Area, error) {
	var areas []*domain.Area
	query := `
		SELECT id, name, description, created_at, updated_at
		FROM areas ORDER BY name
	`
	if err := r.db.SelectContext(ctx, &areas, query); err != nil {
		return nil, err
	}

	return areas, nil
}
