package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/pharmadist/pharmadist-backend/internal/warehouse/domain"
	"github.com/pharmadist/pharmadist-backend/pkg/database"
	"github.com/pharmadist/pharmadist-backend/pkg/errors"
)

// LocationRepository handles storage location persistence.
// Locations are immutable once created; there is no update or delete.
type LocationRepository struct {
	db *database.DB
}

// NewLocationRepository creates a new location repository
func NewLocationRepository(db *database.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// Create creates a new location. The coordinate tuple is unique at the data
// layer; duplicates surface as Conflict.
func (r *LocationRepository) Create(ctx context.Context, loc *domain.Location) error {
	if loc.ID == "" {
		loc.ID = uuid.New().String()
	}

	query := `
		INSERT INTO locations (id, area_id, bay, row_num, col_num)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		loc.ID, loc.AreaID, loc.Bay, loc.Row, loc.Column,
	).Scan(&loc.CreatedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	return nil
}

// GetByID gets a location by ID
func (r *LocationRepository) GetByID(ctx context.Context, id string) (*domain.Location, error) {
	var loc domain.Location
	query := `
		SELECT id, area_id, bay, row_num, col_num, created_at
		FROM locations WHERE id = $1
	`
	err := r.db.GetContext(ctx, &loc, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("location")
	}
	if err != nil {
		return nil, err
	}

	return &loc, nil
}

// Lookup finds a location by its coordinate tuple
func (r *LocationRepository) Lookup(ctx context.Context, areaID string, bay, row, column int) (*domain.Location, error) {
	var loc domain.Location
	query := `
		SELECT id, area_id, bay, row_num, col_num, created_at
		FROM locations
		WHERE area_id = $1 AND bay = $2 AND row_num = $3 AND col_num = $4
	`
	err := r.db.GetContext(ctx, &loc, query, areaID, bay, row, column)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("location")
	}
	if err != nil {
		return nil, err
	}

	return &loc, nil
}

// List lists locations, optionally filtered by area
func (r *LocationRepository) List(ctx context.Context, areaID string) ([]*domain.Location, error) {
	var locations []*domain.Location

	if areaID != "" {
		query := `
			SELECT id, area_id, bay, row_num, col_num, created_at
			FROM locations WHERE area_id = $1
			ORDER BY bay, row_num, col_num
		`
		if err := r.db.SelectContext(ctx, &locations, query, areaID); err != nil {
			return nil, err
		}
		return locations, nil
	}

	query := `
		SELECT id, area_id, bay, row_num, col_num, created_at
		FROM locations ORDER BY area_id, bay, row_num, col_num
	`
	if err := r.db.SelectContext(ctx, &locations, query); err != nil {
		return nil, err
	}

	return locations, nil
}
