package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/pharmadist/pharmadist-backend/internal/warehouse/domain"
	"github.com/pharmadist/pharmadist-backend/pkg/database"
	"github.com/pharmadist/pharmadist-backend/pkg/errors"
)

// BatchRepository handles medicine batch persistence
type BatchRepository struct {
	db *database.DB
}

// NewBatchRepository creates a new batch repository
func NewBatchRepository(db *database.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

// Create creates a new batch
func (r *BatchRepository) Create(ctx context.Context, batch *domain.Batch) error {
	if batch.ID == "" {
		batch.ID = uuid.New().String()
	}

	query := `
		INSERT INTO batches (id, batch_number, medicine_name, expiry_date)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		batch.ID, batch.BatchNumber, batch.MedicineName, batch.ExpiryDate,
	).Scan(&batch.CreatedAt, &batch.UpdatedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	return nil
}

// GetByID gets a batch by ID
func (r *BatchRepository) GetByID(ctx context.Context, id string) (*domain.Batch, error) {
	var batch domain.Batch
	query := `
		SELECT id, batch_number, medicine_name, expiry_date, created_at, updated_at
		FROM batches WHERE id = $1
	`
	err := r.db.GetContext(ctx, &batch, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("batch")
	}
	if err != nil {
		return nil, err
	}

	return &batch, nil
}

// GetByBatchNumber finds a batch by its batch number
func (r *BatchRepository) GetByBatchNumber(ctx context.Context, batchNumber string) (*domain.Batch, error) {
	var batch domain.Batch
	query := `
		SELECT id, batch_number, medicine_name, expiry_date, created_at, updated_at
		FROM batches WHERE batch_number = $1
	`
	err := r.db.GetContext(ctx, &batch, query, batchNumber)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("batch")
	}
	if err != nil {
		return nil, err
	}

	return &batch, nil
}

// List lists batches with pagination, newest first
func (r *BatchRepository) List(ctx context.Context, page, perPage int) ([]*domain.Batch, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	offset := (page - 1) * perPage

	var total int64
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM batches"); err != nil {
		return nil, 0, err
	}

	var batches []*domain.Batch
	query := `
		SELECT id, batch_number, medicine_name, expiry_date, created_at, updated_at
		FROM batches
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	if err := r.db.SelectContext(ctx, &batches, query, perPage, offset); err != nil {
		return nil, 0, err
	}

	return batches, total, nil
}
