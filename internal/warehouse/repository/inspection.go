package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pharmadist/pharmadist-backend/internal/warehouse/domain"
	"github.com/pharmadist/pharmadist-backend/pkg/database"
	"github.com/pharmadist/pharmadist-backend/pkg/errors"
)

// InspectionRepository handles inspection persistence
type InspectionRepository struct {
	db *database.DB
}

// NewInspectionRepository creates a new inspection repository
func NewInspectionRepository(db *database.DB) *InspectionRepository {
	return &InspectionRepository{db: db}
}

// GetByID gets an inspection by ID, with the inspector's cached name joined in
func (r *InspectionRepository) GetByID(ctx context.Context, id string) (*domain.Inspection, error) {
	var insp domain.Inspection
	query := `
		SELECT i.id, i.check_order_id, i.location_id, i.status, i.check_by,
		       u.name AS check_by_name, i.notes, i.created_at, i.updated_at
		FROM inspections i
		LEFT JOIN user_cache u ON u.user_id = i.check_by
		WHERE i.id = $1
	`
	err := r.db.GetContext(ctx, &insp, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("inspection")
	}
	if err != nil {
		return nil, err
	}

	return &insp, nil
}

// ListByOrder lists inspections belonging to a check order
func (r *InspectionRepository) ListByOrder(ctx context.Context, orderID string) ([]*domain.Inspection, error) {
	var inspections []*domain.Inspection
	query := `
		SELECT i.id, i.check_order_id, i.location_id, i.status, i.check_by,
		       u.name AS check_by_name, i.notes, i.created_at, i.updated_at
		FROM inspections i
		LEFT JOIN user_cache u ON u.user_id = i.check_by
		WHERE i.check_order_id = $1
		ORDER BY i.created_at
	`
	if err := r.db.SelectContext(ctx, &inspections, query, orderID); err != nil {
		return nil, err
	}

	return inspections, nil
}

// BulkCreateTx inserts the inspections seeded when a check order starts.
// Runs inside the same transaction as the pending->processing transition so
// a failed seed rolls the whole start back.
func (r *InspectionRepository) BulkCreateTx(ctx context.Context, tx *sqlx.Tx, inspections []*domain.Inspection) error {
	query := `
		INSERT INTO inspections (id, check_order_id, location_id, status)
		VALUES ($1, $2, $3, $4)
	`
	for _, insp := range inspections {
		if insp.ID == "" {
			insp.ID = uuid.New().String()
		}
		if insp.Status == "" {
			insp.Status = domain.InspectionDraft
		}
		if _, err := tx.ExecContext(ctx, query, insp.ID, insp.CheckOrderID, insp.LocationID, insp.Status); err != nil {
			if appErr := database.MapPQError(err); appErr != nil {
				return appErr
			}
			return err
		}
	}

	return nil
}

// Claim performs the compare-and-set claim transition. The WHERE clause
// mirrors domain.Claim: a draft inspection, or a checking inspection already
// held by the same user. Returns false if the write did not apply; the
// caller distinguishes NotFound/Conflict/InvalidState from the current row.
func (r *InspectionRepository) Claim(ctx context.Context, id, userID string) (bool, error) {
	query := `
		UPDATE inspections SET status = 'checking', check_by = $2, updated_at = NOW()
		WHERE id = $1 AND (status = 'draft' OR (status = 'checking' AND check_by = $2))
	`
	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return false, err
	}

	affected, _ := result.RowsAffected()
	return affected > 0, nil
}

// Finish performs the compare-and-set checking->checked transition for the
// holding inspector. Notes ride on the same conditional update so they can
// only stick when the transition applies.
func (r *InspectionRepository) Finish(ctx context.Context, id, userID string, notes *string) (bool, error) {
	query := `
		UPDATE inspections SET status = 'checked', notes = COALESCE($3, notes), updated_at = NOW()
		WHERE id = $1 AND status = 'checking' AND check_by = $2
	`
	result, err := r.db.ExecContext(ctx, query, id, userID, notes)
	if err != nil {
		return false, err
	}

	affected, _ := result.RowsAffected()
	return affected > 0, nil
}

// ResetByOrderTx puts every inspection of an order back to draft and clears
// the inspector. Part of the clear-inspections transaction.
func (r *InspectionRepository) ResetByOrderTx(ctx context.Context, tx *sqlx.Tx, orderID string) error {
	query := `
		UPDATE inspections SET status = 'draft', check_by = NULL, updated_at = NOW()
		WHERE check_order_id = $1
	`
	_, err := tx.ExecContext(ctx, query, orderID)
	return err
}

// CountNotChecked returns how many inspections of an order are not yet checked
func (r *InspectionRepository) CountNotChecked(ctx context.Context, orderID string) (int, error) {
	var count int
	query := `
		SELECT COUNT(*) FROM inspections
		WHERE check_order_id = $1 AND status <> 'checked'
	`
	if err := r.db.GetContext(ctx, &count, query, orderID); err != nil {
		return 0, err
	}

	return count, nil
}
