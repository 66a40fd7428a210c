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

// CheckItemRepository handles check item persistence
type CheckItemRepository struct {
	db *database.DB
}

// NewCheckItemRepository creates a new check item repository
func NewCheckItemRepository(db *database.DB) *CheckItemRepository {
	return &CheckItemRepository{db: db}
}

// Create creates a new check item (used when an unexpected package is scanned)
func (r *CheckItemRepository) Create(ctx context.Context, item *domain.CheckItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}

	query := `
		INSERT INTO check_items (id, inspection_id, package_id, expected_quantity, actual_quantity, item_type)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		item.ID, item.InspectionID, item.PackageID,
		item.ExpectedQuantity, item.ActualQuantity, item.Type,
	).Scan(&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	return nil
}

// BulkCreateTx inserts the pre-seeded check items for newly created
// inspections, inside the seeding transaction.
func (r *CheckItemRepository) BulkCreateTx(ctx context.Context, tx *sqlx.Tx, items []*domain.CheckItem) error {
	query := `
		INSERT INTO check_items (id, inspection_id, package_id, expected_quantity, actual_quantity, item_type)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, item := range items {
		if item.ID == "" {
			item.ID = uuid.New().String()
		}
		if _, err := tx.ExecContext(ctx, query,
			item.ID, item.InspectionID, item.PackageID,
			item.ExpectedQuantity, item.ActualQuantity, item.Type,
		); err != nil {
			if appErr := database.MapPQError(err); appErr != nil {
				return appErr
			}
			return err
		}
	}

	return nil
}

// GetByID gets a check item by ID
func (r *CheckItemRepository) GetByID(ctx context.Context, id string) (*domain.CheckItem, error) {
	var item domain.CheckItem
	query := `
		SELECT id, inspection_id, package_id, expected_quantity, actual_quantity, item_type, created_at, updated_at
		FROM check_items WHERE id = $1
	`
	err := r.db.GetContext(ctx, &item, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("check item")
	}
	if err != nil {
		return nil, err
	}

	return &item, nil
}

// GetByInspectionAndPackage finds the check item for a package within an
// inspection, if one exists
func (r *CheckItemRepository) GetByInspectionAndPackage(ctx context.Context, inspectionID, packageID string) (*domain.CheckItem, error) {
	var item domain.CheckItem
	query := `
		SELECT id, inspection_id, package_id, expected_quantity, actual_quantity, item_type, created_at, updated_at
		FROM check_items WHERE inspection_id = $1 AND package_id = $2
	`
	err := r.db.GetContext(ctx, &item, query, inspectionID, packageID)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("check item")
	}
	if err != nil {
		return nil, err
	}

	return &item, nil
}

// ListByInspection lists check items of an inspection in creation order
func (r *CheckItemRepository) ListByInspection(ctx context.Context, inspectionID string) ([]*domain.CheckItem, error) {
	var items []*domain.CheckItem
	query := `
		SELECT id, inspection_id, package_id, expected_quantity, actual_quantity, item_type, created_at, updated_at
		FROM check_items WHERE inspection_id = $1
		ORDER BY created_at
	`
	if err := r.db.SelectContext(ctx, &items, query, inspectionID); err != nil {
		return nil, err
	}

	return items, nil
}

// UpdateCount overwrites a check item's counted quantity and classification.
// The type is stored exactly as sent; explicit "mark missing" and "undo"
// actions depend on the server not coercing it.
func (r *CheckItemRepository) UpdateCount(ctx context.Context, id string, actualQuantity int, itemType domain.ItemType) error {
	query := `
		UPDATE check_items SET actual_quantity = $2, item_type = $3, updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id, actualQuantity, itemType)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("check item")
	}

	return nil
}

// Delete removes a check item (an erroneous over_expected entry)
func (r *CheckItemRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM check_items WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("check item")
	}

	return nil
}

// SnapshotByOrder returns the (package, type) pairs of every check item under
// a check order, across all its inspections. Input for the order-level
// reconciliation rule.
func (r *CheckItemRepository) SnapshotByOrder(ctx context.Context, orderID string) ([]domain.ItemSnapshot, error) {
	var rows []struct {
		PackageID string          `db:"package_id"`
		Type      domain.ItemType `db:"item_type"`
	}
	query := `
		SELECT c.package_id, c.item_type
		FROM check_items c
		JOIN inspections i ON i.id = c.inspection_id
		WHERE i.check_order_id = $1
	`
	if err := r.db.SelectContext(ctx, &rows, query, orderID); err != nil {
		return nil, err
	}

	snapshot := make([]domain.ItemSnapshot, len(rows))
	for i, row := range rows {
		snapshot[i] = domain.ItemSnapshot{PackageID: row.PackageID, Type: row.Type}
	}

	return snapshot, nil
}

// ResetByOrderTx restores every remaining check item of an order to its
// seeded state (actual = expected, type = valid). Over_expected items created
// for unexpected packages are deleted first: a cleared order goes back to the
// exact expected picture the seed produced.
func (r *CheckItemRepository) ResetByOrderTx(ctx context.Context, tx *sqlx.Tx, orderID string) error {
	deleteQuery := `
		DELETE FROM check_items
		WHERE item_type = 'over_expected'
		  AND inspection_id IN (SELECT id FROM inspections WHERE check_order_id = $1)
	`
	if _, err := tx.ExecContext(ctx, deleteQuery, orderID); err != nil {
		return err
	}

	resetQuery := `
		UPDATE check_items SET actual_quantity = expected_quantity, item_type = 'valid', updated_at = NOW()
		WHERE inspection_id IN (SELECT id FROM inspections WHERE check_order_id = $1)
	`
	_, err := tx.ExecContext(ctx, resetQuery, orderID)
	return err
}
