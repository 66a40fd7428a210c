package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pharmadist/pharmadist-backend/internal/warehouse/domain"
	"github.com/pharmadist/pharmadist-backend/pkg/database"
	"github.com/pharmadist/pharmadist-backend/pkg/errors"
)

// CheckOrderRepository handles check order persistence
type CheckOrderRepository struct {
	db *database.DB
}

// NewCheckOrderRepository creates a new check order repository
func NewCheckOrderRepository(db *database.DB) *CheckOrderRepository {
	return &CheckOrderRepository{db: db}
}

// CheckOrderFilter narrows List results
type CheckOrderFilter struct {
	Status    string
	Date      *time.Time
	CreatedBy string
	Page      int
	PerPage   int
}

// Create creates a new check order in pending state
func (r *CheckOrderRepository) Create(ctx context.Context, order *domain.CheckOrder) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if order.Status == "" {
		order.Status = domain.CheckOrderPending
	}

	query := `
		INSERT INTO check_orders (id, inventory_check_date, status, warehouse_manager, created_by, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		order.ID, order.InventoryCheckDate, order.Status,
		order.WarehouseManager, order.CreatedBy, order.Notes,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	return nil
}

// GetByID gets a check order by ID
func (r *CheckOrderRepository) GetByID(ctx context.Context, id string) (*domain.CheckOrder, error) {
	var order domain.CheckOrder
	query := `
		SELECT id, inventory_check_date, status, warehouse_manager, created_by, notes, created_at, updated_at
		FROM check_orders WHERE id = $1
	`
	err := r.db.GetContext(ctx, &order, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("check order")
	}
	if err != nil {
		return nil, err
	}

	return &order, nil
}

// List lists check orders matching the filter, newest check date first
func (r *CheckOrderRepository) List(ctx context.Context, filter CheckOrderFilter) ([]*domain.CheckOrder, int64, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	where := "WHERE 1=1"
	args := []interface{}{}

	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Date != nil {
		args = append(args, *filter.Date)
		where += fmt.Sprintf(" AND inventory_check_date = $%d", len(args))
	}
	if filter.CreatedBy != "" {
		args = append(args, filter.CreatedBy)
		where += fmt.Sprintf(" AND created_by = $%d", len(args))
	}

	var total int64
	countQuery := "SELECT COUNT(*) FROM check_orders " + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	args = append(args, perPage, (page-1)*perPage)
	query := fmt.Sprintf(`
		SELECT id, inventory_check_date, status, warehouse_manager, created_by, notes, created_at, updated_at
		FROM check_orders %s
		ORDER BY inventory_check_date DESC, created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args))

	var orders []*domain.CheckOrder
	if err := r.db.SelectContext(ctx, &orders, query, args...); err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// MarkProcessingTx performs the atomic pending->processing transition inside
// the seeding transaction. The guard clause enforces the system-wide
// single-active-audit rule in one conditional write; the partial unique index
// on status backs it against concurrent transactions.
func (r *CheckOrderRepository) MarkProcessingTx(ctx context.Context, tx *sqlx.Tx, id string) (bool, error) {
	query := `
		UPDATE check_orders SET status = 'processing', updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		  AND NOT EXISTS (
			SELECT 1 FROM check_orders WHERE status = 'processing' AND id <> $1
		  )
	`
	result, err := tx.ExecContext(ctx, query, id)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return false, appErr
		}
		return false, err
	}

	affected, _ := result.RowsAffected()
	return affected > 0, nil
}

// TransitionStatus performs a compare-and-set status transition. Returns
// false if the order was not in the expected source status.
func (r *CheckOrderRepository) TransitionStatus(ctx context.Context, id string, from, to domain.CheckOrderStatus) (bool, error) {
	query := `
		UPDATE check_orders SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`
	result, err := r.db.ExecContext(ctx, query, id, from, to)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return false, appErr
		}
		return false, err
	}

	affected, _ := result.RowsAffected()
	return affected > 0, nil
}

// Progress returns inspection counts per status for one order
func (r *CheckOrderRepository) Progress(ctx context.Context, orderID string) (*domain.CheckOrderProgress, error) {
	var progress domain.CheckOrderProgress
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = 'draft') AS draft,
			COUNT(*) FILTER (WHERE status = 'checking') AS checking,
			COUNT(*) FILTER (WHERE status = 'checked') AS checked
		FROM inspections WHERE check_order_id = $1
	`
	if err := r.db.GetContext(ctx, &progress, query, orderID); err != nil {
		return nil, err
	}

	return &progress, nil
}
