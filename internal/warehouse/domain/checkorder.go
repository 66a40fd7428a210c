package domain

import (
	"time"

	"github.com/pharmadist/pharmadist-backend/pkg/errors"
)

// CheckOrderStatus is the lifecycle state of an inventory check order.
type CheckOrderStatus string

const (
	CheckOrderPending    CheckOrderStatus = "pending"
	CheckOrderProcessing CheckOrderStatus = "processing"
	CheckOrderCompleted  CheckOrderStatus = "completed"
	CheckOrderCancelled  CheckOrderStatus = "cancelled"
)

// Terminal reports whether no further transition is allowed from this status.
func (s CheckOrderStatus) Terminal() bool {
	return s == CheckOrderCompleted || s == CheckOrderCancelled
}

// Valid reports whether the status is one of the known lifecycle states.
func (s CheckOrderStatus) Valid() bool {
	switch s {
	case CheckOrderPending, CheckOrderProcessing, CheckOrderCompleted, CheckOrderCancelled:
		return true
	}
	return false
}

// CheckOrder represents one scheduled inventory-audit event spanning
// potentially many warehouse locations.
type CheckOrder struct {
	ID                 string           `json:"id" db:"id"`
	InventoryCheckDate time.Time        `json:"inventory_check_date" db:"inventory_check_date"`
	Status             CheckOrderStatus `json:"status" db:"status"`
	WarehouseManager   string           `json:"warehouse_manager" db:"warehouse_manager"`
	CreatedBy          string           `json:"created_by" db:"created_by"`
	Notes              *string          `json:"notes,omitempty" db:"notes"`
	CreatedAt          time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at" db:"updated_at"`
}

// CanStart checks the entity-local preconditions for the pending->processing
// transition: the order must still be pending and its check date must be
// today or earlier. The system-wide single-active-audit rule is enforced by
// the repository's conditional update, not here.
func (o *CheckOrder) CanStart(now time.Time) error {
	if o.Status != CheckOrderPending {
		return errors.InvalidState("check order is not pending")
	}

	today := now.Truncate(24 * time.Hour)
	checkDate := o.InventoryCheckDate.Truncate(24 * time.Hour)
	if checkDate.After(today) {
		return errors.InvalidState("inventory check date has not been reached")
	}

	return nil
}

// CheckOrderProgress aggregates inspection counts per status for one order.
type CheckOrderProgress struct {
	Total    int `json:"total" db:"total"`
	Draft    int `json:"draft" db:"draft"`
	Checking int `json:"checking" db:"checking"`
	Checked  int `json:"checked" db:"checked"`
}

// Remaining returns the number of inspections not yet checked.
func (p CheckOrderProgress) Remaining() int {
	return p.Total - p.Checked
}
