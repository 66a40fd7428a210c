package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pharmadist/pharmadist-backend/internal/warehouse/domain"
	"github.com/pharmadist/pharmadist-backend/internal/warehouse/events"
	"github.com/pharmadist/pharmadist-backend/internal/warehouse/repository"
	"github.com/pharmadist/pharmadist-backend/pkg/database"
	"github.com/pharmadist/pharmadist-backend/pkg/errors"
	"github.com/pharmadist/pharmadist-backend/pkg/logger"
	"github.com/pharmadist/pharmadist-backend/pkg/messaging"
)

// AuditService drives the inventory check workflow: check order lifecycle,
// inspection claiming and the per-package count records.
type AuditService struct {
	db             *database.DB
	checkOrderRepo *repository.CheckOrderRepository
	inspectionRepo *repository.InspectionRepository
	checkItemRepo  *repository.CheckItemRepository
	packageRepo    *repository.PackageRepository
	publisher      *events.WarehouseEventPublisher
	logger         *logger.Logger
}

// NewAuditService creates a new audit service
func NewAuditService(
	db *database.DB,
	checkOrderRepo *repository.CheckOrderRepository,
	inspectionRepo *repository.InspectionRepository,
	checkItemRepo *repository.CheckItemRepository,
	packageRepo *repository.PackageRepository,
	publisher *events.WarehouseEventPublisher,
	log *logger.Logger,
) *AuditService {
	return &AuditService{
		db:             db,
		checkOrderRepo: checkOrderRepo,
		inspectionRepo: inspectionRepo,
		checkItemRepo:  checkItemRepo,
		packageRepo:    packageRepo,
		publisher:      publisher,
		logger:         log,
	}
}

// CheckOrderDetail is a check order with its inspection progress
type CheckOrderDetail struct {
	*domain.CheckOrder
	Progress    *domain.CheckOrderProgress `json:"progress,omitempty"`
	Inspections []*domain.Inspection       `json:"inspections,omitempty"`
}

// Check order operations

// CreateCheckOrder schedules a new inventory check
func (s *AuditService) CreateCheckOrder(ctx context.Context, order *domain.CheckOrder) error {
	return s.checkOrderRepo.Create(ctx, order)
}

// GetCheckOrder returns a check order with progress and inspections
func (s *AuditService) GetCheckOrder(ctx context.Context, id string) (*CheckOrderDetail, error) {
	order, err := s.checkOrderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	progress, err := s.checkOrderRepo.Progress(ctx, id)
	if err != nil {
		return nil, err
	}

	inspections, err := s.inspectionRepo.ListByOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	return &CheckOrderDetail{CheckOrder: order, Progress: progress, Inspections: inspections}, nil
}

// ListCheckOrders lists check orders matching the filter
func (s *AuditService) ListCheckOrders(ctx context.Context, filter repository.CheckOrderFilter) ([]*domain.CheckOrder, int64, error) {
	return s.checkOrderRepo.List(ctx, filter)
}

// StartCheckOrder transitions a pending order to processing and seeds one
// inspection per occupied location, each pre-filled with valid check items
// (actual = expected). The whole seed runs in one transaction: the guarded
// status update enforces the single-active-audit rule, and a failed seed
// rolls the transition back.
func (s *AuditService) StartCheckOrder(ctx context.Context, orderID, performedBy string) (*CheckOrderDetail, error) {
	order, err := s.checkOrderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := order.CanStart(time.Now()); err != nil {
		return nil, err
	}

	var inspectionCount int
	err = s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		ok, err := s.checkOrderRepo.MarkProcessingTx(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if !ok {
			// The conditional write did not apply: either the order lost its
			// pending status or another order is already processing.
			current, err := s.checkOrderRepo.GetByID(ctx, orderID)
			if err != nil {
				return err
			}
			if startErr := current.CanStart(time.Now()); startErr != nil {
				return startErr
			}
			return errors.Conflict("another inventory check is already in progress")
		}

		inspectionCount, err = s.seedInspections(ctx, tx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}

	order.Status = domain.CheckOrderProcessing
	s.publisher.PublishAuditTransition(ctx, messaging.EventAuditStarted, order, performedBy, inspectionCount)

	s.logger.Info().
		Str("check_order_id", orderID).
		Int("inspections", inspectionCount).
		Msg("inventory check started")

	return s.GetCheckOrder(ctx, orderID)
}

// seedInspections builds the expected picture: one inspection per location
// that currently holds packages, one check item per package.
func (s *AuditService) seedInspections(ctx context.Context, tx *sqlx.Tx, orderID string) (int, error) {
	packages, err := s.packageRepo.ListArrangedTx(ctx, tx)
	if err != nil {
		return 0, err
	}

	byLocation := map[string][]*domain.Package{}
	locationOrder := []string{}
	for _, pkg := range packages {
		locID := *pkg.LocationID
		if _, seen := byLocation[locID]; !seen {
			locationOrder = append(locationOrder, locID)
		}
		byLocation[locID] = append(byLocation[locID], pkg)
	}

	inspections := make([]*domain.Inspection, 0, len(locationOrder))
	for _, locID := range locationOrder {
		inspections = append(inspections, &domain.Inspection{
			CheckOrderID: orderID,
			LocationID:   locID,
			Status:       domain.InspectionDraft,
		})
	}
	if err := s.inspectionRepo.BulkCreateTx(ctx, tx, inspections); err != nil {
		return 0, err
	}

	items := make([]*domain.CheckItem, 0, len(packages))
	for i, locID := range locationOrder {
		for _, pkg := range byLocation[locID] {
			items = append(items, &domain.CheckItem{
				InspectionID:     inspections[i].ID,
				PackageID:        pkg.ID,
				ExpectedQuantity: pkg.Quantity,
				ActualQuantity:   pkg.Quantity,
				Type:             domain.ItemValid,
			})
		}
	}
	if err := s.checkItemRepo.BulkCreateTx(ctx, tx, items); err != nil {
		return 0, err
	}

	return len(inspections), nil
}

// CompleteCheckOrder transitions a processing order to completed. Every
// inspection must be checked and the discrepancies must reconcile: each
// package recorded over_expected somewhere needs an under_expected record
// elsewhere in the same order, otherwise stock appeared out of nowhere.
func (s *AuditService) CompleteCheckOrder(ctx context.Context, orderID, performedBy string) (*CheckOrderDetail, error) {
	order, err := s.checkOrderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != domain.CheckOrderProcessing {
		return nil, errors.InvalidState("check order is not processing")
	}

	notChecked, err := s.inspectionRepo.CountNotChecked(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if notChecked > 0 {
		return nil, errors.ValidationMessage(fmt.Sprintf("%d locations have not been checked yet", notChecked))
	}

	snapshot, err := s.checkItemRepo.SnapshotByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if offenders := domain.Reconcile(snapshot); len(offenders) > 0 {
		return nil, errors.ValidationMessage(fmt.Sprintf(
			"surplus packages without a matching shortage: %s", strings.Join(offenders, ", ")))
	}

	ok, err := s.checkOrderRepo.TransitionStatus(ctx, orderID, domain.CheckOrderProcessing, domain.CheckOrderCompleted)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.InvalidState("check order is not processing")
	}

	order.Status = domain.CheckOrderCompleted
	s.publisher.PublishAuditTransition(ctx, messaging.EventAuditCompleted, order, performedBy, 0)

	s.logger.Info().Str("check_order_id", orderID).Msg("inventory check completed")

	return s.GetCheckOrder(ctx, orderID)
}

// CancelCheckOrder cancels a processing order. Inspections and check items
// are left in place for review; a cancelled order is terminal.
func (s *AuditService) CancelCheckOrder(ctx context.Context, orderID, performedBy string) (*CheckOrderDetail, error) {
	order, err := s.checkOrderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != domain.CheckOrderProcessing {
		return nil, errors.InvalidState("check order is not processing")
	}

	ok, err := s.checkOrderRepo.TransitionStatus(ctx, orderID, domain.CheckOrderProcessing, domain.CheckOrderCancelled)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Conflict("check order changed state, please retry")
	}

	order.Status = domain.CheckOrderCancelled
	s.publisher.PublishAuditTransition(ctx, messaging.EventAuditCancelled, order, performedBy, 0)

	s.logger.Info().Str("check_order_id", orderID).Msg("inventory check cancelled")

	return s.GetCheckOrder(ctx, orderID)
}

// ClearInspections discards all recorded counts of a processing order and
// returns its inspections to draft: over_expected items created during
// counting are deleted, the remaining items go back to actual = expected,
// and every inspection is released. The order stays processing so counting
// can start over.
func (s *AuditService) ClearInspections(ctx context.Context, orderID, performedBy string) error {
	order, err := s.checkOrderRepo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status != domain.CheckOrderProcessing {
		return errors.InvalidState("check order is not processing")
	}

	err = s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		if err := s.checkItemRepo.ResetByOrderTx(ctx, tx, orderID); err != nil {
			return err
		}
		return s.inspectionRepo.ResetByOrderTx(ctx, tx, orderID)
	})
	if err != nil {
		return err
	}

	s.publisher.PublishAuditTransition(ctx, messaging.EventAuditCleared, order, performedBy, 0)

	s.logger.Info().Str("check_order_id", orderID).Msg("inspections cleared")

	return nil
}

// Inspection operations

// ListInspections lists the inspections of a check order
func (s *AuditService) ListInspections(ctx context.Context, orderID string) ([]*domain.Inspection, error) {
	if _, err := s.checkOrderRepo.GetByID(ctx, orderID); err != nil {
		return nil, err
	}
	return s.inspectionRepo.ListByOrder(ctx, orderID)
}

// ListCheckItems lists the check items of an inspection
func (s *AuditService) ListCheckItems(ctx context.Context, inspectionID string) ([]*domain.CheckItem, error) {
	if _, err := s.inspectionRepo.GetByID(ctx, inspectionID); err != nil {
		return nil, err
	}
	return s.checkItemRepo.ListByInspection(ctx, inspectionID)
}

// GetInspection returns an inspection with its check items
func (s *AuditService) GetInspection(ctx context.Context, id string) (*domain.Inspection, error) {
	insp, err := s.inspectionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	items, err := s.checkItemRepo.ListByInspection(ctx, id)
	if err != nil {
		return nil, err
	}
	insp.Items = items

	return insp, nil
}

// ClaimInspection assigns an inspection to the calling user. Claiming is
// exclusive: once a user holds an inspection no one else can touch it until
// it is finished or the order's inspections are cleared. Re-claiming your own
// inspection is a no-op so a dropped connection doesn't lock anyone out.
func (s *AuditService) ClaimInspection(ctx context.Context, id, userID string) (*domain.Inspection, error) {
	ok, err := s.inspectionRepo.Claim(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		insp, err := s.inspectionRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		current := domain.ClaimState{Status: insp.Status}
		if insp.CheckBy != nil {
			current.CheckBy = *insp.CheckBy
		}
		if _, claimErr := domain.Claim(current, userID); claimErr != nil {
			return nil, claimErr
		}
		// The row would accept the claim now; the write raced something else.
		return nil, errors.Conflict("inspection changed state, please retry")
	}

	return s.GetInspection(ctx, id)
}

// FinishInspection marks a claimed inspection as checked, optionally
// recording notes. Only the holding inspector may finish.
func (s *AuditService) FinishInspection(ctx context.Context, id, userID string, notes *string) (*domain.Inspection, error) {
	insp, err := s.inspectionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := insp.CanFinish(userID); err != nil {
		return nil, err
	}

	ok, err := s.inspectionRepo.Finish(ctx, id, userID, notes)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Conflict("inspection changed state, please retry")
	}

	return s.GetInspection(ctx, id)
}

// Check item operations

// RecordCheckItemInput carries one count entry from the scanning client.
// LocationID is the location the inspector actually scanned; it must match
// the inspection's location or the entry is rejected.
type RecordCheckItemInput struct {
	PackageID      string
	LocationID     string
	ActualQuantity int
	Type           domain.ItemType
}

// RecordCheckItem records a count for one package within an inspection.
//
// If the package was expected at this location its seeded item is updated in
// place. If it was not, a new over_expected item is created; the matching
// shortage shows up as under_expected wherever the package was expected, and
// the two reconcile at completion time.
//
// When the client sends an explicit type it is stored as-is: "mark missing"
// sends under_expected with the counted quantity, and undo sends valid. With
// no type the classification is derived from the quantities.
func (s *AuditService) RecordCheckItem(ctx context.Context, inspectionID, userID string, input RecordCheckItemInput) (*domain.CheckItem, error) {
	insp, err := s.inspectionRepo.GetByID(ctx, inspectionID)
	if err != nil {
		return nil, err
	}
	if err := insp.CanMutate(userID); err != nil {
		return nil, err
	}
	if err := insp.VerifyLocation(input.LocationID); err != nil {
		return nil, err
	}
	if input.Type != "" && !input.Type.Valid() {
		return nil, errors.ValidationMessage("unknown item type: " + string(input.Type))
	}

	item, err := s.checkItemRepo.GetByInspectionAndPackage(ctx, inspectionID, input.PackageID)
	if err != nil && !errors.Is(err, errors.ErrNotFound) {
		return nil, err
	}

	if item != nil {
		itemType := input.Type
		if itemType == "" {
			itemType = domain.Classify(item.ExpectedQuantity, input.ActualQuantity)
		}
		if err := s.checkItemRepo.UpdateCount(ctx, item.ID, input.ActualQuantity, itemType); err != nil {
			return nil, err
		}
		return s.checkItemRepo.GetByID(ctx, item.ID)
	}

	// Package found at a location that never expected it.
	pkg, err := s.packageRepo.GetByID(ctx, input.PackageID)
	if err != nil {
		return nil, err
	}

	item = &domain.CheckItem{
		InspectionID:     inspectionID,
		PackageID:        pkg.ID,
		ExpectedQuantity: pkg.Quantity,
		ActualQuantity:   input.ActualQuantity,
		Type:             domain.ItemOverExpected,
	}
	if err := s.checkItemRepo.Create(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

// DeleteCheckItem removes an erroneous over_expected entry from a claimed
// inspection. Seeded items are never deleted; they are corrected instead.
func (s *AuditService) DeleteCheckItem(ctx context.Context, inspectionID, itemID, userID string) error {
	insp, err := s.inspectionRepo.GetByID(ctx, inspectionID)
	if err != nil {
		return err
	}
	if err := insp.CanMutate(userID); err != nil {
		return err
	}

	item, err := s.checkItemRepo.GetByID(ctx, itemID)
	if err != nil {
		return err
	}
	if item.InspectionID != inspectionID {
		return errors.NotFound("check item")
	}
	if item.Type != domain.ItemOverExpected {
		return errors.ValidationMessage("only over_expected items can be deleted")
	}

	return s.checkItemRepo.Delete(ctx, itemID)
}
