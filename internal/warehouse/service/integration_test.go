package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmadist/pharmadist-backend/internal/warehouse/domain"
	"github.com/pharmadist/pharmadist-backend/internal/warehouse/repository"
	"github.com/pharmadist/pharmadist-backend/internal/warehouse/service"
	"github.com/pharmadist/pharmadist-backend/pkg/errors"
	"github.com/pharmadist/pharmadist-backend/pkg/testutil"
)

// TestAuditWorkflow_Integration runs the whole inventory check flow against a
// real PostgreSQL: seed stock, start the order, count, reconcile, complete.
func TestAuditWorkflow_Integration(t *testing.T) {
	testutil.RequireIntegration(t)

	ctx := context.Background()
	suite, err := testutil.NewIntegrationSuite(ctx)
	require.NoError(t, err)
	require.NoError(t, suite.Truncate(ctx, "check_items", "inspections", "check_orders", "packages", "batches", "locations", "areas"))

	areaRepo := repository.NewAreaRepository(suite.DB)
	locationRepo := repository.NewLocationRepository(suite.DB)
	batchRepo := repository.NewBatchRepository(suite.DB)
	packageRepo := repository.NewPackageRepository(suite.DB)
	checkOrderRepo := repository.NewCheckOrderRepository(suite.DB)
	inspectionRepo := repository.NewInspectionRepository(suite.DB)
	checkItemRepo := repository.NewCheckItemRepository(suite.DB)

	stockSvc := service.NewStockService(areaRepo, locationRepo, batchRepo, packageRepo, nil, suite.Logger)
	auditSvc := service.NewAuditService(suite.DB, checkOrderRepo, inspectionRepo, checkItemRepo, packageRepo, nil, suite.Logger)

	// Warehouse layout: one area, two shelves.
	area := &domain.Area{Name: "Cold Storage"}
	require.NoError(t, stockSvc.CreateArea(ctx, area))

	locA := &domain.Location{AreaID: area.ID, Bay: 1, Row: 1, Column: 1}
	locB := &domain.Location{AreaID: area.ID, Bay: 1, Row: 1, Column: 2}
	require.NoError(t, stockSvc.CreateLocation(ctx, locA))
	require.NoError(t, stockSvc.CreateLocation(ctx, locB))

	// Duplicate coordinates are rejected at the data layer.
	dup := &domain.Location{AreaID: area.ID, Bay: 1, Row: 1, Column: 2}
	err = stockSvc.CreateLocation(ctx, dup)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConflict))

	// Stock: two packages on shelf A, one on shelf B.
	batch := &domain.Batch{BatchNumber: "B-2025-001", MedicineName: "Amoxicillin 500mg"}
	require.NoError(t, stockSvc.CreateBatch(ctx, batch))

	pkg1 := &domain.Package{BatchID: batch.ID, Quantity: 30}
	pkg2 := &domain.Package{BatchID: batch.ID, Quantity: 20}
	pkg3 := &domain.Package{BatchID: batch.ID, Quantity: 10}
	for _, pkg := range []*domain.Package{pkg1, pkg2, pkg3} {
		require.NoError(t, stockSvc.CreatePackage(ctx, pkg))
	}
	_, err = stockSvc.PutAwayPackage(ctx, pkg1.ID, locA.ID, managerID)
	require.NoError(t, err)
	_, err = stockSvc.PutAwayPackage(ctx, pkg2.ID, locA.ID, managerID)
	require.NoError(t, err)
	_, err = stockSvc.PutAwayPackage(ctx, pkg3.ID, locB.ID, managerID)
	require.NoError(t, err)

	// Putting a package away twice is rejected.
	_, err = stockSvc.PutAwayPackage(ctx, pkg1.ID, locB.ID, managerID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConflict))

	// Schedule and start the check.
	order := &domain.CheckOrder{
		InventoryCheckDate: time.Now().AddDate(0, 0, -1),
		WarehouseManager:   managerID,
		CreatedBy:          managerID,
	}
	require.NoError(t, auditSvc.CreateCheckOrder(ctx, order))

	detail, err := auditSvc.StartCheckOrder(ctx, order.ID, managerID)
	require.NoError(t, err)
	assert.Equal(t, domain.CheckOrderProcessing, detail.Status)
	require.Len(t, detail.Inspections, 2)

	// A second concurrent audit is blocked while this one runs.
	second := &domain.CheckOrder{
		InventoryCheckDate: time.Now().AddDate(0, 0, -1),
		WarehouseManager:   managerID,
		CreatedBy:          managerID,
	}
	require.NoError(t, auditSvc.CreateCheckOrder(ctx, second))
	_, err = auditSvc.StartCheckOrder(ctx, second.ID, managerID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConflict))

	var inspA, inspB *domain.Inspection
	for _, insp := range detail.Inspections {
		switch insp.LocationID {
		case locA.ID:
			inspA = insp
		case locB.ID:
			inspB = insp
		}
	}
	require.NotNil(t, inspA)
	require.NotNil(t, inspB)

	// Inspector claims shelf A; another user is locked out.
	_, err = auditSvc.ClaimInspection(ctx, inspA.ID, inspectorID)
	require.NoError(t, err)
	_, err = auditSvc.ClaimInspection(ctx, inspA.ID, managerID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConflict))

	// pkg1 is missing from shelf A; it turns up on shelf B.
	_, err = auditSvc.RecordCheckItem(ctx, inspA.ID, inspectorID, service.RecordCheckItemInput{
		PackageID:      pkg1.ID,
		LocationID:     locA.ID,
		ActualQuantity: 0,
		Type:           domain.ItemUnderExpected,
	})
	require.NoError(t, err)

	_, err = auditSvc.FinishInspection(ctx, inspA.ID, inspectorID, nil)
	require.NoError(t, err)

	_, err = auditSvc.ClaimInspection(ctx, inspB.ID, inspectorID)
	require.NoError(t, err)
	stray, err := auditSvc.RecordCheckItem(ctx, inspB.ID, inspectorID, service.RecordCheckItemInput{
		PackageID:      pkg1.ID,
		LocationID:     locB.ID,
		ActualQuantity: 30,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ItemOverExpected, stray.Type)

	// Completion is blocked until every inspection is checked.
	_, err = auditSvc.CompleteCheckOrder(ctx, order.ID, managerID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrValidation))

	_, err = auditSvc.FinishInspection(ctx, inspB.ID, inspectorID, nil)
	require.NoError(t, err)

	// The surplus on shelf B matches the shortage on shelf A, so the order
	// reconciles and completes.
	final, err := auditSvc.CompleteCheckOrder(ctx, order.ID, managerID)
	require.NoError(t, err)
	assert.Equal(t, domain.CheckOrderCompleted, final.Status)
	assert.Equal(t, 0, final.Progress.Remaining())
}

// TestClearInspections_Integration verifies that clearing a processing order
// discards all counts and releases every inspection.
func TestClearInspections_Integration(t *testing.T) {
	testutil.RequireIntegration(t)

	ctx := context.Background()
	suite, err := testutil.NewIntegrationSuite(ctx)
	require.NoError(t, err)
	require.NoError(t, suite.Truncate(ctx, "check_items", "inspections", "check_orders", "packages", "batches", "locations", "areas"))

	areaRepo := repository.NewAreaRepository(suite.DB)
	locationRepo := repository.NewLocationRepository(suite.DB)
	batchRepo := repository.NewBatchRepository(suite.DB)
	packageRepo := repository.NewPackageRepository(suite.DB)
	checkOrderRepo := repository.NewCheckOrderRepository(suite.DB)
	inspectionRepo := repository.NewInspectionRepository(suite.DB)
	checkItemRepo := repository.NewCheckItemRepository(suite.DB)

	stockSvc := service.NewStockService(areaRepo, locationRepo, batchRepo, packageRepo, nil, suite.Logger)
	auditSvc := service.NewAuditService(suite.DB, checkOrderRepo, inspectionRepo, checkItemRepo, packageRepo, nil, suite.Logger)

	area := &domain.Area{Name: "Main Hall"}
	require.NoError(t, stockSvc.CreateArea(ctx, area))
	loc := &domain.Location{AreaID: area.ID, Bay: 2, Row: 1, Column: 1}
	require.NoError(t, stockSvc.CreateLocation(ctx, loc))
	batch := &domain.Batch{BatchNumber: "B-2025-002", MedicineName: "Ibuprofen 400mg"}
	require.NoError(t, stockSvc.CreateBatch(ctx, batch))
	pkg := &domain.Package{BatchID: batch.ID, Quantity: 12}
	require.NoError(t, stockSvc.CreatePackage(ctx, pkg))
	_, err = stockSvc.PutAwayPackage(ctx, pkg.ID, loc.ID, managerID)
	require.NoError(t, err)

	order := &domain.CheckOrder{
		InventoryCheckDate: time.Now(),
		WarehouseManager:   managerID,
		CreatedBy:          managerID,
	}
	require.NoError(t, auditSvc.CreateCheckOrder(ctx, order))
	detail, err := auditSvc.StartCheckOrder(ctx, order.ID, managerID)
	require.NoError(t, err)
	require.Len(t, detail.Inspections, 1)
	insp := detail.Inspections[0]

	_, err = auditSvc.ClaimInspection(ctx, insp.ID, inspectorID)
	require.NoError(t, err)
	_, err = auditSvc.RecordCheckItem(ctx, insp.ID, inspectorID, service.RecordCheckItemInput{
		PackageID:      pkg.ID,
		LocationID:     loc.ID,
		ActualQuantity: 5,
	})
	require.NoError(t, err)

	require.NoError(t, auditSvc.ClearInspections(ctx, order.ID, managerID))

	reloaded, err := auditSvc.GetInspection(ctx, insp.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InspectionDraft, reloaded.Status)
	assert.Nil(t, reloaded.CheckBy)
	require.Len(t, reloaded.Items, 1)
	assert.Equal(t, domain.ItemValid, reloaded.Items[0].Type)
	assert.Equal(t, reloaded.Items[0].ExpectedQuantity, reloaded.Items[0].ActualQuantity)
}
