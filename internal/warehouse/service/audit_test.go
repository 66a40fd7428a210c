package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmadist/pharmadist-backend/internal/warehouse/repository"
	"github.com/pharmadist/pharmadist-backend/internal/warehouse/service"
	"github.com/pharmadist/pharmadist-backend/pkg/database"
	"github.com/pharmadist/pharmadist-backend/pkg/errors"
	"github.com/pharmadist/pharmadist-backend/pkg/logger"
	"github.com/pharmadist/pharmadist-backend/pkg/testutil"
)

const (
	orderID      = "5f0c1a9e-0d9b-4f9e-8a6a-111111111111"
	inspectionID = "5f0c1a9e-0d9b-4f9e-8a6a-222222222222"
	inspectorID  = "5f0c1a9e-0d9b-4f9e-8a6a-333333333333"
	managerID    = "5f0c1a9e-0d9b-4f9e-8a6a-666666666666"
)

func newAuditService(t *testing.T) (*service.AuditService, *testutil.MockDB) {
	mockDB := testutil.NewMockDB(t)
	log := logger.New("test", "test")
	db := database.NewFromDB(mockDB.DB, log)

	svc := service.NewAuditService(
		db,
		repository.NewCheckOrderRepository(db),
		repository.NewInspectionRepository(db),
		repository.NewCheckItemRepository(db),
		repository.NewPackageRepository(db),
		nil, // no broker in unit tests; the publisher is nil-safe
		log,
	)
	return svc, mockDB
}

func checkOrderColumns() []string {
	return []string{"id", "inventory_check_date", "status", "warehouse_manager", "created_by", "notes", "created_at", "updated_at"}
}

func inspectionColumns() []string {
	return []string{"id", "check_order_id", "location_id", "status", "check_by", "check_by_name", "notes", "created_at", "updated_at"}
}

func checkOrderRow(status string, checkDate time.Time) *sqlmock.Rows {
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	return testutil.MockRows(checkOrderColumns()...).
		AddRow(orderID, checkDate, status, managerID, managerID, nil, now, now)
}

func expectGetCheckOrder(mockDB *testutil.MockDB, status string, checkDate time.Time) {
	mockDB.ExpectQuery("FROM check_orders WHERE id = $1").
		WithArgs(orderID).
		WillReturnRows(checkOrderRow(status, checkDate))
}

func TestAuditService_StartCheckOrder_DateNotReached(t *testing.T) {
	svc, mockDB := newAuditService(t)
	defer mockDB.Close()

	expectGetCheckOrder(mockDB, "pending", time.Now().AddDate(0, 0, 3))

	_, err := svc.StartCheckOrder(context.Background(), orderID, managerID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidState))
	assert.Contains(t, err.Error(), "not been reached")
	mockDB.ExpectationsWereMet(t)
}

func TestAuditService_StartCheckOrder_NotPending(t *testing.T) {
	svc, mockDB := newAuditService(t)
	defer mockDB.Close()

	expectGetCheckOrder(mockDB, "completed", time.Now().AddDate(0, 0, -1))

	_, err := svc.StartCheckOrder(context.Background(), orderID, managerID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidState))
	mockDB.ExpectationsWereMet(t)
}

func TestAuditService_StartCheckOrder_AnotherAuditRunning(t *testing.T) {
	svc, mockDB := newAuditService(t)
	defer mockDB.Close()

	yesterday := time.Now().AddDate(0, 0, -1)
	expectGetCheckOrder(mockDB, "pending", yesterday)

	mockDB.ExpectBegin()
	mockDB.ExpectExec("UPDATE check_orders SET status = 'processing'").
		WithArgs(orderID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	// Reloaded inside the transaction to tell InvalidState from Conflict:
	// the order is still pending, so the block is another processing order.
	expectGetCheckOrder(mockDB, "pending", yesterday)
	mockDB.ExpectRollback()

	_, err := svc.StartCheckOrder(context.Background(), orderID, managerID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConflict))
	assert.Contains(t, err.Error(), "already in progress")
	mockDB.ExpectationsWereMet(t)
}

func TestAuditService_CompleteCheckOrder_NotProcessing(t *testing.T) {
	svc, mockDB := newAuditService(t)
	defer mockDB.Close()

	expectGetCheckOrder(mockDB, "pending", time.Now())

	_, err := svc.CompleteCheckOrder(context.Background(), orderID, managerID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidState))
	mockDB.ExpectationsWereMet(t)
}

func TestAuditService_CompleteCheckOrder_UnfinishedInspections(t *testing.T) {
	svc, mockDB := newAuditService(t)
	defer mockDB.Close()

	expectGetCheckOrder(mockDB, "processing", time.Now())
	mockDB.ExpectQuery("SELECT COUNT(*) FROM inspections").
		WithArgs(orderID).
		WillReturnRows(testutil.MockRows("count").AddRow(2))

	_, err := svc.CompleteCheckOrder(context.Background(), orderID, managerID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrValidation))
	assert.Contains(t, err.Error(), "2 locations have not been checked")
	mockDB.ExpectationsWereMet(t)
}

func TestAuditService_CompleteCheckOrder_UnreconciledSurplus(t *testing.T) {
	svc, mockDB := newAuditService(t)
	defer mockDB.Close()

	expectGetCheckOrder(mockDB, "processing", time.Now())
	mockDB.ExpectQuery("SELECT COUNT(*) FROM inspections").
		WithArgs(orderID).
		WillReturnRows(testutil.MockRows("count").AddRow(0))
	mockDB.ExpectQuery("JOIN inspections i ON i.id = c.inspection_id").
		WithArgs(orderID).
		WillReturnRows(testutil.MockRows("package_id", "item_type").
			AddRow("pkg-stray", "over_expected").
			AddRow("pkg-ok", "valid"))

	_, err := svc.CompleteCheckOrder(context.Background(), orderID, managerID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrValidation))
	assert.Contains(t, err.Error(), "pkg-stray")
	mockDB.ExpectationsWereMet(t)
}

func TestAuditService_CompleteCheckOrder_Reconciled(t *testing.T) {
	svc, mockDB := newAuditService(t)
	defer mockDB.Close()

	expectGetCheckOrder(mockDB, "processing", time.Now())
	mockDB.ExpectQuery("SELECT COUNT(*) FROM inspections").
		WithArgs(orderID).
		WillReturnRows(testutil.MockRows("count").AddRow(0))
	// A package moved between locations: surplus here, shortage there.
	mockDB.ExpectQuery("JOIN inspections i ON i.id = c.inspection_id").
		WithArgs(orderID).
		WillReturnRows(testutil.MockRows("package_id", "item_type").
			AddRow("pkg-moved", "over_expected").
			AddRow("pkg-moved", "under_expected"))
	mockDB.ExpectExec("UPDATE check_orders SET status = $3").
		WithArgs(orderID, "processing", "completed").
		WillReturnResult(sqlmock.NewResult(0, 1))

	// Reload for the response payload.
	expectGetCheckOrder(mockDB, "completed", time.Now())
	mockDB.ExpectQuery("FROM inspections WHERE check_order_id = $1").
		WithArgs(orderID).
		WillReturnRows(testutil.MockRows("total", "draft", "checking", "checked").AddRow(1, 0, 0, 1))
	mockDB.ExpectQuery("LEFT JOIN user_cache u ON u.user_id = i.check_by").
		WithArgs(orderID).
		WillReturnRows(testutil.MockRows(inspectionColumns()...))

	detail, err := svc.CompleteCheckOrder(context.Background(), orderID, managerID)
	require.NoError(t, err)
	assert.Equal(t, "completed", string(detail.Status))
	assert.Equal(t, 0, detail.Progress.Remaining())
	mockDB.ExpectationsWereMet(t)
}

func TestAuditService_CancelCheckOrder(t *testing.T) {
	t.Run("cancels a processing order", func(t *testing.T) {
		svc, mockDB := newAuditService(t)
		defer mockDB.Close()

		expectGetCheckOrder(mockDB, "processing", time.Now())
		mockDB.ExpectExec("UPDATE check_orders SET status = $3").
			WithArgs(orderID, "processing", "cancelled").
			WillReturnResult(sqlmock.NewResult(0, 1))

		// Reload for the response payload.
		expectGetCheckOrder(mockDB, "cancelled", time.Now())
		mockDB.ExpectQuery("FROM inspections WHERE check_order_id = $1").
			WithArgs(orderID).
			WillReturnRows(testutil.MockRows("total", "draft", "checking", "checked").AddRow(2, 1, 0, 1))
		mockDB.ExpectQuery("LEFT JOIN user_cache u ON u.user_id = i.check_by").
			WithArgs(orderID).
			WillReturnRows(testutil.MockRows(inspectionColumns()...))

		detail, err := svc.CancelCheckOrder(context.Background(), orderID, managerID)
		require.NoError(t, err)
		assert.Equal(t, "cancelled", string(detail.Status))
		mockDB.ExpectationsWereMet(t)
	})

	t.Run("rejects a pending order", func(t *testing.T) {
		svc, mockDB := newAuditService(t)
		defer mockDB.Close()

		expectGetCheckOrder(mockDB, "pending", time.Now())

		_, err := svc.CancelCheckOrder(context.Background(), orderID, managerID)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrInvalidState))
		mockDB.ExpectationsWereMet(t)
	})

	t.Run("rejects a completed order", func(t *testing.T) {
		svc, mockDB := newAuditService(t)
		defer mockDB.Close()

		expectGetCheckOrder(mockDB, "completed", time.Now())

		_, err := svc.CancelCheckOrder(context.Background(), orderID, managerID)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrInvalidState))
		mockDB.ExpectationsWereMet(t)
	})
}

func TestAuditService_ClearInspections(t *testing.T) {
	svc, mockDB := newAuditService(t)
	defer mockDB.Close()

	expectGetCheckOrder(mockDB, "processing", time.Now())

	mockDB.ExpectBegin()
	mockDB.ExpectExec("DELETE FROM check_items").
		WithArgs(orderID).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mockDB.ExpectExec("UPDATE check_items SET actual_quantity = expected_quantity").
		WithArgs(orderID).
		WillReturnResult(sqlmock.NewResult(0, 8))
	mockDB.ExpectExec("UPDATE inspections SET status = 'draft', check_by = NULL").
		WithArgs(orderID).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mockDB.ExpectCommit()

	require.NoError(t, svc.ClearInspections(context.Background(), orderID, managerID))
	mockDB.ExpectationsWereMet(t)
}

func TestAuditService_ClearInspections_NotProcessing(t *testing.T) {
	svc, mockDB := newAuditService(t)
	defer mockDB.Close()

	expectGetCheckOrder(mockDB, "cancelled", time.Now())

	err := svc.ClearInspections(context.Background(), orderID, managerID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidState))
	mockDB.ExpectationsWereMet(t)
}

func TestAuditService_ClaimInspection_HeldBySomeoneElse(t *testing.T) {
	svc, mockDB := newAuditService(t)
	defer mockDB.Close()

	mockDB.ExpectExec("UPDATE inspections SET status = 'checking', check_by = $2").
		WithArgs(inspectionID, inspectorID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	otherUser := "5f0c1a9e-0d9b-4f9e-8a6a-777777777777"
	mockDB.ExpectQuery("LEFT JOIN user_cache u ON u.user_id = i.check_by").
		WithArgs(inspectionID).
		WillReturnRows(testutil.MockRows(inspectionColumns()...).
			AddRow(inspectionID, orderID, "loc-1", "checking", &otherUser, "Someone Else", nil, now, now))

	_, err := svc.ClaimInspection(context.Background(), inspectionID, inspectorID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConflict))
	assert.Contains(t, err.Error(), "someone else")
	mockDB.ExpectationsWereMet(t)
}

func TestAuditService_RecordCheckItem_UnclaimedInspection(t *testing.T) {
	svc, mockDB := newAuditService(t)
	defer mockDB.Close()

	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	mockDB.ExpectQuery("LEFT JOIN user_cache u ON u.user_id = i.check_by").
		WithArgs(inspectionID).
		WillReturnRows(testutil.MockRows(inspectionColumns()...).
			AddRow(inspectionID, orderID, "loc-1", "draft", nil, nil, nil, now, now))

	_, err := svc.RecordCheckItem(context.Background(), inspectionID, inspectorID, service.RecordCheckItemInput{
		PackageID:      "pkg-1",
		LocationID:     "loc-1",
		ActualQuantity: 5,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidState))
	assert.Contains(t, err.Error(), "not been claimed")
	mockDB.ExpectationsWereMet(t)
}

func TestAuditService_RecordCheckItem_WrongLocation(t *testing.T) {
	svc, mockDB := newAuditService(t)
	defer mockDB.Close()

	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	holder := inspectorID
	mockDB.ExpectQuery("LEFT JOIN user_cache u ON u.user_id = i.check_by").
		WithArgs(inspectionID).
		WillReturnRows(testutil.MockRows(inspectionColumns()...).
			AddRow(inspectionID, orderID, "loc-1", "checking", &holder, nil, nil, now, now))

	_, err := svc.RecordCheckItem(context.Background(), inspectionID, inspectorID, service.RecordCheckItemInput{
		PackageID:      "pkg-1",
		LocationID:     "loc-other",
		ActualQuantity: 5,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrValidation))
	assert.Contains(t, err.Error(), "location does not match")
	mockDB.ExpectationsWereMet(t)
}
