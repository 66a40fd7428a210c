package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmadist/pharmadist-backend/internal/warehouse/repository"
	"github.com/pharmadist/pharmadist-backend/internal/warehouse/service"
	"github.com/pharmadist/pharmadist-backend/pkg/database"
	"github.com/pharmadist/pharmadist-backend/pkg/errors"
	"github.com/pharmadist/pharmadist-backend/pkg/logger"
	"github.com/pharmadist/pharmadist-backend/pkg/testutil"
)

const packageID = "5f0c1a9e-0d9b-4f9e-8a6a-444444444444"

func newLabelService(t *testing.T) (*service.LabelService, *testutil.MockDB) {
	mockDB := testutil.NewMockDB(t)
	db := database.NewFromDB(mockDB.DB, logger.New("test", "test"))
	return service.NewLabelService(repository.NewPackageRepository(db)), mockDB
}

func expectGetPackage(mockDB *testutil.MockDB) {
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	mockDB.ExpectQuery("FROM packages WHERE id = $1").
		WithArgs(packageID).
		WillReturnRows(testutil.MockRows("id", "batch_id", "quantity", "location_id", "created_at", "updated_at").
			AddRow(packageID, "batch-1", 30, nil, now, now))
}

func TestLabelService_PackageLabel(t *testing.T) {
	svc, mockDB := newLabelService(t)
	defer mockDB.Close()

	expectGetPackage(mockDB)

	png, err := svc.PackageLabel(context.Background(), packageID, 256)
	require.NoError(t, err)
	require.NotEmpty(t, png)

	// PNG magic bytes
	assert.Equal(t, []byte{0x89, 0x50, 0x4E, 0x47}, png[:4])
	mockDB.ExpectationsWereMet(t)
}

func TestLabelService_PackageLabel_SizeClamped(t *testing.T) {
	svc, mockDB := newLabelService(t)
	defer mockDB.Close()

	expectGetPackage(mockDB)

	png, err := svc.PackageLabel(context.Background(), packageID, 7)
	require.NoError(t, err)
	assert.NotEmpty(t, png)
	mockDB.ExpectationsWereMet(t)
}

func TestLabelService_PackageLabel_UnknownPackage(t *testing.T) {
	svc, mockDB := newLabelService(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("FROM packages WHERE id = $1").
		WithArgs(packageID).
		WillReturnRows(testutil.MockRows("id"))

	_, err := svc.PackageLabel(context.Background(), packageID, 256)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	mockDB.ExpectationsWereMet(t)
}
