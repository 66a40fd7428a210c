package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmadist/pharmadist-backend/internal/warehouse/repository"
	"github.com/pharmadist/pharmadist-backend/pkg/errors"
	"github.com/pharmadist/pharmadist-backend/pkg/testutil"
)

func TestBatchRepository_List(t *testing.T) {
	ctx := context.Background()

	t.Run("returns page and total", func(t *testing.T) {
		db, mockDB := newTestDB(t)
		defer mockDB.Close()

		mockDB.ExpectQuery("SELECT COUNT(*) FROM batches").
			WillReturnRows(testutil.MockRows("count").AddRow(int64(42)))

		rows := testutil.MockRows("id", "batch_number", "medicine_name", "expiry_date", "created_at", "updated_at").
			AddRow("batch-1", "BN-2025-001", "Amoxicillin 500mg", nil, testTime(), testTime()).
			AddRow("batch-2", "BN-2025-002", "Ibuprofen 400mg", nil, testTime(), testTime())
		mockDB.ExpectQuery("FROM batches").
			WithArgs(10, 10).
			WillReturnRows(rows)

		repo := repository.NewBatchRepository(db)
		batches, total, err := repo.List(ctx, 2, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(42), total)
		require.Len(t, batches, 2)
		assert.Equal(t, "BN-2025-001", batches[0].BatchNumber)
		mockDB.ExpectationsWereMet(t)
	})

	t.Run("normalizes out-of-range pagination", func(t *testing.T) {
		db, mockDB := newTestDB(t)
		defer mockDB.Close()

		mockDB.ExpectQuery("SELECT COUNT(*) FROM batches").
			WillReturnRows(testutil.MockRows("count").AddRow(int64(0)))

		mockDB.ExpectQuery("FROM batches").
			WithArgs(20, 0).
			WillReturnRows(testutil.MockRows("id", "batch_number", "medicine_name", "expiry_date", "created_at", "updated_at"))

		repo := repository.NewBatchRepository(db)
		_, _, err := repo.List(ctx, 0, 500)
		require.NoError(t, err)
		mockDB.ExpectationsWereMet(t)
	})
}

func TestBatchRepository_GetByID_NotFound(t *testing.T) {
	db, mockDB := newTestDB(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("FROM batches WHERE id = $1").
		WithArgs("batch-missing").
		WillReturnRows(testutil.MockRows("id"))

	repo := repository.NewBatchRepository(db)
	_, err := repo.GetByID(context.Background(), "batch-missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	mockDB.ExpectationsWereMet(t)
}
