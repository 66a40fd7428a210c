package domain_test

import (
	"testing"
	"time"

	"github.com/pharmadist/pharmadist-backend/internal/warehouse/domain"
	"github.com/pharmadist/pharmadist-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanStart_PendingWithReachedDate(t *testing.T) {
	now := time.Date(2026, 8, 30, 14, 0, 0, 0, time.UTC)

	order := &domain.CheckOrder{
		Status:             domain.CheckOrderPending,
		InventoryCheckDate: time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, order.CanStart(now))

	order.InventoryCheckDate = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, order.CanStart(now))
}

func TestCanStart_FutureDateRejected(t *testing.T) {
	now := time.Date(2026, 8, 30, 14, 0, 0, 0, time.UTC)

	order := &domain.CheckOrder{
		Status:             domain.CheckOrderPending,
		InventoryCheckDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
	}

	err := order.CanStart(now)
	require.Error(t, err)

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "INVALID_STATE", appErr.Code)
}

func TestCanStart_NonPendingRejected(t *testing.T) {
	now := time.Now()

	for _, status := range []domain.CheckOrderStatus{
		domain.CheckOrderProcessing,
		domain.CheckOrderCompleted,
		domain.CheckOrderCancelled,
	} {
		order := &domain.CheckOrder{Status: status, InventoryCheckDate: now}
		err := order.CanStart(now)
		require.Error(t, err, "status %s", status)

		var appErr *errors.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, "INVALID_STATE", appErr.Code)
	}
}

func TestCheckOrderStatus_Terminal(t *testing.T) {
	assert.False(t, domain.CheckOrderPending.Terminal())
	assert.False(t, domain.CheckOrderProcessing.Terminal())
	assert.True(t, domain.CheckOrderCompleted.Terminal())
	assert.True(t, domain.CheckOrderCancelled.Terminal())
}

func TestCheckOrderProgress_Remaining(t *testing.T) {
	p := domain.CheckOrderProgress{Total: 5, Draft: 2, Checking: 1, Checked: 2}
	assert.Equal(t, 3, p.Remaining())
}
