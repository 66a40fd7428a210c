package domain_test

import (
	"testing"

	"github.com/pharmadist/pharmadist-backend/internal/warehouse/domain"
	"github.com/pharmadist/pharmadist-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaim_DraftSucceeds(t *testing.T) {
	next, err := domain.Claim(domain.ClaimState{Status: domain.InspectionDraft}, "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.InspectionChecking, next.Status)
	assert.Equal(t, "user-1", next.CheckBy)
}

func TestClaim_ReEntryBySameUserSucceeds(t *testing.T) {
	current := domain.ClaimState{Status: domain.InspectionChecking, CheckBy: "user-1"}

	next, err := domain.Claim(current, "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.InspectionChecking, next.Status)
	assert.Equal(t, "user-1", next.CheckBy)
}

func TestClaim_OtherUserGetsConflict(t *testing.T) {
	current := domain.ClaimState{Status: domain.InspectionChecking, CheckBy: "user-1"}

	_, err := domain.Claim(current, "user-2")
	require.Error(t, err)

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "CONFLICT", appErr.Code)
}

func TestClaim_CheckedIsInvalidState(t *testing.T) {
	current := domain.ClaimState{Status: domain.InspectionChecked, CheckBy: "user-1"}

	_, err := domain.Claim(current, "user-1")
	require.Error(t, err)

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "INVALID_STATE", appErr.Code)
}

func TestVerifyLocation(t *testing.T) {
	insp := &domain.Inspection{ID: "insp-1", LocationID: "loc-1"}

	require.NoError(t, insp.VerifyLocation("loc-1"))

	err := insp.VerifyLocation("loc-2")
	require.Error(t, err)

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestCanMutate(t *testing.T) {
	owner := "user-1"

	cases := []struct {
		name     string
		insp     domain.Inspection
		userID   string
		wantCode string
	}{
		{
			name:   "checking by owner is allowed",
			insp:   domain.Inspection{Status: domain.InspectionChecking, CheckBy: &owner},
			userID: "user-1",
		},
		{
			name:     "draft is rejected",
			insp:     domain.Inspection{Status: domain.InspectionDraft},
			userID:   "user-1",
			wantCode: "INVALID_STATE",
		},
		{
			name:     "checked is rejected",
			insp:     domain.Inspection{Status: domain.InspectionChecked, CheckBy: &owner},
			userID:   "user-1",
			wantCode: "INVALID_STATE",
		},
		{
			name:     "other user is rejected",
			insp:     domain.Inspection{Status: domain.InspectionChecking, CheckBy: &owner},
			userID:   "user-2",
			wantCode: "CONFLICT",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.insp.CanMutate(tc.userID)
			if tc.wantCode == "" {
				require.NoError(t, err)
				return
			}

			var appErr *errors.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tc.wantCode, appErr.Code)
		})
	}
}
