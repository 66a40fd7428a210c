package domain

import (
	"time"

	"github.com/pharmadist/pharmadist-backend/pkg/errors"
)

// InspectionStatus is the lifecycle state of a per-location inspection.
type InspectionStatus string

const (
	InspectionDraft    InspectionStatus = "draft"
	InspectionChecking InspectionStatus = "checking"
	InspectionChecked  InspectionStatus = "checked"
)

// Inspection is the per-location worksheet of a check order.
type Inspection struct {
	ID           string           `json:"id" db:"id"`
	CheckOrderID string           `json:"check_order_id" db:"check_order_id"`
	LocationID   string           `json:"location_id" db:"location_id"`
	Status       InspectionStatus `json:"status" db:"status"`
	CheckBy      *string          `json:"check_by,omitempty" db:"check_by"`
	CheckByName  *string          `json:"check_by_name,omitempty" db:"check_by_name"`
	Notes        *string          `json:"notes,omitempty" db:"notes"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at" db:"updated_at"`

	Items []*CheckItem `json:"check_items,omitempty" db:"-"`
}

// ClaimState is the (status, inspector) pair the claim transition operates on.
type ClaimState struct {
	Status  InspectionStatus
	CheckBy string
}

// Claim computes the draft->checking transition for a claiming user.
//
// A draft inspection may be claimed by anyone. A checking inspection may only
// be re-entered by the inspector who holds it; any other user gets Conflict.
// A checked inspection is immutable until the owning order clears or cancels.
//
// This is a pure function so the exclusivity rule is testable without
// persistence; the repository applies the result with a compare-and-set.
func Claim(current ClaimState, userID string) (ClaimState, error) {
	switch current.Status {
	case InspectionDraft:
		return ClaimState{Status: InspectionChecking, CheckBy: userID}, nil

	case InspectionChecking:
		if current.CheckBy == userID {
			return ClaimState{Status: InspectionChecking, CheckBy: userID}, nil
		}
		return ClaimState{}, errors.Conflict("inspection is currently being checked by someone else")

	case InspectionChecked:
		return ClaimState{}, errors.InvalidState("inspection has already been checked")

	default:
		return ClaimState{}, errors.InvalidState("unknown inspection status")
	}
}

// VerifyLocation is the anti-error gate applied before check item mutations:
// the caller must present the inspection's own location ID. Scanning the
// wrong shelf is caught here; this is not a security boundary.
func (i *Inspection) VerifyLocation(locationID string) error {
	if locationID != i.LocationID {
		return errors.ValidationMessage("location does not match this inspection")
	}
	return nil
}

// CanMutate checks that the inspection accepts check item changes from the
// given user: it must be in checking state and held by that user.
func (i *Inspection) CanMutate(userID string) error {
	switch i.Status {
	case InspectionDraft:
		return errors.InvalidState("inspection has not been claimed")
	case InspectionChecked:
		return errors.InvalidState("inspection has already been checked")
	}
	if i.CheckBy == nil || *i.CheckBy != userID {
		return errors.Conflict("inspection is currently being checked by someone else")
	}
	return nil
}

// CanFinish checks that the inspection may transition checking->checked.
func (i *Inspection) CanFinish(userID string) error {
	return i.CanMutate(userID)
}
