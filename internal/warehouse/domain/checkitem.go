package domain

import "time"

// ItemType classifies a check item's expected-vs-actual outcome.
type ItemType string

const (
	// ItemValid means the counted quantity matches the expectation.
	ItemValid ItemType = "valid"
	// ItemUnderExpected means the package was found missing or short.
	ItemUnderExpected ItemType = "under_expected"
	// ItemOverExpected means more units were found than the system expected,
	// including packages found at a location that never expected them.
	ItemOverExpected ItemType = "over_expected"
)

// Valid reports whether the type is one of the known classifications.
func (t ItemType) Valid() bool {
	switch t {
	case ItemValid, ItemUnderExpected, ItemOverExpected:
		return true
	}
	return false
}

// CheckItem is the per-package expected-vs-actual record within an inspection.
type CheckItem struct {
	ID               string    `json:"id" db:"id"`
	InspectionID     string    `json:"inspection_id" db:"inspection_id"`
	PackageID        string    `json:"package_id" db:"package_id"`
	ExpectedQuantity int       `json:"expected_quantity" db:"expected_quantity"`
	ActualQuantity   int       `json:"actual_quantity" db:"actual_quantity"`
	Type             ItemType  `json:"type" db:"item_type"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// Classify derives the item type for a package that was expected at the
// inspected location. Finding more than expected of an already-expected
// package is treated as over_expected on the same item, so the excess feeds
// the same reconciliation rule as a package found at a foreign location.
func Classify(expected, actual int) ItemType {
	switch {
	case actual == expected:
		return ItemValid
	case actual < expected:
		return ItemUnderExpected
	default:
		return ItemOverExpected
	}
}
