package domain

import "sort"

// ItemSnapshot is the slice of a check item the reconciliation rule needs.
type ItemSnapshot struct {
	PackageID string
	Type      ItemType
}

// Reconcile applies the discrepancy-consistency rule over the full set of an
// order's check items: every package with at least one over_expected item
// must have at least one under_expected item recorded somewhere in the same
// order, otherwise the audit numbers do not balance.
//
// It returns the package IDs that fail the rule, sorted for stable output.
// An empty result means the order may complete.
func Reconcile(items []ItemSnapshot) []string {
	overExpected := make(map[string]bool)
	underExpected := make(map[string]bool)

	for _, item := range items {
		switch item.Type {
		case ItemOverExpected:
			overExpected[item.PackageID] = true
		case ItemUnderExpected:
			underExpected[item.PackageID] = true
		}
	}

	var unbalanced []string
	for packageID := range overExpected {
		if !underExpected[packageID] {
			unbalanced = append(unbalanced, packageID)
		}
	}

	sort.Strings(unbalanced)
	return unbalanced
}
