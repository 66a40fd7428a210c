package domain_test

import (
	"testing"

	"github.com/pharmadist/pharmadist-backend/internal/warehouse/domain"
	"github.com/stretchr/testify/assert"
)

func TestClassify_MatchIsValid(t *testing.T) {
	assert.Equal(t, domain.ItemValid, domain.Classify(10, 10))
	assert.Equal(t, domain.ItemValid, domain.Classify(0, 0))
}

func TestClassify_ShortIsUnderExpected(t *testing.T) {
	assert.Equal(t, domain.ItemUnderExpected, domain.Classify(10, 7))

	// Explicit "mark missing" forces actual to zero
	assert.Equal(t, domain.ItemUnderExpected, domain.Classify(10, 0))
}

func TestClassify_ExcessIsOverExpected(t *testing.T) {
	// Finding more than expected of an expected package is treated as
	// over_expected on the same item, so the excess participates in the
	// order-level reconciliation rule like any other surplus.
	assert.Equal(t, domain.ItemOverExpected, domain.Classify(10, 12))
	assert.Equal(t, domain.ItemOverExpected, domain.Classify(0, 3))
}

func TestItemType_Valid(t *testing.T) {
	assert.True(t, domain.ItemValid.Valid())
	assert.True(t, domain.ItemUnderExpected.Valid())
	assert.True(t, domain.ItemOverExpected.Valid())
	assert.False(t, domain.ItemType("surplus").Valid())
	assert.False(t, domain.ItemType("").Valid())
}
