package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/finqube/claimflow/dto"
)

var testOptions = []dto.CategoryOption{
	{Code: "travel", APICode: "TRV", Label: "Travel"},
	{Code: "meals", APICode: "MLS", Label: "Meals & Entertainment"},
	{Code: "certification", Label: "Certification"},
	{Code: "office_supplies", Label: "Office Supplies"},
	{Code: "other", Label: "Other"},
}

func TestNormalizeCategoryExactMatches(t *testing.T) {
	assert.Equal(t, "travel", NormalizeCategory("travel", testOptions))
	assert.Equal(t, "travel", NormalizeCategory("TRV", testOptions))
	assert.Equal(t, "meals", NormalizeCategory("Meals & Entertainment", testOptions))
	assert.Equal(t, "office_supplies", NormalizeCategory("Office-Supplies", testOptions))
	assert.Equal(t, "office_supplies", NormalizeCategory("🖇️ Office Supplies", testOptions))
}

func TestNormalizeCategoryKeywordFallback(t *testing.T) {
	assert.Equal(t, "certification", NormalizeCategory("exam fees", testOptions))
	assert.Equal(t, "travel", NormalizeCategory("airport transport", testOptions))
	assert.Equal(t, "meals", NormalizeCategory("team lunch", testOptions))
}

func TestNormalizeCategoryUnmatched(t *testing.T) {
	assert.Equal(t, "other", NormalizeCategory("completely unknown", testOptions))
	assert.Equal(t, "other", NormalizeCategory("", testOptions))
}

func TestNormalizeCategoryKeywordRequiresLoadedOption(t *testing.T) {
	// "petrol" maps to fuel, but fuel is not in the loaded option list.
	assert.Equal(t, "other", NormalizeCategory("petrol bill", testOptions))
}
