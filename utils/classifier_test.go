package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectCategory(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"ride hailing", "Uber trip from airport, fare Rs. 450", "travel"},
		{"food delivery", "Zomato order: 2x biryani, dinner", "meals"},
		{"hotel", "OYO Rooms booking confirmation, check-in 12/03", "accommodation"},
		{"exam fee", "AWS certification exam fee payment", "certification"},
		{"fuel", "Indian Oil petrol pump, 12.4L diesel", "fuel"},
		{"telecom", "Airtel mobile recharge for data pack", "communication"},
		{"pharmacy", "Apollo Pharmacy medicine purchase", "medical"},
		{"stationery", "printer cartridge and paper reams", "office_supplies"},
		{"label verbatim", "monthly Office Supplies restock", "office_supplies"},
		{"no match", "miscellaneous payment reference 9921", "other"},
		{"empty", "   ", "other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectCategory(tt.text))
		})
	}
}

func TestDetectCategoryIsIdempotent(t *testing.T) {
	text := "Swiggy order delivered, total Rs. 620"
	first := DetectCategory(text)
	second := DetectCategory(text)
	assert.Equal(t, first, second)
	assert.Equal(t, "meals", first)
}

func TestDetectCategoryOrderBreaksTies(t *testing.T) {
	// Mentions both a certification and travel; the more specific
	// certification rule sits higher in the table and wins.
	text := "certification exam, traveled by taxi to the test center"
	assert.Equal(t, "certification", DetectCategory(text))
}

func TestCategoryTitle(t *testing.T) {
	assert.Equal(t, "Travel", CategoryTitle("travel"))
	assert.Equal(t, "Office supplies", CategoryTitle("office_supplies"))
	assert.Equal(t, "Other", CategoryTitle("other"))
	assert.Equal(t, "", CategoryTitle(""))
}
