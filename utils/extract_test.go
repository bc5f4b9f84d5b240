package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractAmountCurrencyPrefixed(t *testing.T) {
	assert.Equal(t, "1250.00", ExtractAmount("Total: Rs. 1,250.00"))
	assert.Equal(t, "450", ExtractAmount("Fare ₹450 paid via UPI"))
	assert.Equal(t, "99.50", ExtractAmount("$99.50 charged to card"))
}

func TestExtractAmountKeywordPrefixed(t *testing.T) {
	assert.Equal(t, "780.00", ExtractAmount("Grand Total 780.00"))
	assert.Equal(t, "525", ExtractAmount("amount: 525"))
}

func TestExtractAmountBareDigitFallback(t *testing.T) {
	assert.Equal(t, "4520", ExtractAmount("ride charge 4520 thank you"))
}

func TestExtractAmountPlausibilityRange(t *testing.T) {
	// Below range
	assert.Equal(t, "", ExtractAmount("Rs. 5"))
	// Above range, even when keyword-prefixed
	assert.Equal(t, "", ExtractAmount("Total: 250000"))
	// First in-range candidate wins over an earlier out-of-range one
	assert.Equal(t, "2000.00", ExtractAmount("Rs. 5.00 convenience fee, Rs. 2,000.00 fare"))
}

func TestExtractDate(t *testing.T) {
	assert.Equal(t, "2025-09-11", ExtractDate("Invoice Date 11/09/2025"))
	assert.Equal(t, "2024-03-15", ExtractDate("15 Mar 2024"))
	assert.Equal(t, "2024-03-15", ExtractDate("March 15, 2024"))
	assert.Equal(t, "2024-03-12", ExtractDate("travel on 12/03/2024"))
	assert.Equal(t, "2024-03-05", ExtractDate("05/03/24"))
	assert.Equal(t, "2023-07-01", ExtractDate("Date: 01/07/2023"))
}

func TestExtractDateRejectsInvalidCalendarDates(t *testing.T) {
	assert.Equal(t, "", ExtractDate("32/01/2024"))
	assert.Equal(t, "", ExtractDate("15/13/2024"))
	// Invalid date first, valid one later in the text
	assert.Equal(t, "2024-02-10", ExtractDate("31/02/2024 corrected to 10/02/2024"))
}

func TestExtractVendorKnownBrands(t *testing.T) {
	assert.Equal(t, "Uber", ExtractVendor("UBER trip receipt"))
	assert.Equal(t, "Swiggy", ExtractVendor("Order delivered by swiggy"))
	assert.Equal(t, "IndiGo", ExtractVendor("IndiGo flight 6E-204"))
}

func TestExtractVendorGenericHeuristics(t *testing.T) {
	assert.Equal(t, "Acme Traders", ExtractVendor("Paid to Acme Traders"))
	assert.Equal(t, "Cafe Nirvana", ExtractVendor("dinner at Cafe Nirvana yesterday"))
	assert.Equal(t, "", ExtractVendor("nothing identifiable 123"))
}

func TestExtractVendorSkipsBoilerplate(t *testing.T) {
	// "Invoice Date" looks like a capitalized name but must not win
	assert.Equal(t, "", ExtractVendor("Invoice Date 11/09/2025"))
}

func TestBuildTitle(t *testing.T) {
	assert.Equal(t, "Travel - Uber", BuildTitle("travel", "Uber", "450"))
	assert.Equal(t, "Meals Expense - 780.00", BuildTitle("meals", "", "780.00"))
	assert.Equal(t, "Other Expense", BuildTitle("other", "", ""))
	assert.Equal(t, "Office supplies - Amazon", BuildTitle("office_supplies", "Amazon", ""))
}

func TestExtractFieldsScenario(t *testing.T) {
	text := "Invoice Date 11/09/2025\nTrip from Terminal 2\nTotal: Rs. 1,250.00\nUber"

	fields := ExtractFields(text)

	assert.Equal(t, "1250.00", fields.Amount)
	assert.Equal(t, "2025-09-11", fields.Date)
	assert.Equal(t, "Uber", fields.Vendor)
	assert.Equal(t, "Travel - Uber", fields.Title)
}
