package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finqube/claimflow/dto"
)

const twoInvoiceText = `Invoice #1001
Uber ride from airport to the office premises
Total: Rs. 450.00
Date: 12/03/2024

Invoice #2001
Dinner at Cafe Nirvana restaurant with the client team
Total: Rs. 1,200.00
Date: 13/03/2024
`

func TestSplitReceiptsMultiReceipt(t *testing.T) {
	claims := SplitReceipts(twoInvoiceText)

	require.Len(t, claims, 2)
	assert.Equal(t, "450.00", claims[0].Amount)
	assert.Equal(t, "Uber", claims[0].Vendor)
	assert.Equal(t, "travel", claims[0].Category)
	assert.Equal(t, "1200.00", claims[1].Amount)
	assert.Equal(t, "meals", claims[1].Category)
	for _, c := range claims {
		assert.NotEmpty(t, c.Amount, "multi-receipt records must carry an amount")
		assert.NotEmpty(t, c.ID)
		assert.True(t, c.Selected)
	}
}

func TestSplitReceiptsSingleReceipt(t *testing.T) {
	text := "Cab fare Rs. 350 paid on 05/06/2024 to the airport"

	claims := SplitReceipts(text)

	require.Len(t, claims, 1)
	assert.Equal(t, "350", claims[0].Amount)
	assert.Equal(t, "2024-06-05", claims[0].Date)
	assert.Equal(t, "travel", claims[0].Category)
}

func TestSplitReceiptsNothingFound(t *testing.T) {
	assert.Empty(t, SplitReceipts("illegible scan output qq zz"))
}

func TestSplitReceiptsDiscardsShortBlocks(t *testing.T) {
	text := `Invoice #1001
Rs. 900
Invoice #2001
Conference lunch order at the Marriott banquet hall for the visiting delegation
Total: Rs. 4,500.00
Date: 20/05/2024
`
	claims := SplitReceipts(text)

	// The first block is under the minimum length and is dropped.
	require.Len(t, claims, 1)
	assert.Equal(t, "4500.00", claims[0].Amount)
}

func TestSplitReceiptsFieldSources(t *testing.T) {
	claims := SplitReceipts(twoInvoiceText)
	require.Len(t, claims, 2)

	sources := claims[0].FieldSources
	assert.Equal(t, dto.SourceAuto, sources[dto.FieldAmount])
	assert.Equal(t, dto.SourceAuto, sources[dto.FieldDate])
	assert.Equal(t, dto.SourceAuto, sources[dto.FieldVendor])
	assert.Equal(t, dto.SourceManual, sources[dto.FieldDescription])
	assert.Equal(t, dto.SourceManual, sources[dto.FieldProjectCode])
}

func TestSeparatorCount(t *testing.T) {
	assert.Equal(t, 0, countSeparators("plain receipt text"))
	assert.Equal(t, 2, countSeparators("Invoice #1001 ... Invoice #2001"))
	assert.Equal(t, 2, countSeparators("Order ID: 88121\n----------\nitems"))
}
