package main

import (
	"testing"

	"github.com/Veraticus/sakhi/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestReceiptSummary(t *testing.T) {
	ext := model.Extraction{
		Merchant:     "Sharma Kirana",
		ReceiptTotal: decimal.RequireFromString("120.5"),
		Items:        []model.ExtractedItem{{Name: "Sugar"}, {Name: "Tea"}},
	}

	out := receiptSummary(ext)
	assert.Contains(t, out, "Sharma Kirana")
	assert.Contains(t, out, "₹120.50")
	assert.Contains(t, out, "2 items")
}
