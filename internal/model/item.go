package model

import "github.com/shopspring/decimal"

// DefaultUnit is the unit label the backend assumes when none is given.
const DefaultUnit = "pieces"

// ExtractedItem is one candidate line item produced by OCR or NLP extraction.
// It is read-only once received; the table works on copies.
type ExtractedItem struct {
	Name              string
	Unit              string
	Description       string
	SuggestedCategory Ledger
	Quantity          decimal.Decimal
	UnitPrice         decimal.Decimal
	TotalPrice        decimal.Decimal
}

// Extraction is the backend's reply to a chat or receipt-image request.
type Extraction struct {
	Message            string
	Intent             string
	Merchant           string
	Items              []ExtractedItem
	ReceiptTotal       decimal.Decimal
	Confidence         float64
	NeedsClarification bool
}

// HasItems reports whether the extraction produced anything to clarify.
func (e Extraction) HasItems() bool {
	return e.NeedsClarification && len(e.Items) > 0
}
