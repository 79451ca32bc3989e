package backend

import (
	"encoding/json"
	"time"

	"github.com/Veraticus/sakhi/internal/model"
	"github.com/shopspring/decimal"
)

// Chat modes understood by the text endpoint.
const (
	ChatModeGeneral  = "general"
	ChatModeBusiness = "business"
)

// ExpenseCategory is the category every clarified expense is filed under.
const ExpenseCategory = "general"

// ConfirmItem is one row of a confirm-items request.
type ConfirmItem struct {
	Name        string  `json:"name"`
	Unit        string  `json:"unit"`
	Category    string  `json:"category"`
	Quantity    float64 `json:"quantity"`
	Amount      float64 `json:"amount"`
	CostPerUnit float64 `json:"cost_per_unit"`
}

type confirmRequest struct {
	Items []ConfirmItem `json:"items"`
}

// ConfirmResponse is the confirm-items reply.
type ConfirmResponse struct {
	Success         *bool             `json:"success,omitempty"`
	Message         string            `json:"message"`
	BusinessResults []json.RawMessage `json:"business_results"`
	ProcessedCount  int               `json:"processed_count"`
}

// ExpenseRequest creates one expense entry.
type ExpenseRequest struct {
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Language    string  `json:"language,omitempty"`
	Amount      float64 `json:"amount"`
}

// InventoryRequest creates one inventory item.
type InventoryRequest struct {
	ProductName string  `json:"product_name"`
	Unit        string  `json:"unit"`
	Quantity    float64 `json:"quantity"`
	CostPerUnit float64 `json:"cost_per_unit"`
}

// LedgerResponse is the reply of the expense and inventory endpoints.
type LedgerResponse struct {
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
	Raw     json.RawMessage `json:"-"`
	Success bool            `json:"success"`
}

// HistoryMessage is one line of the backend chat history.
type HistoryMessage struct {
	Timestamp time.Time `json:"timestamp"`
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Sender    string    `json:"sender"`
	IsUser    bool      `json:"isUser"`
}

type historyResponse struct {
	Messages []HistoryMessage `json:"messages"`
	Success  bool             `json:"success"`
}

// clarificationItem is the wire shape of an item awaiting clarification.
type clarificationItem struct {
	Name              string          `json:"name"`
	Unit              string          `json:"unit"`
	SuggestedCategory string          `json:"suggested_category"`
	Description       string          `json:"description"`
	Quantity          decimal.Decimal `json:"quantity"`
	Amount            decimal.Decimal `json:"amount"`
	CostPerUnit       decimal.Decimal `json:"cost_per_unit"`
}

type extractionResponse struct {
	ReceiptData *struct {
		Merchant struct {
			Name string `json:"name"`
		} `json:"merchant"`
		TotalAmount decimal.Decimal `json:"total_amount"`
	} `json:"receipt_data,omitempty"`
	Message            string              `json:"message"`
	Intent             string              `json:"intent"`
	ClarificationItems []clarificationItem `json:"clarification_items"`
	Confidence         float64             `json:"confidence"`
	Success            bool                `json:"success"`
	NeedsClarification bool                `json:"needs_clarification"`
}

func (r extractionResponse) toModel() model.Extraction {
	ext := model.Extraction{
		Message:            r.Message,
		Intent:             r.Intent,
		Confidence:         r.Confidence,
		NeedsClarification: r.NeedsClarification,
		Items:              make([]model.ExtractedItem, 0, len(r.ClarificationItems)),
	}
	if r.ReceiptData != nil {
		ext.Merchant = r.ReceiptData.Merchant.Name
		ext.ReceiptTotal = r.ReceiptData.TotalAmount
	}
	for _, it := range r.ClarificationItems {
		ext.Items = append(ext.Items, model.ExtractedItem{
			Name:              it.Name,
			Unit:              it.Unit,
			Description:       it.Description,
			SuggestedCategory: model.ParseLedger(it.SuggestedCategory),
			Quantity:          it.Quantity,
			UnitPrice:         it.CostPerUnit,
			TotalPrice:        it.Amount,
		})
	}
	return ext
}
