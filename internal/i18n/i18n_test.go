package i18n

import (
	"testing"

	"github.com/Veraticus/sakhi/internal/model"
	"github.com/Veraticus/sakhi/internal/reconcile"
	"github.com/stretchr/testify/assert"
)

func TestNotification(t *testing.T) {
	l := New("en")

	tests := []struct {
		name      string
		n         reconcile.Notification
		wantTitle string
		wantDesc  string
	}{
		{
			name:      "full success",
			n:         reconcile.Notification{Outcome: model.OutcomeSuccess, Saved: 3, Attempted: 3},
			wantTitle: "Successfully Saved",
			wantDesc:  "3 items saved",
		},
		{
			name:      "single item",
			n:         reconcile.Notification{Outcome: model.OutcomeSuccess, Saved: 1, Attempted: 1},
			wantTitle: "Successfully Saved",
			wantDesc:  "1 item saved",
		},
		{
			name:      "backend message wins",
			n:         reconcile.Notification{Outcome: model.OutcomeSuccess, Message: "Added 2 items to inventory", Saved: 2, Attempted: 2},
			wantTitle: "Successfully Saved",
			wantDesc:  "Added 2 items to inventory",
		},
		{
			name:      "partial",
			n:         reconcile.Notification{Outcome: model.OutcomePartial, Saved: 2, Attempted: 3},
			wantTitle: "Partially Saved",
			wantDesc:  "2 of 3 items saved",
		},
		{
			name:      "failure",
			n:         reconcile.Notification{Outcome: model.OutcomeFailure, Attempted: 2},
			wantTitle: "Error",
			wantDesc:  "Error saving items",
		},
		{
			name:      "invalid",
			n:         reconcile.Notification{Outcome: model.OutcomeInvalid},
			wantTitle: "Error",
			wantDesc:  "Please add at least one valid item",
		},
		{
			name:      "cancelled",
			n:         reconcile.Notification{Outcome: model.OutcomeCancelled},
			wantTitle: "Cancelled",
			wantDesc:  "Processing cancelled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, desc := l.Notification(tt.n)
			assert.Equal(t, tt.wantTitle, title)
			assert.Equal(t, tt.wantDesc, desc)
		})
	}
}

func TestNew_Fallback(t *testing.T) {
	assert.Equal(t, "en", New("").Language())
	assert.Equal(t, "en", New("klingon").Language())
	assert.Equal(t, "hi", New("hi-IN").Language())
}

func TestLabels(t *testing.T) {
	l := New("en")
	assert.Equal(t, "Quantity", l.Label(LabelQuantity))
	assert.Equal(t, "Inventory", l.Category(model.LedgerInventory))
	assert.Equal(t, "Goes to Expenses", l.Destination(model.LedgerExpense))

	hi := New("hi")
	assert.NotEqual(t, l.Label(LabelConfirm), hi.Label(LabelConfirm))
}
