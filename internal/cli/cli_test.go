package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/Veraticus/sakhi/internal/i18n"
	"github.com/Veraticus/sakhi/internal/model"
	"github.com/Veraticus/sakhi/internal/reconcile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier(t *testing.T) {
	tests := []struct {
		name string
		want string
		note reconcile.Notification
	}{
		{name: "success", note: reconcile.Notification{Outcome: model.OutcomeSuccess, Saved: 2, Attempted: 2}, want: "2 items saved"},
		{name: "partial", note: reconcile.Notification{Outcome: model.OutcomePartial, Saved: 2, Attempted: 3}, want: "2 of 3 items saved"},
		{name: "failure", note: reconcile.Notification{Outcome: model.OutcomeFailure, Attempted: 3}, want: ErrorIcon},
		{name: "cancelled", note: reconcile.Notification{Outcome: model.OutcomeCancelled}, want: "Processing cancelled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			NewNotifier(&buf, i18n.New("en")).Notify(tt.note)
			assert.Contains(t, buf.String(), tt.want)
			assert.Equal(t, 1, strings.Count(buf.String(), "\n"), "one line per notification")
		})
	}
}

func TestFormatFailures(t *testing.T) {
	assert.Empty(t, FormatFailures(model.CommitReport{}))

	out := FormatFailures(model.CommitReport{Results: []model.CommitResult{
		{Name: "Tea", OK: true},
		{Name: "Soap", Ledger: model.LedgerInventory, Error: "duplicate"},
	}})
	assert.Contains(t, out, "Soap (inventory): duplicate")
	assert.NotContains(t, out, "Tea")
}

func TestLineReader(t *testing.T) {
	r := NewLineReader(strings.NewReader("  hello  \nnamaste\nlast"))
	ctx := context.Background()

	for _, want := range []string{"hello", "namaste", "last"} {
		got, err := r.ReadLine(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := r.ReadLine(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestLineReader_Cancelled(t *testing.T) {
	pr, pw := io.Pipe()
	defer func() { _ = pw.Close() }()

	r := NewLineReader(pr)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.ReadLine(ctx)
	assert.ErrorIs(t, err, ErrInputCancelled)
}

func TestInterruptHandler(t *testing.T) {
	var buf bytes.Buffer
	h := NewInterruptHandler(&buf)

	ctx, cancel := h.HandleInterrupts(context.Background())
	defer cancel()
	assert.NoError(t, ctx.Err())
	assert.False(t, h.WasInterrupted())

	h.interrupt()
	h.interrupt()
	assert.True(t, h.WasInterrupted())
	assert.Equal(t, 1, strings.Count(buf.String(), "Interrupted!"))
}
