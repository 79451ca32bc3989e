package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/Veraticus/sakhi/internal/backend"
	"github.com/Veraticus/sakhi/internal/common"
	"github.com/Veraticus/sakhi/internal/config"
	"github.com/Veraticus/sakhi/internal/i18n"
	"github.com/Veraticus/sakhi/internal/model"
	"github.com/Veraticus/sakhi/internal/reconcile"
	"github.com/Veraticus/sakhi/internal/session"
	"github.com/Veraticus/sakhi/internal/transcript"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAutoApp(t *testing.T, strategy string, handler http.HandlerFunc) (*app, *bytes.Buffer, *transcript.Store) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := backend.NewClient(backend.Config{BaseURL: srv.URL, Language: "en"}, session.StaticToken(""))
	require.NoError(t, err)

	store, err := transcript.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))

	var out bytes.Buffer
	a := &app{
		cfg: &config.Config{
			Language:       "en",
			Strategy:       strategy,
			Concurrency:    1,
			QuantityPolicy: config.DefaultQuantityPolicy(strategy),
		},
		client:  client,
		log:     newChatLog(store, session.DefaultUser),
		loc:     i18n.New("en"),
		out:     &out,
		autoYes: true,
	}
	t.Cleanup(a.close)
	return a, &out, store
}

func item(name, total string, ledger model.Ledger) model.ExtractedItem {
	d := decimal.RequireFromString(total)
	return model.ExtractedItem{
		Name:              name,
		Quantity:          decimal.NewFromInt(1),
		UnitPrice:         d,
		TotalPrice:        d,
		SuggestedCategory: ledger,
	}
}

func TestClarify_AutoCommitWithoutValidRows(t *testing.T) {
	var calls atomic.Int32
	a, out, store := newAutoApp(t, config.StrategyBatch, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = io.WriteString(w, `{"success":true}`)
	})

	ext := model.Extraction{NeedsClarification: true, Items: []model.ExtractedItem{
		item("", "0", model.LedgerInventory),
	}}

	err := a.clarify(context.Background(), ext)
	require.Error(t, err)
	assert.ErrorIs(t, err, reconcile.ErrNoValidItems)
	var userErr *common.UserError
	assert.ErrorAs(t, err, &userErr)

	assert.Zero(t, calls.Load())
	assert.Contains(t, out.String(), "Please add at least one valid item")
	assert.NotContains(t, out.String(), "Cancelled")
	assert.Equal(t, 1, strings.Count(out.String(), "\n"), "exactly one notification line")

	entries, err := store.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestClarify_AutoCommitBatch(t *testing.T) {
	a, out, store := newAutoApp(t, config.StrategyBatch, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, backend.PathConfirmItems, r.URL.Path)
		_, _ = io.WriteString(w, `{"success":true,"message":"Sugar added to expenses"}`)
	})

	ext := model.Extraction{NeedsClarification: true, Items: []model.ExtractedItem{
		item("Sugar", "80", model.LedgerExpense),
		item("", "0", model.LedgerInventory),
	}}

	require.NoError(t, a.clarify(context.Background(), ext))
	assert.Contains(t, out.String(), "Successfully Saved")
	assert.Contains(t, out.String(), "Sugar added to expenses")

	entries, err := store.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Text, transcript.TextProcessed), entries[0].Text)
	assert.Equal(t, transcript.KindClarification, entries[0].Kind)
}

func TestClarify_AutoCommitLedgerPartial(t *testing.T) {
	a, out, _ := newAutoApp(t, config.StrategyLedger, func(w http.ResponseWriter, r *http.Request) {
		var req backend.ExpenseRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Description == "Salt" {
			_, _ = io.WriteString(w, `{"success":false,"error":"duplicate entry"}`)
			return
		}
		_, _ = io.WriteString(w, `{"success":true}`)
	})

	ext := model.Extraction{NeedsClarification: true, Items: []model.ExtractedItem{
		item("Sugar", "80", model.LedgerExpense),
		item("Salt", "20", model.LedgerExpense),
		item("Tea", "10", model.LedgerExpense),
	}}

	require.NoError(t, a.clarify(context.Background(), ext))
	assert.Contains(t, out.String(), "2 of 3 items saved")
	assert.Contains(t, out.String(), "duplicate entry")
}
