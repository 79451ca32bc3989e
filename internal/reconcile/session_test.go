package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Veraticus/sakhi/internal/backend"
	"github.com/Veraticus/sakhi/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_SugarScenario(t *testing.T) {
	api := &fakeLedgerAPI{}
	notes := &recordingNotifier{}
	var confirmed []model.CommitResult

	s := NewSession(NewLedgerCommitter(api, "en"),
		WithNotifier(notes),
		WithOnConfirm(func(r []model.CommitResult) { confirmed = r }),
		WithTableOptions(WithQuantityPolicy(HoldUnitPrice)),
	)
	require.NoError(t, s.Open(sugarAndBlank()))
	assert.Equal(t, StateEditing, s.State())
	require.Len(t, s.Rows(), 2)

	sugar := s.Rows()[0].ID
	require.NoError(t, s.Edit(func(tbl *Table) error {
		return tbl.UpdateField(sugar, FieldQuantity, "5")
	}))
	assert.True(t, s.Rows()[0].TotalPrice.Equal(dec("200")))

	report, err := s.Commit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeSuccess, report.Outcome())

	require.Len(t, api.expenses, 1)
	assert.Empty(t, api.inventory)
	assert.Equal(t, backend.ExpenseRequest{Amount: 200, Description: "Sugar", Category: "general", Language: "en"}, api.expenses[0])

	require.Len(t, notes.all(), 1)
	assert.Equal(t, model.OutcomeSuccess, notes.all()[0].Outcome)
	require.Len(t, confirmed, 1)
	assert.Equal(t, "Sugar", confirmed[0].Name)

	assert.Equal(t, StateHidden, s.State())
	assert.Nil(t, s.Rows())
}

func TestSession_NoValidItems(t *testing.T) {
	api := &fakeLedgerAPI{}
	notes := &recordingNotifier{}
	confirmCalled := false

	s := NewSession(NewLedgerCommitter(api, "en"),
		WithNotifier(notes),
		WithOnConfirm(func([]model.CommitResult) { confirmCalled = true }),
	)
	require.NoError(t, s.Open([]model.ExtractedItem{
		{Name: "Sugar", TotalPrice: dec("0")},
		{Name: " ", TotalPrice: dec("10")},
	}))

	_, err := s.Commit(context.Background())
	require.ErrorIs(t, err, ErrNoValidItems)

	assert.Zero(t, api.calls())
	assert.False(t, confirmCalled)
	assert.Equal(t, StateEditing, s.State(), "table stays open for correction")
	require.Len(t, notes.all(), 1)
	assert.Equal(t, model.OutcomeInvalid, notes.all()[0].Outcome)
}

func TestSession_PartialSuccess(t *testing.T) {
	api := &fakeLedgerAPI{
		inventoryErr: map[string]error{"Soap": &backend.RejectedError{Path: backend.PathInventory, Message: "duplicate"}},
	}
	notes := &recordingNotifier{}
	var confirmed []model.CommitResult

	s := NewSession(NewLedgerCommitter(api, "en"),
		WithNotifier(notes),
		WithOnConfirm(func(r []model.CommitResult) { confirmed = r }),
	)
	require.NoError(t, s.Open([]model.ExtractedItem{
		{Name: "Tea", TotalPrice: dec("20"), SuggestedCategory: model.LedgerExpense},
		{Name: "Soap", Quantity: dec("3"), UnitPrice: dec("15"), TotalPrice: dec("45"), SuggestedCategory: model.LedgerInventory},
		{Name: "Rice", Unit: "kg", Quantity: dec("2"), UnitPrice: dec("50"), TotalPrice: dec("100"), SuggestedCategory: model.LedgerInventory},
	}))

	report, err := s.Commit(context.Background())
	require.NoError(t, err, "network failures are not returned")
	assert.Equal(t, model.OutcomePartial, report.Outcome())

	got := notes.all()
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Saved)
	assert.Equal(t, 3, got[0].Attempted)

	require.Len(t, confirmed, 2)
	assert.Equal(t, "Tea", confirmed[0].Name)
	assert.Equal(t, "Rice", confirmed[1].Name)

	failures := report.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, "Soap", failures[0].Name)
	assert.Contains(t, failures[0].Error, "duplicate")
	assert.Equal(t, StateHidden, s.State())
}

func TestSession_TotalFailure(t *testing.T) {
	api := &fakeBatchAPI{err: errors.New("connection refused")}
	notes := &recordingNotifier{}
	var confirmed []model.CommitResult
	confirmCalled := false

	s := NewSession(NewBatchCommitter(api),
		WithNotifier(notes),
		WithOnConfirm(func(r []model.CommitResult) {
			confirmCalled = true
			confirmed = r
		}),
	)
	require.NoError(t, s.Open(sugarAndBlank()))

	report, err := s.Commit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeFailure, report.Outcome())
	assert.True(t, confirmCalled)
	assert.Empty(t, confirmed)
	require.Len(t, notes.all(), 1)
	assert.Equal(t, model.OutcomeFailure, notes.all()[0].Outcome)
	assert.Equal(t, StateHidden, s.State())
}

func TestSession_Cancel(t *testing.T) {
	api := &fakeLedgerAPI{}
	notes := &recordingNotifier{}
	cancelled := false

	s := NewSession(NewLedgerCommitter(api, "en"),
		WithNotifier(notes),
		WithOnCancel(func() { cancelled = true }),
	)
	require.NoError(t, s.Open(sugarAndBlank()))
	require.NoError(t, s.Cancel())

	assert.True(t, cancelled)
	assert.Zero(t, api.calls())
	assert.Equal(t, StateHidden, s.State())
	require.Len(t, notes.all(), 1)
	assert.Equal(t, model.OutcomeCancelled, notes.all()[0].Outcome)

	assert.ErrorIs(t, s.Cancel(), ErrNotOpen)
	_, err := s.Commit(context.Background())
	assert.ErrorIs(t, err, ErrNotOpen)
}

func TestSession_ReopenAfterTeardown(t *testing.T) {
	s := NewSession(NewLedgerCommitter(&fakeLedgerAPI{}, "en"))
	require.NoError(t, s.Open(sugarAndBlank()))
	assert.ErrorIs(t, s.Open(nil), ErrAlreadyOpen)

	require.NoError(t, s.Cancel())
	require.NoError(t, s.Open([]model.ExtractedItem{{Name: "Milk", TotalPrice: dec("30")}}))
	rows := s.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "Milk", rows[0].Name)
}

func TestSession_CommitInProgress(t *testing.T) {
	api := &fakeLedgerAPI{block: make(chan struct{})}
	notes := &recordingNotifier{}
	s := NewSession(NewLedgerCommitter(api, "en"), WithNotifier(notes))
	require.NoError(t, s.Open(sugarAndBlank()))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = s.Commit(context.Background())
	}()

	require.Eventually(t, func() bool { return s.State() == StateCommitting }, time.Second, time.Millisecond)

	_, err := s.Commit(context.Background())
	assert.ErrorIs(t, err, ErrCommitInProgress)
	assert.ErrorIs(t, s.Cancel(), ErrCommitInProgress)
	assert.ErrorIs(t, s.Edit(func(*Table) error { return nil }), ErrCommitInProgress)

	close(api.block)
	<-done

	assert.Equal(t, 1, api.calls(), "second commit issued no calls")
	assert.Len(t, notes.all(), 1)
	assert.Equal(t, StateHidden, s.State())
}

func TestSession_EditWhenHidden(t *testing.T) {
	s := NewSession(NewBatchCommitter(&fakeBatchAPI{}))
	err := s.Edit(func(tbl *Table) error {
		tbl.AddRow()
		return nil
	})
	assert.ErrorIs(t, err, ErrNotOpen)
	assert.Nil(t, s.Rows())
}
