package reconcile

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/Veraticus/sakhi/internal/backend"
)

type fakeLedgerAPI struct {
	expenseErr   map[string]error
	inventoryErr map[string]error
	block        chan struct{}
	expenses     []backend.ExpenseRequest
	inventory    []backend.InventoryRequest
	mu           sync.Mutex
}

func (f *fakeLedgerAPI) CreateExpense(ctx context.Context, req backend.ExpenseRequest) (backend.LedgerResponse, error) {
	f.wait(ctx)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expenses = append(f.expenses, req)
	if err := f.expenseErr[req.Description]; err != nil {
		return backend.LedgerResponse{}, err
	}
	return backend.LedgerResponse{Success: true, Raw: json.RawMessage(`{"success":true}`)}, nil
}

func (f *fakeLedgerAPI) CreateInventoryItem(ctx context.Context, req backend.InventoryRequest) (backend.LedgerResponse, error) {
	f.wait(ctx)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inventory = append(f.inventory, req)
	if err := f.inventoryErr[req.ProductName]; err != nil {
		return backend.LedgerResponse{}, err
	}
	return backend.LedgerResponse{Success: true}, nil
}

func (f *fakeLedgerAPI) wait(ctx context.Context) {
	if f.block == nil {
		return
	}
	select {
	case <-f.block:
	case <-ctx.Done():
	}
}

func (f *fakeLedgerAPI) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.expenses) + len(f.inventory)
}

type fakeBatchAPI struct {
	err   error
	resp  backend.ConfirmResponse
	items []backend.ConfirmItem
	calls int
}

func (f *fakeBatchAPI) ConfirmItems(_ context.Context, items []backend.ConfirmItem) (backend.ConfirmResponse, error) {
	f.calls++
	f.items = items
	return f.resp, f.err
}

type recordingNotifier struct {
	got []Notification
	mu  sync.Mutex
}

func (r *recordingNotifier) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, n)
}

func (r *recordingNotifier) all() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.got))
	copy(out, r.got)
	return out
}
