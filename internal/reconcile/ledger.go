package reconcile

import (
	"context"
	"sync"

	"github.com/Veraticus/sakhi/internal/backend"
	"github.com/Veraticus/sakhi/internal/model"
	"golang.org/x/sync/errgroup"
)

// LedgerAPI is the backend surface the per-ledger strategy needs.
type LedgerAPI interface {
	CreateExpense(ctx context.Context, req backend.ExpenseRequest) (backend.LedgerResponse, error)
	CreateInventoryItem(ctx context.Context, req backend.InventoryRequest) (backend.LedgerResponse, error)
}

// LedgerCommitter issues one request per row, routed by ledger.
type LedgerCommitter struct {
	api LedgerAPI
	// OnProgress, when set, is called once per finished row.
	OnProgress func(done, total int)
	language   string
	// Concurrency caps in-flight requests. Values below 2 run sequentially.
	Concurrency int
	mu          sync.Mutex
}

// NewLedgerCommitter creates a per-ledger committer. language is sent with
// expense entries.
func NewLedgerCommitter(api LedgerAPI, language string) *LedgerCommitter {
	return &LedgerCommitter{api: api, language: language}
}

// Commit implements Committer. Results keep submission order regardless
// of concurrency. Rows not yet sent when ctx is cancelled are failed.
func (l *LedgerCommitter) Commit(ctx context.Context, subs []Submission) model.CommitReport {
	report := model.CommitReport{Results: make([]model.CommitResult, len(subs))}
	done := 0

	run := func(i int) {
		report.Results[i] = l.commitOne(ctx, subs[i])
		if l.OnProgress == nil {
			return
		}
		l.mu.Lock()
		done++
		n := done
		l.mu.Unlock()
		l.OnProgress(n, len(subs))
	}

	if l.Concurrency < 2 {
		for i := range subs {
			run(i)
		}
		return report
	}

	var g errgroup.Group
	g.SetLimit(l.Concurrency)
	for i := range subs {
		g.Go(func() error {
			run(i)
			return nil
		})
	}
	_ = g.Wait()
	return report
}

func (l *LedgerCommitter) commitOne(ctx context.Context, s Submission) model.CommitResult {
	if err := ctx.Err(); err != nil {
		return failed(s, err)
	}

	var (
		resp backend.LedgerResponse
		err  error
		op   string
	)
	switch s.Ledger {
	case model.LedgerInventory:
		op = "inventory"
		unit := s.Unit
		if unit == "" {
			unit = model.DefaultUnit
		}
		resp, err = l.api.CreateInventoryItem(ctx, backend.InventoryRequest{
			ProductName: s.Name,
			Unit:        unit,
			Quantity:    s.Quantity.InexactFloat64(),
			CostPerUnit: s.UnitPrice.InexactFloat64(),
		})
	default:
		op = "expense"
		resp, err = l.api.CreateExpense(ctx, backend.ExpenseRequest{
			Description: s.Name,
			Category:    backend.ExpenseCategory,
			Language:    l.language,
			Amount:      s.TotalPrice.InexactFloat64(),
		})
	}

	if err != nil {
		logCommitError(op, err, 1)
		return failed(s, err)
	}
	return model.CommitResult{
		RowID:  s.RowID,
		Name:   s.Name,
		Ledger: s.Ledger,
		Raw:    resp.Raw,
		OK:     true,
	}
}
