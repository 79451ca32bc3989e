package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/Veraticus/sakhi/internal/backend"
	"github.com/Veraticus/sakhi/internal/model"
)

// BatchAPI is the backend surface the batch strategy needs.
type BatchAPI interface {
	ConfirmItems(ctx context.Context, items []backend.ConfirmItem) (backend.ConfirmResponse, error)
}

// BatchCommitter submits every row in one confirm-items request.
type BatchCommitter struct {
	api BatchAPI
}

// NewBatchCommitter creates a batch committer.
func NewBatchCommitter(api BatchAPI) *BatchCommitter {
	return &BatchCommitter{api: api}
}

type businessResult struct {
	Success *bool  `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Commit implements Committer. Per-item results are taken from
// business_results when the backend returns one per item, and an entry
// without success:true is a failure. Otherwise a successful reply counts
// every item as saved.
func (b *BatchCommitter) Commit(ctx context.Context, subs []Submission) model.CommitReport {
	items := make([]backend.ConfirmItem, len(subs))
	for i, s := range subs {
		items[i] = backend.ConfirmItem{
			Name:        s.Name,
			Unit:        s.Unit,
			Category:    s.Ledger.String(),
			Quantity:    s.Quantity.InexactFloat64(),
			Amount:      s.TotalPrice.InexactFloat64(),
			CostPerUnit: s.UnitPrice.InexactFloat64(),
		}
	}

	report := model.CommitReport{Results: make([]model.CommitResult, len(subs))}

	resp, err := b.api.ConfirmItems(ctx, items)
	if err != nil {
		logCommitError("confirm-items", err, len(subs))
		for i, s := range subs {
			report.Results[i] = failed(s, err)
		}
		return report
	}

	report.Message = resp.Message
	perItem := len(resp.BusinessResults) == len(subs)
	for i, s := range subs {
		res := model.CommitResult{RowID: s.RowID, Name: s.Name, Ledger: s.Ledger, OK: true}
		if perItem {
			res.Raw = resp.BusinessResults[i]
			var br businessResult
			jerr := json.Unmarshal(resp.BusinessResults[i], &br)
			if jerr != nil || br.Success == nil || !*br.Success {
				res.OK = false
				res.Error = br.Error
				if res.Error == "" {
					res.Error = br.Message
				}
				if res.Error == "" {
					res.Error = "rejected by backend"
				}
			}
		}
		report.Results[i] = res
	}

	if !perItem && len(resp.BusinessResults) > 0 {
		slog.Debug("Batch results do not line up with submitted items",
			"items", len(subs),
			"results", len(resp.BusinessResults))
	}
	return report
}

func logCommitError(op string, err error, items int) {
	var rejected *backend.RejectedError
	if errors.As(err, &rejected) {
		slog.Warn("Backend rejected commit", "op", op, "items", items, "reason", rejected.Message)
		return
	}
	slog.Error("Commit request failed", "op", op, "items", items, "error", err)
}
