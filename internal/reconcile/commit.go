package reconcile

import (
	"context"
	"strings"

	"github.com/Veraticus/sakhi/internal/model"
	"github.com/shopspring/decimal"
)

// Submission is the serialized form of a valid row handed to a Committer.
type Submission struct {
	Name       string
	Unit       string
	Ledger     model.Ledger
	Quantity   decimal.Decimal
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
	RowID      int
}

// Committer submits validated rows and reports a result for every one of
// them, in order. Failures are reported in the results, never returned.
type Committer interface {
	Commit(ctx context.Context, subs []Submission) model.CommitReport
}

// CommitterFunc adapts a function to the Committer interface.
type CommitterFunc func(ctx context.Context, subs []Submission) model.CommitReport

// Commit implements Committer.
func (f CommitterFunc) Commit(ctx context.Context, subs []Submission) model.CommitReport {
	return f(ctx, subs)
}

// Submissions filters the rows down to committable ones and serializes them.
func Submissions(rows []Row) []Submission {
	subs := make([]Submission, 0, len(rows))
	for _, r := range rows {
		if !r.Valid() {
			continue
		}
		subs = append(subs, Submission{
			RowID:      r.ID,
			Name:       strings.TrimSpace(r.Name),
			Unit:       r.Unit,
			Ledger:     r.Category,
			Quantity:   r.Quantity,
			UnitPrice:  r.UnitPrice,
			TotalPrice: r.TotalPrice,
		})
	}
	return subs
}

func failed(sub Submission, err error) model.CommitResult {
	return model.CommitResult{
		RowID:  sub.RowID,
		Name:   sub.Name,
		Ledger: sub.Ledger,
		Error:  err.Error(),
	}
}
