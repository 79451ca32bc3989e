package model

import "encoding/json"

// Outcome classifies how a clarification session ended.
type Outcome string

// Outcome constants.
const (
	OutcomeSuccess   Outcome = "success"
	OutcomePartial   Outcome = "partial"
	OutcomeFailure   Outcome = "failure"
	OutcomeInvalid   Outcome = "invalid"
	OutcomeCancelled Outcome = "cancelled"
)

// CommitResult is the outcome of submitting one row. It is never persisted.
type CommitResult struct {
	Raw    json.RawMessage
	Name   string
	Ledger Ledger
	Error  string
	RowID  int
	OK     bool
}

// CommitReport aggregates the per-row results of one commit.
type CommitReport struct {
	// Message is the backend's summary text, when it sends one.
	Message string
	Results []CommitResult
}

// Attempted returns the number of rows that were submitted.
func (r CommitReport) Attempted() int {
	return len(r.Results)
}

// Saved returns the number of rows the backend accepted.
func (r CommitReport) Saved() int {
	n := 0
	for _, res := range r.Results {
		if res.OK {
			n++
		}
	}
	return n
}

// Successes returns the accepted rows in submission order.
func (r CommitReport) Successes() []CommitResult {
	out := make([]CommitResult, 0, len(r.Results))
	for _, res := range r.Results {
		if res.OK {
			out = append(out, res)
		}
	}
	return out
}

// Failures returns the rejected rows in submission order.
func (r CommitReport) Failures() []CommitResult {
	var out []CommitResult
	for _, res := range r.Results {
		if !res.OK {
			out = append(out, res)
		}
	}
	return out
}

// Outcome derives the terminal outcome from the results.
func (r CommitReport) Outcome() Outcome {
	saved := r.Saved()
	switch {
	case r.Attempted() == 0:
		return OutcomeInvalid
	case saved == r.Attempted():
		return OutcomeSuccess
	case saved == 0:
		return OutcomeFailure
	default:
		return OutcomePartial
	}
}
