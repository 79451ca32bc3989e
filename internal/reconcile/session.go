package reconcile

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/Veraticus/sakhi/internal/model"
)

// Session errors.
var (
	ErrNoValidItems     = errors.New("no valid items to save")
	ErrCommitInProgress = errors.New("commit already in progress")
	ErrNotOpen          = errors.New("clarification table is not open")
	ErrAlreadyOpen      = errors.New("clarification table is already open")
)

// State is the lifecycle state of the clarification table.
type State int

// State constants.
const (
	StateHidden State = iota
	StateEditing
	StateCommitting
)

func (s State) String() string {
	switch s {
	case StateEditing:
		return "editing"
	case StateCommitting:
		return "committing"
	default:
		return "hidden"
	}
}

// Session owns one clarification table from intake to teardown.
type Session struct {
	committer Committer
	notifier  Notifier
	onConfirm func([]model.CommitResult)
	onCancel  func()
	table     *Table
	tableOpts []TableOption
	mu        sync.Mutex
	state     State
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithNotifier sets where notifications go.
func WithNotifier(n Notifier) SessionOption {
	return func(s *Session) {
		s.notifier = n
	}
}

// WithOnConfirm registers the callback that receives successfully saved rows
// after every commit that reached the network.
func WithOnConfirm(fn func([]model.CommitResult)) SessionOption {
	return func(s *Session) {
		s.onConfirm = fn
	}
}

// WithOnCancel registers the callback invoked when the user cancels.
func WithOnCancel(fn func()) SessionOption {
	return func(s *Session) {
		s.onCancel = fn
	}
}

// WithTableOptions sets the options used for every table the session opens.
func WithTableOptions(opts ...TableOption) SessionOption {
	return func(s *Session) {
		s.tableOpts = append(s.tableOpts, opts...)
	}
}

// NewSession creates a hidden session that commits through c.
func NewSession(c Committer, opts ...SessionOption) *Session {
	s := &Session{
		committer: c,
		notifier:  discardNotifier{},
		onConfirm: func([]model.CommitResult) {},
		onCancel:  func() {},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Open seeds a fresh table from items and shows it.
func (s *Session) Open(items []model.ExtractedItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateHidden {
		return ErrAlreadyOpen
	}
	s.table = NewTable(items, s.tableOpts...)
	s.state = StateEditing

	slog.Debug("Clarification table opened", "items", len(items), "policy", s.table.Policy())
	return nil
}

// Edit runs fn against the table while it is editable.
func (s *Session) Edit(fn func(*Table) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateCommitting:
		return ErrCommitInProgress
	case StateHidden:
		return ErrNotOpen
	}
	return fn(s.table)
}

// Rows returns a snapshot of the table rows, or nil when hidden.
func (s *Session) Rows() []Row {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.table == nil {
		return nil
	}
	return s.table.Rows()
}

// Commit validates the rows and submits them. Only local problems are
// returned as errors; in that case the table stays open for correction.
// Once rows reach the network the table is torn down whatever happens.
func (s *Session) Commit(ctx context.Context) (model.CommitReport, error) {
	s.mu.Lock()
	switch s.state {
	case StateCommitting:
		s.mu.Unlock()
		return model.CommitReport{}, ErrCommitInProgress
	case StateHidden:
		s.mu.Unlock()
		return model.CommitReport{}, ErrNotOpen
	}

	subs := Submissions(s.table.Rows())
	if len(subs) == 0 {
		s.mu.Unlock()
		slog.Info("Commit blocked: no valid items", "rows", s.table.Len())
		s.notifier.Notify(Notification{Outcome: model.OutcomeInvalid})
		return model.CommitReport{}, ErrNoValidItems
	}

	dropped := s.table.Len() - len(subs)
	s.state = StateCommitting
	s.mu.Unlock()

	slog.Info("Committing clarified items", "submitted", len(subs), "dropped", dropped)
	report := s.committer.Commit(ctx, subs)

	s.mu.Lock()
	s.state = StateHidden
	s.table = nil
	s.mu.Unlock()

	slog.Info("Commit finished",
		"outcome", report.Outcome(),
		"saved", report.Saved(),
		"attempted", report.Attempted())

	s.notifier.Notify(Notification{
		Outcome:   report.Outcome(),
		Message:   report.Message,
		Saved:     report.Saved(),
		Attempted: report.Attempted(),
	})
	s.onConfirm(report.Successes())

	return report, nil
}

// Cancel discards the table without any network call.
func (s *Session) Cancel() error {
	s.mu.Lock()
	switch s.state {
	case StateCommitting:
		s.mu.Unlock()
		return ErrCommitInProgress
	case StateHidden:
		s.mu.Unlock()
		return ErrNotOpen
	}
	s.state = StateHidden
	s.table = nil
	s.mu.Unlock()

	slog.Info("Clarification cancelled")
	s.notifier.Notify(Notification{Outcome: model.OutcomeCancelled})
	s.onCancel()
	return nil
}
