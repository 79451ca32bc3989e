// Package tui provides the terminal clarification table.
package tui

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Veraticus/sakhi/internal/i18n"
	"github.com/Veraticus/sakhi/internal/model"
	"github.com/Veraticus/sakhi/internal/reconcile"
	"github.com/Veraticus/sakhi/internal/tui/themes"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// column is one table column: an editable field or the category switch.
type column struct {
	label    string
	field    reconcile.Field
	width    int
	category bool
}

var columns = []column{
	{label: i18n.LabelName, field: reconcile.FieldName, width: 22},
	{label: i18n.LabelQuantity, field: reconcile.FieldQuantity, width: 9},
	{label: i18n.LabelTotal, field: reconcile.FieldTotalPrice, width: 12},
	{label: i18n.LabelUnitPrice, field: reconcile.FieldUnitPrice, width: 11},
	{label: i18n.LabelUnit, field: reconcile.FieldUnit, width: 8},
	{label: i18n.LabelCategory, width: 11, category: true},
}

// Model is the bubbletea model of the clarification table.
type Model struct {
	ctx        context.Context
	err        error
	session    *reconcile.Session
	notices    *Notices
	loc        *i18n.Localizer
	notice     *reconcile.Notification
	keys       KeyMap
	title      string
	rows       []reconcile.Row
	report     model.CommitReport
	theme      themes.Theme
	input      textinput.Model
	spinner    spinner.Model
	help       help.Model
	row        int
	col        int
	width      int
	height     int
	editing    bool
	committing bool
	showHelp   bool
	done       bool
	cancelled  bool
}

// Editor input limits.
const (
	textLimit   = 64
	numberLimit = 16
)

// NewModel creates the table model for an open session. notices must be
// the session's notifier (or wrap it) for outcomes to be displayed.
func NewModel(ctx context.Context, s *reconcile.Session, notices *Notices, opts ...Option) Model {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if notices == nil {
		notices = NewNotices(nil)
	}

	input := textinput.New()
	input.CharLimit = textLimit
	input.Prompt = ""

	keys := DefaultKeyMap()
	keys.Commit.SetHelp(keys.Commit.Help().Key, cfg.Localizer.Label(i18n.LabelConfirm))
	keys.Cancel.SetHelp(keys.Cancel.Help().Key, cfg.Localizer.Label(i18n.LabelCancel))

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(cfg.Theme.Primary)

	m := Model{
		ctx:      ctx,
		session:  s,
		notices:  notices,
		loc:      cfg.Localizer,
		keys:     keys,
		title:    cfg.Title,
		theme:    cfg.Theme,
		input:    input,
		spinner:  sp,
		help:     help.New(),
		width:    cfg.Width,
		height:   cfg.Height,
		showHelp: cfg.ShowHelp,
	}
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Done reports whether the table was committed.
func (m Model) Done() bool {
	return m.done
}

// Cancelled reports whether the user cancelled.
func (m Model) Cancelled() bool {
	return m.cancelled
}

// Report returns the commit report once Done.
func (m Model) Report() model.CommitReport {
	return m.report
}

// Err returns the last unexpected error.
func (m Model) Err() error {
	return m.err
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if !m.committing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case commitDoneMsg:
		return m.handleCommitDone(msg)

	case tea.KeyMsg:
		if m.committing || m.done || m.cancelled {
			// Submit controls are disabled until the commit settles.
			return m, nil
		}
		if m.editing {
			return m.handleEditKey(msg)
		}
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.row = max(m.row-1, 0)

	case key.Matches(msg, m.keys.Down):
		m.row = min(m.row+1, max(len(m.rows)-1, 0))

	case key.Matches(msg, m.keys.Left):
		m.col = max(m.col-1, 0)

	case key.Matches(msg, m.keys.Right):
		m.col = min(m.col+1, len(columns)-1)

	case key.Matches(msg, m.keys.Edit):
		return m.startEdit()

	case key.Matches(msg, m.keys.Toggle):
		if id, ok := m.currentID(); ok {
			m.apply(func(t *reconcile.Table) error { return t.ToggleCategory(id) })
		}

	case key.Matches(msg, m.keys.Add):
		m.apply(func(t *reconcile.Table) error {
			t.AddRow()
			return nil
		})
		m.row = max(len(m.rows)-1, 0)
		m.col = 0

	case key.Matches(msg, m.keys.Remove):
		if id, ok := m.currentID(); ok {
			m.apply(func(t *reconcile.Table) error { return t.RemoveRow(id) })
			m.row = min(m.row, max(len(m.rows)-1, 0))
		}

	case key.Matches(msg, m.keys.Commit):
		m.committing = true
		m.notice = nil
		return m, tea.Batch(m.spinner.Tick, m.commitCmd())

	case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.ForceQuit):
		return m.cancel()
	}

	return m, nil
}

func (m Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Apply):
		m.editing = false
		m.input.Blur()
		id, ok := m.currentID()
		if !ok {
			return m, nil
		}
		field := columns[m.col].field
		value := m.input.Value()
		m.apply(func(t *reconcile.Table) error { return t.UpdateField(id, field, value) })
		return m, nil

	case key.Matches(msg, m.keys.Discard):
		m.editing = false
		m.input.Blur()
		return m, nil

	case key.Matches(msg, m.keys.ForceQuit):
		m.editing = false
		m.input.Blur()
		return m.cancel()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) startEdit() (tea.Model, tea.Cmd) {
	if len(m.rows) == 0 {
		return m, nil
	}
	c := columns[m.col]
	if c.category {
		id := m.rows[m.row].ID
		m.apply(func(t *reconcile.Table) error { return t.ToggleCategory(id) })
		return m, nil
	}

	m.editing = true
	m.err = nil
	m.input.Reset()
	m.input.CharLimit = textLimit
	if c.field.Numeric() {
		m.input.CharLimit = numberLimit
	}
	m.input.Width = c.width - 2
	m.input.SetValue(editValue(m.rows[m.row], c.field))
	m.input.CursorEnd()
	return m, m.input.Focus()
}

func (m Model) cancel() (tea.Model, tea.Cmd) {
	if err := m.session.Cancel(); err != nil {
		m.err = err
		return m, nil
	}
	m.cancelled = true
	m.rows = nil
	if n, ok := m.notices.Last(); ok {
		m.notice = &n
	}
	return m, tea.Quit
}

func (m Model) commitCmd() tea.Cmd {
	ctx, s, notices := m.ctx, m.session, m.notices
	before := notices.Count()
	return func() tea.Msg {
		report, err := s.Commit(ctx)
		msg := commitDoneMsg{report: report, err: err}
		if notices.Count() > before {
			msg.notice, msg.noticed = notices.Last()
		}
		return msg
	}
}

func (m Model) handleCommitDone(msg commitDoneMsg) (tea.Model, tea.Cmd) {
	m.committing = false
	if msg.noticed {
		n := msg.notice
		m.notice = &n
	}

	switch {
	case errors.Is(msg.err, reconcile.ErrNoValidItems):
		// Table stays open for correction.
		return m, nil
	case msg.err != nil:
		m.err = msg.err
		slog.Warn("Commit did not start", "error", msg.err)
		return m, nil
	}

	m.report = msg.report
	m.done = true
	m.rows = nil
	return m, tea.Quit
}

// apply runs an edit against the session table and refreshes the snapshot.
// Rejected values stay visible as flagged cells.
func (m *Model) apply(fn func(*reconcile.Table) error) {
	m.err = nil
	if err := m.session.Edit(fn); err != nil {
		if !errors.Is(err, reconcile.ErrInvalidValue) {
			m.err = err
		}
	}
	m.refresh()
}

func (m *Model) refresh() {
	m.rows = m.session.Rows()
	if m.row >= len(m.rows) {
		m.row = max(len(m.rows)-1, 0)
	}
}

func (m Model) currentID() (int, bool) {
	if m.row < 0 || m.row >= len(m.rows) {
		return 0, false
	}
	return m.rows[m.row].ID, true
}

// Rows returns the rows as last seen by the model.
func (m Model) Rows() []reconcile.Row {
	return m.rows
}

// Cursor returns the selected row and column.
func (m Model) Cursor() (row, col int) {
	return m.row, m.col
}

// Editing reports whether a cell editor is open.
func (m Model) Editing() bool {
	return m.editing
}

// Committing reports whether a commit is in flight.
func (m Model) Committing() bool {
	return m.committing
}

// Notice returns the notification on display, if any.
func (m Model) Notice() (reconcile.Notification, bool) {
	if m.notice == nil {
		return reconcile.Notification{}, false
	}
	return *m.notice, true
}
