package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/Veraticus/sakhi/internal/model"
	"github.com/Veraticus/sakhi/internal/reconcile"
	tea "github.com/charmbracelet/bubbletea"
)

// Result is how an interactive clarification ended.
type Result struct {
	Report    model.CommitReport
	Cancelled bool
}

// Run shows the table of an open session until the user commits or cancels.
// If ctx ends first the session is cancelled.
func Run(ctx context.Context, s *reconcile.Session, notices *Notices, opts ...Option) (Result, error) {
	if s.State() != reconcile.StateEditing {
		return Result{}, reconcile.ErrNotOpen
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if cfg.Input != nil {
		programOpts = append(programOpts, tea.WithInput(cfg.Input))
	}
	if cfg.Output != nil {
		programOpts = append(programOpts, tea.WithOutput(cfg.Output))
	}

	p := tea.NewProgram(NewModel(ctx, s, notices, opts...), programOpts...)
	final, err := p.Run()
	if err != nil {
		if s.State() == reconcile.StateEditing {
			_ = s.Cancel()
		}
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return Result{Cancelled: true}, ctx.Err()
		}
		return Result{}, fmt.Errorf("clarification table: %w", err)
	}

	m, ok := final.(Model)
	if !ok {
		return Result{}, fmt.Errorf("clarification table: unexpected model %T", final)
	}
	return Result{Report: m.Report(), Cancelled: m.Cancelled()}, nil
}
