package tui

import (
	"github.com/Veraticus/sakhi/internal/model"
	"github.com/Veraticus/sakhi/internal/reconcile"
)

// commitDoneMsg is sent when Session.Commit returns.
type commitDoneMsg struct {
	err     error
	notice  reconcile.Notification
	report  model.CommitReport
	noticed bool
}
