package tui

import (
	"sync"

	"github.com/Veraticus/sakhi/internal/reconcile"
)

// Notices records the notifications a session emits so the table can show
// them, and forwards each one to next when set.
type Notices struct {
	next  reconcile.Notifier
	last  reconcile.Notification
	mu    sync.Mutex
	count int
}

// NewNotices creates a recorder. next may be nil.
func NewNotices(next reconcile.Notifier) *Notices {
	return &Notices{next: next}
}

// Notify implements reconcile.Notifier.
func (n *Notices) Notify(note reconcile.Notification) {
	n.mu.Lock()
	n.last = note
	n.count++
	n.mu.Unlock()

	if n.next != nil {
		n.next.Notify(note)
	}
}

// Last returns the most recent notification.
func (n *Notices) Last() (reconcile.Notification, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.last, n.count > 0
}

// Count returns how many notifications were recorded.
func (n *Notices) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.count
}
