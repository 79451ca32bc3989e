package reconcile

import "github.com/Veraticus/sakhi/internal/model"

// Notification is the single user-facing message emitted when a session
// reaches a terminal state or a commit is blocked by validation.
type Notification struct {
	Outcome   model.Outcome
	Message   string
	Saved     int
	Attempted int
}

// Notifier delivers notifications to the user.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(n Notification)

// Notify implements Notifier.
func (f NotifierFunc) Notify(n Notification) {
	f(n)
}

type discardNotifier struct{}

func (discardNotifier) Notify(Notification) {}
