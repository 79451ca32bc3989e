package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/Veraticus/sakhi/internal/i18n"
	"github.com/Veraticus/sakhi/internal/model"
	"github.com/Veraticus/sakhi/internal/reconcile"
)

// Notifier prints clarification notifications to a terminal.
type Notifier struct {
	writer io.Writer
	loc    *i18n.Localizer
}

// NewNotifier creates a notifier. A nil writer means stdout.
func NewNotifier(writer io.Writer, loc *i18n.Localizer) *Notifier {
	if writer == nil {
		writer = os.Stdout
	}
	if loc == nil {
		loc = i18n.New("en")
	}
	return &Notifier{writer: writer, loc: loc}
}

// Notify implements reconcile.Notifier.
func (n *Notifier) Notify(note reconcile.Notification) {
	_, _ = fmt.Fprintln(n.writer, FormatNotification(n.loc, note))
}

// FormatNotification renders a notification as one styled line.
func FormatNotification(loc *i18n.Localizer, note reconcile.Notification) string {
	title, desc := loc.Notification(note)
	line := title + ": " + desc

	switch note.Outcome {
	case model.OutcomeSuccess:
		return FormatSuccess(line)
	case model.OutcomePartial:
		return FormatWarning(line)
	case model.OutcomeCancelled:
		return FormatInfo(line)
	default:
		return FormatError(line)
	}
}

// FormatFailures lists the rows the backend did not accept.
func FormatFailures(report model.CommitReport) string {
	failures := report.Failures()
	if len(failures) == 0 {
		return ""
	}
	out := ""
	for _, f := range failures {
		out += SubtleStyle.Render(fmt.Sprintf("  %s %s (%s): %s", ErrorIcon, f.Name, f.Ledger, f.Error)) + "\n"
	}
	return out
}
