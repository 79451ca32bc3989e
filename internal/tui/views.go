package tui

import (
	"fmt"
	"strings"

	"github.com/Veraticus/sakhi/internal/i18n"
	"github.com/Veraticus/sakhi/internal/model"
	"github.com/Veraticus/sakhi/internal/reconcile"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// View implements tea.Model.
func (m Model) View() string {
	if m.done || m.cancelled {
		return m.renderNotice() + "\n"
	}

	sections := []string{m.renderHeader(), m.renderTable(), m.renderFooter()}
	if status := m.renderStatus(); status != "" {
		sections = append(sections, status)
	}
	if m.showHelp && !m.committing {
		sections = append(sections, m.theme.Help.Render(m.help.View(m.keys)))
	}

	return m.theme.RoundedBox.Render(lipgloss.JoinVertical(lipgloss.Left, sections...)) + "\n"
}

func (m Model) renderHeader() string {
	heading := m.theme.Title.Render(m.loc.Label(i18n.LabelHeading))
	count := m.theme.Subtitle.Render(fmt.Sprintf("%d %s", len(m.rows), m.loc.Label(i18n.LabelItems)))
	parts := []string{heading, "  ", count}
	if m.title != "" {
		parts = append(parts, "  ", m.theme.Header.Render(m.title))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m Model) renderTable() string {
	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = m.theme.Header.Width(c.width).Render(truncate(m.loc.Label(c.label), c.width-1))
	}
	lines := []string{lipgloss.JoinHorizontal(lipgloss.Top, header...)}

	for r, row := range m.rows {
		cells := make([]string, len(columns))
		for c, col := range columns {
			cells[c] = m.renderCell(r, c, row, col)
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}

	return strings.Join(lines, "\n")
}

func (m Model) renderCell(r, c int, row reconcile.Row, col column) string {
	selected := r == m.row && c == m.col
	style := m.theme.Normal

	var text string
	switch {
	case col.category:
		text = m.loc.Category(row.Category)
		if row.Category == model.LedgerInventory {
			style = m.theme.Inventory
		} else {
			style = m.theme.Expense
		}
	case selected && m.editing:
		return m.theme.Editing.Width(col.width).Render(m.input.View())
	default:
		text = displayValue(row, col.field)
		if row.Flagged.Has(col.field) {
			style = m.theme.Flagged
		}
	}

	if selected {
		style = m.theme.Selected
	}
	return style.Width(col.width).Render(truncate(text, col.width-1))
}

func (m Model) renderFooter() string {
	sum := decimal.Zero
	for _, r := range m.rows {
		sum = sum.Add(r.TotalPrice)
	}
	line := m.theme.Bold.Render(fmt.Sprintf("%s: ₹%s", m.loc.Label(i18n.LabelGrandTotal), sum.StringFixed(2)))

	if m.row < len(m.rows) {
		dest := m.loc.Destination(m.rows[m.row].Category)
		line = lipgloss.JoinHorizontal(lipgloss.Top, line, "   ", m.theme.Subtitle.Render(dest))
	}
	return line
}

func (m Model) renderStatus() string {
	switch {
	case m.committing:
		return m.spinner.View() + " " + m.theme.StatusPending.Render(m.loc.Label(i18n.LabelSaving))
	case m.err != nil:
		return m.theme.StatusError.Render(m.err.Error())
	case m.notice != nil:
		return m.renderNotice()
	}

	if m.row < len(m.rows) && !m.rows[m.row].Flagged.Empty() {
		var names []string
		for _, c := range columns {
			if !c.category && m.rows[m.row].Flagged.Has(c.field) {
				names = append(names, m.loc.Label(c.label))
			}
		}
		return m.theme.StatusWarning.Render(strings.Join(names, ", ") + ": " + m.loc.Label(i18n.LabelInvalidField))
	}
	return ""
}

func (m Model) renderNotice() string {
	if m.notice == nil {
		return ""
	}
	title, desc := m.loc.Notification(*m.notice)

	style := m.theme.StatusError
	switch m.notice.Outcome {
	case model.OutcomeSuccess:
		style = m.theme.StatusSuccess
	case model.OutcomePartial:
		style = m.theme.StatusWarning
	case model.OutcomeCancelled:
		style = m.theme.StatusInfo
	}
	return style.Render(title) + " " + m.theme.Normal.Render(desc)
}

// displayValue formats a cell for display.
func displayValue(row reconcile.Row, f reconcile.Field) string {
	switch f {
	case reconcile.FieldName:
		return row.Name
	case reconcile.FieldQuantity:
		return row.Quantity.String()
	case reconcile.FieldTotalPrice:
		return row.TotalPrice.StringFixed(2)
	case reconcile.FieldUnitPrice:
		return row.UnitPrice.StringFixed(2)
	case reconcile.FieldUnit:
		return row.Unit
	default:
		return ""
	}
}

// editValue is the unrounded text placed in the cell editor.
func editValue(row reconcile.Row, f reconcile.Field) string {
	switch f {
	case reconcile.FieldTotalPrice:
		return row.TotalPrice.String()
	case reconcile.FieldUnitPrice:
		return row.UnitPrice.Round(4).String()
	default:
		return displayValue(row, f)
	}
}

func truncate(s string, n int) string {
	if n <= 0 || lipgloss.Width(s) <= n {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes)) > n-1 {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
