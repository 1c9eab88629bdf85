package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mossline/ledgermind/internal/model"
)

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.active {
		return SubtleStyle.Render("Loading next transaction...")
	}

	var b strings.Builder

	b.WriteString(m.headerView())
	b.WriteString("\n\n")

	payeePanel := m.panelView(model.FieldPayee, "Payee", m.prompt.Payees, m.payee)
	categoryPanel := m.panelView(model.FieldCategory, "Category", m.prompt.Categories, m.category)
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, payeePanel, " ", categoryPanel))
	b.WriteString("\n")

	if m.entering {
		b.WriteString(fmt.Sprintf("\nNew %s: %s\n", m.focus, m.input.View()))
	}

	if m.prompt.Fallback {
		b.WriteString("\n")
		b.WriteString(WarningStyle.Render("Suggestions unavailable, showing your existing entries"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.footerView())
	return b.String()
}

func (m Model) headerView() string {
	txn := m.prompt.Transaction
	amount := AmountStyle.Render(fmt.Sprintf("%.2f", txn.Amount))
	return fmt.Sprintf("%s\n%s  %s  %s",
		TitleStyle.Render(txn.Description),
		txn.Date.Format("2006-01-02"),
		amount,
		SubtleStyle.Render(txn.AccountID))
}

func (m Model) panelView(fieldType model.FieldType, title string, suggestions model.Suggestions, state fieldState) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(title))
	b.WriteString("\n")

	switch {
	case state.selection != nil:
		b.WriteString(SelectedStyle.Render("✓ " + state.selection.Name))
	case !state.expanded:
		if len(suggestions) == 0 {
			b.WriteString(SubtleStyle.Render("no suggestions"))
		} else {
			b.WriteString(SubtleStyle.Render(fmt.Sprintf("%d suggestions (e to expand)", len(suggestions))))
		}
	default:
		for i, s := range suggestions {
			line := fmt.Sprintf("%s %s", tierBadge(s), s.Name)
			if s.Type == model.SuggestionExisting {
				line += SubtleStyle.Render(" (existing)")
			}
			if i == state.cursor && m.focus == fieldType {
				line = SelectedStyle.Render("> " + line)
			} else {
				line = "  " + line
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	style := PanelStyle
	if m.focus == fieldType {
		style = FocusedPanelStyle
	}
	return style.Render(b.String())
}

func (m Model) footerView() string {
	help := SubtleStyle.Render("enter accept · m manual · tab switch · e expand · s skip · c confirm · q quit")
	if m.metrics == nil {
		return help
	}

	snap := m.metrics.Snapshot()
	stats := SubtleStyle.Render(fmt.Sprintf("shown %d · accepted %d · rate %.0f%%",
		snap.Shown, snap.Accepted, snap.AcceptanceRate*100))
	return help + "\n" + stats
}
