// Package tui implements the interactive review interface using bubbletea.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/mossline/ledgermind/internal/model"
)

var (
	// PrimaryColor is the main theme color.
	PrimaryColor = lipgloss.Color("#7FB4CA")
	// SuccessColor indicates successful operations.
	SuccessColor = lipgloss.Color("#4ECDC4")
	// WarningColor indicates warnings or caution messages.
	WarningColor = lipgloss.Color("#FFE66D")
	// ErrorColor indicates errors or failure messages.
	ErrorColor = lipgloss.Color("#FF6B6B")
	// SubtleColor indicates less prominent UI elements.
	SubtleColor = lipgloss.Color("#666666")

	// TitleStyle is used for section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor)

	// AmountStyle formats transaction amounts.
	AmountStyle = lipgloss.NewStyle().
			Bold(true)

	// SubtleStyle formats less prominent text.
	SubtleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	// WarningStyle formats warning messages.
	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor)

	// SelectedStyle highlights the suggestion under the cursor.
	SelectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor)

	// PanelStyle frames the payee and category panels.
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#333333")).
			Padding(0, 1)

	// FocusedPanelStyle frames the panel that has keyboard focus.
	FocusedPanelStyle = PanelStyle.
				BorderForeground(PrimaryColor)

	tierHighStyle = lipgloss.NewStyle().
			Foreground(SuccessColor)
	tierMediumStyle = lipgloss.NewStyle().
			Foreground(WarningColor)
	tierLowStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)
)

// tierBadge renders a short confidence label for a suggestion.
func tierBadge(s model.Suggestion) string {
	switch s.Tier() {
	case model.TierHigh:
		return tierHighStyle.Render("●●●")
	case model.TierMedium:
		return tierMediumStyle.Render("●●○")
	default:
		return tierLowStyle.Render("●○○")
	}
}
