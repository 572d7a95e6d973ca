// Package tui provides the Bubble Tea live view for streaming verification.
//
// The TUI is opt-in (--tui flag) and renders the same progress updates the
// plain CLI prints, so nothing is observable in TUI mode only.
package tui

import "github.com/charmbracelet/lipgloss"

// Color palette.
var (
	primaryColor = lipgloss.Color("#7C3AED") // Purple
	successColor = lipgloss.Color("#10B981") // Green
	errorColor   = lipgloss.Color("#EF4444") // Red
	mutedColor   = lipgloss.Color("#6B7280") // Gray
)

// Styles for TUI components.
var (
	// TitleStyle for the document header.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	// MessageStyle for the current status line.
	MessageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	// SuccessStyle for settled success output.
	SuccessStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(successColor)

	// ErrorStyle for failure output.
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(errorColor)

	// HelpStyle for help text.
	HelpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			MarginTop(1)

	// BoxStyle for the bordered container.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(1, 2)
)

// VerdictStyle returns a style based on the verdict string.
func VerdictStyle(verdict string) lipgloss.Style {
	switch verdict {
	case "compliant", "pass":
		return SuccessStyle
	case "non_compliant", "fail":
		return ErrorStyle
	default:
		return MessageStyle
	}
}
