// Package theme holds the lipgloss styles for command output.
package theme

import (
	"charm.land/lipgloss/v2"
)

// Color palette
var (
	Primary = lipgloss.Color("#8B5CF6") // Vivid Purple
	Accent  = lipgloss.Color("#14B8A6") // Teal
	Success = lipgloss.Color("#22C55E") // Green
	Warning = lipgloss.Color("#F97316") // Orange
	Error   = lipgloss.Color("#F43F5E") // Rose
	TextDim = lipgloss.Color("#94A3B8") // Slate
	Border  = lipgloss.Color("#334155") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Label = lipgloss.NewStyle().
		Foreground(TextDim).
		Width(22)

	Value = lipgloss.NewStyle().
		Bold(true)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// States
var (
	Good = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Warn = lipgloss.NewStyle().
		Foreground(Warning)

	Bad = lipgloss.NewStyle().
		Foreground(Error).
		Bold(true)
)

// Card frames a block of summary lines.
var Card = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Border).
	Padding(0, 2)

// Row renders one "label value" line.
func Row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, Label.Render(label), value)
}

// Panel renders a titled card from rows.
func Panel(title string, rows ...string) string {
	lines := append([]string{Title.Render(title), ""}, rows...)
	return Card.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// Ratio styles kept/total green when nothing was lost, orange when some
// items were dropped, and red when none survived.
func Ratio(kept, total int) lipgloss.Style {
	switch {
	case total == 0 || kept == total:
		return Good
	case kept == 0:
		return Bad
	default:
		return Warn
	}
}
