package tui

import "github.com/charmbracelet/lipgloss"

// Dracula-inspired palette, carried over from the teacher's design tokens.
var (
	ColorBg       = lipgloss.Color("#282A36")
	ColorText     = lipgloss.Color("#F8F8F2")
	ColorSubtext  = lipgloss.Color("#BFBFBF")
	ColorMuted    = lipgloss.Color("#6272A4")
	ColorPrimary  = lipgloss.Color("#BD93F9")
	ColorHigh     = lipgloss.Color("#50FA7B")
	ColorMid      = lipgloss.Color("#F1FA8C")
	ColorLow      = lipgloss.Color("#FF5555")
	ColorDiamond  = lipgloss.Color("#8BE9FD")
)

var (
	ItemStyle         = lipgloss.NewStyle().PaddingLeft(2)
	SelectedItemStyle = lipgloss.NewStyle().PaddingLeft(1).Foreground(ColorPrimary).Bold(true)
	ColIDStyle        = lipgloss.NewStyle().Width(8).Foreground(ColorMuted)
	ColBeliefStyle    = lipgloss.NewStyle().Width(10)
	StatusBarStyle    = lipgloss.NewStyle().Foreground(ColorSubtext).Padding(0, 1)
	DetailBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorMuted).
				Padding(1, 2)
)

// beliefColor picks a color band for a belief value, for quick visual
// triage of an unusually low or saturated node.
func beliefColor(p float64) lipgloss.Color {
	switch {
	case p >= 0.75:
		return ColorHigh
	case p >= 0.35:
		return ColorMid
	default:
		return ColorLow
	}
}
