// Package tui provides the bubbletea + lipgloss quiz interface and the
// lipgloss tables used by the stats commands.
package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// defaultAccentColor is the default accent color (indigo).
const defaultAccentColor = "#7D56F4"

var (
	colorWhite  = lipgloss.Color("#FAFAFA")
	colorGray   = lipgloss.Color("#888888")
	colorGreen  = lipgloss.Color("#6BCB77")
	colorYellow = lipgloss.Color("#FFD93D")
	colorRed    = lipgloss.Color("#FF6B6B")
)

var (
	dimStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	questionStyle = lipgloss.NewStyle().
			Foreground(colorWhite).
			Bold(true)

	commandStyle = lipgloss.NewStyle().
			Foreground(colorYellow)

	correctStyle = lipgloss.NewStyle().
			Foreground(colorGreen).
			Bold(true)

	wrongStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	cellStyle = lipgloss.NewStyle().
			Padding(0, 1)
)

// truncate shortens s to at most width terminal cells.
func truncate(s string, width int) string {
	if width <= 1 {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

// verdictStyle colors a quiz verdict by score band.
func verdictStyle(percent float64) lipgloss.Style {
	switch {
	case percent >= 80:
		return correctStyle
	case percent >= 60:
		return lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	default:
		return wrongStyle
	}
}
