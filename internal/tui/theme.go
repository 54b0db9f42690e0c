package tui

import "github.com/charmbracelet/lipgloss"

// Theme holds accent-color-derived styles.
type Theme struct {
	accentStyle lipgloss.Style // title bars
	accentText  lipgloss.Style // highlighted text and table headers
	panel       lipgloss.Style // bordered quiz panel
	tableBorder lipgloss.Style
}

// NewTheme creates a Theme from a hex accent color string (e.g. "#7D56F4").
// If accentColor is empty, the default accent color is used.
func NewTheme(accentColor string) Theme {
	color := defaultAccentColor
	if accentColor != "" {
		color = accentColor
	}
	c := lipgloss.Color(color)
	return Theme{
		accentStyle: lipgloss.NewStyle().
			Background(c).
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true).
			Padding(0, 1),
		accentText: lipgloss.NewStyle().
			Foreground(c).
			Bold(true),
		panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(c).
			Padding(1, 2),
		tableBorder: lipgloss.NewStyle().
			Foreground(c),
	}
}

// Title renders s as an accent title bar.
func (t Theme) Title(s string) string {
	return t.accentStyle.Render(s)
}
