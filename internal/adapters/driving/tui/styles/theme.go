// Package styles provides colour themes and styling for the TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme is the colour palette.
type Theme struct {
	Accent    lipgloss.Color
	Highlight lipgloss.Color
	Text      lipgloss.Color
	Faint     lipgloss.Color
	Good      lipgloss.Color
	Caution   lipgloss.Color
	Bad       lipgloss.Color
	Frame     lipgloss.Color
	Bar       lipgloss.Color
}

// DefaultTheme returns the default palette.
func DefaultTheme() *Theme {
	return &Theme{
		Accent:    lipgloss.Color("#2DD4BF"), // teal
		Highlight: lipgloss.Color("#F59E0B"), // amber
		Text:      lipgloss.Color("#E5E7EB"),
		Faint:     lipgloss.Color("#6B7280"),
		Good:      lipgloss.Color("#86EFAC"),
		Caution:   lipgloss.Color("#FDE68A"),
		Bad:       lipgloss.Color("#FCA5A5"),
		Frame:     lipgloss.Color("#374151"),
		Bar:       lipgloss.Color("#111827"),
	}
}

// Styles holds the lipgloss styles built from a theme.
type Styles struct {
	theme *Theme

	Title    lipgloss.Style
	Heading  lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style

	// Input frames the question field.
	Input lipgloss.Style

	// Answer frames the answer pane.
	Answer lipgloss.Style

	StatusBar lipgloss.Style
}

// NewStyles creates styles from a theme. A nil theme uses DefaultTheme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	framed := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Frame)

	return &Styles{
		theme:    theme,
		Title:    lipgloss.NewStyle().Bold(true).Foreground(theme.Accent),
		Heading:  lipgloss.NewStyle().Bold(true).Foreground(theme.Highlight),
		Normal:   lipgloss.NewStyle().Foreground(theme.Text),
		Muted:    lipgloss.NewStyle().Foreground(theme.Faint),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(theme.Bar).Background(theme.Accent),
		Error:    lipgloss.NewStyle().Foreground(theme.Bad),
		Success:  lipgloss.NewStyle().Foreground(theme.Good),
		Warning:  lipgloss.NewStyle().Foreground(theme.Caution),
		Input:    framed.Padding(0, 1),
		Answer:   framed.Padding(0, 1),
		StatusBar: lipgloss.NewStyle().
			Foreground(theme.Faint).
			Background(theme.Bar).
			Padding(0, 1),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}
