// Package detail provides a scrollable text view for the TUI.
package detail

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/tabula/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/tabula/internal/adapters/driving/tui/styles"
)

// View shows a title and a scrollable body.
type View struct {
	styles   *styles.Styles
	viewport viewport.Model
	title    string
	body     string
	back     messages.ViewType
	width    int
	ready    bool
}

// NewView creates a detail view.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{styles: s, viewport: viewport.New(80, 20), width: 80, back: messages.ViewMenu}
}

// Show replaces the content.
func (v *View) Show(msg messages.DetailRequested) {
	v.title = msg.Title
	v.body = msg.Body
	v.back = msg.Back
	v.render()
}

func (v *View) render() {
	wrap := lipgloss.NewStyle().Width(max(v.width-2, 20))
	v.viewport.SetContent(wrap.Render(v.body))
	v.viewport.GotoTop()
}

// Update handles scrolling and esc.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
		back := v.back
		return v, func() tea.Msg { return messages.ViewChanged{View: back} }
	}
	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return v, cmd
}

// View renders the detail view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}
	footer := v.styles.Muted.Render("[↑/↓] Scroll  [Esc] Back")
	return lipgloss.JoinVertical(lipgloss.Left, v.styles.Title.Render(v.title), "", v.viewport.View(), "", footer)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.ready = true
	v.viewport.Width = width
	v.viewport.Height = max(height-5, 3)
	v.render()
}

// Title returns the current title.
func (v *View) Title() string {
	return v.title
}

// Body returns the current body.
func (v *View) Body() string {
	return v.body
}

// Back returns the view esc returns to.
func (v *View) Back() messages.ViewType {
	return v.back
}
