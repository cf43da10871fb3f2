// Package input provides text input components for the TUI.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/tabula/internal/adapters/driving/tui/styles"
)

const minWidth = 20

// QuestionInput is a single-line question field.
type QuestionInput struct {
	textinput textinput.Model
	styles    *styles.Styles
}

// NewQuestionInput creates a focused question field.
func NewQuestionInput(s *styles.Styles) *QuestionInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = "Ask about the loaded tables..."
	ti.CharLimit = 512
	ti.Width = 60
	ti.Focus()

	return &QuestionInput{textinput: ti, styles: s}
}

// Init starts the cursor blink.
func (q *QuestionInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (q *QuestionInput) Update(msg tea.Msg) (*QuestionInput, tea.Cmd) {
	var cmd tea.Cmd
	q.textinput, cmd = q.textinput.Update(msg)
	return q, cmd
}

// View renders the field with its label.
func (q *QuestionInput) View() string {
	label := q.styles.Title.Render("Ask ")
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	return lipgloss.JoinHorizontal(lipgloss.Center, label, q.styles.Input.Render(q.textinput.View()))
}

// Value returns the current text.
func (q *QuestionInput) Value() string {
	return q.textinput.Value()
}

// SetValue replaces the text.
func (q *QuestionInput) SetValue(value string) {
	q.textinput.SetValue(value)
}

// Focus gives the field focus.
func (q *QuestionInput) Focus() tea.Cmd {
	return q.textinput.Focus()
}

// Blur removes focus.
func (q *QuestionInput) Blur() {
	q.textinput.Blur()
}

// Focused reports whether the field has focus.
func (q *QuestionInput) Focused() bool {
	return q.textinput.Focused()
}

// SetWidth fits the field to the terminal width.
func (q *QuestionInput) SetWidth(width int) {
	q.textinput.Width = max(width-12, minWidth)
}
