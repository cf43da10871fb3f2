// Package history provides the stored answer browser for the TUI.
package history

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/tabula/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/tabula/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/tabula/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/tabula/internal/core/domain"
	"github.com/custodia-labs/tabula/internal/core/ports/driving"
)

// ErrNoHistoryService is returned when browsing without a history service.
var ErrNoHistoryService = errors.New("history service not available")

// pageSize is how many entries are loaded.
const pageSize = 100

// View lists stored answers; enter shows one in full.
type View struct {
	styles  *styles.Styles
	list    *list.List
	history driving.HistoryService
	ctx     context.Context

	entries []domain.HistoryEntry
	err     error
	ready   bool
}

// NewView creates a history browser.
func NewView(s *styles.Styles, history driving.HistoryService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:  s,
		list:    list.New(s, "History"),
		history: history,
		ctx:     context.Background(),
	}
}

// WithContext sets the context for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads recent entries.
func (v *View) Init() tea.Cmd {
	history, ctx := v.history, v.ctx
	return func() tea.Msg {
		if history == nil {
			return messages.HistoryLoaded{Err: ErrNoHistoryService}
		}
		entries, err := history.List(ctx, pageSize)
		return messages.HistoryLoaded{Entries: entries, Err: err}
	}
}

// Update handles messages for the history browser.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.HistoryLoaded:
		v.err = msg.Err
		v.entries = msg.Entries
		items := make([]list.Item, len(msg.Entries))
		for i, e := range msg.Entries {
			items[i] = list.Item{
				Title:  e.Question,
				Detail: firstLine(e.Answer),
				Badge:  e.CreatedAt.Format("2006-01-02 15:04"),
			}
		}
		v.list.SetItems(items)
		return v, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewMenu} }
		case "up", "k":
			v.list.MoveUp()
		case "down", "j":
			v.list.MoveDown()
		case "enter":
			if i := v.list.Selected(); i >= 0 {
				e := v.entries[i]
				return v, func() tea.Msg {
					return messages.DetailRequested{Title: e.Question, Body: Format(e), Back: messages.ViewHistory}
				}
			}
		}
	}
	return v, nil
}

// Format renders an entry as plain text.
func Format(e domain.HistoryEntry) string {
	var b strings.Builder
	b.WriteString(e.Answer)
	b.WriteString("\n\n")
	for _, s := range e.Sources {
		fmt.Fprintf(&b, "source: %s %s (page %d)\n", s.Type, s.Title, s.PageNumber)
	}
	fmt.Fprintf(&b, "\n%s mode, %d steps, stop: %s, confidence %.2f\n", e.Mode, e.Steps, e.StopReason, e.Confidence)
	fmt.Fprintf(&b, "asked %s, id %s", e.CreatedAt.Format("2006-01-02 15:04:05"), e.ID)
	return b.String()
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}

// View renders the history browser.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}
	body := v.list.View()
	if v.err != nil {
		body = v.styles.Error.Render("Error: " + v.err.Error())
	}
	footer := v.styles.Muted.Render("[j/k] Navigate  [Enter] Open  [Esc] Back")
	return lipgloss.JoinVertical(lipgloss.Left, v.styles.Title.Render("tabula"), "", body, "", footer)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.ready = true
	v.list.SetDimensions(width, height-6)
}

// Entries returns the loaded entries.
func (v *View) Entries() []domain.HistoryEntry {
	return v.entries
}
