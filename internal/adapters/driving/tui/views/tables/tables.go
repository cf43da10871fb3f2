// Package tables provides the table browser view for the TUI.
package tables

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/tabula/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/tabula/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/tabula/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/tabula/internal/core/domain"
	"github.com/custodia-labs/tabula/internal/core/ports/driving"
)

// ErrNoDiscoveryService is returned when browsing without a discovery service.
var ErrNoDiscoveryService = errors.New("discovery service not available")

// View lists tables; enter opens the table summary.
type View struct {
	styles    *styles.Styles
	list      *list.List
	discovery driving.DiscoveryService
	ctx       context.Context

	tables []domain.TableEntry
	err    error
	ready  bool
}

// NewView creates a table browser.
func NewView(s *styles.Styles, discovery driving.DiscoveryService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:    s,
		list:      list.New(s, "Tables"),
		discovery: discovery,
		ctx:       context.Background(),
	}
}

// WithContext sets the context for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the table listing.
func (v *View) Init() tea.Cmd {
	discovery, ctx := v.discovery, v.ctx
	return func() tea.Msg {
		if discovery == nil {
			return messages.TablesLoaded{Err: ErrNoDiscoveryService}
		}
		return messages.TablesLoaded{Tables: discovery.ListTables(ctx)}
	}
}

// Update handles messages for the table browser.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.TablesLoaded:
		v.err = msg.Err
		v.tables = msg.Tables
		items := make([]list.Item, len(msg.Tables))
		for i, t := range msg.Tables {
			items[i] = list.Item{
				Title:  t.Title,
				Detail: fmt.Sprintf("page %d, %d rows x %d columns, %s", t.PageNumber, t.RowCount, t.ColumnCount, t.Category),
				Badge:  t.DocID,
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
			return v, v.openSelected()
		}
	}
	return v, nil
}

func (v *View) openSelected() tea.Cmd {
	i := v.list.Selected()
	if i < 0 || v.discovery == nil {
		return nil
	}
	title := v.tables[i].Title
	discovery, ctx := v.discovery, v.ctx
	return func() tea.Msg {
		summary, ok := discovery.TableSummary(ctx, title)
		if !ok {
			return messages.ErrorOccurred{Err: fmt.Errorf("table %q: %w", title, domain.ErrNotFound)}
		}
		result := &domain.SummaryResult{Summary: *summary}
		return messages.DetailRequested{Title: title, Body: result.Format(), Back: messages.ViewTables}
	}
}

// View renders the table browser.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}
	body := v.list.View()
	if v.err != nil {
		body = v.styles.Error.Render("Error: " + v.err.Error())
	}
	footer := v.styles.Muted.Render("[j/k] Navigate  [Enter] Summary  [Esc] Back")
	return lipgloss.JoinVertical(lipgloss.Left, v.styles.Title.Render("tabula"), "", body, "", footer)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.ready = true
	v.list.SetDimensions(width, height-6)
}

// SetError shows an error in place of the list.
func (v *View) SetError(err error) {
	v.err = err
}

// Tables returns the loaded tables.
func (v *View) Tables() []domain.TableEntry {
	return v.tables
}

// Selected returns the selected index.
func (v *View) Selected() int {
	return v.list.Selected()
}
