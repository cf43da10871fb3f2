package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/tabula/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/tabula/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/tabula/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/tabula/internal/adapters/driving/tui/views/ask"
	"github.com/custodia-labs/tabula/internal/adapters/driving/tui/views/detail"
	"github.com/custodia-labs/tabula/internal/adapters/driving/tui/views/history"
	"github.com/custodia-labs/tabula/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/tabula/internal/adapters/driving/tui/views/tables"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	menuView    *menu.View
	askView     *ask.View
	tablesView  *tables.View
	historyView *history.View
	detailView  *detail.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	err error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if ports == nil {
		return nil, fmt.Errorf("creating app: %w", ErrMissingAnswerService)
	}
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	menuView := menu.NewView(s, ports.Discovery != nil, ports.History != nil)
	menuView.SetSummary(ports.Summary)

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		keymap:      km,
		menuView:    menuView,
		askView:     ask.NewView(s, km, ports.Answers),
		tablesView:  tables.NewView(s, ports.Discovery),
		historyView: history.NewView(s, ports.History),
		detailView:  detail.NewView(s),
		currentView: messages.ViewMenu,
	}, nil
}

// WithContext sets the context service calls run under.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.askView.WithContext(ctx)
	a.tablesView.WithContext(ctx)
	a.historyView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.SetWindowTitle("tabula")
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

	case messages.ViewChanged:
		a.currentView = msg.View
		switch msg.View {
		case messages.ViewAsk:
			a.askView.Reset()
			return a, a.askView.Init()
		case messages.ViewTables:
			return a, a.tablesView.Init()
		case messages.ViewHistory:
			return a, a.historyView.Init()
		case messages.ViewMenu, messages.ViewDetail:
		}
		return a, nil

	case messages.DetailRequested:
		a.detailView.Show(msg)
		a.currentView = messages.ViewDetail
		return a, nil

	case messages.AnswerCompleted:
		a.err = msg.Err
		a.askView, cmd = a.askView.Update(msg)
		return a, cmd

	case messages.TablesLoaded:
		a.err = msg.Err
		a.tablesView, cmd = a.tablesView.Update(msg)
		return a, cmd

	case messages.HistoryLoaded:
		a.err = msg.Err
		a.historyView, cmd = a.historyView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		switch a.currentView {
		case messages.ViewTables:
			a.tablesView.SetError(msg.Err)
			return a, nil
		case messages.ViewAsk:
			a.askView, cmd = a.askView.Update(msg)
			return a, cmd
		default:
			return a, nil
		}
	}

	return a, a.forward(msg)
}

// forward passes a message to the active view.
func (a *App) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewAsk:
		a.askView, cmd = a.askView.Update(msg)
	case messages.ViewTables:
		a.tablesView, cmd = a.tablesView.Update(msg)
	case messages.ViewHistory:
		a.historyView, cmd = a.historyView.Update(msg)
	case messages.ViewDetail:
		a.detailView, cmd = a.detailView.Update(msg)
	}
	return cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewAsk:
		return a.askView.View()
	case messages.ViewTables:
		return a.tablesView.View()
	case messages.ViewHistory:
		return a.historyView.View()
	case messages.ViewDetail:
		return a.detailView.View()
	default:
		return a.menuView.View()
	}
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has received its dimensions.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.askView.SetDimensions(width, height)
	a.tablesView.SetDimensions(width, height)
	a.historyView.SetDimensions(width, height)
	a.detailView.SetDimensions(width, height)
}
