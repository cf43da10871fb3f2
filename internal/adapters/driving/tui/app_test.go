package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tabula/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/tabula/internal/core/domain"
)

func newTestPorts() *Ports {
	return &Ports{
		Answers: &MockAnswerService{Response: &domain.Response{Answer: "42"}},
		Discovery: &MockDiscoveryService{
			Tables:  []domain.TableEntry{{Title: "Revenue", PageNumber: 3, RowCount: 4, ColumnCount: 2}},
			Summary: &domain.TableSummary{Title: "Revenue", Category: "Finance", RowCount: 4, ColumnCount: 2},
		},
		History: &MockHistoryService{},
	}
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	app, err := NewApp(newTestPorts())
	require.NoError(t, err)
	app.SetDimensions(80, 24)
	return app
}

func TestNewApp_Success(t *testing.T) {
	app, err := NewApp(newTestPorts())

	require.NoError(t, err)
	require.NotNil(t, app)
	assert.Equal(t, messages.ViewMenu, app.CurrentView())
	assert.Len(t, app.menuView.Items(), 4)
}

func TestNewApp_InvalidPorts(t *testing.T) {
	app, err := NewApp(&Ports{})

	assert.ErrorIs(t, err, ErrMissingAnswerService)
	assert.Nil(t, app)

	app, err = NewApp(nil)
	assert.Error(t, err)
	assert.Nil(t, app)
}

func TestNewApp_OptionalPortsHideMenuItems(t *testing.T) {
	app, err := NewApp(&Ports{Answers: &MockAnswerService{}})

	require.NoError(t, err)
	assert.Len(t, app.menuView.Items(), 2)
}

func TestApp_WithContext(t *testing.T) {
	app, _ := NewApp(newTestPorts())

	type contextKey string
	ctx := context.WithValue(context.Background(), contextKey("key"), "value")

	assert.Equal(t, app, app.WithContext(ctx))
	assert.Equal(t, ctx, app.ctx)
}

func TestApp_Init(t *testing.T) {
	app, _ := NewApp(newTestPorts())

	assert.NotNil(t, app.Init())
}

func TestApp_Update_WindowSize(t *testing.T) {
	app, _ := NewApp(newTestPorts())

	model, cmd := app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	assert.Equal(t, app, model)
	assert.Nil(t, cmd)
	assert.True(t, app.Ready())
	assert.Equal(t, 100, app.width)
}

func TestApp_View_NotReady(t *testing.T) {
	app, _ := NewApp(newTestPorts())

	assert.Equal(t, "Initialising...", app.View())
}

func TestApp_Update_CtrlC(t *testing.T) {
	app := newTestApp(t)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestApp_AskFlow(t *testing.T) {
	app := newTestApp(t)
	answers := app.ports.Answers.(*MockAnswerService)

	app.Update(messages.ViewChanged{View: messages.ViewAsk})
	assert.Equal(t, messages.ViewAsk, app.CurrentView())

	for _, r := range "why" {
		app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, app.askView.Thinking())

	resp, err := answers.Ask(context.Background(), "why")
	app.Update(messages.AnswerCompleted{Response: resp, Err: err})

	assert.False(t, app.askView.Thinking())
	assert.Equal(t, "42", app.askView.Response().Answer)
	assert.Contains(t, app.View(), "42")
}

func TestApp_AnswerError(t *testing.T) {
	app := newTestApp(t)
	app.Update(messages.ViewChanged{View: messages.ViewAsk})

	app.Update(messages.AnswerCompleted{Err: errors.New("boom")})

	assert.EqualError(t, app.Err(), "boom")
	assert.Contains(t, app.View(), "boom")
}

func TestApp_TablesToDetail(t *testing.T) {
	app := newTestApp(t)

	_, cmd := app.Update(messages.ViewChanged{View: messages.ViewTables})
	require.NotNil(t, cmd)
	app.Update(cmd())
	assert.Len(t, app.tablesView.Tables(), 1)
	assert.Contains(t, app.View(), "Revenue")

	_, cmd = app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	msg := cmd()
	detail, ok := msg.(messages.DetailRequested)
	require.True(t, ok)
	assert.Equal(t, messages.ViewTables, detail.Back)

	app.Update(msg)
	assert.Equal(t, messages.ViewDetail, app.CurrentView())
	assert.Contains(t, app.View(), "Category: Finance")

	_, cmd = app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	app.Update(cmd())
	assert.Equal(t, messages.ViewTables, app.CurrentView())
}

func TestApp_HistoryError(t *testing.T) {
	ports := newTestPorts()
	ports.History = &MockHistoryService{Err: errors.New("db closed")}
	app, err := NewApp(ports)
	require.NoError(t, err)
	app.SetDimensions(80, 24)

	_, cmd := app.Update(messages.ViewChanged{View: messages.ViewHistory})
	require.NotNil(t, cmd)
	app.Update(cmd())

	assert.EqualError(t, app.Err(), "db closed")
	assert.Contains(t, app.View(), "db closed")
}

func TestApp_EscReturnsToMenu(t *testing.T) {
	app := newTestApp(t)
	app.Update(messages.ViewChanged{View: messages.ViewHistory})

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	app.Update(cmd())

	assert.Equal(t, messages.ViewMenu, app.CurrentView())
}
