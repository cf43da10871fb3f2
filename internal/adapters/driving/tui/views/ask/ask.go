// Package ask provides the question and answer view for the TUI.
package ask

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/tabula/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/tabula/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/tabula/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/tabula/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/tabula/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/tabula/internal/core/domain"
	"github.com/custodia-labs/tabula/internal/core/ports/driving"
)

// ErrNoAnswerService is returned when asking without an answer service.
var ErrNoAnswerService = errors.New("answer service not available")

// chrome is the number of lines used by header, input and status bar.
const chrome = 8

// View asks questions and shows answers with their sources.
type View struct {
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	input    *input.QuestionInput
	spinner  spinner.Model
	viewport viewport.Model
	status   *status.Bar

	answers driving.AnswerService
	ctx     context.Context

	question   string
	response   *domain.Response
	err        error
	thinking   bool
	showTrace  bool
	focusInput bool
	width      int
	height     int
	ready      bool
}

// NewView creates an ask view.
func NewView(s *styles.Styles, km *keymap.KeyMap, answers driving.AnswerService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Title

	v := &View{
		styles:     s,
		keymap:     km,
		input:      input.NewQuestionInput(s),
		spinner:    sp,
		viewport:   viewport.New(80, 24-chrome),
		status:     status.NewBar(s),
		answers:    answers,
		ctx:        context.Background(),
		focusInput: true,
		width:      80,
		height:     24,
	}
	v.status.SetHints(km.InputHelp())
	return v
}

// WithContext sets the context questions run under.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init starts the input cursor.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the ask view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return v.handleKey(msg)

	case messages.AnswerCompleted:
		v.handleAnswer(msg)
		return v, nil

	case spinner.TickMsg:
		if !v.thinking {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	if v.focusInput {
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	if key.Matches(msg, v.keymap.Back) {
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewMenu} }
	}

	if v.focusInput {
		if key.Matches(msg, v.keymap.Submit) {
			return v, v.submit()
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	switch {
	case key.Matches(msg, v.keymap.NewQuestion):
		v.focusInput = true
		v.input.SetValue("")
		v.status.SetHints(v.keymap.InputHelp())
		return v, v.input.Focus()
	case key.Matches(msg, v.keymap.Trace):
		v.showTrace = !v.showTrace
		v.refresh()
		return v, nil
	}

	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return v, cmd
}

// submit starts answering the current input.
func (v *View) submit() tea.Cmd {
	question := strings.TrimSpace(v.input.Value())
	if question == "" || v.thinking {
		return nil
	}

	v.question = question
	v.thinking = true
	v.err = nil
	v.status.SetState(status.StateThinking)
	v.status.SetMessage("")
	return tea.Batch(v.spinner.Tick, v.ask(question))
}

func (v *View) ask(question string) tea.Cmd {
	answers, ctx := v.answers, v.ctx
	return func() tea.Msg {
		if answers == nil {
			return messages.AnswerCompleted{Err: ErrNoAnswerService}
		}
		resp, err := answers.Ask(ctx, question)
		return messages.AnswerCompleted{Response: resp, Err: err}
	}
}

func (v *View) handleAnswer(msg messages.AnswerCompleted) {
	v.thinking = false
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}

	v.response = msg.Response
	v.err = nil
	v.focusInput = false
	v.input.Blur()

	meta := msg.Response.Metadata
	v.status.SetState(status.StateAnswered)
	v.status.SetMessage(fmt.Sprintf("%d steps, %s, %s", meta.Steps, meta.StopReason, meta.Duration.Round(time.Millisecond)))
	v.status.SetHints(v.keymap.AnswerHelp())
	v.refresh()
}

func (v *View) setError(err error) {
	v.err = err
	v.status.SetState(status.StateError)
	v.status.SetMessage(err.Error())
}

// refresh re-renders the answer into the viewport.
func (v *View) refresh() {
	v.viewport.SetContent(v.renderAnswer())
	v.viewport.GotoTop()
}

func (v *View) renderAnswer() string {
	resp := v.response
	if resp == nil {
		return ""
	}
	wrap := lipgloss.NewStyle().Width(max(v.width-4, 20))

	var b strings.Builder
	b.WriteString(wrap.Render(resp.Answer))
	b.WriteString("\n")

	if len(resp.Sources) > 0 {
		b.WriteString("\n" + v.styles.Heading.Render("Sources") + "\n")
		for _, s := range resp.Sources {
			b.WriteString(fmt.Sprintf("  %s %s %s\n", s.Type, s.Title, v.styles.Muted.Render(fmt.Sprintf("p.%d", s.PageNumber))))
		}
	}

	if v.showTrace {
		b.WriteString("\n" + v.styles.Heading.Render("Tool calls") + "\n")
		for _, c := range resp.Metadata.ToolCalls {
			call := domain.ToolCall{Name: c.Tool, Parameters: c.Parameters}
			outcome := v.styles.Success.Render(string(c.Kind))
			if c.Error != "" {
				outcome = v.styles.Error.Render(c.Error)
			}
			b.WriteString(fmt.Sprintf("  %d. %s %s\n", c.Step, call, outcome))
		}
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render(fmt.Sprintf("confidence %.2f, tools: %s",
		resp.Confidence, strings.Join(resp.ToolsUsed, ", "))))
	if resp.Metadata.Degraded {
		b.WriteString("\n" + v.styles.Warning.Render("degraded: the language model was unavailable or failed"))
	}
	return b.String()
}

// View renders the ask view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := []string{v.styles.Title.Render("tabula"), "", v.input.View(), ""}

	switch {
	case v.thinking:
		sections = append(sections, v.spinner.View()+" "+v.styles.Muted.Render(v.question))
	case v.err != nil:
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()))
	case v.response != nil:
		sections = append(sections, v.viewport.View())
	default:
		sections = append(sections, v.styles.Muted.Render("Type a question and press enter."))
	}

	sections = append(sections, "", v.status.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.input.SetWidth(width)
	v.viewport.Width = width
	v.viewport.Height = max(height-chrome, 3)
	v.status.SetWidth(width)
	if v.response != nil {
		v.refresh()
	}
}

// Reset returns to an empty question.
func (v *View) Reset() {
	v.focusInput = true
	v.input.SetValue("")
	v.input.Focus()
	v.response = nil
	v.err = nil
	v.thinking = false
	v.status.Clear()
	v.status.SetHints(v.keymap.InputHelp())
}

// Response returns the last answer.
func (v *View) Response() *domain.Response {
	return v.response
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

// Thinking reports whether a question is in flight.
func (v *View) Thinking() bool {
	return v.thinking
}

// InputFocused reports whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// ShowTrace reports whether tool calls are shown.
func (v *View) ShowTrace() bool {
	return v.showTrace
}
