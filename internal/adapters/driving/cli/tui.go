package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/tabula/internal/adapters/driving/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for tabula.

Ask questions, browse loaded tables and revisit previous answers.

Controls:
  ↑/k, ↓/j - Navigate
  Enter    - Ask / Select
  t        - Toggle tool calls under an answer
  n        - New question
  Esc      - Back
  Ctrl+C   - Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("TUI panic: %v", r)
		}
	}()

	if answerFactory == nil {
		return notConfigured("answer")
	}
	ctx := cmd.Context()
	answers, err := answerFactory(ctx, "")
	if err != nil {
		return err
	}

	ports := &tui.Ports{
		Answers:   answers,
		Discovery: discoveryService,
		History:   historyService,
	}
	if libraryService != nil {
		stats := libraryService.Statistics()
		ports.Summary = fmt.Sprintf("%d documents, %d tables, %d pages",
			stats.TotalDocuments, stats.TotalTables, stats.TotalPages)
	}

	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(ctx)

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
