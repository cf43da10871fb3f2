package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tabula/internal/core/domain"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse previously answered questions",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent questions, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a stored answer",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all stored answers",
	Args:  cobra.NoArgs,
	RunE:  runHistoryClear,
}

func init() {
	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum entries (0 for all)")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	if historyService == nil {
		return notConfigured("history")
	}
	entries, err := historyService.List(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}
	return render(cmd, entries, func(w io.Writer) {
		if len(entries) == 0 {
			fmt.Fprintln(w, "No history.")
			return
		}
		for _, e := range entries {
			fmt.Fprintf(w, "%s  %s  %s\n", dimText(e.CreatedAt.Format("2006-01-02 15:04")), e.ID, e.Question)
		}
	})
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	if historyService == nil {
		return notConfigured("history")
	}
	entry, err := historyService.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return render(cmd, entry, func(w io.Writer) {
		printHistoryEntry(w, entry)
	})
}

func printHistoryEntry(w io.Writer, e *domain.HistoryEntry) {
	fmt.Fprintf(w, "Question: %s\n", e.Question)
	fmt.Fprintf(w, "Asked:    %s\n\n", e.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintln(w, e.Answer)
	fmt.Fprintln(w)
	if len(e.Sources) > 0 {
		printSources(w, e.Sources)
	}
	fmt.Fprintln(w, dimText(fmt.Sprintf("%s mode, %d steps, stop: %s, confidence %.2f",
		e.Mode, e.Steps, e.StopReason, e.Confidence)))
	if e.Degraded {
		fmt.Fprintln(w, failText("answer was degraded"))
	}
}

func runHistoryClear(cmd *cobra.Command, _ []string) error {
	if historyService == nil {
		return notConfigured("history")
	}
	n, err := historyService.Clear(cmd.Context())
	if err != nil {
		return err
	}
	cmd.Printf("Deleted %d entries.\n", n)
	return nil
}
