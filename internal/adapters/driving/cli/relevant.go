package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tabula/internal/core/domain"
)

var summaryStats bool

var relevantCmd = &cobra.Command{
	Use:   "relevant",
	Short: "Score tables or pages against a query",
	Long: `Scores tables or pages against a free-text query using category, column,
value, description, content and keyword matches. Only positive scores
are listed, highest first.`,
}

var relevantTablesCmd = &cobra.Command{
	Use:   "tables [query]",
	Short: "Find tables relevant to a query",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRelevantTables,
}

var relevantPagesCmd = &cobra.Command{
	Use:   "pages [query]",
	Short: "Find pages relevant to a query",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRelevantPages,
}

var summaryCmd = &cobra.Command{
	Use:   "summary [table title]",
	Short: "Show a table's columns, types and sample rows",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSummary,
}

func init() {
	summaryCmd.Flags().BoolVar(&summaryStats, "stats", false, "include per-column value counts")

	relevantCmd.AddCommand(relevantTablesCmd)
	relevantCmd.AddCommand(relevantPagesCmd)
	rootCmd.AddCommand(relevantCmd)
	rootCmd.AddCommand(summaryCmd)
}

func runRelevantTables(cmd *cobra.Command, args []string) error {
	if discoveryService == nil {
		return notConfigured("discovery")
	}
	matches := discoveryService.FindRelevantTables(cmd.Context(), strings.Join(args, " "))
	return render(cmd, matches, func(w io.Writer) {
		if len(matches) == 0 {
			fmt.Fprintln(w, "No relevant tables.")
			return
		}
		for _, m := range matches {
			fmt.Fprintf(w, "%5.2f  %s %s\n", m.Score, m.TableName, dimText("("+m.Relation+")"))
			fmt.Fprintf(w, "       page %d, category %s: %s\n", m.PageNumber, m.Category, m.MatchDetails)
		}
	})
}

func runRelevantPages(cmd *cobra.Command, args []string) error {
	if discoveryService == nil {
		return notConfigured("discovery")
	}
	matches := discoveryService.FindRelevantPages(cmd.Context(), strings.Join(args, " "))
	return render(cmd, matches, func(w io.Writer) {
		if len(matches) == 0 {
			fmt.Fprintln(w, "No relevant pages.")
			return
		}
		for _, m := range matches {
			fmt.Fprintf(w, "%5.2f  Page %d: %s %s\n", m.Score, m.PageNumber, m.PageTitle, dimText("("+m.Relation+")"))
			fmt.Fprintf(w, "       %d tables: %s\n", m.TableCount, m.MatchDetails)
		}
	})
}

// summaryView is the structured output of the summary command.
type summaryView struct {
	Summary    *domain.TableSummary    `json:"summary"`
	Statistics *domain.TableStatistics `json:"statistics,omitempty"`
}

func runSummary(cmd *cobra.Command, args []string) error {
	if discoveryService == nil {
		return notConfigured("discovery")
	}
	title := strings.Join(args, " ")

	summary, ok := discoveryService.TableSummary(cmd.Context(), title)
	if !ok {
		return fmt.Errorf("table %q: %w", title, domain.ErrNotFound)
	}

	view := summaryView{Summary: summary}
	if summaryStats && retrievalService != nil {
		stats, err := retrievalService.TableStatistics(cmd.Context(), title)
		if err != nil {
			return fmt.Errorf("table statistics: %w", err)
		}
		view.Statistics = stats
	}

	return render(cmd, view, func(w io.Writer) {
		result := &domain.SummaryResult{Summary: *summary}
		fmt.Fprintln(w, result.Format())
		if view.Statistics == nil {
			return
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Column statistics:")
		names := make([]string, 0, len(view.Statistics.Columns))
		for name := range view.Statistics.Columns {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			c := view.Statistics.Columns[name]
			fmt.Fprintf(w, "  %s: %d values, %d unique, %d null\n", name, c.TotalValues, c.UniqueValues, c.NullCount)
		}
	})
}
