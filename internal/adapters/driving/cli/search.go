package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tabula/internal/core/domain"
)

var (
	searchLimit int
	searchScope string
	searchTerms bool
	tablesCat   string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the keyword index",
	Long: `Searches the inverted keyword index built from page titles, content,
keywords and table metadata. Pages are ranked by the number of distinct
query tokens they match.

Scopes: all, pages, tables, titles.
With --terms each argument word is used as-is, without the minimum
token length applied to free text.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

var keywordsCmd = &cobra.Command{
	Use:   "keywords",
	Short: "List every indexed keyword",
	Args:  cobra.NoArgs,
	RunE:  runKeywords,
}

var pagesCmd = &cobra.Command{
	Use:   "pages",
	Short: "List pages of the loaded documents",
	Args:  cobra.NoArgs,
	RunE:  runPages,
}

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List tables of the loaded documents",
	Args:  cobra.NoArgs,
	RunE:  runTables,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", domain.DefaultSearchLimit, "maximum number of results")
	searchCmd.Flags().StringVar(&searchScope, "scope", string(domain.ScopeAll), "index scope to search")
	searchCmd.Flags().BoolVar(&searchTerms, "terms", false, "treat arguments as exact terms")
	tablesCmd.Flags().StringVar(&tablesCat, "category", "", "only tables in this category")

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(keywordsCmd)
	rootCmd.AddCommand(pagesCmd)
	rootCmd.AddCommand(tablesCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if indexService == nil {
		return notConfigured("index")
	}

	scope, err := domain.ParseSearchScope(searchScope)
	if err != nil {
		return err
	}
	opts := domain.SearchOptions{Scope: scope, Limit: searchLimit}

	var results []domain.SearchResult
	if searchTerms {
		results, err = indexService.SearchByTerms(cmd.Context(), strings.Fields(strings.Join(args, " ")), opts)
	} else {
		results, err = indexService.Search(cmd.Context(), strings.Join(args, " "), opts)
	}
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	return render(cmd, results, func(w io.Writer) {
		if len(results) == 0 {
			fmt.Fprintln(w, "No results found.")
			return
		}
		fmt.Fprintln(w, "Results:")
		fmt.Fprintln(w)
		for i, r := range results {
			fmt.Fprintf(w, "  [%d] Page %d: %s (%.0f)\n", i+1, r.PageNumber, r.PageTitle, r.Score)
			fmt.Fprintf(w, "      %s %s\n", dimText("matched:"), strings.Join(r.MatchedKeywords, ", "))
			for _, t := range r.Tables {
				fmt.Fprintf(w, "      table: %s\n", t.Title)
			}
			if r.Context != "" {
				fmt.Fprintf(w, "      %s\n", r.Context)
			}
			fmt.Fprintln(w)
		}
	})
}

func runKeywords(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return notConfigured("index")
	}
	keywords, err := indexService.AvailableKeywords(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing keywords: %w", err)
	}
	return render(cmd, keywords, func(w io.Writer) {
		fmt.Fprintf(w, "%d keywords\n", len(keywords))
		for _, k := range keywords {
			fmt.Fprintln(w, k)
		}
	})
}

func runPages(cmd *cobra.Command, _ []string) error {
	if discoveryService == nil {
		return notConfigured("discovery")
	}
	pages := discoveryService.ListPages(cmd.Context())
	return render(cmd, pages, func(w io.Writer) {
		if len(pages) == 0 {
			fmt.Fprintln(w, "No pages.")
			return
		}
		for _, p := range pages {
			fmt.Fprintf(w, "%4d  %s %s\n", p.Number, p.Title, dimText("["+p.DocID+"]"))
		}
	})
}

func runTables(cmd *cobra.Command, _ []string) error {
	if discoveryService == nil {
		return notConfigured("discovery")
	}

	var tables []domain.TableEntry
	if tablesCat != "" {
		tables = discoveryService.TablesByCategory(cmd.Context(), tablesCat)
	} else {
		tables = discoveryService.ListTables(cmd.Context())
	}

	return render(cmd, tables, func(w io.Writer) {
		if len(tables) == 0 {
			fmt.Fprintln(w, "No tables.")
			return
		}
		for _, t := range tables {
			fmt.Fprintf(w, "%s\n", t.Title)
			fmt.Fprintf(w, "    page %d, %d rows x %d columns, category %s %s\n",
				t.PageNumber, t.RowCount, t.ColumnCount, t.Category, dimText("["+t.DocID+"]"))
			if t.Description != "" {
				fmt.Fprintf(w, "    %s\n", t.Description)
			}
		}
	})
}
