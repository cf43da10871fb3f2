package cli

import (
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/tabula/internal/core/domain"
	"github.com/custodia-labs/tabula/internal/core/ports/driving"
)

var loadSave bool

var loadCmd = &cobra.Command{
	Use:   "load <id=path>...",
	Short: "Load documents and report what was indexed",
	Long: `Loads one or more document dumps, rebuilds the keyword index and prints
library statistics. A bare path uses the file name as the document id.

With --save the documents are added to library.documents in the config
file and are loaded automatically by every later command.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLoad,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show loaded documents and counts",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	loadCmd.Flags().BoolVar(&loadSave, "save", false, "add the documents to the startup library")
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(statsCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return notConfigured("library")
	}

	specs := make([]driving.DocumentSpec, 0, len(args))
	for _, arg := range args {
		spec, err := driving.ParseDocumentSpec(arg)
		if err != nil {
			return err
		}
		specs = append(specs, spec)
	}

	var bar *progressbar.ProgressBar
	if onLoaded != nil && outputFlag == outputText && stdoutIsTerminal() {
		bar = newLoadBar(len(specs))
		onLoaded(func(r driving.LoadResult) {
			bar.Describe(r.ID)
			bar.Add(1) //nolint:errcheck
		})
		defer onLoaded(nil)
	}

	results := libraryService.LoadAll(cmd.Context(), specs)
	if bar != nil {
		bar.Finish() //nolint:errcheck
		fmt.Fprintln(cmd.OutOrStdout())
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %s: %v\n", failText("FAILED"), r.ID, r.Err)
			continue
		}
		if loadSave && settingsService != nil {
			if err := settingsService.AddDocument(r.ID + "=" + r.Path); err != nil {
				warn(cmd, "saving %s: %v", r.ID, err)
			}
		}
	}

	if err := printStats(cmd, libraryService.Statistics()); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed to load", failed, len(specs))
	}
	return nil
}

func runStats(cmd *cobra.Command, _ []string) error {
	if libraryService == nil {
		return notConfigured("library")
	}
	return printStats(cmd, libraryService.Statistics())
}

func printStats(cmd *cobra.Command, stats domain.StoreStatistics) error {
	return render(cmd, stats, func(w io.Writer) {
		fmt.Fprintf(w, "Documents: %d  Pages: %d  Tables: %d  Keywords: %d\n",
			stats.TotalDocuments, stats.TotalPages, stats.TotalTables, stats.TotalKeywords)
		if len(stats.Documents) == 0 {
			fmt.Fprintln(w, "No documents loaded. Use --doc id=path or 'tabula load'.")
			return
		}
		fmt.Fprintln(w)
		for _, d := range stats.Documents {
			title := d.Title
			if title == "" {
				title = d.ID
			}
			fmt.Fprintf(w, "  %s  %s\n", d.ID, title)
			fmt.Fprintf(w, "      %d pages, %d tables, %d keywords %s\n",
				d.PageCount, d.TableCount, d.KeywordCount, dimText("loaded "+d.LoadedAt.Format("15:04:05")))
			if d.Source != "" {
				fmt.Fprintf(w, "      %s\n", dimText(d.Source))
			}
		}
	})
}

func newLoadBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription("loading"),
		progressbar.OptionSetItsString("docs"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
}
