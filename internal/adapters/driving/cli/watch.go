package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tabula/internal/core/ports/driving"
	"github.com/custodia-labs/tabula/internal/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Reload documents when their files change",
	Long: `Loads the startup documents and watches their files. When a dump is
rewritten it is reloaded and the index is rebuilt. A deleted dump is
unloaded, and loaded again if it reappears. Runs until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	return watchLibrary(cmd.Context(), cmd.OutOrStdout())
}

// watchLibrary reloads loaded documents on change until ctx is done.
func watchLibrary(ctx context.Context, out io.Writer) error {
	if libraryService == nil {
		return notConfigured("library")
	}
	if fileWatcher == nil {
		return notConfigured("watcher")
	}

	byPath := make(map[string]string)
	paths := make([]string, 0)
	for _, doc := range libraryService.Documents() {
		if p, ok := libraryService.PathOf(doc.ID); ok {
			byPath[p] = doc.ID
			paths = append(paths, p)
		}
	}
	if len(paths) == 0 {
		return errors.New("no documents to watch; use --doc id=path")
	}

	fmt.Fprintf(out, "Watching %d documents\n", len(paths))
	err := fileWatcher.Watch(ctx, paths, func(path string) {
		id, ok := byPath[path]
		if !ok {
			return
		}
		applyChange(ctx, out, id, path)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// applyChange brings the library in line with the file at path.
func applyChange(ctx context.Context, out io.Writer, id, path string) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		removed, err := libraryService.Remove(ctx, id)
		switch {
		case err != nil:
			logger.Warn("unload %s: %v", id, err)
			fmt.Fprintf(out, "%s %s: %v\n", failText("unload failed"), id, err)
		case removed:
			fmt.Fprintf(out, "%s %s\n", dimText("removed"), id)
		}
		return
	}

	var err error
	if _, loaded := libraryService.PathOf(id); loaded {
		err = libraryService.Reload(ctx, id)
	} else {
		err = libraryService.Load(ctx, driving.DocumentSpec{ID: id, Path: path})
	}
	if err != nil {
		logger.Warn("reload %s: %v", id, err)
		fmt.Fprintf(out, "%s %s: %v\n", failText("reload failed"), id, err)
		return
	}
	fmt.Fprintf(out, "%s %s\n", okText("reloaded"), id)
}
