// Package cli implements the tabula command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tabula/internal/core/domain"
	"github.com/custodia-labs/tabula/internal/core/ports/driven"
	"github.com/custodia-labs/tabula/internal/core/ports/driving"
	"github.com/custodia-labs/tabula/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// AnswerFactory builds the answer service for a mode. An empty mode
// uses the configured default. The LLM is only contacted on first use.
type AnswerFactory func(ctx context.Context, mode domain.AnswerMode) (driving.AnswerService, error)

// Options are the global flags passed to the bootstrap function.
type Options struct {
	ConfigDir string
	Docs      []string
}

// Services holds everything the commands use.
type Services struct {
	Settings  driving.SettingsService
	Library   driving.LibraryService
	Index     driving.IndexService
	Discovery driving.DiscoveryService
	Retrieval driving.RetrievalService
	Tools     driving.ToolService
	History   driving.HistoryService
	Answers   AnswerFactory
	Watcher   driven.FileWatcher
	Metrics   http.Handler

	// OnLoaded registers a per-document load callback. Optional.
	OnLoaded func(fn func(driving.LoadResult))

	// Close releases resources after the command finishes. Optional.
	Close func() error
}

var (
	settingsService  driving.SettingsService
	libraryService   driving.LibraryService
	indexService     driving.IndexService
	discoveryService driving.DiscoveryService
	retrievalService driving.RetrievalService
	toolService      driving.ToolService
	historyService   driving.HistoryService
	answerFactory    AnswerFactory
	fileWatcher      driven.FileWatcher
	metricsHandler   http.Handler
	onLoaded         func(fn func(driving.LoadResult))
	closeServices    func() error
)

var bootstrap func(Options) (*Services, error)

// Global flags.
var (
	verboseFlag   bool
	logFormatFlag string
	outputFlag    string
	configDirFlag string
	docFlags      []string
)

var rootCmd = &cobra.Command{
	Use:   "tabula",
	Short: "Question answering over document tables",
	Long: `Tabula loads structured document dumps (pages and their tables),
indexes them, and answers questions by letting a decision-maker call
discovery, exploration and retrieval tools over the data.

Documents are given as id=path. Startup documents come from the config
file (library.documents) and from repeated --doc flags.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		return teardown()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose diagnostics on stderr")
	flags.StringVar(&logFormatFlag, "log-format", string(logger.FormatText), "log line format (text, json)")
	flags.StringVarP(&outputFlag, "output", "o", outputText, "output format (text, json, yaml)")
	flags.StringVar(&configDirFlag, "config-dir", "", "configuration directory (default ~/.tabula)")
	flags.StringArrayVar(&docFlags, "doc", nil, "document to load as id=path (repeatable)")
}

// SetBootstrap sets the function that builds services from global flags.
// It runs before every command.
func SetBootstrap(fn func(Options) (*Services, error)) {
	bootstrap = fn
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// SetServices installs services directly.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	settingsService = s.Settings
	libraryService = s.Library
	indexService = s.Index
	discoveryService = s.Discovery
	retrievalService = s.Retrieval
	toolService = s.Tools
	historyService = s.History
	answerFactory = s.Answers
	fileWatcher = s.Watcher
	metricsHandler = s.Metrics
	onLoaded = s.OnLoaded
	closeServices = s.Close
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func setup(_ *cobra.Command, _ []string) error {
	logger.SetVerbose(verboseFlag)
	logger.SetFormat(logger.Format(logFormatFlag))

	if err := validateOutput(outputFlag); err != nil {
		return err
	}

	if bootstrap == nil {
		return nil
	}
	svcs, err := bootstrap(Options{ConfigDir: configDirFlag, Docs: docFlags})
	if err != nil {
		return fmt.Errorf("initialising: %w", err)
	}
	SetServices(svcs)
	return nil
}

func teardown() error {
	if closeServices == nil {
		return nil
	}
	fn := closeServices
	closeServices = nil
	return fn()
}

var errNotConfigured = errors.New("not configured")

func notConfigured(name string) error {
	return fmt.Errorf("%s service %w", name, errNotConfigured)
}

// warn prints a non-fatal message to stderr.
func warn(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.ErrOrStderr(), "warning: "+format+"\n", args...)
}

func stdoutIsTerminal() bool {
	return isTerminal(os.Stdout)
}
