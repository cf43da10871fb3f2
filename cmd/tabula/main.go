// Command tabula answers questions over the tables of structured
// document dumps.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/custodia-labs/tabula/internal/adapters/driven/ai"
	"github.com/custodia-labs/tabula/internal/adapters/driven/config/file"
	"github.com/custodia-labs/tabula/internal/adapters/driven/metrics"
	"github.com/custodia-labs/tabula/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/tabula/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/tabula/internal/adapters/driven/watcher"
	"github.com/custodia-labs/tabula/internal/adapters/driving/cli"
	"github.com/custodia-labs/tabula/internal/core/domain"
	"github.com/custodia-labs/tabula/internal/core/ports/driving"
	"github.com/custodia-labs/tabula/internal/core/services"
	"github.com/custodia-labs/tabula/internal/logger"
	"github.com/custodia-labs/tabula/internal/normalisers/dump"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)

	err := cli.Execute(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// bootstrap wires adapters to services for one command invocation.
func bootstrap(opts cli.Options) (*cli.Services, error) {
	configDir := opts.ConfigDir
	if configDir == "" {
		dir, err := file.DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("resolving config directory: %w", err)
		}
		configDir = dir
	}

	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}

	prompts, err := file.NewPromptStore(filepath.Join(configDir, "prompts"))
	if err != nil {
		return nil, fmt.Errorf("opening prompts: %w", err)
	}

	store := memory.NewDocumentStore()
	observer := metrics.NewObserver()
	index := services.NewIndexService(store)
	discovery := services.NewDiscoveryService(store)
	retrieval := services.NewRetrievalService(store)
	tools := services.NewToolService(discovery, retrieval, index, observer)
	library := services.NewLibraryService(store, dump.New(), index, discovery, settings.Agent.LoadTimeout)

	closers := []func() error{}
	var history driving.HistoryService
	if settings.History.Enabled {
		db, err := sqlite.NewStore(filepath.Join(configDir, "data"))
		if err != nil {
			logger.Warn("history disabled: %v", err)
		} else {
			closers = append(closers, db.Close)
			history = services.NewHistoryService(db.HistoryStore())
		}
	}

	var (
		aiOnce   sync.Once
		aiResult *ai.InitResult
	)
	answers := func(_ context.Context, mode domain.AnswerMode) (driving.AnswerService, error) {
		aiOnce.Do(func() {
			aiResult = ai.Init(&settings.LLM, prompts)
			for _, w := range aiResult.Warnings {
				fmt.Fprintln(os.Stderr, "warning:", w)
			}
		})
		if mode == "" {
			mode = settings.Agent.Mode
		}

		cfg := settings.Agent.Config()
		var svc driving.AnswerService
		switch mode {
		case domain.AnswerModePipeline:
			svc = services.NewPipelineService(store, tools, aiResult.Generator, observer, cfg)
		case domain.AnswerModeAgent, "":
			svc = services.NewAgentService(store, tools, aiResult.Decider, aiResult.Generator, observer, cfg)
		default:
			return nil, &domain.BadParameterError{
				Param: "mode",
				Value: string(mode),
				Valid: []string{string(domain.AnswerModeAgent), string(domain.AnswerModePipeline)},
			}
		}
		if history != nil {
			svc = services.RecordAnswers(svc, history)
		}
		return library.GuardAnswers(svc), nil
	}
	closers = append(closers, func() error {
		if aiResult != nil {
			aiResult.Close()
		}
		return nil
	})

	specs, err := startupDocuments(settings.Library.Documents, opts.Docs)
	if err != nil {
		return nil, err
	}
	if len(specs) > 0 {
		for _, r := range library.LoadAll(context.Background(), specs) {
			if r.Err != nil {
				fmt.Fprintf(os.Stderr, "warning: %v\n", r.Err)
			}
		}
	}

	return &cli.Services{
		Settings:  settingsService,
		Library:   library,
		Index:     index,
		Discovery: discovery,
		Retrieval: retrieval,
		Tools:     library.GuardTools(tools),
		History:   history,
		Answers:   answers,
		Watcher:   watcher.New(watcher.DefaultDebounce),
		Metrics:   observer.Handler(),
		OnLoaded:  library.OnLoaded,
		Close: func() error {
			var errs []error
			for _, c := range closers {
				errs = append(errs, c())
			}
			return errors.Join(errs...)
		},
	}, nil
}

// startupDocuments merges configured documents with --doc flags. A flag
// replaces a configured document with the same id.
func startupDocuments(configured, flags []string) ([]driving.DocumentSpec, error) {
	var specs []driving.DocumentSpec
	seen := make(map[string]int)
	for _, raw := range append(append([]string{}, configured...), flags...) {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		spec, err := driving.ParseDocumentSpec(raw)
		if err != nil {
			return nil, fmt.Errorf("document %q: %w", raw, err)
		}
		if i, ok := seen[spec.ID]; ok {
			specs[i] = spec
			continue
		}
		seen[spec.ID] = len(specs)
		specs = append(specs, spec)
	}
	return specs, nil
}
