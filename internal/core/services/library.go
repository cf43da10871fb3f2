package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/tabula/internal/core/domain"
	"github.com/custodia-labs/tabula/internal/core/ports/driven"
	"github.com/custodia-labs/tabula/internal/core/ports/driving"
	"github.com/custodia-labs/tabula/internal/logger"
)

// Ensure LibraryService implements the interface.
var _ driving.LibraryService = (*LibraryService)(nil)

// LibraryService owns the document set. Loads read files without holding
// the lock; storing a document and rebuilding the index and catalog
// happen under the exclusive lock.
type LibraryService struct {
	mu          sync.RWMutex
	store       driven.DocumentStore
	loader      driven.DocumentLoader
	index       driving.IndexService
	discovery   driving.DiscoveryService
	loadTimeout time.Duration
	paths       map[string]string
	onLoaded    func(driving.LoadResult)
}

// NewLibraryService creates a library. A non-positive loadTimeout uses
// domain.DefaultLoadTimeout.
func NewLibraryService(
	store driven.DocumentStore,
	loader driven.DocumentLoader,
	index driving.IndexService,
	discovery driving.DiscoveryService,
	loadTimeout time.Duration,
) *LibraryService {
	if loadTimeout <= 0 {
		loadTimeout = domain.DefaultLoadTimeout
	}
	return &LibraryService{
		store:       store,
		loader:      loader,
		index:       index,
		discovery:   discovery,
		loadTimeout: loadTimeout,
		paths:       make(map[string]string),
	}
}

// OnLoaded registers a callback invoked after each document of a batch
// is read, successfully or not.
func (l *LibraryService) OnLoaded(fn func(driving.LoadResult)) {
	l.onLoaded = fn
}

// Load reads one document and rebuilds indexes.
func (l *LibraryService) Load(ctx context.Context, spec driving.DocumentSpec) error {
	doc, err := l.read(ctx, spec)
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("load %s: %w", spec.ID, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.store.Save(ctx, doc); err != nil {
		return fmt.Errorf("store document %s: %w", spec.ID, err)
	}
	l.paths[spec.ID] = spec.Path
	return l.rebuild(ctx)
}

// LoadAll loads a batch. A failed document does not stop the others.
func (l *LibraryService) LoadAll(ctx context.Context, specs []driving.DocumentSpec) []driving.LoadResult {
	logger.Section("Loading Documents")
	stop := logger.Timed("load")
	defer stop()

	results := make([]driving.LoadResult, len(specs))
	docs := make([]*domain.Document, len(specs))
	for i, spec := range specs {
		doc, err := l.read(ctx, spec)
		results[i] = driving.LoadResult{ID: spec.ID, Path: spec.Path, Err: err}
		docs[i] = doc
		if err != nil {
			logger.Warn("skipping %s: %v", spec.ID, err)
		}
		if l.onLoaded != nil {
			l.onLoaded(results[i])
		}
	}

	if err := ctx.Err(); err != nil {
		for i := range results {
			if results[i].Err == nil {
				results[i].Err = fmt.Errorf("load %s: %w", specs[i].ID, err)
			}
		}
		return results
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	stored := 0
	for i, doc := range docs {
		if doc == nil {
			continue
		}
		if err := l.store.Save(ctx, doc); err != nil {
			results[i].Err = fmt.Errorf("store document %s: %w", specs[i].ID, err)
			continue
		}
		l.paths[specs[i].ID] = specs[i].Path
		stored++
	}
	logger.Info("loaded %d of %d documents", stored, len(specs))

	if stored > 0 {
		if err := l.rebuild(ctx); err != nil {
			logger.Error("rebuild after batch load: %v", err)
			for i := range results {
				if results[i].Err == nil {
					results[i].Err = err
				}
			}
		}
	}
	return results
}

// Reload re-reads a loaded document from its original path.
func (l *LibraryService) Reload(ctx context.Context, docID string) error {
	path, ok := l.PathOf(docID)
	if !ok {
		return fmt.Errorf("reload %s: %w", docID, domain.ErrNotFound)
	}
	logger.Info("reloading %s from %s", docID, path)
	return l.Load(ctx, driving.DocumentSpec{ID: docID, Path: path})
}

// Remove unloads a document.
func (l *LibraryService) Remove(ctx context.Context, docID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.store.Remove(ctx, docID) {
		return false, nil
	}
	delete(l.paths, docID)
	return true, l.rebuild(ctx)
}

// Clear unloads everything.
func (l *LibraryService) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.store.Clear(ctx)
	l.paths = make(map[string]string)
	return l.rebuild(ctx)
}

// Documents lists loaded documents in insertion order.
func (l *LibraryService) Documents() []domain.DocumentInfo {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := l.store.DocumentIDs()
	infos := make([]domain.DocumentInfo, 0, len(ids))
	for _, id := range ids {
		if doc, ok := l.store.Document(id); ok {
			infos = append(infos, doc.Summary())
		}
	}
	return infos
}

// Statistics returns counts across the library.
func (l *LibraryService) Statistics() domain.StoreStatistics {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.store.Statistics()
}

// PathOf returns the source path of a loaded document.
func (l *LibraryService) PathOf(docID string) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.paths[docID]
	return p, ok
}

// Paths returns the source paths of all loaded documents.
func (l *LibraryService) Paths() map[string]string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]string, len(l.paths))
	for id, p := range l.paths {
		out[id] = p
	}
	return out
}

func (l *LibraryService) read(ctx context.Context, spec driving.DocumentSpec) (*domain.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, l.loadTimeout)
	defer cancel()
	doc, err := l.loader.Load(ctx, spec.ID, spec.Path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", spec.ID, err)
	}
	return doc, nil
}

// rebuild must be called with the write lock held. It runs to completion
// once the store has changed, so the index and catalogue always match
// the stored documents even if ctx is cancelled meanwhile.
func (l *LibraryService) rebuild(ctx context.Context) error {
	l.discovery.Invalidate()
	if err := l.index.Build(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}
	return nil
}

// GuardAnswers wraps an answer service so each question runs under the
// library's read lock and never observes a rebuild in progress.
func (l *LibraryService) GuardAnswers(inner driving.AnswerService) driving.AnswerService {
	return &guardedAnswers{lib: l, inner: inner}
}

// GuardTools wraps a tool service so each call runs under the library's
// read lock. The agent must be given the unguarded service.
func (l *LibraryService) GuardTools(inner driving.ToolService) driving.ToolService {
	return &guardedTools{lib: l, ToolService: inner}
}

type guardedAnswers struct {
	lib   *LibraryService
	inner driving.AnswerService
}

func (g *guardedAnswers) Ask(ctx context.Context, question string) (*domain.Response, error) {
	g.lib.mu.RLock()
	defer g.lib.mu.RUnlock()
	return g.inner.Ask(ctx, question)
}

type guardedTools struct {
	lib *LibraryService
	driving.ToolService
}

func (g *guardedTools) Call(ctx context.Context, call domain.ToolCall) (domain.ToolResult, error) {
	g.lib.mu.RLock()
	defer g.lib.mu.RUnlock()
	return g.ToolService.Call(ctx, call)
}
