// Package watcher provides an fsnotify-backed driven.FileWatcher for
// reloading document dumps when they change on disk.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/tabula/internal/core/ports/driven"
	"github.com/custodia-labs/tabula/internal/logger"
)

// Ensure Watcher implements the interface.
var _ driven.FileWatcher = (*Watcher)(nil)

// DefaultDebounce coalesces the write bursts editors and exporters produce.
const DefaultDebounce = 250 * time.Millisecond

// Watcher watches the parent directories of a set of files. Watching the
// directory rather than the file survives atomic rename-over saves.
type Watcher struct {
	debounce time.Duration
}

// New creates a watcher. A non-positive debounce uses DefaultDebounce.
func New(debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{debounce: debounce}
}

// Watch blocks until ctx is cancelled. onChange runs on its own timer
// goroutine, once per quiet period per path.
func (w *Watcher) Watch(ctx context.Context, paths []string, onChange func(path string)) error {
	if len(paths) == 0 {
		return errors.New("watch: no paths")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	targets := make(map[string]string, len(paths))
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", p, err)
		}
		targets[abs] = p
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		logger.Debug("watching %s", dir)
	}

	var (
		mu     sync.Mutex
		timers = make(map[string]*time.Timer)
	)
	defer func() {
		mu.Lock()
		for _, t := range timers {
			t.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			original, watched := targets[filepath.Clean(event.Name)]
			if !watched || !relevant(event.Op) {
				continue
			}
			logger.Debug("watch event %s on %s", event.Op, event.Name)

			mu.Lock()
			if t, pending := timers[original]; pending {
				t.Reset(w.debounce)
			} else {
				timers[original] = time.AfterFunc(w.debounce, func() {
					mu.Lock()
					delete(timers, original)
					mu.Unlock()
					if ctx.Err() == nil {
						onChange(original)
					}
				})
			}
			mu.Unlock()

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error: %v", err)
		}
	}
}

// relevant reports whether op can change file content. Removal is
// included so a delete followed by a re-create triggers a reload.
func relevant(op fsnotify.Op) bool {
	return op.Has(fsnotify.Write) || op.Has(fsnotify.Create) || op.Has(fsnotify.Rename) || op.Has(fsnotify.Remove)
}
