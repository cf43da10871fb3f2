package driven

import "context"

// FileWatcher notifies when watched files change.
type FileWatcher interface {
	// Watch blocks until ctx is cancelled, calling onChange for each
	// changed path. Bursts of events for one path may be coalesced.
	Watch(ctx context.Context, paths []string, onChange func(path string)) error
}
