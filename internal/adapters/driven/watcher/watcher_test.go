package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type changeRecorder struct {
	mu    sync.Mutex
	paths []string
	ch    chan string
}

func newRecorder() *changeRecorder {
	return &changeRecorder{ch: make(chan string, 16)}
}

func (r *changeRecorder) record(path string) {
	r.mu.Lock()
	r.paths = append(r.paths, path)
	r.mu.Unlock()
	r.ch <- path
}

func (r *changeRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.paths)
}

func startWatch(t *testing.T, w *Watcher, paths []string, rec *changeRecorder) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx, paths, rec.record) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("watch did not stop")
		}
	})
	// Give fsnotify a moment to register the directory.
	time.Sleep(50 * time.Millisecond)
	return cancel
}

func TestWatcher_CoalescesWrites(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "pbj.json")
	other := filepath.Join(dir, "other.json")
	require.NoError(t, os.WriteFile(doc, []byte("[]"), 0600))

	rec := newRecorder()
	startWatch(t, New(100*time.Millisecond), []string{doc}, rec)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(doc, []byte(`[{"page_id":"1"}]`), 0600))
		time.Sleep(10 * time.Millisecond)
	}
	require.NoError(t, os.WriteFile(other, []byte("[]"), 0600))

	select {
	case path := <-rec.ch:
		assert.Equal(t, doc, path)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for change")
	}

	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, 1, rec.count())
}

func TestWatcher_AtomicReplace(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "dump.json")
	require.NoError(t, os.WriteFile(doc, []byte("[]"), 0600))

	rec := newRecorder()
	startWatch(t, New(50*time.Millisecond), []string{doc}, rec)

	tmp := filepath.Join(dir, "dump.json.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("[]"), 0600))
	require.NoError(t, os.Rename(tmp, doc))

	select {
	case path := <-rec.ch:
		assert.Equal(t, doc, path)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for change")
	}
}

func TestWatcher_Errors(t *testing.T) {
	w := New(0)
	assert.Equal(t, DefaultDebounce, w.debounce)

	err := w.Watch(context.Background(), nil, func(string) {})
	assert.ErrorContains(t, err, "no paths")

	err = w.Watch(context.Background(), []string{filepath.Join(t.TempDir(), "missing", "x.json")}, func(string) {})
	assert.ErrorContains(t, err, "watch")
}

func TestRelevant(t *testing.T) {
	tests := []struct {
		op   fsnotify.Op
		want bool
	}{
		{fsnotify.Write, true},
		{fsnotify.Create, true},
		{fsnotify.Rename, true},
		{fsnotify.Remove, true},
		{fsnotify.Chmod, false},
		{fsnotify.Write | fsnotify.Chmod, true},
	}

	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, relevant(tt.op))
		})
	}
}
