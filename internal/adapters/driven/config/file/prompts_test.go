package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tabula/internal/core/ports/driven"
)

func TestNewPromptStore_Dirs(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, store.Dir())

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home directory")
	}
	store, err = NewPromptStore("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".tabula", "prompts"), store.Dir())
}

func TestPromptStore_Load_CreatesDefaultFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	_, err = store.Load(driven.PromptAnswer)
	require.NoError(t, err)

	for _, f := range []string{"decide_system.txt", "decide.txt", "answer.txt", "README.md"} {
		assert.FileExists(t, filepath.Join(dir, f))
	}
}

func TestPromptStore_DefaultPlaceholders(t *testing.T) {
	tests := []struct {
		name string
		args []any
	}{
		{driven.PromptDecideSystem, nil},
		{driven.PromptDecide, []any{"CATALOG", "EVIDENCE", "QUESTION"}},
		{driven.PromptAnswer, []any{"QUESTION", "EVIDENCE"}},
	}

	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompt, err := store.Load(tt.name)
			require.NoError(t, err)

			out := prompt
			if len(tt.args) > 0 {
				out = fmt.Sprintf(prompt, tt.args...)
			}
			assert.NotContains(t, out, "%!")
			for _, a := range tt.args {
				assert.Contains(t, out, a)
			}
		})
	}
}

func TestPromptStore_DecideSystemDescribesActions(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptDecideSystem)

	require.NoError(t, err)
	for _, action := range []string{"tool_call", "answer", "no_more_tools"} {
		assert.Contains(t, prompt, action)
	}
}

func TestPromptStore_Load_CustomContentTrimmed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "answer.txt"), []byte("\n  Q=%s E=%s  \n\n"), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptAnswer)

	require.NoError(t, err)
	assert.Equal(t, "Q=%s E=%s", prompt)

	// Init must not overwrite the user's file.
	data, err := os.ReadFile(filepath.Join(dir, "answer.txt"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "\n  Q=%s"))
}

func TestPromptStore_Load_FallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	want, err := store.Load(driven.PromptDecide)
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(dir, "decide.txt")))
	store.Reload()

	got, err := store.Load(driven.PromptDecide)

	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestPromptStore_Load_UnknownPrompt(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("nonexistent_prompt")

	assert.ErrorContains(t, err, "nonexistent_prompt")
}

func TestPromptStore_CacheAndReload(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	first, err := store.Load(driven.PromptAnswer)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "answer.txt"), []byte("edited %s %s"), 0600))

	cached, err := store.Load(driven.PromptAnswer)
	require.NoError(t, err)
	assert.Equal(t, first, cached)

	store.Reload()
	fresh, err := store.Load(driven.PromptAnswer)
	require.NoError(t, err)
	assert.Equal(t, "edited %s %s", fresh)
}

func TestPromptStore_Load_ConcurrentAccess(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	const goroutines = 50
	results := make([]string, goroutines)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := store.Load(driven.PromptDecide)
			assert.NoError(t, err)
			results[i] = p
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, results[0], r)
	}
}

func TestPromptStore_Load_WrongPlaceholdersUsesDefault(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)
	want, err := store.Load(driven.PromptAnswer)
	require.NoError(t, err)

	tests := []struct {
		name    string
		content string
		custom  bool
	}{
		{"too few", "Question only: %s", false},
		{"too many", "%s %s %s", false},
		{"escaped does not count", "%s %s and 100%%s", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, os.WriteFile(filepath.Join(dir, "answer.txt"), []byte(tt.content), 0600))
			store.Reload()

			got, err := store.Load(driven.PromptAnswer)

			require.NoError(t, err)
			if tt.custom {
				assert.Equal(t, tt.content, got)
			} else {
				assert.Equal(t, want, got)
			}
		})
	}
}
