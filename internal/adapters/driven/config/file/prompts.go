package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/tabula/internal/core/ports/driven"
	"github.com/custodia-labs/tabula/internal/logger"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore serves the decision and answer prompts from editable
// .txt files in a directory. The directory is populated with the built-in
// defaults on first use; a missing or malformed file falls back to its
// default.
type PromptStore struct {
	dir      string
	initOnce sync.Once
	initErr  error

	mu    sync.Mutex
	cache map[string]string
}

// defaultPrompts are used when user files don't exist and as the initial
// content for new files.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptDecideSystem: `You answer questions about tables extracted from documents. You cannot see the tables directly; you gather evidence by calling tools, one per turn.

Reply with exactly one JSON object and nothing else:
  {"action": "tool_call", "tool": "<name>", "parameters": {...}}
  {"action": "answer"}
  {"action": "no_more_tools"}

Prefer targeted retrieval (table_summary, get_table_data, get_row_data, get_page_content) once you know which table holds the answer. Never repeat a call you have already made.`,

	driven.PromptDecide: `Available tools:
%s

Evidence gathered so far:
%s

Question: %s

Next step (JSON only):`,

	driven.PromptAnswer: `You are a helpful assistant that answers questions based on document data.

You have access to document data through a 3-phase approach:
1. Discovery: Understanding what data is available
2. Exploration: Finding relevant data for the query
3. Retrieval: Getting specific data for analysis

Use the available data to answer the user's question. Quote numbers exactly as they appear in the tables. If you don't have enough information, say so.

Question: %s

Available Data:
%s

Answer the question based on the available data:`,
}

// NewPromptStore returns a store over promptDir, defaulting to
// ~/.tabula/prompts. Nothing is written until the first Load.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(home, ".tabula", "prompts")
	}
	return &PromptStore{dir: promptDir, cache: make(map[string]string)}, nil
}

// Load returns the named prompt template.
func (s *PromptStore) Load(name string) (string, error) {
	fallback, known := defaultPrompts[name]

	s.initOnce.Do(s.seed)
	if s.initErr != nil {
		if known {
			logger.Debug("prompts: %v, using built-in %s", s.initErr, name)
			return fallback, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if prompt, ok := s.cache[name]; ok {
		return prompt, nil
	}

	prompt, err := s.read(name)
	switch {
	case err != nil && !known:
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	case err != nil:
		prompt = fallback
	case !placeholdersMatch(name, prompt):
		logger.Warn("prompt %s.txt has the wrong number of %%s placeholders, using built-in default", name)
		prompt = fallback
	}
	s.cache[name] = prompt
	return prompt, nil
}

// Reload drops cached prompts so edits on disk are picked up.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	clear(s.cache)
	s.mu.Unlock()
}

// Dir returns the prompt directory.
func (s *PromptStore) Dir() string {
	return s.dir
}

func (s *PromptStore) path(name string) string {
	return filepath.Join(s.dir, name+".txt")
}

// seed writes the default prompts and a README, never overwriting files
// that already exist.
func (s *PromptStore) seed() {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	files := map[string]string{"README.md": promptReadme}
	for name, content := range defaultPrompts {
		files[name+".txt"] = content
	}
	for file, content := range files {
		path := filepath.Join(s.dir, file)
		if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			s.initErr = fmt.Errorf("create %s: %w", file, err)
			return
		}
	}
}

func (s *PromptStore) read(name string) (string, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// placeholdersMatch reports whether prompt carries the %s verbs its
// caller formats in. Unknown names are not checked.
func placeholdersMatch(name, prompt string) bool {
	want, ok := driven.PromptPlaceholders[name]
	if !ok {
		return true
	}
	return strings.Count(prompt, "%s")-strings.Count(prompt, "%%s") == want
}

const promptReadme = `# Tabula Prompts

Edit these files to change how the configured LLM picks tools and writes
answers. Changes take effect on the next command.

- decide_system.txt: system prompt for the tool-choosing model
- decide.txt: per-round prompt with tool list, evidence and question (three %s)
- answer.txt: answer prompt with question and evidence (two %s)

Keep the %s placeholders in the same order. A file with the wrong number
of placeholders is ignored. Delete a file to restore its default.
`
