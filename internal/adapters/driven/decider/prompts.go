package decider

import (
	"bytes"
	"encoding/json"

	"github.com/custodia-labs/tabula/internal/core/ports/driven"
)

// fallbackPrompts are used when no PromptStore is configured or it fails.
var fallbackPrompts = map[string]string{
	driven.PromptDecideSystem: `Choose the next step for answering a question about document tables. ` +
		`Reply with one JSON object: {"action":"tool_call","tool":"<name>","parameters":{...}}, ` +
		`{"action":"answer"} or {"action":"no_more_tools"}.`,
	driven.PromptDecide: "Tools:\n%s\n\nEvidence:\n%s\n\nQuestion: %s\n\nNext step (JSON only):",
	driven.PromptAnswer: "Question: %s\n\nAvailable Data:\n%s\n\nAnswer the question based on the available data:",
}

// loadPrompt loads a prompt from the store, falling back to the built-in
// template if unavailable.
func loadPrompt(store driven.PromptStore, name string) string {
	if store == nil {
		return fallbackPrompts[name]
	}
	prompt, err := store.Load(name)
	if err != nil || prompt == "" {
		return fallbackPrompts[name]
	}
	return prompt
}

func compactJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
