package decider

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/custodia-labs/tabula/internal/core/domain"
)

// reply is the JSON shape asked of the model. "name" and "arguments" are
// accepted as aliases because function-calling models drift towards them.
type reply struct {
	Action     string         `json:"action"`
	Tool       string         `json:"tool"`
	Name       string         `json:"name"`
	Parameters map[string]any `json:"parameters"`
	Arguments  map[string]any `json:"arguments"`
	Reason     string         `json:"reason"`
}

// ParseDecision extracts the first JSON object from free text and turns it
// into a decision. Code fences and prose around the object are ignored.
// A missing action with a tool present is read as a tool call.
func ParseDecision(text string) (domain.Decision, error) {
	obj, ok := firstObject(text)
	if !ok {
		return domain.Decision{}, fmt.Errorf("%w: no JSON object in decision %q", domain.ErrExternalService, truncate(text))
	}

	var r reply
	if err := json.Unmarshal([]byte(obj), &r); err != nil {
		return domain.Decision{}, fmt.Errorf("%w: parse decision: %w", domain.ErrExternalService, err)
	}

	tool := strings.TrimSpace(r.Tool)
	if tool == "" {
		tool = strings.TrimSpace(r.Name)
	}
	params := r.Parameters
	if params == nil {
		params = r.Arguments
	}

	action := domain.DecisionAction(strings.ToLower(strings.TrimSpace(r.Action)))
	if action == "" && tool != "" {
		action = domain.ActionToolCall
	}

	d := domain.Decision{Action: action, Reason: r.Reason}
	if action == domain.ActionToolCall && tool != "" {
		d.Call = &domain.ToolCall{Name: domain.ToolName(tool), Parameters: params}
	}
	if err := d.Validate(); err != nil {
		return domain.Decision{}, err
	}
	return d, nil
}

// firstObject returns the first balanced {...} in text, skipping braces
// inside JSON strings.
func firstObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

func truncate(s string) string {
	const limit = 120
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
