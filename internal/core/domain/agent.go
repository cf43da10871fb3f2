package domain

import (
	"fmt"
	"time"
)

// DecisionAction is what a decision-maker wants to do next.
type DecisionAction string

// Decision actions.
const (
	ActionToolCall    DecisionAction = "tool_call"
	ActionAnswer      DecisionAction = "answer"
	ActionNoMoreTools DecisionAction = "no_more_tools"
)

// Decision is one step chosen by a decision-maker.
type Decision struct {
	Action DecisionAction `json:"action"`
	Call   *ToolCall      `json:"call,omitempty"`
	Reason string         `json:"reason,omitempty"`
}

// Validate checks the decision is well formed.
func (d Decision) Validate() error {
	switch d.Action {
	case ActionAnswer, ActionNoMoreTools:
		return nil
	case ActionToolCall:
		if d.Call == nil {
			return fmt.Errorf("%w: tool_call without a tool", ErrExternalService)
		}
		if !d.Call.Name.IsValid() {
			return fmt.Errorf("%w: %w: %q", ErrExternalService, ErrUnknownTool, d.Call.Name)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown action %q", ErrExternalService, d.Action)
	}
}

// CallRecord is one entry in a query's tool-call log.
type CallRecord struct {
	Step     int           `json:"step"`
	Call     ToolCall      `json:"call"`
	Result   ToolResult    `json:"-"`
	Err      string        `json:"error,omitempty"`
	Seeded   bool          `json:"seeded,omitempty"`
	Fallback bool          `json:"fallback,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Failed reports whether the call produced an error instead of a result.
func (r *CallRecord) Failed() bool {
	return r.Err != ""
}

// QueryContext accumulates the evidence gathered for one question.
// It is owned by the call that created it and never shared.
type QueryContext struct {
	ID         string
	Question   string
	Calls      []CallRecord
	Steps      int
	Confidence float64
	DocIDs     []string

	// Errors holds failures outside the call log, such as rejected
	// decisions.
	Errors []string
}

// NewQueryContext returns an empty context for question.
func NewQueryContext(id, question string, docIDs []string) *QueryContext {
	return &QueryContext{ID: id, Question: question, DocIDs: docIDs}
}

// Record appends a call to the log.
func (q *QueryContext) Record(rec CallRecord) {
	q.Calls = append(q.Calls, rec)
}

// Fail notes a failure that did not produce a call record.
func (q *QueryContext) Fail(format string, args ...any) {
	q.Errors = append(q.Errors, fmt.Sprintf(format, args...))
}

// CallKeys returns the keys of all logged calls, in order.
func (q *QueryContext) CallKeys() []string {
	keys := make([]string, len(q.Calls))
	for i := range q.Calls {
		keys[i] = q.Calls[i].Call.Key()
	}
	return keys
}

// Lookup returns the most recent record for a call key.
func (q *QueryContext) Lookup(key string) (*CallRecord, bool) {
	for i := len(q.Calls) - 1; i >= 0; i-- {
		if q.Calls[i].Call.Key() == key {
			return &q.Calls[i], true
		}
	}
	return nil, false
}

// RepeatedLastCall reports whether the two most recent logged calls have
// the same tool and parameters.
func (q *QueryContext) RepeatedLastCall() bool {
	n := len(q.Calls)
	if n < 2 {
		return false
	}
	return q.Calls[n-1].Call.Key() == q.Calls[n-2].Call.Key()
}

// TargetedCalls counts calls made after the initial seeding.
func (q *QueryContext) TargetedCalls() int {
	n := 0
	for i := range q.Calls {
		if !q.Calls[i].Seeded {
			n++
		}
	}
	return n
}

// ToolsUsed returns distinct tool names in first-use order.
func (q *QueryContext) ToolsUsed() []string {
	seen := make(map[ToolName]bool)
	var names []string
	for i := range q.Calls {
		name := q.Calls[i].Call.Name
		if !seen[name] {
			seen[name] = true
			names = append(names, string(name))
		}
	}
	return names
}

// Sources collects attributions from successful results, dropping duplicates.
func (q *QueryContext) Sources() []Source {
	seen := make(map[Source]bool)
	var sources []Source
	for i := range q.Calls {
		if q.Calls[i].Result == nil {
			continue
		}
		for _, s := range q.Calls[i].Result.Sources() {
			if !seen[s] {
				seen[s] = true
				sources = append(sources, s)
			}
		}
	}
	return sources
}

// Termination reasons reported in response metadata.
const (
	StopAnswer       = "answer"
	StopNoMoreTools  = "no_more_tools"
	StopMaxRounds    = "max_rounds"
	StopRepeatedCall = "repeated_call"
	StopCancelled    = "cancelled"
	StopFallback     = "fallback_answer"
	StopPipeline     = "pipeline"
)

// CallSummary is the metadata view of a logged call.
type CallSummary struct {
	Step       int            `json:"step"`
	Tool       ToolName       `json:"tool"`
	Parameters map[string]any `json:"parameters,omitempty"`
	Kind       ResultKind     `json:"result_kind,omitempty"`
	Error      string         `json:"error,omitempty"`
	Seeded     bool           `json:"seeded,omitempty"`
	Fallback   bool           `json:"fallback,omitempty"`
}

// ResponseMetadata describes how an answer was produced.
type ResponseMetadata struct {
	Mode       string        `json:"mode"`
	Steps      int           `json:"steps_taken"`
	ToolCalls  []CallSummary `json:"tool_calls"`
	StopReason string        `json:"stop_reason"`
	Degraded   bool          `json:"degraded"`
	Duration   time.Duration `json:"duration"`
}

// Response is the final output of a query.
type Response struct {
	ID         string           `json:"id"`
	Question   string           `json:"question"`
	Answer     string           `json:"answer"`
	Context    string           `json:"context"`
	ToolsUsed  []string         `json:"tools_used"`
	Confidence float64          `json:"confidence"`
	Sources    []Source         `json:"sources"`
	DocIDs     []string         `json:"doc_ids"`
	Metadata   ResponseMetadata `json:"metadata"`
	CreatedAt  time.Time        `json:"created_at"`
}

// Summaries converts the call log to metadata entries.
func (q *QueryContext) Summaries() []CallSummary {
	out := make([]CallSummary, len(q.Calls))
	for i := range q.Calls {
		rec := &q.Calls[i]
		out[i] = CallSummary{
			Step:       rec.Step,
			Tool:       rec.Call.Name,
			Parameters: rec.Call.Parameters,
			Error:      rec.Err,
			Seeded:     rec.Seeded,
			Fallback:   rec.Fallback,
		}
		if rec.Result != nil {
			out[i].Kind = rec.Result.Kind()
		}
	}
	return out
}

// Query modes.
const (
	ModeAgent    = "agent"
	ModePipeline = "pipeline"
)

// AgentConfig bounds and tunes the orchestration loop. It is built once
// and passed to the agent; nothing reads it from global state.
type AgentConfig struct {
	// MaxRounds bounds the number of decision rounds after seeding.
	MaxRounds int

	// DecisionTimeout bounds each call to the decision-maker.
	DecisionTimeout time.Duration

	// AnswerTimeout bounds the final answer generation.
	AnswerTimeout time.Duration

	// ToolTimeout bounds a single tool execution.
	ToolTimeout time.Duration

	// Confidence is reported for synthesised answers.
	Confidence float64

	// DegradedConfidence is reported when the answer is a context dump.
	DegradedConfidence float64

	// SeedCalls run before the first decision.
	SeedCalls []ToolCall

	// FallbackTool is called when the first decision fails.
	FallbackTool ToolName
}

// Agent defaults.
const (
	DefaultMaxRounds          = 5
	DefaultDecisionTimeout    = 60 * time.Second
	DefaultAnswerTimeout      = 120 * time.Second
	DefaultToolTimeout        = 10 * time.Second
	DefaultConfidence         = 0.8
	DefaultDegradedConfidence = 0.3
)

// DefaultAgentConfig returns the standard loop configuration.
func DefaultAgentConfig() AgentConfig {
	return AgentConfig{
		MaxRounds:          DefaultMaxRounds,
		DecisionTimeout:    DefaultDecisionTimeout,
		AnswerTimeout:      DefaultAnswerTimeout,
		ToolTimeout:        DefaultToolTimeout,
		Confidence:         DefaultConfidence,
		DegradedConfidence: DefaultDegradedConfidence,
		SeedCalls: []ToolCall{
			{Name: ToolViewTables},
			{Name: ToolViewKeywords},
		},
		FallbackTool: ToolViewPages,
	}
}

// WithDefaults fills zero fields from DefaultAgentConfig.
func (c AgentConfig) WithDefaults() AgentConfig {
	d := DefaultAgentConfig()
	if c.MaxRounds <= 0 {
		c.MaxRounds = d.MaxRounds
	}
	if c.DecisionTimeout <= 0 {
		c.DecisionTimeout = d.DecisionTimeout
	}
	if c.AnswerTimeout <= 0 {
		c.AnswerTimeout = d.AnswerTimeout
	}
	if c.ToolTimeout <= 0 {
		c.ToolTimeout = d.ToolTimeout
	}
	if c.Confidence <= 0 {
		c.Confidence = d.Confidence
	}
	if c.DegradedConfidence <= 0 {
		c.DegradedConfidence = d.DegradedConfidence
	}
	if c.SeedCalls == nil {
		c.SeedCalls = d.SeedCalls
	}
	if c.FallbackTool == "" {
		c.FallbackTool = d.FallbackTool
	}
	return c
}
