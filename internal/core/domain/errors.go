package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	// Tools report lookup misses as a NotFound result instead.
	ErrNotFound = errors.New("not found")

	// ErrNotIndexed indicates an index operation ran before Build.
	ErrNotIndexed = errors.New("index not built")

	// ErrBadParameter indicates an unknown column, scope or filter.
	ErrBadParameter = errors.New("bad parameter")

	// ErrExternalService indicates the decision-maker or answer generator
	// is unavailable, timed out, or produced malformed output.
	ErrExternalService = errors.New("external service failure")

	// ErrLoadFailure indicates a single document could not be loaded.
	ErrLoadFailure = errors.New("document load failed")

	// ErrUnknownTool indicates a tool name outside the registry.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// The agent degrades to deterministic decisions and context-only answers.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrNoDocuments indicates a query was made against an empty library.
	ErrNoDocuments = errors.New("no documents loaded")
)

// BadParameterError reports a rejected parameter together with the values
// that would have been accepted.
type BadParameterError struct {
	Param string
	Value string
	Valid []string
}

func (e *BadParameterError) Error() string {
	msg := fmt.Sprintf("%s: %s %q", ErrBadParameter, e.Param, e.Value)
	if len(e.Valid) > 0 {
		msg += " (valid: " + strings.Join(e.Valid, ", ") + ")"
	}
	return msg
}

// Unwrap allows errors.Is(err, ErrBadParameter).
func (e *BadParameterError) Unwrap() error {
	return ErrBadParameter
}

// LoadError wraps the cause of a failed document load.
type LoadError struct {
	DocID string
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrLoadFailure, e.DocID, e.Err)
}

// Is reports ErrLoadFailure so callers can test the category.
func (e *LoadError) Is(target error) bool {
	return target == ErrLoadFailure
}

// Unwrap returns the underlying cause.
func (e *LoadError) Unwrap() error {
	return e.Err
}
