package domain

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrNotIndexed", ErrNotIndexed},
		{"ErrBadParameter", ErrBadParameter},
		{"ErrExternalService", ErrExternalService},
		{"ErrLoadFailure", ErrLoadFailure},
		{"ErrUnknownTool", ErrUnknownTool},
		{"ErrLLMUnavailable", ErrLLMUnavailable},
		{"ErrNoDocuments", ErrNoDocuments},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrNotFound(t *testing.T) {
	assert.Equal(t, "not found", ErrNotFound.Error())
	assert.False(t, errors.Is(ErrNotFound, ErrBadParameter))
}

func TestBadParameterError(t *testing.T) {
	err := &BadParameterError{Param: "column", Value: "Unknown", Valid: []string{"Name", "Calories"}}

	assert.True(t, errors.Is(err, ErrBadParameter))
	assert.Contains(t, err.Error(), `column "Unknown"`)
	assert.Contains(t, err.Error(), "valid: Name, Calories")

	wrapped := fmt.Errorf("get table data: %w", err)
	var bp *BadParameterError
	assert.True(t, errors.As(wrapped, &bp))
	assert.Equal(t, []string{"Name", "Calories"}, bp.Valid)
}

func TestBadParameterError_NoValid(t *testing.T) {
	err := &BadParameterError{Param: "scope", Value: "x"}
	assert.NotContains(t, err.Error(), "valid:")
}

func TestLoadError(t *testing.T) {
	err := &LoadError{DocID: "doc-1", Err: fs.ErrNotExist}

	assert.True(t, errors.Is(err, ErrLoadFailure))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.Contains(t, err.Error(), "doc-1")
}
