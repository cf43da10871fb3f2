package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/tabula/internal/core/domain"
	"github.com/custodia-labs/tabula/internal/logger"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the natural-language question to answer from the loaded tables"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer     string          `json:"answer"`
	Confidence float64         `json:"confidence"`
	ToolsUsed  []string        `json:"tools_used"`
	Sources    []domain.Source `json:"sources"`
	Steps      int             `json:"steps_taken"`
	StopReason string          `json:"stop_reason"`
	Degraded   bool            `json:"degraded"`
}

// registerTools exposes every registry tool under its own name, plus
// "ask" when an answer service is configured.
func (s *Server) registerTools() error {
	for _, spec := range s.ports.Tools.Catalog() {
		var schema jsonschema.Schema
		if err := json.Unmarshal(spec.Parameters, &schema); err != nil {
			return fmt.Errorf("schema for %s: %w", spec.Name, err)
		}
		s.server.AddTool(&mcp.Tool{
			Name:        string(spec.Name),
			Description: spec.Description,
			InputSchema: &schema,
		}, s.toolHandler(spec.Name))
	}

	if s.ports.Answers != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name: "ask",
			Description: "Answer a question from the loaded document tables. " +
				"Runs the tool loop server-side and returns the answer with its sources.",
		}, s.handleAsk)
	}
	return nil
}

// toolHandler adapts one registry tool. Tool failures are reported in
// the result with IsError set, so the client model can correct itself.
func (s *Server) toolHandler(name domain.ToolName) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var params map[string]any
		if req != nil && req.Params != nil && len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
				return errorResult(fmt.Errorf("%w: arguments: %v", domain.ErrBadParameter, err)), nil
			}
		}

		result, err := s.ports.Tools.Call(ctx, domain.ToolCall{Name: name, Parameters: params})
		if err != nil {
			logger.Debug("mcp tool %s failed: %v", name, err)
			return errorResult(err), nil
		}
		logger.Debug("mcp tool %s -> %s", name, result.Kind())

		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: result.Format()}},
			StructuredContent: map[string]any{
				"kind":   result.Kind(),
				"result": result,
			},
		}, nil
	}
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	resp, err := s.ports.Answers.Ask(ctx, input.Question)
	if err != nil {
		return nil, AskOutput{}, err
	}

	return nil, AskOutput{
		Answer:     resp.Answer,
		Confidence: resp.Confidence,
		ToolsUsed:  resp.ToolsUsed,
		Sources:    resp.Sources,
		Steps:      resp.Metadata.Steps,
		StopReason: resp.Metadata.StopReason,
		Degraded:   resp.Metadata.Degraded,
	}, nil
}

func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
	}
}
