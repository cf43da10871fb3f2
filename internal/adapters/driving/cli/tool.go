package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tabula/internal/core/domain"
)

var (
	toolListFunctions bool
	toolCallParams    string
)

var toolCmd = &cobra.Command{
	Use:   "tool",
	Short: "Inspect and call registry tools",
}

var toolListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registry tools with their parameters",
	Long: `Lists every registry tool by category. With --functions the catalogue is
printed in the function-calling format used by chat completion APIs.`,
	Args: cobra.NoArgs,
	RunE: runToolList,
}

var toolCallCmd = &cobra.Command{
	Use:   "call <tool> [key=value]...",
	Short: "Call a registry tool",
	Long: `Calls one registry tool and prints its result. Parameters are given as
key=value pairs; values that parse as JSON (numbers, arrays, objects)
are passed as such. --params takes a JSON object instead.

Examples:
  tabula tool call view_tables
  tabula tool call get_row_data table_title="Revenue" column=Year target=2023
  tabula tool call get_page_content page_identifier=3`,
	Args: cobra.MinimumNArgs(1),
	RunE: runToolCall,
}

func init() {
	toolListCmd.Flags().BoolVar(&toolListFunctions, "functions", false, "print as function-calling definitions")
	toolCallCmd.Flags().StringVar(&toolCallParams, "params", "", "parameters as a JSON object")

	toolCmd.AddCommand(toolListCmd)
	toolCmd.AddCommand(toolCallCmd)
	rootCmd.AddCommand(toolCmd)
}

// functionDef is one entry of a chat-completions "tools" array.
type functionDef struct {
	Type     string       `json:"type"`
	Function functionSpec `json:"function"`
}

type functionSpec struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

func runToolList(cmd *cobra.Command, _ []string) error {
	if toolService == nil {
		return notConfigured("tool")
	}
	specs := toolService.Catalog()

	if toolListFunctions {
		defs := make([]functionDef, len(specs))
		for i, s := range specs {
			defs[i] = functionDef{
				Type:     "function",
				Function: functionSpec{Name: string(s.Name), Description: s.Description, Parameters: s.Parameters},
			}
		}
		data, err := json.MarshalIndent(defs, "", "  ")
		if err != nil {
			return fmt.Errorf("marshalling catalogue: %w", err)
		}
		return highlight(cmd.OutOrStdout(), string(data)+"\n", "json")
	}

	return render(cmd, specs, func(w io.Writer) {
		var category domain.ToolCategory
		for _, s := range specs {
			if s.Category != category {
				category = s.Category
				fmt.Fprintf(w, "\n[%s]\n", category)
			}
			fmt.Fprintf(w, "  %s\n", s.Name)
			fmt.Fprintf(w, "      %s\n", s.Description)
			if params := paramNames(s.Parameters); params != "" {
				fmt.Fprintf(w, "      %s %s\n", dimText("params:"), params)
			}
		}
	})
}

// paramNames lists schema properties, marking required ones with '*'.
func paramNames(schema json.RawMessage) string {
	var s struct {
		Properties map[string]json.RawMessage `json:"properties"`
		Required   []string                   `json:"required"`
	}
	if err := json.Unmarshal(schema, &s); err != nil {
		return ""
	}
	required := make(map[string]bool, len(s.Required))
	for _, r := range s.Required {
		required[r] = true
	}
	var optional []string
	for name := range s.Properties {
		if !required[name] {
			optional = append(optional, name)
		}
	}
	sort.Strings(optional)

	names := make([]string, 0, len(s.Properties))
	for _, r := range s.Required {
		if _, ok := s.Properties[r]; ok {
			names = append(names, r+"*")
		}
	}
	names = append(names, optional...)
	return strings.Join(names, ", ")
}

// toolCallView is the structured output of tool call.
type toolCallView struct {
	Tool    domain.ToolName   `json:"tool"`
	Kind    domain.ResultKind `json:"kind"`
	Result  domain.ToolResult `json:"result"`
	Sources []domain.Source   `json:"sources,omitempty"`
}

func runToolCall(cmd *cobra.Command, args []string) error {
	if toolService == nil {
		return notConfigured("tool")
	}

	params, err := parseToolParams(toolCallParams, args[1:])
	if err != nil {
		return err
	}
	call := domain.ToolCall{Name: domain.ToolName(args[0]), Parameters: params}

	result, err := toolService.Call(cmd.Context(), call)
	if err != nil {
		return fmt.Errorf("%s: %w", call.Name, err)
	}

	view := toolCallView{Tool: call.Name, Kind: result.Kind(), Result: result, Sources: result.Sources()}
	return render(cmd, view, func(w io.Writer) {
		fmt.Fprintln(w, result.Format())
		if len(view.Sources) > 0 {
			fmt.Fprintln(w)
			printSources(w, view.Sources)
		}
	})
}

// parseToolParams merges a JSON object with key=value pairs; pairs win.
func parseToolParams(raw string, pairs []string) (map[string]any, error) {
	params := map[string]any{}
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &params); err != nil {
			return nil, &domain.BadParameterError{Param: "params", Value: raw}
		}
	}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, &domain.BadParameterError{Param: "parameter", Value: pair}
		}
		params[key] = parseValue(value)
	}
	if len(params) == 0 {
		return nil, nil
	}
	return params, nil
}

// parseValue decodes JSON numbers, arrays and objects. Anything else,
// including bare words, is kept as a string.
func parseValue(s string) any {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return s
	}
	switch trimmed[0] {
	case '[', '{', '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var v any
		if err := json.Unmarshal([]byte(trimmed), &v); err == nil {
			return v
		}
	}
	return s
}

func printSources(w io.Writer, sources []domain.Source) {
	fmt.Fprintln(w, "Sources:")
	for _, s := range sources {
		fmt.Fprintf(w, "  - %s %q (page %d)\n", s.Type, s.Title, s.PageNumber)
	}
}
