package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/custodia-labs/tabula/internal/core/domain"
	"github.com/custodia-labs/tabula/internal/core/ports/driven"
	"github.com/custodia-labs/tabula/internal/core/ports/driving"
	"github.com/custodia-labs/tabula/internal/logger"
)

// Ensure ToolService implements the interface.
var _ driving.ToolService = (*ToolService)(nil)

// toolHandler runs one tool with already validated parameters.
type toolHandler func(ctx context.Context, p toolParams) (domain.ToolResult, error)

type registeredTool struct {
	spec    domain.ToolSpec
	schema  *jsonschema.Resolved
	handler toolHandler
}

// ToolService is the fixed tool registry. The table of tools is built
// once by NewToolService and never modified.
type ToolService struct {
	tools    map[domain.ToolName]*registeredTool
	observer driven.ToolObserver
}

// NewToolService binds every registry tool to its implementation.
// observer may be nil.
func NewToolService(
	discovery driving.DiscoveryService,
	retrieval driving.RetrievalService,
	index driving.IndexService,
	observer driven.ToolObserver,
) *ToolService {
	s := &ToolService{
		tools:    make(map[domain.ToolName]*registeredTool),
		observer: observer,
	}

	// Discovery.
	s.register(domain.ToolViewPages,
		"Get overview of all available pages with titles and numbers",
		objectSchema(nil),
		func(ctx context.Context, _ toolParams) (domain.ToolResult, error) {
			return &domain.ListResult{Tool: domain.ToolViewPages, Pages: discovery.ListPages(ctx)}, nil
		})
	s.register(domain.ToolViewKeywords,
		"Get overview of all available keywords in the dataset",
		objectSchema(nil),
		func(ctx context.Context, _ toolParams) (domain.ToolResult, error) {
			return &domain.ListResult{Tool: domain.ToolViewKeywords, Keywords: discovery.ListKeywords(ctx)}, nil
		})
	s.register(domain.ToolViewTables,
		"Get overview of all available tables with categories and metadata",
		objectSchema(nil),
		func(ctx context.Context, _ toolParams) (domain.ToolResult, error) {
			return &domain.ListResult{Tool: domain.ToolViewTables, Tables: discovery.ListTables(ctx)}, nil
		})

	// Exploration.
	s.register(domain.ToolTableSummary,
		"Get detailed summary of a specific table including metadata, columns, and sample data",
		objectSchema(map[string]*jsonschema.Schema{
			"table_name": stringProp("Name/title of the table to explore"),
		}, "table_name"),
		func(ctx context.Context, p toolParams) (domain.ToolResult, error) {
			title := p.str("table_name")
			sum, ok := discovery.TableSummary(ctx, title)
			if !ok {
				return missingTable(ctx, discovery, title), nil
			}
			return &domain.SummaryResult{Summary: *sum}, nil
		})
	s.register(domain.ToolFindRelevantTables,
		"Find tables relevant to the search query using multiple criteria",
		objectSchema(map[string]*jsonschema.Schema{
			"search_query": stringProp("Search query to find relevant tables for"),
		}, "search_query"),
		func(ctx context.Context, p toolParams) (domain.ToolResult, error) {
			q := p.str("search_query")
			return &domain.RelevanceResult{
				Tool:   domain.ToolFindRelevantTables,
				Query:  q,
				Tables: discovery.FindRelevantTables(ctx, q),
			}, nil
		})
	s.register(domain.ToolFindRelevantPages,
		"Find pages relevant to the search query using multiple criteria",
		objectSchema(map[string]*jsonschema.Schema{
			"search_query": stringProp("Search query to find relevant pages for"),
		}, "search_query"),
		func(ctx context.Context, p toolParams) (domain.ToolResult, error) {
			q := p.str("search_query")
			return &domain.RelevanceResult{
				Tool:  domain.ToolFindRelevantPages,
				Query: q,
				Pages: discovery.FindRelevantPages(ctx, q),
			}, nil
		})
	s.register(domain.ToolSearchIndex,
		"Keyword search over page titles, summaries, keywords and table titles; returns ranked pages",
		objectSchema(map[string]*jsonschema.Schema{
			"query": stringProp("Keywords to search for"),
			"scope": {
				Type:        "string",
				Description: "Fields to search: all, pages, tables or titles",
				Enum:        []any{"all", "pages", "tables", "titles"},
				Default:     json.RawMessage(`"all"`),
			},
			"limit": {
				Type:        "integer",
				Description: "Maximum number of results",
				Minimum:     ptr(1.0),
				Default:     json.RawMessage(`10`),
			},
		}, "query"),
		func(ctx context.Context, p toolParams) (domain.ToolResult, error) {
			q := p.str("query")
			scope := domain.SearchScope(p.str("scope"))
			results, err := index.Search(ctx, q, domain.SearchOptions{Scope: scope, Limit: p.integer("limit")})
			if err != nil {
				return nil, err
			}
			if scope == "" {
				scope = domain.ScopeAll
			}
			return &domain.SearchResultSet{Query: q, Scope: scope, Results: results}, nil
		})

	// Retrieval.
	s.register(domain.ToolGetTableData,
		"Get table data with optional column filtering",
		objectSchema(map[string]*jsonschema.Schema{
			"table_name": stringProp("Name/title of the table to retrieve"),
			"columns": {
				Types:       []string{"string", "array"},
				Description: "'all' or list of column names to include",
				Items:       &jsonschema.Schema{Type: "string"},
				Default:     json.RawMessage(`"all"`),
			},
		}, "table_name"),
		func(ctx context.Context, p toolParams) (domain.ToolResult, error) {
			return retrieval.GetTableData(ctx, p.str("table_name"), p.columns("columns"))
		})
	s.register(domain.ToolGetRowData,
		"Get rows where the specified column matches the target value",
		objectSchema(map[string]*jsonschema.Schema{
			"table_name": stringProp("Name/title of the table to search"),
			"column":     stringProp("Column name to match against"),
			"target": {
				Types:       []string{"string", "number"},
				Description: "Target value to match (case-insensitive)",
			},
		}, "table_name", "column", "target"),
		func(ctx context.Context, p toolParams) (domain.ToolResult, error) {
			return retrieval.GetRowData(ctx, p.str("table_name"), p.str("column"), domain.CellString(p["target"]))
		})
	s.register(domain.ToolGetPageContent,
		"Get page content by title or number",
		objectSchema(map[string]*jsonschema.Schema{
			"page_identifier": {
				Types:       []string{"string", "integer"},
				Description: "Page title (string) or page number (integer)",
			},
		}, "page_identifier"),
		func(ctx context.Context, p toolParams) (domain.ToolResult, error) {
			id, ok := domain.ParsePageIdentifier(p["page_identifier"])
			if !ok {
				return nil, &domain.BadParameterError{
					Param: "page_identifier",
					Value: fmt.Sprint(p["page_identifier"]),
				}
			}
			return retrieval.GetPageContent(ctx, id)
		})

	return s
}

func (s *ToolService) register(name domain.ToolName, description string, schema *jsonschema.Schema, h toolHandler) {
	raw, err := json.Marshal(schema)
	if err != nil {
		panic(fmt.Sprintf("marshal %s schema: %v", name, err))
	}
	resolved, err := schema.Resolve(nil)
	if err != nil {
		panic(fmt.Sprintf("resolve %s schema: %v", name, err))
	}
	s.tools[name] = &registeredTool{
		spec: domain.ToolSpec{
			Name:        name,
			Description: description,
			Category:    name.Category(),
			Parameters:  raw,
		},
		schema:  resolved,
		handler: h,
	}
}

// Catalog returns every tool spec in registry order.
func (s *ToolService) Catalog() []domain.ToolSpec {
	specs := make([]domain.ToolSpec, 0, len(s.tools))
	for _, name := range domain.AllToolNames() {
		specs = append(specs, s.tools[name].spec)
	}
	return specs
}

// Spec returns one tool's spec.
func (s *ToolService) Spec(name domain.ToolName) (domain.ToolSpec, bool) {
	t, ok := s.tools[name]
	if !ok {
		return domain.ToolSpec{}, false
	}
	return t.spec, true
}

// Call validates the parameters and runs the tool.
func (s *ToolService) Call(ctx context.Context, call domain.ToolCall) (domain.ToolResult, error) {
	tool, ok := s.tools[call.Name]
	if !ok {
		return nil, fmt.Errorf("call %q: %w", call.Name, domain.ErrUnknownTool)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("call %s: %w", call.Name, err)
	}

	params, err := normalizeParams(call.Parameters)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w: %v", call.Name, domain.ErrBadParameter, err)
	}
	if err := tool.schema.Validate(map[string]any(params)); err != nil {
		return nil, fmt.Errorf("call %s: %w: %v", call.Name, domain.ErrBadParameter, err)
	}

	logger.Debug("tool %s", call)
	start := time.Now()
	result, err := tool.handler(ctx, params)
	s.observe(call.Name, result, err, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", call.Name, err)
	}
	return result, nil
}

func (s *ToolService) observe(name domain.ToolName, result domain.ToolResult, err error, elapsed time.Duration) {
	if s.observer == nil {
		return
	}
	outcome := driven.OutcomeOK
	switch {
	case err != nil:
		outcome = driven.OutcomeError
	case result != nil && result.Kind() == domain.KindNotFound:
		outcome = driven.OutcomeNotFound
	}
	s.observer.ObserveTool(name, outcome, elapsed)
}

func missingTable(ctx context.Context, discovery driving.DiscoveryService, title string) *domain.NotFound {
	tables := discovery.ListTables(ctx)
	suggestions := make([]string, 0, maxSuggestions)
	for i := range tables {
		if i == maxSuggestions {
			break
		}
		suggestions = append(suggestions, tables[i].Title)
	}
	return &domain.NotFound{What: "table", Key: title, Suggestions: suggestions}
}

// toolParams are call parameters in their JSON-decoded form.
type toolParams map[string]any

// normalizeParams re-decodes parameters so that values built in Go
// (ints, []string) have the same shapes as values decoded from JSON.
func normalizeParams(in map[string]any) (toolParams, error) {
	if len(in) == 0 {
		return toolParams{}, nil
	}
	data, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	var out toolParams
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (p toolParams) str(key string) string {
	s, _ := p[key].(string)
	return s
}

func (p toolParams) integer(key string) int {
	f, _ := p[key].(float64)
	return int(f)
}

// columns reads a column selection given as "all", a single name or a
// list of names. nil means every column.
func (p toolParams) columns(key string) []string {
	switch v := p[key].(type) {
	case string:
		if v == "" || v == allColumns {
			return nil
		}
		return []string{v}
	case []any:
		cols := make([]string, 0, len(v))
		for _, c := range v {
			if s, ok := c.(string); ok {
				cols = append(cols, s)
			}
		}
		return cols
	default:
		return nil
	}
}

func objectSchema(props map[string]*jsonschema.Schema, required ...string) *jsonschema.Schema {
	if props == nil {
		props = map[string]*jsonschema.Schema{}
	}
	return &jsonschema.Schema{
		Type:       "object",
		Properties: props,
		Required:   required,
	}
}

func stringProp(description string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", Description: description}
}

func ptr[T any](v T) *T { return &v }
