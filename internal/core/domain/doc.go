// Package domain defines the core business entities for tabula.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document, Page, Table, Row: loaded document dumps
//   - SearchResult: a keyword index hit
//   - TableRelevance, PageRelevance: relevance engine scores
//   - ToolName, ToolCall, ToolResult: the tool registry contract
//   - QueryContext, Response: the orchestration loop's state and output
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
