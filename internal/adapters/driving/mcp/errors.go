// Package mcp provides an MCP (Model Context Protocol) server adapter for Tabula.
// It exposes the table tools and question answering to MCP clients such as
// Claude Desktop.
package mcp

import "errors"

// ErrMissingToolService is returned when the tool service is not provided.
var ErrMissingToolService = errors.New("mcp: tool service is required")
