// Package driving declares what the CLI, the TUI and the MCP server may
// ask of the core: loading documents, asking questions, calling single
// tools, browsing tables and history, and editing settings.
//
// internal/core/services implements every interface here.
package driving
