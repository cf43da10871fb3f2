package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tabula/internal/adapters/driving/mcp"
	"github.com/custodia-labs/tabula/internal/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

Every registry tool is exposed as an MCP tool, together with an "ask"
tool that runs the full answer loop server-side.

By default, the server communicates over stdio using JSON-RPC and can be
used with Claude Desktop and other MCP-compatible AI assistants.

Use --port to start an HTTP server instead, which also serves
Prometheus metrics at /metrics. Use --watch to reload documents when
their files change.

Examples:
  # Stdio mode (default, for Claude Desktop)
  tabula mcp serve --doc report=./report.json

  # HTTP mode (for MCP Inspector, remote access)
  tabula mcp serve --port 8080 --watch

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "tabula": {
        "command": "/path/to/tabula",
        "args": ["mcp", "serve", "--doc", "report=/path/to/report.json"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().Bool("watch", false, "reload documents when their files change")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	watch, err := cmd.Flags().GetBool("watch")
	if err != nil {
		return fmt.Errorf("getting watch flag: %w", err)
	}
	if toolService == nil {
		return notConfigured("tool")
	}

	ports := &mcp.Ports{
		Tools:   toolService,
		Library: libraryService,
	}
	if answerFactory != nil {
		answers, err := answerFactory(cmd.Context(), "")
		if err != nil {
			return err
		}
		ports.Answers = answers
	}
	if port > 0 {
		ports.Metrics = metricsHandler
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if watch {
		// Stdout carries the protocol in stdio mode.
		go func() {
			if err := watchLibrary(ctx, cmd.ErrOrStderr()); err != nil {
				logger.Warn("watch: %v", err)
			}
		}()
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}

	return server.Run(ctx)
}
