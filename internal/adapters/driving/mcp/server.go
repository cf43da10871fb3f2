package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/tabula/internal/logger"
)

// Version is the MCP server version.
const Version = "0.1.0"

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Server exposes the tool registry, the answer loop and the document
// library over the Model Context Protocol.
type Server struct {
	ports  *Ports
	server *mcp.Server
}

// NewServer builds a server and registers every catalogue tool. It fails
// if a tool's parameter schema is not valid JSON.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	impl := &mcp.Implementation{Name: "tabula", Version: Version}
	s := &Server{
		ports:  ports,
		server: mcp.NewServer(impl, &mcp.ServerOptions{Instructions: instructions(ports)}),
	}

	if err := s.registerTools(); err != nil {
		return nil, err
	}
	s.registerResources()

	return s, nil
}

// instructions tells the client how the tools fit together and what is
// loaded at startup.
func instructions(p *Ports) string {
	var b strings.Builder
	b.WriteString("Answer questions about tables extracted from documents. ")
	b.WriteString("Start with view_tables or find_relevant_tables, narrow with table_summary, ")
	b.WriteString("then read values with get_table_data or get_row_data.")
	if p.Answers != nil {
		b.WriteString(" The ask tool runs the whole loop server-side.")
	}
	if p.Library != nil {
		stats := p.Library.Statistics()
		fmt.Fprintf(&b, "\nLoaded: %d documents, %d tables, %d pages.",
			stats.TotalDocuments, stats.TotalTables, stats.TotalPages)
	}
	return b.String()
}

// Run serves over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	logger.Debug("MCP stdio server with %d tools", len(s.ports.Tools.Catalog()))
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Handler returns the HTTP handler: streamable MCP at / and, when a
// metrics handler is configured, Prometheus metrics at /metrics.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil))
	if s.ports.Metrics != nil {
		mux.Handle("/metrics", s.ports.Metrics)
	}
	return mux
}

// RunHTTP serves Handler on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("MCP HTTP server on %s", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down MCP server: %w", err)
	}
	return nil
}
