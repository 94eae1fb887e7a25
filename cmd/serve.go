package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	mcpserver "github.com/takeshy/zimcatalog/internal/mcp"
)

var (
	serveTransport string
	servePort      int
	serveAPIKey    string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start MCP server for AI assistant integration",
	Long: `Start a Model Context Protocol (MCP) server that exposes catalog
building to AI assistants like Claude Desktop, Cline, etc.

Tools:
  build_catalog:    fetch, classify and list the catalog
  classify_records: classify records supplied by the caller
  catalog_summary:  per-root counts and sizes

Transport options:
  stdio: Standard input/output (default, for local CLI integration)
  sse:   Server-Sent Events over HTTP (for remote connections, requires API key)
  http:  Streamable HTTP (for bidirectional HTTP communication, requires API key)

Examples:
  # Start stdio server
  zimcatalog serve

  # Start HTTP/SSE server on port 8080 (API key required)
  zimcatalog serve --transport sse --port 8080 --serve-api-key mysecretkey

  # Or use environment variable for API key
  export ZIMCATALOG_SERVE_API_KEY=mysecretkey
  zimcatalog serve --transport http --port 8080`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveTransport, "transport", "stdio", "Transport type: stdio, sse, or http")
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port for HTTP/SSE server")
	serveCmd.Flags().StringVar(&serveAPIKey, "serve-api-key", "", "API key for HTTP authentication (or ZIMCATALOG_SERVE_API_KEY env var)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	server, err := mcpserver.NewServer(mcpserver.ServerConfig{
		URLs:       cfg.URLs,
		Source:     newSource(),
		Classifier: newClassifier(),
		Logger:     logger.Named("mcp"),
	}, Version)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	ctx := cmd.Context()

	switch cfg.Serve.Transport {
	case "stdio":
		fmt.Fprintln(os.Stderr, "Starting MCP server on stdio...")
		return server.RunStdio(ctx)

	case "sse":
		return runHTTPServerWithShutdown(ctx, server.NewHTTPHandler(), "SSE")

	case "http":
		return runHTTPServerWithShutdown(ctx, server.NewStreamableHTTPHandler(), "HTTP")

	default:
		return fmt.Errorf("unknown transport: %s (must be stdio, sse, or http)", cfg.Serve.Transport)
	}
}

func runHTTPServerWithShutdown(ctx context.Context, handler http.Handler, transportName string) error {
	// Require API key for HTTP server
	if cfg.Serve.APIKey == "" {
		return fmt.Errorf("API key required for HTTP server. Use --serve-api-key or set ZIMCATALOG_SERVE_API_KEY environment variable")
	}

	handler = mcpserver.APIKeyMiddleware(cfg.Serve.APIKey, logger.Named("http"), handler)

	addr := fmt.Sprintf(":%d", cfg.Serve.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown when the command context is cancelled
	go func() {
		<-ctx.Done()
		fmt.Fprintln(os.Stderr, "\nShutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown failed", zap.Error(err))
		}
	}()

	fmt.Fprintf(os.Stderr, "Starting MCP %s server on http://localhost%s (API key authentication enabled)\n", transportName, addr)

	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
