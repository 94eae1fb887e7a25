// Package mcp exposes catalog building over the Model Context Protocol.
package mcp

import (
	"context"
	"errors"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/takeshy/zimcatalog/internal/source"
	"github.com/takeshy/zimcatalog/internal/taxonomy"
)

// ServerConfig holds configuration for the MCP server
type ServerConfig struct {
	// URLs are fetched when a tool call names none.
	URLs       []string
	Source     *source.Source
	Classifier *taxonomy.Classifier
	Logger     *zap.Logger
}

// Server wraps the MCP server with catalog tools
type Server struct {
	mcpServer   *mcp.Server
	source      *source.Source
	classifier  *taxonomy.Classifier
	defaultURLs []string
	logger      *zap.Logger
}

// NewServer creates a new MCP server for zimcatalog
func NewServer(config ServerConfig, version string) (*Server, error) {
	if config.Source == nil || config.Classifier == nil {
		return nil, errors.New("source and classifier are required")
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    "zimcatalog",
		Version: version,
	}, nil)

	s := &Server{
		mcpServer:   mcpServer,
		source:      config.Source,
		classifier:  config.Classifier,
		defaultURLs: config.URLs,
		logger:      logger,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "build_catalog",
		Description: "Fetch the Kiwix content listing, classify every archive into the Library and Linux trees, and return the flattened entries plus the catalog as JSON lines.",
	}, s.handleBuildCatalog)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "classify_records",
		Description: "Classify raw (category, size, name, url) records into catalog trees without fetching anything.",
	}, s.handleClassifyRecords)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "catalog_summary",
		Description: "Summarize the catalog: group and leaf counts and total versus selected download size per root.",
	}, s.handleCatalogSummary)
}

// RunStdio runs the server using stdio transport
func (s *Server) RunStdio(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

// NewHTTPHandler creates an HTTP handler for SSE transport
func (s *Server) NewHTTPHandler() http.Handler {
	return mcp.NewSSEHandler(func(req *http.Request) *mcp.Server {
		return s.mcpServer
	}, nil)
}

// NewStreamableHTTPHandler creates a streamable HTTP handler
func (s *Server) NewStreamableHTTPHandler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(req *http.Request) *mcp.Server {
		return s.mcpServer
	}, nil)
}

// urls returns the requested URLs, falling back to the configured ones
func (s *Server) urls(requested []string) []string {
	if len(requested) > 0 {
		return requested
	}
	return s.defaultURLs
}
