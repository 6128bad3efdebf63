// Package mcp exposes the analysis API as Model Context Protocol tools so
// that agents can check text for similarity and AI authorship.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/simcheck/internal/page"
	"github.com/ziadkadry99/simcheck/internal/view"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes analysis tools.
type Server struct {
	client   page.API
	renderer view.Renderer
	pageSize int
	mcp      *server.MCPServer
}

// NewServer creates a new MCP server. client must already carry a bearer
// token; tool output is rendered with renderer.
func NewServer(client page.API, renderer view.Renderer, pageSize int) *Server {
	if pageSize <= 0 {
		pageSize = page.DefaultHistoryPageSize
	}
	s := &Server{
		client:   client,
		renderer: renderer,
		pageSize: pageSize,
	}

	s.mcp = server.NewMCPServer(
		"simcheck",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

func (s *Server) registerTools() {
	s.mcp.AddTool(analyzeTextTool, s.handleAnalyzeText)
	s.mcp.AddTool(getStatisticsTool, s.handleGetStatistics)
	s.mcp.AddTool(getHistoryTool, s.handleGetHistory)
	s.mcp.AddTool(getHistorySourcesTool, s.handleGetHistorySources)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
