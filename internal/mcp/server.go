// Package mcp exposes readiness queries over the Model Context Protocol.
package mcp

import (
	"context"

	"readiness/internal/analysis"
	"readiness/internal/service"
	"readiness/internal/store"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Queries is the read-only view of computed readiness
type Queries interface {
	TodayScore() (*service.ScoreSnapshot, error)
	RecentScores(n int) ([]store.DailyAggregate, error)
	TodayRecommendation() (*analysis.Recommendation, error)
	Day(day string) (*service.ScoreSnapshot, error)
}

// Server wraps the MCP server with query access
type Server struct {
	mcpServer *mcp.Server
	queries   Queries
}

// NewServer creates an MCP server answering from queries
func NewServer(queries Queries, version string) *Server {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "readiness",
			Version: version,
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		queries:   queries,
	}

	s.registerTools()
	s.registerResources()

	return s
}

// Serve runs the server over stdio until ctx is cancelled
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
