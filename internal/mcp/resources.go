package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const todayURI = "readiness://today"

func (s *Server) registerResources() {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         todayURI,
		Name:        "Today's Readiness",
		Description: "Today's readiness score with the recommended training",
		MIMEType:    "application/json",
	}, s.handleTodayResource)
}

func (s *Server) handleTodayResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	snap, err := s.queries.TodayScore()
	if err != nil {
		return nil, queryError(err)
	}
	rec, err := s.queries.TodayRecommendation()
	if err != nil {
		return nil, queryError(err)
	}

	result := map[string]any{
		"score": toScoreOutput(snap),
		"recommendation": recommendationOutput{
			Level:   rec.Level,
			MinTSS:  rec.MinTSS,
			MaxTSS:  rec.MaxTSS,
			Message: rec.Message,
		},
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      todayURI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
