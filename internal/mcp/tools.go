package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"readiness/internal/analysis"
	"readiness/internal/service"
	"readiness/internal/store"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	defaultRecentDays = 14
	maxRecentDays     = 365
)

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "today_score",
		Description: "Today's 0-100 training readiness with load, form, trend and illness flags",
	}, s.handleTodayScore)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "recent_scores",
		Description: "Daily readiness and training load for the most recent days, oldest first",
	}, s.handleRecentScores)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "today_recommendation",
		Description: "Suggested training for today as a level and a TSS range",
	}, s.handleTodayRecommendation)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "day_score",
		Description: "Readiness breakdown for one day",
	}, s.handleDayScore)
}

type emptyInput struct{}

type recentScoresInput struct {
	Days int `json:"days,omitempty" jsonschema:"number of days to return (default 14, max 365)"`
}

type dayScoreInput struct {
	Day string `json:"day" jsonschema:"day as YYYY-MM-DD"`
}

type scoreOutput struct {
	Day          string   `json:"day"`
	Score        float64  `json:"score"`
	Label        string   `json:"label"`
	Stale        bool     `json:"stale,omitempty"`
	Trend        string   `json:"trend"`
	Chronic      float64  `json:"chronic_load"`
	Acute        float64  `json:"acute_load"`
	Balance      float64  `json:"balance"`
	Form         string   `json:"form"`
	RampRate     float64  `json:"ramp_rate"`
	RampBand     string   `json:"ramp_band"`
	TotalTSS     float64  `json:"total_tss"`
	Adjustment   float64  `json:"physiology_adjustment"`
	Illness      string   `json:"illness"`
	AvgHRV       *float64 `json:"avg_hrv,omitempty"`
	AvgRHR       *float64 `json:"avg_resting_hr,omitempty"`
	SleepScore   *float64 `json:"sleep_score,omitempty"`
	SleepMinutes float64  `json:"sleep_minutes,omitempty"`
}

type dailyOutput struct {
	Day      string  `json:"day"`
	Score    float64 `json:"score"`
	TotalTSS float64 `json:"total_tss"`
	Chronic  float64 `json:"chronic_load"`
	Acute    float64 `json:"acute_load"`
	RampRate float64 `json:"ramp_rate"`
}

type recentScoresOutput struct {
	Days []dailyOutput `json:"days"`
}

type recommendationOutput struct {
	Level   string  `json:"level"`
	MinTSS  float64 `json:"min_tss"`
	MaxTSS  float64 `json:"max_tss"`
	Message string  `json:"message"`
}

func (s *Server) handleTodayScore(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, scoreOutput, error) {
	snap, err := s.queries.TodayScore()
	if err != nil {
		return nil, scoreOutput{}, queryError(err)
	}
	return nil, toScoreOutput(snap), nil
}

func (s *Server) handleRecentScores(ctx context.Context, req *mcp.CallToolRequest, input recentScoresInput) (*mcp.CallToolResult, recentScoresOutput, error) {
	days := input.Days
	if days <= 0 {
		days = defaultRecentDays
	}
	days = min(days, maxRecentDays)

	aggs, err := s.queries.RecentScores(days)
	if err != nil {
		return nil, recentScoresOutput{}, queryError(err)
	}

	out := recentScoresOutput{Days: make([]dailyOutput, 0, len(aggs))}
	for _, a := range aggs {
		out.Days = append(out.Days, toDailyOutput(a))
	}
	return nil, out, nil
}

func (s *Server) handleTodayRecommendation(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, recommendationOutput, error) {
	rec, err := s.queries.TodayRecommendation()
	if err != nil {
		return nil, recommendationOutput{}, queryError(err)
	}
	return nil, recommendationOutput{
		Level:   rec.Level,
		MinTSS:  rec.MinTSS,
		MaxTSS:  rec.MaxTSS,
		Message: rec.Message,
	}, nil
}

func (s *Server) handleDayScore(ctx context.Context, req *mcp.CallToolRequest, input dayScoreInput) (*mcp.CallToolResult, scoreOutput, error) {
	if _, err := analysis.ParseDay(input.Day, time.UTC); err != nil {
		return nil, scoreOutput{}, fmt.Errorf("invalid day %q: want YYYY-MM-DD", input.Day)
	}
	snap, err := s.queries.Day(input.Day)
	if errors.Is(err, store.ErrAggregateNotFound) {
		return nil, scoreOutput{}, fmt.Errorf("no readiness computed for %s", input.Day)
	}
	if err != nil {
		return nil, scoreOutput{}, queryError(err)
	}
	return nil, toScoreOutput(snap), nil
}

func queryError(err error) error {
	if errors.Is(err, service.ErrNoScores) {
		return fmt.Errorf("no readiness computed yet; run an update first")
	}
	return fmt.Errorf("query failed: %w", err)
}

func toScoreOutput(s *service.ScoreSnapshot) scoreOutput {
	return scoreOutput{
		Day:          s.Day,
		Score:        s.Score,
		Label:        s.Label,
		Stale:        s.Stale,
		Trend:        string(s.Trend),
		Chronic:      s.Chronic,
		Acute:        s.Acute,
		Balance:      s.Balance,
		Form:         s.Form,
		RampRate:     s.RampRate,
		RampBand:     string(s.RampBand),
		TotalTSS:     s.TotalTSS,
		Adjustment:   s.Adjustment,
		Illness:      s.Illness.String(),
		AvgHRV:       s.AvgHRV,
		AvgRHR:       s.AvgRHR,
		SleepScore:   s.SleepScore,
		SleepMinutes: s.SleepDuration.Minutes(),
	}
}

func toDailyOutput(a store.DailyAggregate) dailyOutput {
	return dailyOutput{
		Day:      a.Day,
		Score:    a.Score,
		TotalTSS: a.TotalTSS,
		Chronic:  a.Chronic,
		Acute:    a.Acute,
		RampRate: a.RampRate,
	}
}
