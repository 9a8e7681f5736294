package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"readiness/internal/service"
	"readiness/internal/store"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func setupServer(t *testing.T, aggs []store.DailyAggregate) *Server {
	t.Helper()

	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if len(aggs) > 0 {
		if err := db.UpsertDailyAggregates(aggs); err != nil {
			t.Fatalf("failed to seed aggregates: %v", err)
		}
	}
	return NewServer(service.NewQueryService(db, time.UTC), "test")
}

func seed() []store.DailyAggregate {
	at := time.Date(2024, 6, 15, 6, 0, 0, 0, time.UTC)
	hrv := 62.0
	return []store.DailyAggregate{
		{Day: "2024-06-13", Score: 44, Chronic: 60, Acute: 66, TotalTSS: 110, ComputedAt: at},
		{Day: "2024-06-14", Score: 48, Chronic: 60, Acute: 63, TotalTSS: 40, ComputedAt: at},
		{Day: "2024-06-15", Score: 57, Chronic: 59, Acute: 55, AvgHRV: &hrv, SleepDuration: 7 * time.Hour, ComputedAt: at},
	}
}

func TestNewServer(t *testing.T) {
	s := setupServer(t, nil)
	if s.mcpServer == nil {
		t.Error("expected non-nil mcpServer")
	}
	if s.queries == nil {
		t.Error("expected non-nil queries")
	}
}

func TestHandleTodayScore(t *testing.T) {
	s := setupServer(t, seed())

	_, out, err := s.handleTodayScore(context.Background(), nil, emptyInput{})
	if err != nil {
		t.Fatalf("handleTodayScore() error = %v", err)
	}
	if out.Day != "2024-06-15" || out.Score != 57 {
		t.Errorf("got %s/%v, want 2024-06-15/57", out.Day, out.Score)
	}
	if out.Balance != 4 {
		t.Errorf("Balance = %v, want 4", out.Balance)
	}
	if out.AvgHRV == nil || *out.AvgHRV != 62 {
		t.Errorf("AvgHRV = %v, want 62", out.AvgHRV)
	}
	if out.SleepMinutes != 420 {
		t.Errorf("SleepMinutes = %v, want 420", out.SleepMinutes)
	}
	if out.Trend == "" || out.Illness == "" {
		t.Errorf("trend %q and illness %q should be set", out.Trend, out.Illness)
	}
}

func TestHandleTodayScoreNoData(t *testing.T) {
	s := setupServer(t, nil)

	_, _, err := s.handleTodayScore(context.Background(), nil, emptyInput{})
	if err == nil || !strings.Contains(err.Error(), "run an update") {
		t.Errorf("error = %v, want a hint to run an update", err)
	}
}

func TestHandleRecentScores(t *testing.T) {
	s := setupServer(t, seed())

	tests := []struct {
		name  string
		input recentScoresInput
		want  int
	}{
		{"default", recentScoresInput{}, 3},
		{"limited", recentScoresInput{Days: 2}, 2},
		{"negative uses default", recentScoresInput{Days: -1}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, out, err := s.handleRecentScores(context.Background(), nil, tt.input)
			if err != nil {
				t.Fatalf("handleRecentScores() error = %v", err)
			}
			if len(out.Days) != tt.want {
				t.Fatalf("got %d days, want %d", len(out.Days), tt.want)
			}
			if out.Days[len(out.Days)-1].Day != "2024-06-15" {
				t.Errorf("last day = %s, want 2024-06-15", out.Days[len(out.Days)-1].Day)
			}
		})
	}
}

func TestHandleTodayRecommendation(t *testing.T) {
	s := setupServer(t, seed())

	_, out, err := s.handleTodayRecommendation(context.Background(), nil, emptyInput{})
	if err != nil {
		t.Fatalf("handleTodayRecommendation() error = %v", err)
	}
	// Score 57 with chronic 59
	if out.Level != "maintain" {
		t.Errorf("Level = %q, want maintain", out.Level)
	}
	if out.MinTSS != 35 || out.MaxTSS != 53 {
		t.Errorf("range = %v-%v, want 35-53", out.MinTSS, out.MaxTSS)
	}
}

func TestHandleDayScore(t *testing.T) {
	s := setupServer(t, seed())
	ctx := context.Background()

	tests := []struct {
		day       string
		wantErr   string
		wantScore float64
	}{
		{day: "2024-06-13", wantScore: 44},
		{day: "2024-06-01", wantErr: "no readiness computed for 2024-06-01"},
		{day: "June 13", wantErr: "invalid day"},
	}

	for _, tt := range tests {
		t.Run(tt.day, func(t *testing.T) {
			_, out, err := s.handleDayScore(ctx, nil, dayScoreInput{Day: tt.day})
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("handleDayScore() error = %v", err)
			}
			if out.Score != tt.wantScore {
				t.Errorf("Score = %v, want %v", out.Score, tt.wantScore)
			}
		})
	}
}

func TestHandleTodayResource(t *testing.T) {
	s := setupServer(t, seed())

	result, err := s.handleTodayResource(context.Background(), &mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("handleTodayResource() error = %v", err)
	}
	if len(result.Contents) != 1 || result.Contents[0].URI != todayURI {
		t.Fatalf("contents = %+v", result.Contents)
	}

	var body struct {
		Score          scoreOutput          `json:"score"`
		Recommendation recommendationOutput `json:"recommendation"`
	}
	if err := json.Unmarshal([]byte(result.Contents[0].Text), &body); err != nil {
		t.Fatalf("resource is not JSON: %v", err)
	}
	if body.Score.Score != 57 || body.Recommendation.Level == "" {
		t.Errorf("body = %+v", body)
	}
}
