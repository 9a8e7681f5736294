package service

import (
	"errors"
	"testing"
	"time"

	"readiness/internal/analysis"
	"readiness/internal/store"
)

func seedAggregates(t *testing.T, db *store.DB, scores map[string]float64) {
	t.Helper()
	var aggs []store.DailyAggregate
	for day, score := range scores {
		aggs = append(aggs, store.DailyAggregate{Day: day, Score: score, Chronic: 60, Acute: 50, ComputedAt: testNow})
	}
	if err := db.UpsertDailyAggregates(aggs); err != nil {
		t.Fatalf("failed to seed aggregates: %v", err)
	}
}

func newTestQuery(db *store.DB) *QueryService {
	q := NewQueryService(db, time.UTC)
	q.now = fixedClock(testNow)
	return q
}

func TestTodayScoreNoData(t *testing.T) {
	q := newTestQuery(openTestDB(t))
	if _, err := q.TodayScore(); !errors.Is(err, ErrNoScores) {
		t.Errorf("TodayScore() error = %v, want ErrNoScores", err)
	}
	if _, err := q.TodayRecommendation(); !errors.Is(err, ErrNoScores) {
		t.Errorf("TodayRecommendation() error = %v, want ErrNoScores", err)
	}
}

func TestTodayScore(t *testing.T) {
	db := openTestDB(t)
	seedAggregates(t, db, map[string]float64{
		"2024-06-11": 40,
		"2024-06-12": 45,
		"2024-06-13": 52,
		"2024-06-14": 58,
		"2024-06-15": 66,
	})

	snap, err := newTestQuery(db).TodayScore()
	if err != nil {
		t.Fatalf("TodayScore() error = %v", err)
	}
	if snap.Day != "2024-06-15" || snap.Score != 66 {
		t.Errorf("snapshot = %s/%v, want 2024-06-15/66", snap.Day, snap.Score)
	}
	if snap.Stale {
		t.Error("Stale = true for today's aggregate")
	}
	if snap.Balance != 10 {
		t.Errorf("Balance = %v, want 10", snap.Balance)
	}
	if snap.Trend != analysis.TrendRapidImprove {
		t.Errorf("Trend = %q, want %q", snap.Trend, analysis.TrendRapidImprove)
	}
	if snap.Label != analysis.ScoreLabel(66) {
		t.Errorf("Label = %q, want %q", snap.Label, analysis.ScoreLabel(66))
	}
}

func TestTodayScoreStale(t *testing.T) {
	db := openTestDB(t)
	seedAggregates(t, db, map[string]float64{"2024-06-12": 70})

	snap, err := newTestQuery(db).TodayScore()
	if err != nil {
		t.Fatalf("TodayScore() error = %v", err)
	}
	if !snap.Stale || snap.Day != "2024-06-12" {
		t.Errorf("snapshot = %s stale=%v, want 2024-06-12 stale", snap.Day, snap.Stale)
	}
	if snap.Trend != analysis.TrendStable {
		t.Errorf("Trend = %q with one point, want stable", snap.Trend)
	}
}

func TestRecentScores(t *testing.T) {
	db := openTestDB(t)
	seedAggregates(t, db, map[string]float64{
		"2024-06-13": 52,
		"2024-06-14": 58,
		"2024-06-15": 66,
	})
	q := newTestQuery(db)

	aggs, err := q.RecentScores(2)
	if err != nil {
		t.Fatalf("RecentScores() error = %v", err)
	}
	if len(aggs) != 2 || aggs[0].Day != "2024-06-14" || aggs[1].Day != "2024-06-15" {
		t.Errorf("RecentScores(2) = %+v, want 06-14 and 06-15 oldest first", aggs)
	}

	if aggs, _ := q.RecentScores(0); aggs != nil {
		t.Errorf("RecentScores(0) = %v, want nil", aggs)
	}
}

func TestTodayRecommendation(t *testing.T) {
	db := openTestDB(t)
	seedAggregates(t, db, map[string]float64{"2024-06-15": 85})

	rec, err := newTestQuery(db).TodayRecommendation()
	if err != nil {
		t.Fatalf("TodayRecommendation() error = %v", err)
	}
	if rec.Level != "peak" {
		t.Errorf("Level = %q, want peak", rec.Level)
	}
	// Chronic 60: 1.1x..1.4x
	if rec.MinTSS != 66 || rec.MaxTSS != 84 {
		t.Errorf("range = %v-%v, want 66-84", rec.MinTSS, rec.MaxTSS)
	}
}

func TestQueryDay(t *testing.T) {
	db := openTestDB(t)
	seedAggregates(t, db, map[string]float64{"2024-06-10": 47})
	q := newTestQuery(db)

	snap, err := q.Day("2024-06-10")
	if err != nil {
		t.Fatalf("Day() error = %v", err)
	}
	if snap.Score != 47 {
		t.Errorf("Score = %v, want 47", snap.Score)
	}
	if _, err := q.Day("2024-01-01"); !errors.Is(err, store.ErrAggregateNotFound) {
		t.Errorf("Day(missing) error = %v, want ErrAggregateNotFound", err)
	}
}
