package service

import (
	"errors"
	"fmt"
	"time"

	"readiness/internal/analysis"
	"readiness/internal/store"
)

// ErrNoScores is returned when nothing has been computed yet
var ErrNoScores = errors.New("no readiness scores computed yet")

// QueryService provides read-only queries over computed aggregates
type QueryService struct {
	store Persistence
	loc   *time.Location
	now   func() time.Time
}

// NewQueryService creates a new query service
func NewQueryService(store Persistence, loc *time.Location) *QueryService {
	if loc == nil {
		loc = time.Local
	}
	return &QueryService{store: store, loc: loc, now: time.Now}
}

// ScoreSnapshot is one day's readiness with the context needed to show it
type ScoreSnapshot struct {
	Day        string
	Score      float64
	Label      string
	Chronic    float64
	Acute      float64
	Balance    float64
	Form       string
	RampRate   float64
	RampBand   analysis.RampBand
	Trend      analysis.Trend
	Illness    analysis.IllnessGrade
	Adjustment float64
	SleepScore *float64
	TotalTSS   float64

	WorkoutCount  int
	AvgHRV        *float64
	AvgRHR        *float64
	HRVAdjustment float64
	RHRAdjustment float64
	SleepDuration time.Duration
	DeepSleep     time.Duration

	// Stale is set when today has no aggregate yet and the latest day is shown
	Stale bool
}

// TodayScore returns today's readiness, falling back to the latest computed day
func (q *QueryService) TodayScore() (*ScoreSnapshot, error) {
	today := analysis.DayKey(q.now().In(q.loc))

	recent, err := q.store.RecentDailyAggregates(TrendWindowDays)
	if err != nil {
		return nil, fmt.Errorf("loading recent aggregates: %w", err)
	}
	if len(recent) == 0 {
		return nil, ErrNoScores
	}

	latest := recent[len(recent)-1]
	snap := snapshot(latest)
	snap.Stale = latest.Day != today
	snap.Trend = analysis.ClassifyTrend(scores(recent))
	return snap, nil
}

// RecentScores returns the latest n daily aggregates, oldest first
func (q *QueryService) RecentScores(n int) ([]store.DailyAggregate, error) {
	if n <= 0 {
		return nil, nil
	}
	aggs, err := q.store.RecentDailyAggregates(n)
	if err != nil {
		return nil, fmt.Errorf("loading recent aggregates: %w", err)
	}
	return aggs, nil
}

// TodayRecommendation turns today's readiness into a training suggestion
func (q *QueryService) TodayRecommendation() (*analysis.Recommendation, error) {
	snap, err := q.TodayScore()
	if err != nil {
		return nil, err
	}
	rec := analysis.Recommend(snap.Score, snap.Chronic, snap.Balance, snap.Illness)
	return &rec, nil
}

// Day returns the snapshot for a specific day
func (q *QueryService) Day(day string) (*ScoreSnapshot, error) {
	agg, err := q.store.DailyAggregate(day)
	if err != nil {
		return nil, err
	}
	return snapshot(*agg), nil
}

// Workouts returns the workouts recorded in [from, to], suppressed ones included
func (q *QueryService) Workouts(from, to string) ([]store.WorkoutRecord, error) {
	return q.store.Workouts(from, to)
}

func snapshot(a store.DailyAggregate) *ScoreSnapshot {
	return &ScoreSnapshot{
		Day:        a.Day,
		Score:      a.Score,
		Label:      analysis.ScoreLabel(a.Score),
		Chronic:    a.Chronic,
		Acute:      a.Acute,
		Balance:    a.Balance(),
		Form:       analysis.FormDescription(a.Balance()),
		RampRate:   a.RampRate,
		RampBand:   analysis.ClassifyRamp(a.RampRate),
		Trend:      analysis.TrendStable,
		Illness:    analysis.GradeFromLikelihood(a.IllnessLikelihood),
		Adjustment: a.PhysiologyAdjustment,
		SleepScore: a.SleepScore,
		TotalTSS:   a.TotalTSS,

		WorkoutCount:  a.WorkoutCount,
		AvgHRV:        a.AvgHRV,
		AvgRHR:        a.AvgRHR,
		HRVAdjustment: a.HRVAdjustment,
		RHRAdjustment: a.RHRAdjustment,
		SleepDuration: a.SleepDuration,
		DeepSleep:     a.DeepSleepDuration,
	}
}

func scores(aggs []store.DailyAggregate) []float64 {
	out := make([]float64, len(aggs))
	for i, a := range aggs {
		out[i] = a.Score
	}
	return out
}
