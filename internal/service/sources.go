package service

import (
	"context"
	"time"

	"readiness/internal/analysis"
	"readiness/internal/store"
)

// WorkoutSummary holds the fields both workout sources can report
type WorkoutSummary struct {
	ID             string
	StartTime      time.Time
	Duration       time.Duration
	Sport          string
	DistanceMeters float64

	AvgPower        *float64
	NormalizedPower *float64
	AvgHeartrate    *float64
	MaxHeartrate    *float64
}

// PrimaryWorkout comes from the primary source with full sample series
type PrimaryWorkout struct {
	WorkoutSummary
	PowerSamples []float64 // watts, one per second
	HRSamples    []float64 // bpm, one per recorded sample
}

// SecondaryWorkout comes from the secondary source with summaries only
type SecondaryWorkout struct {
	WorkoutSummary
}

// RawWorkout is either a PrimaryWorkout or a SecondaryWorkout
type RawWorkout interface {
	Origin() store.SourceTag
	Summary() WorkoutSummary
	signal(sport analysis.SportType) analysis.WorkoutSignal
}

func (w PrimaryWorkout) Origin() store.SourceTag { return store.SourcePrimary }
func (w PrimaryWorkout) Summary() WorkoutSummary { return w.WorkoutSummary }

func (w PrimaryWorkout) signal(sport analysis.SportType) analysis.WorkoutSignal {
	return analysis.WorkoutSignal{
		Sport:        sport,
		Duration:     w.Duration,
		PowerSamples: w.PowerSamples,
		HRSamples:    w.HRSamples,
		SummaryNP:    deref(w.NormalizedPower),
	}
}

func (w SecondaryWorkout) Origin() store.SourceTag { return store.SourceSecondary }
func (w SecondaryWorkout) Summary() WorkoutSummary { return w.WorkoutSummary }

func (w SecondaryWorkout) signal(sport analysis.SportType) analysis.WorkoutSignal {
	return analysis.WorkoutSignal{
		Sport:     sport,
		Duration:  w.Duration,
		SummaryNP: deref(w.NormalizedPower),
	}
}

// PrimarySource supplies workouts with full power and heart-rate series
type PrimarySource interface {
	WorkoutsBetween(ctx context.Context, from, to time.Time) ([]PrimaryWorkout, error)
	// WorkoutsSince returns workouts that became available after cursor
	WorkoutsSince(ctx context.Context, cursor time.Time) ([]PrimaryWorkout, error)
}

// SecondarySource supplies summary-only workouts
type SecondarySource interface {
	WorkoutsBetween(ctx context.Context, from, to time.Time) ([]SecondaryWorkout, error)
}

// PhysiologySource supplies HRV and resting heart-rate samples
type PhysiologySource interface {
	PhysiologyBetween(ctx context.Context, from, to time.Time) (hrv, rhr []analysis.Sample, err error)
}

// SleepSource supplies sleep-stage samples
type SleepSource interface {
	SleepBetween(ctx context.Context, from, to time.Time) ([]analysis.SleepSample, error)
}

// SettingsSource supplies the athlete's current thresholds
type SettingsSource interface {
	Thresholds(ctx context.Context) (analysis.Thresholds, error)
}

// Persistence stores workouts, daily aggregates and the sync cursor
type Persistence interface {
	UpsertDailyAggregates(aggs []store.DailyAggregate) error
	DailyAggregate(day string) (*store.DailyAggregate, error)
	RecentDailyAggregates(n int) ([]store.DailyAggregate, error)
	DailyAggregatesBetween(from, to string) ([]store.DailyAggregate, error)
	Workouts(from, to string) ([]store.WorkoutRecord, error)
	SyncCursor() (time.Time, bool, error)
	SetSyncCursor(cursor time.Time) error
	CommitPass(ctx context.Context, batch store.PassBatch) error
}

var _ Persistence = (*store.DB)(nil)

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
