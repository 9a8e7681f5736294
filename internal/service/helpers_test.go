package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"readiness/internal/analysis"
	"readiness/internal/store"
)

// openTestDB creates a migrated in-memory database closed at test end
func openTestDB(t *testing.T) *store.DB {
	t.Helper()

	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// Helper to create a float64 pointer
func floatPtr(f float64) *float64 {
	return &f
}

// testNow is a fixed mid-morning clock; all tests run in UTC
var testNow = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// fakePrimary serves workouts from memory. available records when each
// workout became visible, for WorkoutsSince.
type fakePrimary struct {
	mu        sync.Mutex
	workouts  []PrimaryWorkout
	available map[string]time.Time
	err       error

	started chan struct{} // closed on first call when set
	release chan struct{} // calls block until closed when set
	once    sync.Once
}

func (f *fakePrimary) add(w PrimaryWorkout, availableAt time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.available == nil {
		f.available = make(map[string]time.Time)
	}
	f.workouts = append(f.workouts, w)
	f.available[w.ID] = availableAt
}

func (f *fakePrimary) wait(ctx context.Context) error {
	if f.started != nil {
		f.once.Do(func() { close(f.started) })
	}
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (f *fakePrimary) WorkoutsBetween(ctx context.Context, from, to time.Time) ([]PrimaryWorkout, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []PrimaryWorkout
	for _, w := range f.workouts {
		if !w.StartTime.Before(from) && w.StartTime.Before(to) {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakePrimary) WorkoutsSince(ctx context.Context, cursor time.Time) ([]PrimaryWorkout, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []PrimaryWorkout
	for _, w := range f.workouts {
		if f.available[w.ID].After(cursor) {
			out = append(out, w)
		}
	}
	return out, nil
}

type fakeSecondary struct {
	workouts []SecondaryWorkout
	err      error
}

func (f *fakeSecondary) WorkoutsBetween(ctx context.Context, from, to time.Time) ([]SecondaryWorkout, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []SecondaryWorkout
	for _, w := range f.workouts {
		if !w.StartTime.Before(from) && w.StartTime.Before(to) {
			out = append(out, w)
		}
	}
	return out, nil
}

type fakePhysiology struct {
	hrv, rhr []analysis.Sample
}

func (f *fakePhysiology) PhysiologyBetween(ctx context.Context, from, to time.Time) ([]analysis.Sample, []analysis.Sample, error) {
	pick := func(in []analysis.Sample) []analysis.Sample {
		var out []analysis.Sample
		for _, s := range in {
			if !s.Time.Before(from) && s.Time.Before(to) {
				out = append(out, s)
			}
		}
		return out
	}
	return pick(f.hrv), pick(f.rhr), nil
}

type fakeSettings struct {
	thresholds analysis.Thresholds
	err        error
}

func (f *fakeSettings) Thresholds(ctx context.Context) (analysis.Thresholds, error) {
	return f.thresholds, f.err
}

func testThresholds() analysis.Thresholds {
	return analysis.Thresholds{ManualFTP: 250, RestingHR: 50, MaxHR: 185, ThresholdHR: 165}
}

// steadyRide is a ride with constant power, scored by the power strategy
func steadyRide(id string, start time.Time, d time.Duration, watts float64) PrimaryWorkout {
	power := make([]float64, int(d.Seconds()))
	for i := range power {
		power[i] = watts
	}
	return PrimaryWorkout{
		WorkoutSummary: WorkoutSummary{
			ID:        id,
			StartTime: start,
			Duration:  d,
			Sport:     "Ride",
			AvgPower:  floatPtr(watts),
		},
		PowerSamples: power,
	}
}

// summaryRun is a run with no power or heart-rate data
func summaryRun(id string, start time.Time, d time.Duration) SecondaryWorkout {
	return SecondaryWorkout{WorkoutSummary: WorkoutSummary{
		ID:        id,
		StartTime: start,
		Duration:  d,
		Sport:     "Run",
	}}
}

func newTestEngine(t *testing.T, db *store.DB, primary PrimarySource, now time.Time) *Engine {
	t.Helper()
	return NewEngine(EngineConfig{
		Primary:     primary,
		Settings:    &fakeSettings{thresholds: testThresholds()},
		Store:       db,
		HistoryDays: 30,
		Location:    time.UTC,
		Now:         fixedClock(now),
	})
}

// daysAgo returns 07:00 UTC n days before testNow
func daysAgo(n int) time.Time {
	return time.Date(2024, 6, 15-n, 7, 0, 0, 0, time.UTC)
}
