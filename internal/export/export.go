package export

import (
	"fmt"
	"os"
	"path/filepath"

	"readiness/internal/store"
)

// File names written by ToDir
const (
	AggregatesFile = "daily_readiness.parquet"
	WorkoutsFile   = "workouts.parquet"
)

// Source is the stored history to export
type Source interface {
	DailyAggregatesBetween(from, to string) ([]store.DailyAggregate, error)
	Workouts(from, to string) ([]store.WorkoutRecord, error)
}

// Summary describes a completed export
type Summary struct {
	Days           int
	Workouts       int
	AggregatesPath string
	WorkoutsPath   string
}

// ToDir writes the aggregates and workouts of days [from, to] into dir
func ToDir(src Source, dir, from, to string) (*Summary, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating export directory: %w", err)
	}

	aggs, err := src.DailyAggregatesBetween(from, to)
	if err != nil {
		return nil, fmt.Errorf("loading aggregates: %w", err)
	}
	workouts, err := src.Workouts(from, to)
	if err != nil {
		return nil, fmt.Errorf("loading workouts: %w", err)
	}

	s := &Summary{
		Days:           len(aggs),
		Workouts:       len(workouts),
		AggregatesPath: filepath.Join(dir, AggregatesFile),
		WorkoutsPath:   filepath.Join(dir, WorkoutsFile),
	}
	if err := WriteAggregates(s.AggregatesPath, aggs); err != nil {
		return nil, err
	}
	if err := WriteWorkouts(s.WorkoutsPath, workouts); err != nil {
		return nil, err
	}
	return s, nil
}
