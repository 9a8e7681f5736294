package service

import (
	"context"
	"log/slog"
	"time"

	"readiness/internal/fitfile"
)

// FITSource is the primary workout source: a directory of FIT exports.
// A file becomes available when it is written, so WorkoutsSince filters
// on modification time rather than on workout start.
type FITSource struct {
	dir    *fitfile.Directory
	logger *slog.Logger
}

// NewFITSource creates a primary source reading FIT files under root
func NewFITSource(root string, logger *slog.Logger) *FITSource {
	if logger == nil {
		logger = discardLogger()
	}
	return &FITSource{dir: fitfile.NewDirectory(root), logger: logger}
}

// WorkoutsBetween implements PrimarySource
func (s *FITSource) WorkoutsBetween(ctx context.Context, from, to time.Time) ([]PrimaryWorkout, error) {
	activities, err := s.scan(ctx, time.Time{})
	if err != nil {
		return nil, err
	}

	var workouts []PrimaryWorkout
	for _, a := range activities {
		if a.StartTime.Before(from) || !a.StartTime.Before(to) {
			continue
		}
		workouts = append(workouts, fitWorkout(a))
	}
	return workouts, nil
}

// WorkoutsSince implements PrimarySource
func (s *FITSource) WorkoutsSince(ctx context.Context, cursor time.Time) ([]PrimaryWorkout, error) {
	activities, err := s.scan(ctx, cursor)
	if err != nil {
		return nil, err
	}

	workouts := make([]PrimaryWorkout, 0, len(activities))
	for _, a := range activities {
		workouts = append(workouts, fitWorkout(a))
	}
	return workouts, nil
}

func (s *FITSource) scan(ctx context.Context, modifiedAfter time.Time) ([]*fitfile.Activity, error) {
	activities, skipped, err := s.dir.Activities(ctx, modifiedAfter)
	if err != nil {
		return nil, err
	}
	for _, f := range skipped {
		s.logger.Warn("skipping unreadable FIT file", "path", f.Path, "error", f.Err)
	}
	return activities, nil
}

func fitWorkout(a *fitfile.Activity) PrimaryWorkout {
	return PrimaryWorkout{
		WorkoutSummary: WorkoutSummary{
			ID:              a.ID,
			StartTime:       a.StartTime,
			Duration:        a.Duration,
			Sport:           a.Sport,
			DistanceMeters:  a.DistanceMeters,
			AvgPower:        optional(a.AvgPower),
			NormalizedPower: optional(a.NormalizedPower),
			AvgHeartrate:    optional(a.AvgHeartRate),
			MaxHeartrate:    optional(a.MaxHeartRate),
		},
		PowerSamples: a.Power,
		HRSamples:    a.HeartRate,
	}
}

// optional maps an unrecorded (zero) value to nil
func optional(v float64) *float64 {
	if v <= 0 {
		return nil
	}
	return floatValue(v)
}
