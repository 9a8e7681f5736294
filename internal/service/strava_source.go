package service

import (
	"context"
	"strconv"
	"time"

	"readiness/internal/strava"
)

// StravaSource adapts the Strava API to the secondary workout source and
// exposes the athlete's profile FTP
type StravaSource struct {
	client *strava.Client
}

// NewStravaSource creates a secondary source backed by client
func NewStravaSource(client *strava.Client) *StravaSource {
	return &StravaSource{client: client}
}

// WorkoutsBetween implements SecondarySource. Strava's after/before bounds
// are exclusive, so the lower bound is widened by a second.
func (s *StravaSource) WorkoutsBetween(ctx context.Context, from, to time.Time) ([]SecondaryWorkout, error) {
	activities, err := s.client.GetAllActivities(ctx, from.Add(-time.Second), to, nil)
	if err != nil {
		return nil, err
	}

	workouts := make([]SecondaryWorkout, 0, len(activities))
	for _, a := range activities {
		if a.StartDate.Before(from) || !a.StartDate.Before(to) {
			continue
		}
		workouts = append(workouts, SecondaryWorkout{WorkoutSummary: activitySummary(a)})
	}
	return workouts, nil
}

// AthleteFTP implements ProfileFTP; 0 when the profile has none
func (s *StravaSource) AthleteFTP(ctx context.Context) (float64, error) {
	athlete, err := s.client.GetAthlete(ctx)
	if err != nil {
		return 0, err
	}
	if athlete.FTP == nil {
		return 0, nil
	}
	return float64(*athlete.FTP), nil
}

func activitySummary(a strava.Activity) WorkoutSummary {
	elapsed := a.ElapsedTime
	if elapsed == 0 {
		elapsed = a.MovingTime
	}

	summary := WorkoutSummary{
		ID:             strconv.FormatInt(a.ID, 10),
		StartTime:      a.StartDate.UTC(),
		Duration:       time.Duration(elapsed) * time.Second,
		Sport:          a.Sport(),
		DistanceMeters: a.Distance,
	}
	// Estimated power is not good enough to score with
	if a.DeviceWatts {
		if a.AverageWatts > 0 {
			summary.AvgPower = floatValue(a.AverageWatts)
		}
		if a.WeightedAverageWatts > 0 {
			summary.NormalizedPower = floatValue(a.WeightedAverageWatts)
		}
	}
	if a.HasHeartrate {
		if a.AverageHeartrate > 0 {
			summary.AvgHeartrate = floatValue(a.AverageHeartrate)
		}
		if a.MaxHeartrate > 0 {
			summary.MaxHeartrate = floatValue(a.MaxHeartrate)
		}
	}
	return summary
}

func floatValue(v float64) *float64 {
	return &v
}
