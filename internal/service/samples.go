package service

import (
	"context"
	"fmt"
	"time"

	"readiness/internal/analysis"
	"readiness/internal/store"
)

// StoreSamples serves imported physiology and sleep samples from the local
// database as the engine's physiology and sleep sources
type StoreSamples struct {
	db *store.DB
}

// NewStoreSamples creates a sample source backed by db
func NewStoreSamples(db *store.DB) *StoreSamples {
	return &StoreSamples{db: db}
}

// PhysiologyBetween returns HRV and resting-HR samples recorded in [from, to)
func (s *StoreSamples) PhysiologyBetween(ctx context.Context, from, to time.Time) ([]analysis.Sample, []analysis.Sample, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	hrv, err := s.db.PhysiologyBetween(store.KindHRV, from, to)
	if err != nil {
		return nil, nil, fmt.Errorf("loading hrv samples: %w", err)
	}
	rhr, err := s.db.PhysiologyBetween(store.KindRHR, from, to)
	if err != nil {
		return nil, nil, fmt.Errorf("loading resting hr samples: %w", err)
	}
	return toSamples(hrv), toSamples(rhr), nil
}

// SleepBetween returns sleep intervals ending in [from, to)
func (s *StoreSamples) SleepBetween(ctx context.Context, from, to time.Time) ([]analysis.SleepSample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := s.db.SleepBetween(from, to)
	if err != nil {
		return nil, fmt.Errorf("loading sleep samples: %w", err)
	}
	out := make([]analysis.SleepSample, len(rows))
	for i, r := range rows {
		out[i] = analysis.SleepSample{
			Stage: analysis.SleepStage(r.Stage),
			Start: r.Start,
			End:   r.End,
		}
	}
	return out, nil
}

func toSamples(rows []store.PhysiologySample) []analysis.Sample {
	out := make([]analysis.Sample, len(rows))
	for i, r := range rows {
		out[i] = analysis.Sample{Time: r.Time, Value: r.Value}
	}
	return out
}
