package service

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"readiness/internal/analysis"
	"readiness/internal/store"
)

// ImportSource tags samples that came from a health export file
const ImportSource = "health_export"

// HealthExport is the JSON shape accepted by Importer
type HealthExport struct {
	HRV       []ExportSample      `json:"hrv"`
	RestingHR []ExportSample      `json:"resting_hr"`
	Sleep     []ExportSleepSample `json:"sleep"`
}

// ExportSample is one HRV (ms) or resting heart-rate (bpm) reading
type ExportSample struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// ExportSleepSample is one sleep stage interval
type ExportSleepSample struct {
	Stage string    `json:"stage"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ImportResult counts what an import stored
type ImportResult struct {
	HRV       int
	RestingHR int
	Sleep     int
	Skipped   int
	Earliest  time.Time // earliest sample time stored, zero if nothing new
}

// Importer loads health-export files into the sample tables
type Importer struct {
	db *store.DB
}

// NewImporter creates an importer writing to db
func NewImporter(db *store.DB) *Importer {
	return &Importer{db: db}
}

// Import decodes a health export from r and stores its samples. Samples
// already present are skipped, so importing the same file twice is safe.
func (im *Importer) Import(r io.Reader) (*ImportResult, error) {
	var export HealthExport
	if err := json.NewDecoder(r).Decode(&export); err != nil {
		return nil, fmt.Errorf("decoding health export: %w", err)
	}
	return im.ImportExport(&export)
}

// ImportExport stores an already decoded export
func (im *Importer) ImportExport(export *HealthExport) (*ImportResult, error) {
	result := &ImportResult{}
	earliest := func(t time.Time) {
		if result.Earliest.IsZero() || t.Before(result.Earliest) {
			result.Earliest = t
		}
	}

	physiology := func(kind store.PhysiologyKind, samples []ExportSample) (int, error) {
		rows := make([]store.PhysiologySample, 0, len(samples))
		for _, s := range samples {
			if s.Time.IsZero() || s.Value <= 0 {
				result.Skipped++
				continue
			}
			rows = append(rows, store.PhysiologySample{Kind: kind, Time: s.Time, Value: s.Value, Source: ImportSource})
		}
		n, err := im.db.InsertPhysiologySamples(rows)
		if err != nil {
			return 0, fmt.Errorf("storing %s samples: %w", kind, err)
		}
		if n > 0 {
			for _, r := range rows {
				earliest(r.Time)
			}
		}
		return n, nil
	}

	var err error
	if result.HRV, err = physiology(store.KindHRV, export.HRV); err != nil {
		return nil, err
	}
	if result.RestingHR, err = physiology(store.KindRHR, export.RestingHR); err != nil {
		return nil, err
	}

	sleep := make([]store.SleepSample, 0, len(export.Sleep))
	for _, s := range export.Sleep {
		if !s.End.After(s.Start) {
			result.Skipped++
			continue
		}
		sleep = append(sleep, store.SleepSample{
			Stage:  string(analysis.ParseSleepStage(s.Stage)),
			Start:  s.Start,
			End:    s.End,
			Source: ImportSource,
		})
	}
	if result.Sleep, err = im.db.InsertSleepSamples(sleep); err != nil {
		return nil, fmt.Errorf("storing sleep samples: %w", err)
	}
	if result.Sleep > 0 {
		for _, s := range sleep {
			earliest(s.Start)
		}
	}

	return result, nil
}

// Total is the number of new samples stored
func (r *ImportResult) Total() int {
	return r.HRV + r.RestingHR + r.Sleep
}
