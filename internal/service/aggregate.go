package service

import (
	"sort"
	"time"

	"readiness/internal/analysis"
	"readiness/internal/store"
)

// Aggregator scores raw workouts and resolves duplicates between sources
type Aggregator struct {
	ftp   float64
	zones analysis.HRZones
	loc   *time.Location
}

// NewAggregator creates an aggregator for the given thresholds and local zone
func NewAggregator(thresholds analysis.Thresholds, loc *time.Location) *Aggregator {
	if loc == nil {
		loc = time.Local
	}
	return &Aggregator{
		ftp:   thresholds.FTP(),
		zones: thresholds.Zones(),
		loc:   loc,
	}
}

// Score converts a raw workout into a record with its TSS
func (a *Aggregator) Score(w RawWorkout) store.WorkoutRecord {
	s := w.Summary()
	sport := analysis.NormalizeSport(s.Sport)
	result := analysis.CalculateTSS(w.signal(sport), a.ftp, a.zones)

	return store.WorkoutRecord{
		ID:              s.ID,
		Origin:          w.Origin(),
		Day:             analysis.DayKey(s.StartTime.In(a.loc)),
		StartTime:       s.StartTime,
		Duration:        s.Duration,
		Sport:           s.Sport,
		SportType:       string(sport),
		DistanceMeters:  s.DistanceMeters,
		AvgPower:        s.AvgPower,
		NormalizedPower: s.NormalizedPower,
		AvgHeartrate:    s.AvgHeartrate,
		MaxHeartrate:    s.MaxHeartrate,
		TSS:             result.TSS,
		TSSMethod:       string(result.Method),
	}
}

// Aggregate scores raw workouts, merges them over previously stored
// records (a fresh record replaces a stored one with the same origin and
// ID) and resolves duplicates across the union
func (a *Aggregator) Aggregate(raw []RawWorkout, stored []store.WorkoutRecord) []store.WorkoutRecord {
	type key struct {
		origin store.SourceTag
		id     string
	}

	merged := make(map[key]store.WorkoutRecord, len(raw)+len(stored))
	for _, r := range stored {
		merged[key{r.Origin, r.ID}] = r
	}
	for _, w := range raw {
		r := a.Score(w)
		merged[key{r.Origin, r.ID}] = r
	}

	records := make([]store.WorkoutRecord, 0, len(merged))
	for _, r := range merged {
		records = append(records, r)
	}
	return Dedupe(records)
}

// IsDuplicate reports whether two records describe the same workout
func IsDuplicate(a, b store.WorkoutRecord) bool {
	if a.SportType != b.SportType {
		return false
	}
	return absDuration(a.StartTime.Sub(b.StartTime)) < DuplicateStartTolerance &&
		absDuration(a.Duration-b.Duration) < DuplicateDurationTolerance
}

// Dedupe marks every primary record that duplicates a secondary record as
// suppressed. The secondary record survives and, when its twin was scored
// by a better strategy, takes over the twin's TSS. The result is sorted by
// start time and does not depend on input order.
func Dedupe(records []store.WorkoutRecord) []store.WorkoutRecord {
	out := make([]store.WorkoutRecord, len(records))
	copy(out, records)
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.Before(out[j].StartTime)
		}
		if out[i].Origin != out[j].Origin {
			return out[i].Origin < out[j].Origin
		}
		return out[i].ID < out[j].ID
	})

	for i := range out {
		out[i].Suppressed = false
	}

	for i := range out {
		if out[i].Origin != store.SourceSecondary {
			continue
		}
		survivor := &out[i]
		bestTSS, bestMethod := survivor.TSS, analysis.TSSMethod(survivor.TSSMethod)

		for j := range out {
			twin := &out[j]
			if twin.Origin != store.SourcePrimary || !IsDuplicate(*survivor, *twin) {
				continue
			}
			twin.Suppressed = true
			if m := analysis.TSSMethod(twin.TSSMethod); m.Rank() > bestMethod.Rank() {
				bestTSS, bestMethod = twin.TSS, m
			}
		}
		survivor.TSS, survivor.TSSMethod = bestTSS, string(bestMethod)
	}
	return out
}

// DailyTotals sums unsuppressed TSS and counts workouts per day
func DailyTotals(records []store.WorkoutRecord) (tss map[string]float64, counts map[string]int) {
	tss = make(map[string]float64)
	counts = make(map[string]int)
	for _, r := range records {
		if r.Suppressed {
			continue
		}
		tss[r.Day] += r.TSS
		counts[r.Day]++
	}
	return tss, counts
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
