package analysis

import (
	"math"
	"time"
)

const (
	// MaxPhysiologyAdjustment caps the readiness points physiology can add or remove
	MaxPhysiologyAdjustment = 12.0

	// robustZFactor rescales MAD so z-scores match a normal distribution
	robustZFactor = 0.6745

	// HRV dominates the combined adjustment
	hrvWeight = 0.65
	rhrWeight = 0.35

	// smoothingAlpha is the weight of today's raw adjustment in the EWMA
	smoothingAlpha = 0.3

	// z-score deadband and saturation for the piecewise-linear scaling
	zDeadband   = 0.5
	zSaturation = 3.0

	// illness thresholds on |z|
	illnessSignalZ   = 1.5
	illnessLikelyZ   = 2.0
	illnessVeryLikeZ = 2.5
)

// Sample is one timestamped physiological measurement
type Sample struct {
	Time  time.Time
	Value float64
}

// PhysiologyBaseline is the robust centre and spread of a trailing window
type PhysiologyBaseline struct {
	Median float64
	MAD    float64
	N      int
}

// ZScore returns the robust z-score of v, or 0 when the spread is zero
func (b PhysiologyBaseline) ZScore(v float64) float64 {
	if b.MAD == 0 {
		return 0
	}
	return robustZFactor * (v - b.Median) / b.MAD
}

// ComputeBaseline builds a baseline from chronologically ordered values,
// dropping the newest exclude values so a reading never judges itself.
func ComputeBaseline(values []float64, exclude int) (PhysiologyBaseline, bool) {
	if exclude > 0 {
		if exclude >= len(values) {
			return PhysiologyBaseline{}, false
		}
		values = values[:len(values)-exclude]
	}
	if len(values) == 0 {
		return PhysiologyBaseline{}, false
	}
	return PhysiologyBaseline{
		Median: Median(values),
		MAD:    MedianAbsoluteDeviation(values),
		N:      len(values),
	}, true
}

// ScaleZ maps a z-score onto [-1,1]: flat inside the deadband, linear up to
// saturation.
func ScaleZ(z float64) float64 {
	magnitude := math.Abs(z)
	if magnitude <= zDeadband {
		return 0
	}
	scaled := math.Min(1, (magnitude-zDeadband)/(zSaturation-zDeadband))
	return math.Copysign(scaled, z)
}

// CombineAdjustments weights the HRV and RHR adjustments into one value
func CombineAdjustments(hrvAdj, rhrAdj float64) float64 {
	return hrvWeight*hrvAdj + rhrWeight*rhrAdj
}

// SmoothAdjustment applies the single-step EWMA and the adjustment clamp
func SmoothAdjustment(previous, raw float64) float64 {
	smoothed := smoothingAlpha*raw + (1-smoothingAlpha)*previous
	return clamp(smoothed, -MaxPhysiologyAdjustment, MaxPhysiologyAdjustment)
}

// IllnessGrade grades how likely the markers point to illness
type IllnessGrade int

const (
	IllnessNone IllnessGrade = iota
	IllnessPossible
	IllnessLikely
	IllnessVeryLikely
)

// String returns the grade label
func (g IllnessGrade) String() string {
	switch g {
	case IllnessPossible:
		return "possible"
	case IllnessLikely:
		return "likely"
	case IllnessVeryLikely:
		return "very likely"
	default:
		return "none"
	}
}

// Likelihood returns the grade as a 0-1 scalar
func (g IllnessGrade) Likelihood() float64 {
	switch g {
	case IllnessPossible:
		return 0.33
	case IllnessLikely:
		return 0.66
	case IllnessVeryLikely:
		return 1.0
	default:
		return 0
	}
}

// GradeFromLikelihood maps a stored likelihood scalar back to its grade
func GradeFromLikelihood(l float64) IllnessGrade {
	switch {
	case l >= 1.0:
		return IllnessVeryLikely
	case l >= 0.66:
		return IllnessLikely
	case l >= 0.33:
		return IllnessPossible
	default:
		return IllnessNone
	}
}

// GradeIllness combines suppressed HRV and elevated RHR.
// Only both together can grade above "possible".
func GradeIllness(hrvZ, rhrZ float64) IllnessGrade {
	hrvLow := hrvZ <= -illnessSignalZ
	rhrHigh := rhrZ >= illnessSignalZ

	switch {
	case hrvLow && rhrHigh:
		weaker := math.Min(-hrvZ, rhrZ)
		if weaker >= illnessVeryLikeZ {
			return IllnessVeryLikely
		}
		if weaker >= illnessLikelyZ {
			return IllnessLikely
		}
		return IllnessPossible
	case hrvLow, rhrHigh:
		return IllnessPossible
	default:
		return IllnessNone
	}
}

// PhysiologyDay is the physiology outcome for one calendar day
type PhysiologyDay struct {
	Day           time.Time
	AvgHRV        *float64
	AvgRHR        *float64
	HRVZ          float64
	RHRZ          float64
	HRVAdjustment float64
	RHRAdjustment float64
	Adjustment    float64 // smoothed and clamped
	Illness       IllnessGrade
}

// PhysiologyModifier turns HRV/RHR sample streams into per-day adjustments
type PhysiologyModifier struct {
	WindowDays    int // trailing days a baseline draws from
	ExcludeRecent int // newest baseline values left out
	MinBaseline   int // values needed before z-scores count
}

// DefaultPhysiologyModifier returns the standard 28-day robust baseline
func DefaultPhysiologyModifier() PhysiologyModifier {
	return PhysiologyModifier{
		WindowDays:    28,
		ExcludeRecent: 1,
		MinBaseline:   7,
	}
}

// LookbackDays is how much history before the first evaluated day is needed
func (m PhysiologyModifier) LookbackDays() int {
	return m.WindowDays
}

// Evaluate scores each day in days (consecutive, oldest first). previous is
// the smoothed adjustment of the day before days[0].
func (m PhysiologyModifier) Evaluate(days []time.Time, hrv, rhr []Sample, previous float64) []PhysiologyDay {
	if len(days) == 0 {
		return nil
	}
	loc := days[0].Location()
	hrvDaily := DailyMeans(hrv, loc)
	rhrDaily := DailyMeans(rhr, loc)

	out := make([]PhysiologyDay, 0, len(days))
	smoothed := previous
	for _, day := range days {
		pd := PhysiologyDay{Day: day}

		hrvValue, hasHRV := hrvDaily[DayKey(day)]
		rhrValue, hasRHR := rhrDaily[DayKey(day)]

		if hasHRV {
			v := hrvValue
			pd.AvgHRV = &v
			if b, ok := m.baseline(hrvDaily, day); ok {
				pd.HRVZ = b.ZScore(hrvValue)
			}
		}
		if hasRHR {
			v := rhrValue
			pd.AvgRHR = &v
			if b, ok := m.baseline(rhrDaily, day); ok {
				pd.RHRZ = b.ZScore(rhrValue)
			}
		}

		// Higher HRV and lower RHR both mean better recovery
		pd.HRVAdjustment = ScaleZ(pd.HRVZ) * MaxPhysiologyAdjustment
		pd.RHRAdjustment = ScaleZ(-pd.RHRZ) * MaxPhysiologyAdjustment

		// A day without readings carries the previous adjustment forward
		if hasHRV || hasRHR {
			smoothed = SmoothAdjustment(smoothed, CombineAdjustments(pd.HRVAdjustment, pd.RHRAdjustment))
		}
		pd.Adjustment = smoothed
		pd.Illness = GradeIllness(pd.HRVZ, pd.RHRZ)

		out = append(out, pd)
	}
	return out
}

// baseline collects the trailing daily values before day
func (m PhysiologyModifier) baseline(daily map[string]float64, day time.Time) (PhysiologyBaseline, bool) {
	var values []float64
	for i := m.WindowDays; i >= 1; i-- {
		if v, ok := daily[DayKey(day.AddDate(0, 0, -i))]; ok {
			values = append(values, v)
		}
	}
	b, ok := ComputeBaseline(values, m.ExcludeRecent)
	if !ok || b.N < m.MinBaseline {
		return PhysiologyBaseline{}, false
	}
	return b, true
}

// DailyMeans averages samples per local calendar day
func DailyMeans(samples []Sample, loc *time.Location) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, s := range samples {
		if s.Value <= 0 || math.IsNaN(s.Value) {
			continue
		}
		key := DayKey(s.Time.In(loc))
		sums[key] += s.Value
		counts[key]++
	}
	means := make(map[string]float64, len(sums))
	for k, sum := range sums {
		means[k] = sum / float64(counts[k])
	}
	return means
}
