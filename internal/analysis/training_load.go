package analysis

import (
	"math"
	"time"
)

// EMA gains for the 42-day (chronic) and 7-day (acute) time constants
var (
	ChronicGain = 1 - math.Exp(-1.0/42.0)
	AcuteGain   = 1 - math.Exp(-1.0/7.0)
)

// RampWindowDays is the look-back used for the chronic-load ramp rate
const RampWindowDays = 7

// LoadState is the pair of fold variables carried from one day to the next
type LoadState struct {
	Chronic float64 // "Fitness"
	Acute   float64 // "Fatigue"
}

// Balance returns chronic - acute ("Form")
func (s LoadState) Balance() float64 {
	return s.Chronic - s.Acute
}

// Step applies one day of stress to the state
func (s LoadState) Step(stress float64) LoadState {
	next := LoadState{
		Chronic: s.Chronic + ChronicGain*(stress-s.Chronic),
		Acute:   s.Acute + AcuteGain*(stress-s.Acute),
	}
	// stress is never negative, so the EMA cannot go below zero except
	// through rounding; keep the invariant exact.
	next.Chronic = math.Max(next.Chronic, 0)
	next.Acute = math.Max(next.Acute, 0)
	return next
}

// FitnessMetrics represents chronic/acute/balance for a day
type FitnessMetrics struct {
	Date     time.Time
	TSS      float64
	Chronic  float64
	Acute    float64
	RampRate float64
}

// Balance returns chronic - acute for the day
func (m FitnessMetrics) Balance() float64 {
	return m.Chronic - m.Acute
}

// FoldLoad runs the sequential chronic/acute fold over consecutive days
// beginning at start. history holds chronic values of the days immediately
// before start (oldest first) so ramp rates stay continuous across an
// incremental refold; it may be nil.
func FoldLoad(start time.Time, stress []float64, seed LoadState, history []float64) []FitnessMetrics {
	if len(stress) == 0 {
		return nil
	}

	chronic := make([]float64, 0, len(history)+len(stress))
	chronic = append(chronic, history...)

	metrics := make([]FitnessMetrics, 0, len(stress))
	state := seed
	day := startOfDay(start)
	for _, tss := range stress {
		state = state.Step(tss)
		chronic = append(chronic, state.Chronic)

		var ramp float64
		if i := len(chronic) - 1; i >= RampWindowDays {
			ramp = chronic[i] - chronic[i-RampWindowDays]
		}

		metrics = append(metrics, FitnessMetrics{
			Date:     day,
			TSS:      tss,
			Chronic:  state.Chronic,
			Acute:    state.Acute,
			RampRate: ramp,
		})
		day = day.AddDate(0, 0, 1)
	}
	return metrics
}

// RampBand classifies the week-over-week change in chronic load
type RampBand string

const (
	RampDecreasing RampBand = "decreasing"
	RampSafe       RampBand = "safe"
	RampAggressive RampBand = "aggressive"
	RampUnsafe     RampBand = "unsafe"
)

// ClassifyRamp buckets a weekly chronic-load ramp rate
func ClassifyRamp(ramp float64) RampBand {
	switch {
	case ramp < 0:
		return RampDecreasing
	case ramp <= 5:
		return RampSafe
	case ramp <= 8:
		return RampAggressive
	default:
		return RampUnsafe
	}
}

// FormDescription returns a human-readable description of balance
func FormDescription(balance float64) string {
	switch {
	case balance > 25:
		return "Very fresh (possibly detrained)"
	case balance > 10:
		return "Fresh and ready to race"
	case balance > 0:
		return "Neutral - good for training"
	case balance > -10:
		return "Slightly fatigued"
	case balance > -25:
		return "Tired but building fitness"
	default:
		return "Very fatigued - rest needed"
	}
}
