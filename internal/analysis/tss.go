package analysis

import (
	"math"
	"time"
)

// TSSMethod records which strategy produced a stress score
type TSSMethod string

const (
	MethodNone      TSSMethod = ""
	MethodPower     TSSMethod = "power"
	MethodHeartRate TSSMethod = "heart_rate"
	MethodDuration  TSSMethod = "duration_estimate"
)

// Rank orders strategies by fidelity; higher is better
func (m TSSMethod) Rank() int {
	switch m {
	case MethodPower:
		return 3
	case MethodHeartRate:
		return 2
	case MethodDuration:
		return 1
	default:
		return 0
	}
}

const (
	// MinSignalDuration is the shortest workout scored from power or HR.
	// Anything shorter falls back to the duration estimate.
	MinSignalDuration = 5 * time.Minute

	// MinHRSamples is the absolute floor for heart-rate density
	MinHRSamples = 10

	// npWindow is the rolling-average window used for normalized power
	npWindow = 30

	// trimpWeight is the Banister exponential weighting (male coefficient)
	trimpWeight = 1.92

	// defaultThresholdFraction approximates LTHR as a fraction of max HR
	defaultThresholdFraction = 0.88
)

// HRZones represents athlete's heart rate anchors
type HRZones struct {
	RestingHR   float64
	MaxHR       float64
	ThresholdHR float64
}

// DefaultZones returns sensible defaults if not configured
func DefaultZones() HRZones {
	return HRZones{
		RestingHR:   50,
		MaxHR:       185,
		ThresholdHR: 165,
	}
}

// NewHRZones builds zones from athlete settings, filling gaps from the defaults
func NewHRZones(restingHR, maxHR, thresholdHR float64) HRZones {
	z := DefaultZones()
	if restingHR > 0 {
		z.RestingHR = restingHR
	}
	if maxHR > 0 {
		z.MaxHR = maxHR
	}
	z.ThresholdHR = thresholdHR
	if thresholdHR <= 0 || thresholdHR >= z.MaxHR {
		z.ThresholdHR = z.MaxHR * defaultThresholdFraction
	}
	return z
}

// reserveRatio returns (hr - resting) / (max - resting) clamped to [0,1]
func (z HRZones) reserveRatio(hr float64) (float64, bool) {
	reserve := z.MaxHR - z.RestingHR
	if reserve <= 0 {
		return 0, false
	}
	return clamp((hr-z.RestingHR)/reserve, 0, 1), true
}

// WorkoutSignal is the raw input to the TSS calculator for one workout
type WorkoutSignal struct {
	Sport    SportType
	Duration time.Duration

	// Sample series, one value per recorded sample
	PowerSamples []float64
	HRSamples    []float64

	// Summary normalized power when no series is available
	SummaryNP float64
}

// TSSResult is a stress score plus the strategy that produced it
type TSSResult struct {
	TSS    float64
	Method TSSMethod
}

// CalculateTSS picks the best available strategy for a workout:
// power, then heart rate, then a duration estimate.
// It never fails; a zero score means "no data".
func CalculateTSS(sig WorkoutSignal, ftp float64, zones HRZones) TSSResult {
	if sig.Duration <= 0 {
		return TSSResult{}
	}

	if sig.Duration >= MinSignalDuration && ftp > 0 {
		if len(sig.PowerSamples) > 0 {
			if tss := PowerTSS(sig.PowerSamples, sig.Duration, ftp); tss > 0 {
				return TSSResult{TSS: tss, Method: MethodPower}
			}
		} else if sig.SummaryNP > 0 {
			if tss := PowerTSSFromNP(sig.SummaryNP, sig.Duration, ftp); tss > 0 {
				return TSSResult{TSS: tss, Method: MethodPower}
			}
		}
	}

	if sig.Duration >= MinSignalDuration && HasHRDensity(len(sig.HRSamples), sig.Duration) {
		if tss := HeartRateTSS(sig.HRSamples, sig.Duration, sig.Sport, zones); tss > 0 {
			return TSSResult{TSS: tss, Method: MethodHeartRate}
		}
	}

	tss := DurationTSS(sig.Duration, sig.Sport)
	if tss <= 0 {
		return TSSResult{}
	}
	return TSSResult{TSS: tss, Method: MethodDuration}
}

// NormalizedPower computes NP from a 1 Hz power series:
// 30-sample rolling average, raised to the 4th power, averaged, 4th root.
// Series shorter than the window return their plain mean.
func NormalizedPower(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	if len(samples) < npWindow {
		return mean(samples)
	}

	var sum float64
	for i := 0; i < npWindow; i++ {
		sum += samples[i]
	}

	var fourth float64
	count := 0
	for i := npWindow - 1; i < len(samples); i++ {
		if i >= npWindow {
			sum += samples[i] - samples[i-npWindow]
		}
		rolling := sum / npWindow
		fourth += math.Pow(rolling, 4)
		count++
	}
	return math.Pow(fourth/float64(count), 0.25)
}

// PowerTSS scores a workout from its power series.
// One hour at FTP scores 100.
func PowerTSS(samples []float64, duration time.Duration, ftp float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	return PowerTSSFromNP(NormalizedPower(samples), duration, ftp)
}

// PowerTSSFromNP scores a workout from an already-known normalized power
func PowerTSSFromNP(np float64, duration time.Duration, ftp float64) float64 {
	seconds := duration.Seconds()
	if ftp <= 0 || np <= 0 || seconds <= 0 {
		return 0
	}
	intensity := np / ftp
	return (seconds * np * intensity) / (ftp * 3600) * 100
}

// HasHRDensity reports whether a series is dense enough to score:
// at least MinHRSamples and at least one sample per five minutes.
func HasHRDensity(samples int, duration time.Duration) bool {
	required := int(math.Ceil(duration.Minutes() / 5))
	if required < MinHRSamples {
		required = MinHRSamples
	}
	return samples >= required
}

// TRIMP calculates Training Impulse (Banister model)
// TRIMP = duration (min) * ΔHR ratio * e^(b * ΔHR ratio)
func TRIMP(avgHR float64, duration time.Duration, zones HRZones) float64 {
	minutes := duration.Minutes()
	if avgHR <= 0 || minutes <= 0 {
		return 0
	}
	ratio, ok := zones.reserveRatio(avgHR)
	if !ok {
		return 0
	}
	return minutes * ratio * math.Exp(trimpWeight*ratio)
}

// thresholdTRIMP is the TRIMP of one hour at threshold heart rate
func thresholdTRIMP(zones HRZones) float64 {
	threshold := zones.ThresholdHR
	if threshold <= 0 {
		threshold = zones.MaxHR * defaultThresholdFraction
	}
	return TRIMP(threshold, time.Hour, zones)
}

// HeartRateTSS scores a workout from its heart-rate series.
// Normalized so one hour at threshold HR scores ~100, then scaled per sport.
func HeartRateTSS(samples []float64, duration time.Duration, sport SportType, zones HRZones) float64 {
	if len(samples) == 0 || duration <= 0 {
		return 0
	}
	reference := thresholdTRIMP(zones)
	if reference <= 0 {
		return 0
	}

	trimp := TRIMP(mean(samples), duration, zones)
	multiplier, ok := hrSportMultiplier[sport]
	if !ok {
		multiplier = 1
	}
	return trimp / reference * 100 * multiplier
}

// DurationTSS estimates stress from time alone using the sport's typical IF²
func DurationTSS(duration time.Duration, sport SportType) float64 {
	hours := duration.Hours()
	if hours <= 0 {
		return 0
	}
	ifSquared, ok := typicalIntensitySquared[sport]
	if !ok {
		ifSquared = typicalIntensitySquared[SportOther]
	}
	return hours * ifSquared * 100
}
