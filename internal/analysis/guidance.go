package analysis

import (
	"fmt"
	"math"
)

// Recommendation is the suggested training for the day
type Recommendation struct {
	Level   string
	MinTSS  float64
	MaxTSS  float64
	Message string
}

// guidanceBand maps a readiness range onto a multiple of chronic load
type guidanceBand struct {
	minScore float64
	level    string
	low      float64
	high     float64
	message  string
}

var guidanceBands = []guidanceBand{
	{80, "peak", 1.1, 1.4, "Fully charged - a good day for a key session or race effort"},
	{60, "build", 0.9, 1.1, "Ready for a solid training day"},
	{40, "maintain", 0.6, 0.9, "Keep it moderate - endurance or tempo work"},
	{20, "recover", 0.3, 0.6, "Easy day - short aerobic session or mobility"},
	{0, "rest", 0, 0.3, "Rest or very light movement only"},
}

// minReferenceLoad keeps recommendations meaningful for new athletes
const minReferenceLoad = 30.0

// Recommend turns today's score and load into a training suggestion
func Recommend(score, chronic, balance float64, illness IllnessGrade) Recommendation {
	if illness >= IllnessLikely {
		return Recommendation{
			Level:   "rest",
			Message: fmt.Sprintf("Recovery markers suggest illness is %s - take the day off", illness),
		}
	}

	reference := math.Max(chronic, minReferenceLoad)
	band := guidanceBands[len(guidanceBands)-1]
	for _, b := range guidanceBands {
		if score >= b.minScore {
			band = b
			break
		}
	}

	rec := Recommendation{
		Level:   band.level,
		MinTSS:  math.Round(reference * band.low),
		MaxTSS:  math.Round(reference * band.high),
		Message: band.message,
	}

	// Deep fatigue caps the session regardless of physiology
	if balance <= BalanceLowBound && rec.MaxTSS > reference*0.6 {
		rec.MaxTSS = math.Round(reference * 0.6)
		if rec.MinTSS > rec.MaxTSS {
			rec.MinTSS = math.Round(reference * 0.3)
		}
		rec.Message += " (load is very high - cap the session)"
	}
	if illness == IllnessPossible {
		rec.Message += "; watch for signs of illness"
	}
	return rec
}
