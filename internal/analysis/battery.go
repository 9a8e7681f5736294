package analysis

// Balance bounds mapped onto the 0-100 readiness scale
const (
	BalanceLowBound  = -30.0
	BalanceHighBound = 30.0
)

// BaseScore maps balance linearly onto [0,100]
func BaseScore(balance float64) float64 {
	if balance <= BalanceLowBound {
		return 0
	}
	if balance >= BalanceHighBound {
		return 100
	}
	return lerp(balance, BalanceLowBound, BalanceHighBound, 0, 100)
}

// ReadinessScore combines balance with the physiology adjustment.
// The final clamp is the only cap on the adjustment's effect.
func ReadinessScore(balance, adjustment float64) float64 {
	return clamp(BaseScore(balance)+adjustment, 0, 100)
}

// Trend describes the direction of recent readiness scores
type Trend string

const (
	TrendRapidImprove Trend = "rapid_improve"
	TrendImprove      Trend = "improve"
	TrendStable       Trend = "stable"
	TrendDecline      Trend = "decline"
	TrendRapidDecline Trend = "rapid_decline"
)

// MinTrendPoints is the fewest scores a trend is fitted to
const MinTrendPoints = 3

// ClassifyTrend fits a line through scores (oldest first) and buckets the
// per-day slope. Fewer than MinTrendPoints scores read as stable.
func ClassifyTrend(scores []float64) Trend {
	if len(scores) < MinTrendPoints {
		return TrendStable
	}
	slope := LinearSlope(scores)
	switch {
	case slope > 3:
		return TrendRapidImprove
	case slope > 1:
		return TrendImprove
	case slope >= -1:
		return TrendStable
	case slope >= -3:
		return TrendDecline
	default:
		return TrendRapidDecline
	}
}

// ScoreLabel returns a short description of a readiness score
func ScoreLabel(score float64) string {
	switch {
	case score >= 80:
		return "Fully charged"
	case score >= 60:
		return "Ready"
	case score >= 40:
		return "Moderate"
	case score >= 20:
		return "Low"
	default:
		return "Depleted"
	}
}
