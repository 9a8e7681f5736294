package analysis

import "strings"

// SportType is the closed set of sports the engine distinguishes
type SportType string

const (
	SportRide  SportType = "ride"
	SportRun   SportType = "run"
	SportSwim  SportType = "swim"
	SportWalk  SportType = "walk"
	SportOther SportType = "other"
)

// NormalizeSport maps a raw sport label from any source onto SportType.
// Strava types ("VirtualRide", "TrailRun"), FIT sports ("Cycling", "Running")
// and plain names are all accepted.
func NormalizeSport(raw string) SportType {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.NewReplacer("_", "", "-", "", " ", "").Replace(s)

	switch {
	case s == "":
		return SportOther
	case strings.Contains(s, "ride"), strings.Contains(s, "cycl"), strings.Contains(s, "bik"):
		return SportRide
	case strings.Contains(s, "run"):
		return SportRun
	case strings.Contains(s, "swim"):
		return SportSwim
	case strings.Contains(s, "walk"), strings.Contains(s, "hike"), strings.Contains(s, "hiking"):
		return SportWalk
	default:
		return SportOther
	}
}

// hrSportMultiplier nudges heart-rate based stress per sport.
// Running loads more per heartbeat than riding; swimming HR runs low.
var hrSportMultiplier = map[SportType]float64{
	SportRun:   1.07,
	SportRide:  1.00,
	SportSwim:  0.85,
	SportWalk:  0.90,
	SportOther: 1.00,
}

// typicalIntensitySquared is IF² for an unstructured session of each sport,
// used when a workout carries no usable signal.
var typicalIntensitySquared = map[SportType]float64{
	SportRide:  0.42, // IF ~0.65
	SportRun:   0.56, // IF ~0.75
	SportSwim:  0.49, // IF ~0.70
	SportWalk:  0.25, // IF ~0.50
	SportOther: 0.36, // IF ~0.60
}
