package analysis

// UnitSystem selects display units
type UnitSystem string

const (
	UnitsMetric   UnitSystem = "metric"
	UnitsImperial UnitSystem = "imperial"
)

// Thresholds are the athlete's current training anchors
type Thresholds struct {
	ManualFTP          float64
	SecondaryFTP       float64 // from the secondary source's athlete profile
	PreferSecondaryFTP bool

	RestingHR   float64
	MaxHR       float64
	ThresholdHR float64

	// Threshold paces in seconds per kilometre / per 100 m
	RunThresholdPace  float64
	SwimThresholdPace float64

	Units UnitSystem
}

// Zones returns the heart-rate anchors for TSS calculation
func (t Thresholds) Zones() HRZones {
	return NewHRZones(t.RestingHR, t.MaxHR, t.ThresholdHR)
}

// Candidate is one possible value for a threshold and where it came from
type Candidate struct {
	Source string
	Value  float64
}

// ResolveThreshold returns the first positive candidate in order
func ResolveThreshold(candidates ...Candidate) (Candidate, bool) {
	for _, c := range candidates {
		if c.Value > 0 {
			return c, true
		}
	}
	return Candidate{}, false
}

// FTPCandidates lists FTP sources in the order the athlete prefers them
func (t Thresholds) FTPCandidates() []Candidate {
	manual := Candidate{Source: "manual", Value: t.ManualFTP}
	secondary := Candidate{Source: "secondary", Value: t.SecondaryFTP}
	if t.PreferSecondaryFTP {
		return []Candidate{secondary, manual}
	}
	return []Candidate{manual, secondary}
}

// FTP resolves the FTP to score power with; 0 when none is known
func (t Thresholds) FTP() float64 {
	c, ok := ResolveThreshold(t.FTPCandidates()...)
	if !ok {
		return 0
	}
	return c.Value
}
