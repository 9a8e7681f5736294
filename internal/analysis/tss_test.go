package analysis

import (
	"math"
	"testing"
	"time"
)

func constantSeries(n int, value float64) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = value
	}
	return s
}

func TestNormalizedPower(t *testing.T) {
	tests := []struct {
		name     string
		samples  []float64
		expected float64
		delta    float64
	}{
		{"empty", nil, 0, 0},
		{"constant power", constantSeries(600, 200), 200, 0.001},
		{"short series uses mean", []float64{100, 200, 300}, 200, 0.001},
		{
			name: "variable power exceeds average",
			samples: func() []float64 {
				s := make([]float64, 1200)
				for i := range s {
					if (i/60)%2 == 0 {
						s[i] = 350
					} else {
						s[i] = 100
					}
				}
				return s
			}(),
			// Average is 225; NP weights the hard blocks
			expected: 270,
			delta:    20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizedPower(tt.samples)
			if math.Abs(got-tt.expected) > tt.delta {
				t.Errorf("NormalizedPower() = %v, want %v (±%v)", got, tt.expected, tt.delta)
			}
		})
	}
}

func TestPowerTSS(t *testing.T) {
	tests := []struct {
		name     string
		samples  []float64
		duration time.Duration
		ftp      float64
		expected float64
		delta    float64
	}{
		{"one hour at FTP", constantSeries(3600, 250), time.Hour, 250, 100, 5},
		{"half hour at FTP", constantSeries(1800, 250), 30 * time.Minute, 250, 50, 2.5},
		// IF 0.8 for two hours: 2 * 0.64 * 100
		{"two hours at 80%", constantSeries(7200, 200), 2 * time.Hour, 250, 128, 1},
		{"zero FTP", constantSeries(3600, 250), time.Hour, 0, 0, 0},
		{"negative FTP", constantSeries(3600, 250), time.Hour, -10, 0, 0},
		{"empty samples", nil, time.Hour, 250, 0, 0},
		{"zero duration", constantSeries(3600, 250), 0, 250, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PowerTSS(tt.samples, tt.duration, tt.ftp)
			if math.Abs(got-tt.expected) > tt.delta {
				t.Errorf("PowerTSS() = %v, want %v (±%v)", got, tt.expected, tt.delta)
			}
		})
	}
}

func TestHasHRDensity(t *testing.T) {
	tests := []struct {
		samples  int
		duration time.Duration
		expected bool
	}{
		{9, 30 * time.Minute, false},
		{10, 30 * time.Minute, true},
		{11, 2 * time.Hour, false}, // needs 24
		{24, 2 * time.Hour, true},
		{0, 0, false},
	}

	for _, tt := range tests {
		if got := HasHRDensity(tt.samples, tt.duration); got != tt.expected {
			t.Errorf("HasHRDensity(%d, %v) = %v, want %v", tt.samples, tt.duration, got, tt.expected)
		}
	}
}

func TestTRIMP(t *testing.T) {
	zones := DefaultZones()

	tests := []struct {
		name     string
		avgHR    float64
		duration time.Duration
		zones    HRZones
		expected float64
		delta    float64
	}{
		// ratio = 100/135 = 0.741; 60 * 0.741 * e^(1.92*0.741)
		{"moderate hour", 150, time.Hour, zones, 184.3, 1},
		{"no HR", 0, time.Hour, zones, 0, 0},
		{"zero reserve", 150, time.Hour, HRZones{RestingHR: 100, MaxHR: 100}, 0, 0},
		{"negative reserve", 150, time.Hour, HRZones{RestingHR: 100, MaxHR: 80}, 0, 0},
		{"below resting clamps to 0", 40, time.Hour, zones, 0, 0},
		// ratio clamped to 1: 60 * e^1.92
		{"above max clamps to 1", 200, time.Hour, zones, 409, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TRIMP(tt.avgHR, tt.duration, tt.zones)
			if math.Abs(got-tt.expected) > tt.delta {
				t.Errorf("TRIMP() = %v, want %v (±%v)", got, tt.expected, tt.delta)
			}
		})
	}
}

func TestHeartRateTSS(t *testing.T) {
	zones := NewHRZones(50, 185, 165)

	tests := []struct {
		name     string
		samples  []float64
		duration time.Duration
		sport    SportType
		expected float64
		delta    float64
	}{
		{"hour at threshold on the bike", constantSeries(60, 165), time.Hour, SportRide, 100, 0.5},
		{"hour at threshold running", constantSeries(60, 165), time.Hour, SportRun, 107, 0.5},
		{"hour at threshold swimming", constantSeries(60, 165), time.Hour, SportSwim, 85, 0.5},
		{"easy hour scores lower", constantSeries(60, 130), time.Hour, SportRide, 42.3, 1},
		{"no samples", nil, time.Hour, SportRide, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HeartRateTSS(tt.samples, tt.duration, tt.sport, zones)
			if math.Abs(got-tt.expected) > tt.delta {
				t.Errorf("HeartRateTSS() = %v, want %v (±%v)", got, tt.expected, tt.delta)
			}
		})
	}
}

func TestHRSportMultiplierOrdering(t *testing.T) {
	m := hrSportMultiplier
	if !(m[SportRun] > m[SportRide] && m[SportRide] > m[SportSwim] && m[SportSwim] < m[SportWalk]) {
		t.Errorf("multipliers out of order: %v", m)
	}
}

func TestDurationTSS(t *testing.T) {
	if got := DurationTSS(time.Hour, SportRide); math.Abs(got-42) > 0.001 {
		t.Errorf("DurationTSS(1h ride) = %v, want 42", got)
	}
	if got := DurationTSS(0, SportRun); got != 0 {
		t.Errorf("DurationTSS(0) = %v, want 0", got)
	}
	if got := DurationTSS(-time.Minute, SportRun); got != 0 {
		t.Errorf("DurationTSS(negative) = %v, want 0", got)
	}
	if got := DurationTSS(time.Hour, SportType("kayak")); math.Abs(got-36) > 0.001 {
		t.Errorf("DurationTSS(unknown sport) = %v, want 36", got)
	}
}

func TestCalculateTSS(t *testing.T) {
	zones := NewHRZones(50, 185, 165)

	tests := []struct {
		name       string
		sig        WorkoutSignal
		ftp        float64
		wantMethod TSSMethod
		wantTSS    float64
		delta      float64
	}{
		{
			name: "power preferred over heart rate",
			sig: WorkoutSignal{
				Sport: SportRide, Duration: time.Hour,
				PowerSamples: constantSeries(3600, 250),
				HRSamples:    constantSeries(3600, 150),
			},
			ftp:        250,
			wantMethod: MethodPower,
			wantTSS:    100,
			delta:      5,
		},
		{
			name: "summary NP when no series",
			sig: WorkoutSignal{
				Sport: SportRide, Duration: time.Hour, SummaryNP: 250,
			},
			ftp:        250,
			wantMethod: MethodPower,
			wantTSS:    100,
			delta:      0.001,
		},
		{
			name: "missing FTP falls back to heart rate",
			sig: WorkoutSignal{
				Sport: SportRide, Duration: time.Hour,
				PowerSamples: constantSeries(3600, 250),
				HRSamples:    constantSeries(60, 165),
			},
			ftp:        0,
			wantMethod: MethodHeartRate,
			wantTSS:    100,
			delta:      0.5,
		},
		{
			name: "sparse heart rate falls back to duration",
			sig: WorkoutSignal{
				Sport: SportRun, Duration: time.Hour,
				HRSamples: constantSeries(5, 165),
			},
			wantMethod: MethodDuration,
			wantTSS:    56,
			delta:      0.001,
		},
		{
			name: "short workout uses duration even with power",
			sig: WorkoutSignal{
				Sport: SportRide, Duration: 4 * time.Minute,
				PowerSamples: constantSeries(240, 400),
			},
			ftp:        250,
			wantMethod: MethodDuration,
			wantTSS:    2.8,
			delta:      0.001,
		},
		{
			name:       "zero duration is no data",
			sig:        WorkoutSignal{Sport: SportRide},
			ftp:        250,
			wantMethod: MethodNone,
			wantTSS:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateTSS(tt.sig, tt.ftp, zones)
			if got.Method != tt.wantMethod {
				t.Errorf("Method = %q, want %q", got.Method, tt.wantMethod)
			}
			if math.Abs(got.TSS-tt.wantTSS) > tt.delta {
				t.Errorf("TSS = %v, want %v (±%v)", got.TSS, tt.wantTSS, tt.delta)
			}
		})
	}
}

func TestNormalizeSport(t *testing.T) {
	tests := []struct {
		raw      string
		expected SportType
	}{
		{"Ride", SportRide},
		{"VirtualRide", SportRide},
		{"EBikeRide", SportRide},
		{"Cycling", SportRide},
		{"Run", SportRun},
		{"TrailRun", SportRun},
		{"Running", SportRun},
		{"Swim", SportSwim},
		{"Swimming", SportSwim},
		{"Walk", SportWalk},
		{"Hike", SportWalk},
		{"Rowing", SportOther},
		{"", SportOther},
	}

	for _, tt := range tests {
		if got := NormalizeSport(tt.raw); got != tt.expected {
			t.Errorf("NormalizeSport(%q) = %q, want %q", tt.raw, got, tt.expected)
		}
	}
}

func TestTSSMethodRank(t *testing.T) {
	if !(MethodPower.Rank() > MethodHeartRate.Rank() &&
		MethodHeartRate.Rank() > MethodDuration.Rank() &&
		MethodDuration.Rank() > MethodNone.Rank()) {
		t.Error("method ranks out of order")
	}
	if TSSMethod("bogus").Rank() != 0 {
		t.Error("unknown method should rank 0")
	}
}
