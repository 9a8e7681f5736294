package analysis

import (
	"math"
	"testing"
)

func TestThresholdsFTP(t *testing.T) {
	tests := []struct {
		name       string
		thresholds Thresholds
		expected   float64
	}{
		{"manual only", Thresholds{ManualFTP: 250}, 250},
		{"secondary only", Thresholds{SecondaryFTP: 240}, 240},
		{"manual wins by default", Thresholds{ManualFTP: 250, SecondaryFTP: 240}, 250},
		{"prefer secondary", Thresholds{ManualFTP: 250, SecondaryFTP: 240, PreferSecondaryFTP: true}, 240},
		{"prefer secondary falls back to manual", Thresholds{ManualFTP: 250, PreferSecondaryFTP: true}, 250},
		{"none known", Thresholds{}, 0},
		{"negative ignored", Thresholds{ManualFTP: -5, SecondaryFTP: 230}, 230},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.thresholds.FTP(); got != tt.expected {
				t.Errorf("FTP() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestResolveThreshold(t *testing.T) {
	c, ok := ResolveThreshold(
		Candidate{Source: "a", Value: 0},
		Candidate{Source: "b", Value: 180},
		Candidate{Source: "c", Value: 190},
	)
	if !ok || c.Source != "b" {
		t.Errorf("ResolveThreshold() = %+v, %v, want b", c, ok)
	}

	if _, ok := ResolveThreshold(); ok {
		t.Error("expected no candidate")
	}
}

func TestThresholdsZones(t *testing.T) {
	z := Thresholds{RestingHR: 45, MaxHR: 200}.Zones()
	if z.RestingHR != 45 || z.MaxHR != 200 {
		t.Errorf("Zones() = %+v", z)
	}
	if math.Abs(z.ThresholdHR-176) > 1e-9 {
		t.Errorf("ThresholdHR = %v, want 176 (88%% of max)", z.ThresholdHR)
	}

	z = Thresholds{}.Zones()
	if z.RestingHR != 50 || z.MaxHR != 185 {
		t.Errorf("empty thresholds = %+v, want default resting and max", z)
	}
	if math.Abs(z.ThresholdHR-162.8) > 1e-9 {
		t.Errorf("ThresholdHR = %v, want 162.8", z.ThresholdHR)
	}
}
