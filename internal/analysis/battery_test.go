package analysis

import (
	"math"
	"testing"
)

func TestBaseScore(t *testing.T) {
	tests := []struct {
		balance  float64
		expected float64
	}{
		{0, 50},
		{-30, 0},
		{30, 100},
		{-15, 25},
		{15, 75},
		{-80, 0},
		{80, 100},
	}

	for _, tt := range tests {
		if got := BaseScore(tt.balance); math.Abs(got-tt.expected) > 1e-9 {
			t.Errorf("BaseScore(%v) = %v, want %v", tt.balance, got, tt.expected)
		}
	}
}

func TestBaseScoreMonotonic(t *testing.T) {
	prev := BaseScore(-60)
	for b := -59.5; b <= 60; b += 0.5 {
		got := BaseScore(b)
		if got < prev {
			t.Fatalf("BaseScore(%v) = %v dropped below %v", b, got, prev)
		}
		prev = got
	}
}

func TestReadinessScore(t *testing.T) {
	tests := []struct {
		name       string
		balance    float64
		adjustment float64
		expected   float64
	}{
		{"neutral", 0, 0, 50},
		{"positive physiology", 0, 12, 62},
		{"negative physiology", 0, -12, 38},
		{"clamped at top", 30, 12, 100},
		{"clamped at bottom", -30, -12, 0},
		{"extreme adjustment", 0, 1000, 100},
		{"extreme negative adjustment", 0, -1000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ReadinessScore(tt.balance, tt.adjustment)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("ReadinessScore(%v, %v) = %v, want %v", tt.balance, tt.adjustment, got, tt.expected)
			}
		})
	}
}

func TestClassifyTrend(t *testing.T) {
	tests := []struct {
		name     string
		scores   []float64
		expected Trend
	}{
		{"too few points", []float64{20, 80}, TrendStable},
		{"empty", nil, TrendStable},
		{"flat", []float64{50, 50, 50, 50}, TrendStable},
		{"slight rise", []float64{50, 50.5, 51}, TrendStable},
		{"rising", []float64{50, 52, 54}, TrendImprove},
		{"rising fast", []float64{50, 55, 60}, TrendRapidImprove},
		{"falling", []float64{60, 58, 56}, TrendDecline},
		{"falling fast", []float64{60, 50, 40}, TrendRapidDecline},
		{"boundary at -1 is stable", []float64{60, 59, 58}, TrendStable},
		{"boundary at -3 is decline", []float64{60, 57, 54}, TrendDecline},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyTrend(tt.scores); got != tt.expected {
				t.Errorf("ClassifyTrend(%v) = %q, want %q", tt.scores, got, tt.expected)
			}
		})
	}
}

func TestScoreLabel(t *testing.T) {
	tests := []struct {
		score    float64
		expected string
	}{
		{100, "Fully charged"},
		{80, "Fully charged"},
		{79.9, "Ready"},
		{50, "Moderate"},
		{20, "Low"},
		{0, "Depleted"},
	}

	for _, tt := range tests {
		if got := ScoreLabel(tt.score); got != tt.expected {
			t.Errorf("ScoreLabel(%v) = %q, want %q", tt.score, got, tt.expected)
		}
	}
}
