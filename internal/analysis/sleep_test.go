package analysis

import (
	"math"
	"testing"
	"time"
)

func TestGroupSleepSessions(t *testing.T) {
	night := time.Date(2024, 1, 1, 22, 0, 0, 0, time.UTC)

	samples := []SleepSample{
		// out of order on purpose
		{Stage: StageDeep, Start: night.Add(4*time.Hour + 30*time.Minute), End: night.Add(8 * time.Hour)},
		{Stage: StageLight, Start: night, End: night.Add(4 * time.Hour)},
		{Stage: StageAsleep, Start: night.Add(16 * time.Hour), End: night.Add(16*time.Hour + 30*time.Minute)},
		{Stage: StageLight, Start: night.Add(time.Hour), End: night.Add(time.Hour)}, // zero length
	}

	sessions := GroupSleepSessions(samples)
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}

	primary := sessions[0]
	if !primary.Start.Equal(night) || !primary.End.Equal(night.Add(8*time.Hour)) {
		t.Errorf("main session = %v-%v, want 22:00-06:00", primary.Start, primary.End)
	}
	if primary.Asleep != 7*time.Hour+30*time.Minute {
		t.Errorf("Asleep = %v, want 7h30m", primary.Asleep)
	}
	if primary.Deep != 3*time.Hour+30*time.Minute {
		t.Errorf("Deep = %v, want 3h30m", primary.Deep)
	}
	if primary.Samples != 2 {
		t.Errorf("Samples = %d, want 2", primary.Samples)
	}

	if got := GroupSleepSessions(nil); got != nil {
		t.Errorf("expected nil sessions, got %v", got)
	}
}

func TestGroupSleepSessionsGapBoundary(t *testing.T) {
	start := time.Date(2024, 1, 1, 22, 0, 0, 0, time.UTC)
	first := SleepSample{Stage: StageLight, Start: start, End: start.Add(time.Hour)}

	justUnder := SleepSample{Stage: StageLight, Start: first.End.Add(SessionGap - time.Minute), End: first.End.Add(SessionGap + time.Hour)}
	if got := GroupSleepSessions([]SleepSample{first, justUnder}); len(got) != 1 {
		t.Errorf("gap under %v: got %d sessions, want 1", SessionGap, len(got))
	}

	exact := SleepSample{Stage: StageLight, Start: first.End.Add(SessionGap), End: first.End.Add(SessionGap + time.Hour)}
	if got := GroupSleepSessions([]SleepSample{first, exact}); len(got) != 2 {
		t.Errorf("gap of %v: got %d sessions, want 2", SessionGap, len(got))
	}
}

func TestAnalyzeSleep(t *testing.T) {
	night := time.Date(2024, 1, 1, 22, 0, 0, 0, time.UTC)
	samples := []SleepSample{
		{Stage: StageLight, Start: night, End: night.Add(6*time.Hour + 24*time.Minute)},
		{Stage: StageDeep, Start: night.Add(6*time.Hour + 24*time.Minute), End: night.Add(8 * time.Hour)},
		// afternoon nap the same day
		{Stage: StageAsleep, Start: night.Add(16 * time.Hour), End: night.Add(17 * time.Hour)},
	}

	nights := AnalyzeSleep(samples, time.UTC)
	if len(nights) != 1 {
		t.Fatalf("expected 1 night, got %d", len(nights))
	}
	n, ok := nights["2024-01-02"]
	if !ok {
		t.Fatalf("night not attributed to the day it ended: %v", nights)
	}
	if n.Session.Asleep != 8*time.Hour {
		t.Errorf("primary session Asleep = %v, want 8h (nap ignored)", n.Session.Asleep)
	}
	if !n.Day.Equal(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Day = %v, want 2024-01-02", n.Day)
	}
	// 8h, no wake, 20% deep
	if math.Abs(n.Score-100) > 1e-9 {
		t.Errorf("Score = %v, want 100", n.Score)
	}
}

func TestSleepQualityScore(t *testing.T) {
	tests := []struct {
		name     string
		session  SleepSession
		expected float64
	}{
		{"nothing asleep", SleepSession{Awake: time.Hour}, 0},
		{
			name:     "ideal night",
			session:  SleepSession{Asleep: 8 * time.Hour, Deep: 96 * time.Minute},
			expected: 100,
		},
		{
			// 30 + 15 (15% awake) + 15 (7.5% deep)
			name:     "short restless night",
			session:  SleepSession{Asleep: 6 * time.Hour, Awake: 63*time.Minute + 32*time.Second + 500*time.Millisecond, Deep: 27 * time.Minute},
			expected: 60,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SleepQualityScore(tt.session); math.Abs(got-tt.expected) > 0.01 {
				t.Errorf("SleepQualityScore() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestSleepSubScores(t *testing.T) {
	durations := []struct {
		hours    float64
		expected float64
	}{
		{0, 0},
		{4, 16},
		{6, 30},
		{8, 40},
		{10, 30},
		{12, 10},
		{14, 0},
	}
	for _, tt := range durations {
		if got := sleepDurationScore(tt.hours); math.Abs(got-tt.expected) > 1e-9 {
			t.Errorf("sleepDurationScore(%v) = %v, want %v", tt.hours, got, tt.expected)
		}
	}

	if got := sleepConsistencyScore(7*time.Hour, 3*time.Hour); got != 0 {
		t.Errorf("consistency at 30%% awake = %v, want 0", got)
	}
	if got := sleepConsistencyScore(8*time.Hour, 0); got != 30 {
		t.Errorf("consistency with no wake = %v, want 30", got)
	}

	deep := []struct {
		ratio    float64
		expected float64
	}{
		{0, 0},
		{0.075, 15},
		{0.15, 30},
		{0.25, 30},
		{0.375, 15},
		{0.6, 0},
	}
	for _, tt := range deep {
		asleep := 8 * time.Hour
		d := time.Duration(float64(asleep) * tt.ratio)
		if got := deepSleepScore(asleep, d); math.Abs(got-tt.expected) > 1e-6 {
			t.Errorf("deepSleepScore(ratio %v) = %v, want %v", tt.ratio, got, tt.expected)
		}
	}
}

func TestParseSleepStage(t *testing.T) {
	tests := []struct {
		raw      string
		expected SleepStage
	}{
		{"HKCategoryValueSleepAnalysisAsleepDeep", StageDeep},
		{"HKCategoryValueSleepAnalysisAsleepREM", StageREM},
		{"HKCategoryValueSleepAnalysisAsleepCore", StageLight},
		{"HKCategoryValueSleepAnalysisAwake", StageAwake},
		{"HKCategoryValueSleepAnalysisInBed", StageInBed},
		{"HKCategoryValueSleepAnalysisAsleepUnspecified", StageAsleep},
		{"light", StageLight},
		{"", StageAsleep},
	}

	for _, tt := range tests {
		if got := ParseSleepStage(tt.raw); got != tt.expected {
			t.Errorf("ParseSleepStage(%q) = %q, want %q", tt.raw, got, tt.expected)
		}
	}
}
