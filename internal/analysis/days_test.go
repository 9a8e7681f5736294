package analysis

import (
	"testing"
	"time"
)

func TestDaysBetween(t *testing.T) {
	start := time.Date(2024, 2, 27, 15, 30, 0, 0, time.UTC)
	end := time.Date(2024, 3, 2, 1, 0, 0, 0, time.UTC)

	days := DaysBetween(start, end)
	want := []string{"2024-02-27", "2024-02-28", "2024-02-29", "2024-03-01", "2024-03-02"}
	if len(days) != len(want) {
		t.Fatalf("got %d days, want %d", len(days), len(want))
	}
	for i, d := range days {
		if DayKey(d) != want[i] {
			t.Errorf("day %d = %s, want %s", i, DayKey(d), want[i])
		}
		if d.Hour() != 0 || d.Minute() != 0 {
			t.Errorf("day %d = %v, want midnight", i, d)
		}
	}

	if got := DaysBetween(end, start); len(got) != 0 {
		t.Errorf("reversed range = %v, want empty", got)
	}
}

func TestStartOfDayInLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	// 03:00 UTC is still the previous evening five hours west
	ts := time.Date(2024, 5, 10, 3, 0, 0, 0, time.UTC)

	got := StartOfDay(ts, loc)
	if DayKey(got) != "2024-05-09" {
		t.Errorf("StartOfDay = %v, want 2024-05-09", got)
	}

	parsed, err := ParseDay("2024-05-09", loc)
	if err != nil {
		t.Fatalf("ParseDay: %v", err)
	}
	if !parsed.Equal(got) {
		t.Errorf("ParseDay = %v, want %v", parsed, got)
	}
}
