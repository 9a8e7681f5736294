package analysis

import "time"

// DayLayout is the calendar-day key format used across the app
const DayLayout = "2006-01-02"

// DayKey formats a time as its local calendar day
func DayKey(t time.Time) string {
	return t.Format(DayLayout)
}

// ParseDay parses a day key as local midnight in loc
func ParseDay(key string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DayLayout, key, loc)
}

// startOfDay returns midnight of t's calendar day in t's location
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// StartOfDay returns midnight of t's calendar day in loc
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	return startOfDay(t.In(loc))
}

// DaysBetween lists every calendar day from start through end inclusive
func DaysBetween(start, end time.Time) []time.Time {
	start, end = startOfDay(start), startOfDay(end)
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
