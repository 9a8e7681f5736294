package analysis

import (
	"sort"
	"strings"
	"time"
)

// SleepStage is the stage label of a sleep sample
type SleepStage string

const (
	StageInBed  SleepStage = "in_bed"
	StageAwake  SleepStage = "awake"
	StageAsleep SleepStage = "asleep" // unspecified stage
	StageLight  SleepStage = "light"
	StageDeep   SleepStage = "deep"
	StageREM    SleepStage = "rem"
)

// ParseSleepStage normalizes stage labels from health exports
// ("HKCategoryValueSleepAnalysisAsleepDeep", "core", "REM", ...)
func ParseSleepStage(raw string) SleepStage {
	s := strings.ToLower(raw)
	switch {
	case strings.Contains(s, "deep"):
		return StageDeep
	case strings.Contains(s, "rem"):
		return StageREM
	case strings.Contains(s, "core"), strings.Contains(s, "light"):
		return StageLight
	case strings.Contains(s, "awake"), strings.Contains(s, "wake"):
		return StageAwake
	case strings.Contains(s, "inbed"), strings.Contains(s, "in_bed"), strings.Contains(s, "in bed"):
		return StageInBed
	default:
		return StageAsleep
	}
}

// SleepSample is one contiguous stage interval
type SleepSample struct {
	Stage SleepStage
	Start time.Time
	End   time.Time
}

// SessionGap is the largest gap merged into one sleep session
const SessionGap = 2 * time.Hour

// SleepSession is a run of samples with no gap of SessionGap or more
type SleepSession struct {
	Start   time.Time
	End     time.Time
	Asleep  time.Duration
	Awake   time.Duration
	Deep    time.Duration
	Samples int
}

// Span is the wall-clock length of the session
func (s SleepSession) Span() time.Duration {
	return s.End.Sub(s.Start)
}

// SleepNight is the primary session attributed to the day it ended
type SleepNight struct {
	Day     time.Time
	Session SleepSession
	Score   float64
}

// GroupSleepSessions merges samples whose gap is under SessionGap
func GroupSleepSessions(samples []SleepSample) []SleepSession {
	valid := make([]SleepSample, 0, len(samples))
	for _, s := range samples {
		if s.End.After(s.Start) {
			valid = append(valid, s)
		}
	}
	if len(valid) == 0 {
		return nil
	}
	sort.Slice(valid, func(i, j int) bool {
		return valid[i].Start.Before(valid[j].Start)
	})

	var sessions []SleepSession
	current := SleepSession{Start: valid[0].Start, End: valid[0].End}
	addStage(&current, valid[0])

	for _, s := range valid[1:] {
		if s.Start.Sub(current.End) >= SessionGap {
			sessions = append(sessions, current)
			current = SleepSession{Start: s.Start, End: s.End}
			addStage(&current, s)
			continue
		}
		if s.End.After(current.End) {
			current.End = s.End
		}
		addStage(&current, s)
	}
	return append(sessions, current)
}

func addStage(sess *SleepSession, s SleepSample) {
	d := s.End.Sub(s.Start)
	sess.Samples++
	switch s.Stage {
	case StageAwake:
		sess.Awake += d
	case StageInBed:
		// in-bed intervals overlap staged ones; they only extend the span
	case StageDeep:
		sess.Deep += d
		sess.Asleep += d
	default:
		sess.Asleep += d
	}
}

// AnalyzeSleep picks the longest session ending on each local day and scores it
func AnalyzeSleep(samples []SleepSample, loc *time.Location) map[string]SleepNight {
	nights := make(map[string]SleepNight)
	for _, sess := range GroupSleepSessions(samples) {
		end := sess.End.In(loc)
		key := DayKey(end)
		if existing, ok := nights[key]; ok && existing.Session.Span() >= sess.Span() {
			continue
		}
		nights[key] = SleepNight{
			Day:     startOfDay(end),
			Session: sess,
			Score:   SleepQualityScore(sess),
		}
	}
	return nights
}

// SleepQualityScore sums the duration (0-40), consistency (0-30) and
// deep-sleep (0-30) sub-scores
func SleepQualityScore(s SleepSession) float64 {
	if s.Asleep <= 0 {
		return 0
	}
	score := sleepDurationScore(s.Asleep.Hours()) +
		sleepConsistencyScore(s.Asleep, s.Awake) +
		deepSleepScore(s.Asleep, s.Deep)
	return clamp(score, 0, 100)
}

// sleepDurationScore peaks at 7-9h and tapers outside 5-11h
func sleepDurationScore(hours float64) float64 {
	switch {
	case hours <= 0:
		return 0
	case hours < 5:
		return 20 * hours / 5
	case hours < 7:
		return lerp(hours, 5, 7, 20, 40)
	case hours <= 9:
		return 40
	case hours <= 11:
		return lerp(hours, 9, 11, 40, 20)
	default:
		return clamp(20-10*(hours-11), 0, 20)
	}
}

// sleepConsistencyScore falls linearly to zero at 30% time awake
func sleepConsistencyScore(asleep, awake time.Duration) float64 {
	total := asleep + awake
	if total <= 0 {
		return 0
	}
	awakeRatio := awake.Seconds() / total.Seconds()
	return clamp(30*(1-awakeRatio/0.3), 0, 30)
}

// deepSleepScore peaks for a 15-25% deep ratio
func deepSleepScore(asleep, deep time.Duration) float64 {
	if asleep <= 0 {
		return 0
	}
	ratio := deep.Seconds() / asleep.Seconds()
	switch {
	case ratio < 0.15:
		return 30 * ratio / 0.15
	case ratio <= 0.25:
		return 30
	default:
		return clamp(30-(ratio-0.25)/0.25*30, 0, 30)
	}
}
