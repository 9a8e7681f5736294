package store

import (
	"strings"
	"time"
)

// Auth holds the secondary source's OAuth tokens
type Auth struct {
	AthleteID    int64     `db:"athlete_id"`
	AccessToken  string    `db:"access_token"`
	RefreshToken string    `db:"refresh_token"`
	ExpiresAt    time.Time `db:"expires_at"`
	Scope        string    `db:"scope"` // comma-separated scopes the athlete granted
}

// HasScope reports whether scope was granted
func (a *Auth) HasScope(scope string) bool {
	for _, s := range strings.Split(a.Scope, ",") {
		if strings.TrimSpace(s) == scope {
			return true
		}
	}
	return false
}

// SourceTag identifies which workout source a record came from
type SourceTag string

const (
	SourcePrimary   SourceTag = "primary"
	SourceSecondary SourceTag = "secondary"
)

// WorkoutRecord is one workout as seen by the readiness engine
type WorkoutRecord struct {
	ID              string        `db:"id"` // unique within Origin
	Origin          SourceTag     `db:"origin"`
	Day             string        `db:"day"` // YYYY-MM-DD, local
	StartTime       time.Time     `db:"start_time"`
	Duration        time.Duration `db:"duration_seconds"`
	Sport           string        `db:"sport"`      // as reported by the source
	SportType       string        `db:"sport_type"` // ride, run, swim, walk, other
	DistanceMeters  float64       `db:"distance"`
	AvgPower        *float64      `db:"avg_power"`        // nullable
	NormalizedPower *float64      `db:"normalized_power"` // nullable
	AvgHeartrate    *float64      `db:"avg_heartrate"`    // nullable
	MaxHeartrate    *float64      `db:"max_heartrate"`    // nullable
	Suppressed      bool          `db:"suppressed"`
	TSS             float64       `db:"tss"`
	TSSMethod       string        `db:"tss_method"`
}

// DailyAggregate is the per-day readiness summary
type DailyAggregate struct {
	Day                  string        `db:"day"` // YYYY-MM-DD
	TotalTSS             float64       `db:"total_tss"`
	Chronic              float64       `db:"chronic"`
	Acute                float64       `db:"acute"`
	Score                float64       `db:"score"`
	RampRate             float64       `db:"ramp_rate"`
	WorkoutCount         int           `db:"workout_count"`
	AvgHRV               *float64      `db:"avg_hrv"` // nullable
	AvgRHR               *float64      `db:"avg_rhr"` // nullable
	HRVAdjustment        float64       `db:"hrv_adjustment"`
	RHRAdjustment        float64       `db:"rhr_adjustment"`
	PhysiologyAdjustment float64       `db:"physiology_adjustment"`
	IllnessLikelihood    float64       `db:"illness_likelihood"`
	SleepDuration        time.Duration `db:"sleep_seconds"`
	SleepScore           *float64      `db:"sleep_score"` // nullable
	DeepSleepDuration    time.Duration `db:"deep_sleep_seconds"`
	ComputedAt           time.Time     `db:"computed_at"`
}

// Balance returns chronic - acute
func (a DailyAggregate) Balance() float64 {
	return a.Chronic - a.Acute
}

// PhysiologyKind is the measurement type of a physiology sample
type PhysiologyKind string

const (
	KindHRV PhysiologyKind = "hrv"
	KindRHR PhysiologyKind = "rhr"
)

// PhysiologySample is one stored HRV or resting-HR reading
type PhysiologySample struct {
	Kind   PhysiologyKind `db:"kind"`
	Time   time.Time      `db:"recorded_at"`
	Value  float64        `db:"value"`
	Source string         `db:"source"`
}

// SleepSample is one stored sleep-stage interval
type SleepSample struct {
	Stage  string    `db:"stage"`
	Start  time.Time `db:"start_time"`
	End    time.Time `db:"end_time"`
	Source string    `db:"source"`
}

// PassBatch is everything one recompute pass writes
type PassBatch struct {
	// ReplaceFrom, when set, deletes workouts and aggregates on or after
	// this day before writing
	ReplaceFrom string
	Workouts    []WorkoutRecord
	Aggregates  []DailyAggregate
	// Cursor is stored when non-zero
	Cursor time.Time
}
