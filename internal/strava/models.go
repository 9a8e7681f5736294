package strava

import "time"

// Activity represents a Strava activity summary from the API
type Activity struct {
	ID               int64     `json:"id"`
	Athlete          Athlete   `json:"athlete"`
	Name             string    `json:"name"`
	Type             string    `json:"type"`
	SportType        string    `json:"sport_type"`
	StartDate        time.Time `json:"start_date"`
	StartDateLocal   time.Time `json:"start_date_local"`
	Timezone         string    `json:"timezone"`
	Distance         float64   `json:"distance"`     // meters
	MovingTime       int       `json:"moving_time"`  // seconds
	ElapsedTime      int       `json:"elapsed_time"` // seconds
	AverageHeartrate float64   `json:"average_heartrate"`
	MaxHeartrate     float64   `json:"max_heartrate"`
	HasHeartrate     bool      `json:"has_heartrate"`
	SufferScore      int       `json:"suffer_score"`

	// Power fields; DeviceWatts is false when Strava estimated the power
	AverageWatts         float64 `json:"average_watts"`
	WeightedAverageWatts float64 `json:"weighted_average_watts"`
	Kilojoules           float64 `json:"kilojoules"`
	DeviceWatts          bool    `json:"device_watts"`
	Trainer              bool    `json:"trainer"`
	Manual               bool    `json:"manual"`
}

// Sport returns the most specific sport label available
func (a Activity) Sport() string {
	if a.SportType != "" {
		return a.SportType
	}
	return a.Type
}

// Athlete represents a Strava athlete (minimal info in activity response)
type Athlete struct {
	ID int64 `json:"id"`
}

// AthleteProfile is the authenticated athlete as returned by /athlete
type AthleteProfile struct {
	ID        int64   `json:"id"`
	Firstname string  `json:"firstname"`
	Lastname  string  `json:"lastname"`
	FTP       *int    `json:"ftp"` // null when never set
	Weight    float64 `json:"weight"`
}
