package store

import (
	"database/sql"
	"time"
)

const workoutColumns = `origin, id, day, start_time, duration_seconds, sport, sport_type,
	distance, avg_power, normalized_power, avg_heartrate, max_heartrate,
	suppressed, tss, tss_method`

// UpsertWorkout inserts or updates a workout record
func (db *DB) UpsertWorkout(w *WorkoutRecord) error {
	return upsertWorkout(db, w)
}

func upsertWorkout(e execer, w *WorkoutRecord) error {
	_, err := e.Exec(`
		INSERT INTO workouts (`+workoutColumns+`, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(origin, id) DO UPDATE SET
			day = excluded.day,
			start_time = excluded.start_time,
			duration_seconds = excluded.duration_seconds,
			sport = excluded.sport,
			sport_type = excluded.sport_type,
			distance = excluded.distance,
			avg_power = excluded.avg_power,
			normalized_power = excluded.normalized_power,
			avg_heartrate = excluded.avg_heartrate,
			max_heartrate = excluded.max_heartrate,
			suppressed = excluded.suppressed,
			tss = excluded.tss,
			tss_method = excluded.tss_method,
			updated_at = CURRENT_TIMESTAMP
	`,
		string(w.Origin), w.ID, w.Day, formatTime(w.StartTime), w.Duration.Seconds(),
		w.Sport, w.SportType, w.DistanceMeters,
		w.AvgPower, w.NormalizedPower, w.AvgHeartrate, w.MaxHeartrate,
		boolToInt(w.Suppressed), w.TSS, w.TSSMethod,
	)
	return err
}

// Workouts returns every workout, suppressed or not, whose day falls in
// [from, to], ordered by start time
func (db *DB) Workouts(from, to string) ([]WorkoutRecord, error) {
	rows, err := db.Query(`
		SELECT `+workoutColumns+`
		FROM workouts
		WHERE day >= ? AND day <= ?
		ORDER BY start_time, origin
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanWorkouts(rows)
}

// RecentWorkouts returns the latest unsuppressed workouts
func (db *DB) RecentWorkouts(limit int) ([]WorkoutRecord, error) {
	rows, err := db.Query(`
		SELECT `+workoutColumns+`
		FROM workouts
		WHERE suppressed = 0
		ORDER BY start_time DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanWorkouts(rows)
}

// CountWorkouts returns the number of stored workouts and how many are suppressed
func (db *DB) CountWorkouts() (total, suppressed int, err error) {
	err = db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(suppressed), 0) FROM workouts
	`).Scan(&total, &suppressed)
	return total, suppressed, err
}

// scanWorkouts scans multiple workouts from rows
func scanWorkouts(rows *sql.Rows) ([]WorkoutRecord, error) {
	var workouts []WorkoutRecord

	for rows.Next() {
		var w WorkoutRecord
		var origin, startTime string
		var seconds float64
		var suppressed int

		err := rows.Scan(
			&origin, &w.ID, &w.Day, &startTime, &seconds, &w.Sport, &w.SportType,
			&w.DistanceMeters, &w.AvgPower, &w.NormalizedPower, &w.AvgHeartrate, &w.MaxHeartrate,
			&suppressed, &w.TSS, &w.TSSMethod,
		)
		if err != nil {
			return nil, err
		}

		w.Origin = SourceTag(origin)
		if w.StartTime, err = parseTime(startTime); err != nil {
			return nil, err
		}
		w.Duration = secondsToDuration(seconds)
		w.Suppressed = suppressed == 1

		workouts = append(workouts, w)
	}

	return workouts, rows.Err()
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
