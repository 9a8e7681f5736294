package store

import "database/sql"

// migrate runs all database migrations
func migrate(db *sql.DB) error {
	migrations := []string{
		// Authentication (singleton row)
		`CREATE TABLE IF NOT EXISTS auth (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			athlete_id INTEGER NOT NULL,
			access_token TEXT NOT NULL,
			refresh_token TEXT NOT NULL,
			expires_at TEXT NOT NULL,
			scope TEXT NOT NULL DEFAULT '',
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		// Workouts from both sources; duplicates are suppressed, never deleted
		`CREATE TABLE IF NOT EXISTS workouts (
			origin TEXT NOT NULL,
			id TEXT NOT NULL,
			day TEXT NOT NULL,
			start_time TEXT NOT NULL,
			duration_seconds REAL NOT NULL,
			sport TEXT NOT NULL,
			sport_type TEXT NOT NULL,
			distance REAL NOT NULL DEFAULT 0,
			avg_power REAL,
			normalized_power REAL,
			avg_heartrate REAL,
			max_heartrate REAL,
			suppressed INTEGER NOT NULL DEFAULT 0,
			tss REAL NOT NULL DEFAULT 0,
			tss_method TEXT NOT NULL DEFAULT '',
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (origin, id)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_workouts_day ON workouts(day)`,
		`CREATE INDEX IF NOT EXISTS idx_workouts_start_time ON workouts(start_time)`,

		// Daily aggregates; balance is derived from chronic - acute on read
		`CREATE TABLE IF NOT EXISTS daily_aggregates (
			day TEXT PRIMARY KEY,
			total_tss REAL NOT NULL,
			chronic REAL NOT NULL,
			acute REAL NOT NULL,
			score REAL NOT NULL,
			ramp_rate REAL NOT NULL DEFAULT 0,
			workout_count INTEGER NOT NULL DEFAULT 0,
			avg_hrv REAL,
			avg_rhr REAL,
			hrv_adjustment REAL NOT NULL DEFAULT 0,
			rhr_adjustment REAL NOT NULL DEFAULT 0,
			physiology_adjustment REAL NOT NULL DEFAULT 0,
			illness_likelihood REAL NOT NULL DEFAULT 0,
			sleep_seconds REAL NOT NULL DEFAULT 0,
			sleep_score REAL,
			deep_sleep_seconds REAL NOT NULL DEFAULT 0,
			computed_at TEXT NOT NULL,
			CHECK (score >= 0 AND score <= 100),
			CHECK (chronic >= 0 AND acute >= 0)
		)`,

		// Physiological samples (HRV, resting HR) imported from health exports
		`CREATE TABLE IF NOT EXISTS physiology_samples (
			kind TEXT NOT NULL,
			recorded_at TEXT NOT NULL,
			value REAL NOT NULL,
			source TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (kind, recorded_at, source)
		)`,

		// Sleep-stage samples imported from health exports
		`CREATE TABLE IF NOT EXISTS sleep_samples (
			stage TEXT NOT NULL,
			start_time TEXT NOT NULL,
			end_time TEXT NOT NULL,
			source TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (start_time, end_time, stage, source)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_sleep_samples_end ON sleep_samples(end_time)`,

		// Sync State (key-value store for sync tracking)
		`CREATE TABLE IF NOT EXISTS sync_state (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}

	return nil
}
