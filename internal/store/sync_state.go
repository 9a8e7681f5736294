package store

import (
	"database/sql"
	"time"
)

// CursorKey is the sync_state key holding the incremental update cursor
const CursorKey = "readiness_cursor"

// GetSyncState retrieves a sync state value by key
// Returns empty string if key doesn't exist
func (db *DB) GetSyncState(key string) (string, error) {
	var value string
	err := db.QueryRow(`
		SELECT value FROM sync_state WHERE key = ?
	`, key).Scan(&value)

	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func setSyncState(e execer, key, value string) error {
	_, err := e.Exec(`
		INSERT INTO sync_state (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, key, value)
	return err
}

// SyncCursor returns the time of the last successful pass.
// ok is false when no pass has completed yet.
func (db *DB) SyncCursor() (cursor time.Time, ok bool, err error) {
	value, err := db.GetSyncState(CursorKey)
	if err != nil || value == "" {
		return time.Time{}, false, err
	}
	cursor, err = parseTime(value)
	if err != nil {
		return time.Time{}, false, err
	}
	return cursor, true, nil
}

// SetSyncCursor stores the incremental update cursor
func (db *DB) SetSyncCursor(cursor time.Time) error {
	return setSyncState(db, CursorKey, formatTime(cursor))
}
