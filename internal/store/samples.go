package store

import (
	"fmt"
	"time"
)

// InsertPhysiologySamples stores samples, skipping ones already present.
// It returns how many were new.
func (db *DB) InsertPhysiologySamples(samples []PhysiologySample) (int, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	inserted := 0
	for _, s := range samples {
		res, err := tx.Exec(`
			INSERT OR IGNORE INTO physiology_samples (kind, recorded_at, value, source)
			VALUES (?, ?, ?, ?)
		`, string(s.Kind), formatTime(s.Time), s.Value, s.Source)
		if err != nil {
			return 0, fmt.Errorf("inserting %s sample: %w", s.Kind, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		inserted += int(n)
	}
	return inserted, tx.Commit()
}

// PhysiologyBetween returns samples of kind recorded in [from, to), oldest first
func (db *DB) PhysiologyBetween(kind PhysiologyKind, from, to time.Time) ([]PhysiologySample, error) {
	rows, err := db.Query(`
		SELECT kind, recorded_at, value, source
		FROM physiology_samples
		WHERE kind = ? AND recorded_at >= ? AND recorded_at < ?
		ORDER BY recorded_at
	`, string(kind), formatTime(from), formatTime(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []PhysiologySample
	for rows.Next() {
		var s PhysiologySample
		var k, recordedAt string
		if err := rows.Scan(&k, &recordedAt, &s.Value, &s.Source); err != nil {
			return nil, err
		}
		s.Kind = PhysiologyKind(k)
		if s.Time, err = parseTime(recordedAt); err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}
	return samples, rows.Err()
}

// InsertSleepSamples stores sleep intervals, skipping ones already present.
// It returns how many were new.
func (db *DB) InsertSleepSamples(samples []SleepSample) (int, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	inserted := 0
	for _, s := range samples {
		if !s.End.After(s.Start) {
			continue
		}
		res, err := tx.Exec(`
			INSERT OR IGNORE INTO sleep_samples (stage, start_time, end_time, source)
			VALUES (?, ?, ?, ?)
		`, s.Stage, formatTime(s.Start), formatTime(s.End), s.Source)
		if err != nil {
			return 0, fmt.Errorf("inserting sleep sample: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		inserted += int(n)
	}
	return inserted, tx.Commit()
}

// SleepBetween returns intervals that end in [from, to), ordered by start
func (db *DB) SleepBetween(from, to time.Time) ([]SleepSample, error) {
	rows, err := db.Query(`
		SELECT stage, start_time, end_time, source
		FROM sleep_samples
		WHERE end_time >= ? AND end_time < ?
		ORDER BY start_time
	`, formatTime(from), formatTime(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []SleepSample
	for rows.Next() {
		var s SleepSample
		var start, end string
		if err := rows.Scan(&s.Stage, &start, &end, &s.Source); err != nil {
			return nil, err
		}
		if s.Start, err = parseTime(start); err != nil {
			return nil, err
		}
		if s.End, err = parseTime(end); err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}
	return samples, rows.Err()
}
