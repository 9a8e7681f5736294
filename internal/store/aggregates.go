package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// ErrAggregateNotFound is returned when no aggregate exists for a day
var ErrAggregateNotFound = errors.New("daily aggregate not found")

const aggregateColumns = `day, total_tss, chronic, acute, score, ramp_rate, workout_count,
	avg_hrv, avg_rhr, hrv_adjustment, rhr_adjustment, physiology_adjustment,
	illness_likelihood, sleep_seconds, sleep_score, deep_sleep_seconds, computed_at`

// UpsertDailyAggregates writes aggregates keyed by day in one transaction
func (db *DB) UpsertDailyAggregates(aggs []DailyAggregate) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for i := range aggs {
		if err := upsertDailyAggregate(tx, &aggs[i]); err != nil {
			return fmt.Errorf("upserting aggregate %s: %w", aggs[i].Day, err)
		}
	}
	return tx.Commit()
}

func upsertDailyAggregate(e execer, a *DailyAggregate) error {
	_, err := e.Exec(`
		INSERT INTO daily_aggregates (`+aggregateColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(day) DO UPDATE SET
			total_tss = excluded.total_tss,
			chronic = excluded.chronic,
			acute = excluded.acute,
			score = excluded.score,
			ramp_rate = excluded.ramp_rate,
			workout_count = excluded.workout_count,
			avg_hrv = excluded.avg_hrv,
			avg_rhr = excluded.avg_rhr,
			hrv_adjustment = excluded.hrv_adjustment,
			rhr_adjustment = excluded.rhr_adjustment,
			physiology_adjustment = excluded.physiology_adjustment,
			illness_likelihood = excluded.illness_likelihood,
			sleep_seconds = excluded.sleep_seconds,
			sleep_score = excluded.sleep_score,
			deep_sleep_seconds = excluded.deep_sleep_seconds,
			computed_at = excluded.computed_at
	`,
		a.Day, a.TotalTSS, a.Chronic, a.Acute, a.Score, a.RampRate, a.WorkoutCount,
		a.AvgHRV, a.AvgRHR, a.HRVAdjustment, a.RHRAdjustment, a.PhysiologyAdjustment,
		a.IllnessLikelihood, a.SleepDuration.Seconds(), a.SleepScore, a.DeepSleepDuration.Seconds(),
		formatTime(a.ComputedAt),
	)
	return err
}

// DailyAggregate returns the aggregate for day (YYYY-MM-DD)
func (db *DB) DailyAggregate(day string) (*DailyAggregate, error) {
	rows, err := db.Query(`
		SELECT `+aggregateColumns+`
		FROM daily_aggregates
		WHERE day = ?
	`, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	aggs, err := scanAggregates(rows)
	if err != nil {
		return nil, err
	}
	if len(aggs) == 0 {
		return nil, ErrAggregateNotFound
	}
	return &aggs[0], nil
}

// RecentDailyAggregates returns the latest n aggregates, oldest first
func (db *DB) RecentDailyAggregates(n int) ([]DailyAggregate, error) {
	rows, err := db.Query(`
		SELECT * FROM (
			SELECT `+aggregateColumns+`
			FROM daily_aggregates
			ORDER BY day DESC
			LIMIT ?
		) ORDER BY day ASC
	`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAggregates(rows)
}

// DailyAggregatesBetween returns aggregates for days in [from, to], oldest first
func (db *DB) DailyAggregatesBetween(from, to string) ([]DailyAggregate, error) {
	rows, err := db.Query(`
		SELECT `+aggregateColumns+`
		FROM daily_aggregates
		WHERE day >= ? AND day <= ?
		ORDER BY day ASC
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAggregates(rows)
}

// scanAggregates scans multiple aggregates from rows
func scanAggregates(rows *sql.Rows) ([]DailyAggregate, error) {
	var aggs []DailyAggregate

	for rows.Next() {
		var a DailyAggregate
		var sleepSeconds, deepSeconds float64
		var computedAt string

		err := rows.Scan(
			&a.Day, &a.TotalTSS, &a.Chronic, &a.Acute, &a.Score, &a.RampRate, &a.WorkoutCount,
			&a.AvgHRV, &a.AvgRHR, &a.HRVAdjustment, &a.RHRAdjustment, &a.PhysiologyAdjustment,
			&a.IllnessLikelihood, &sleepSeconds, &a.SleepScore, &deepSeconds, &computedAt,
		)
		if err != nil {
			return nil, err
		}

		a.SleepDuration = secondsToDuration(sleepSeconds)
		a.DeepSleepDuration = secondsToDuration(deepSeconds)
		if a.ComputedAt, err = parseTime(computedAt); err != nil {
			return nil, err
		}

		aggs = append(aggs, a)
	}

	return aggs, rows.Err()
}
