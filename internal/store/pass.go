package store

import (
	"context"
	"fmt"
)

// CommitPass writes a recompute pass in a single transaction. Either every
// workout, aggregate and the cursor land, or nothing does.
func (db *DB) CommitPass(ctx context.Context, batch PassBatch) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if batch.ReplaceFrom != "" {
		if _, err := tx.ExecContext(ctx, `DELETE FROM workouts WHERE day >= ?`, batch.ReplaceFrom); err != nil {
			return fmt.Errorf("clearing workouts: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM daily_aggregates WHERE day >= ?`, batch.ReplaceFrom); err != nil {
			return fmt.Errorf("clearing aggregates: %w", err)
		}
	}

	for i := range batch.Workouts {
		if err := upsertWorkout(tx, &batch.Workouts[i]); err != nil {
			return fmt.Errorf("upserting workout %s/%s: %w", batch.Workouts[i].Origin, batch.Workouts[i].ID, err)
		}
	}

	for i := range batch.Aggregates {
		if err := upsertDailyAggregate(tx, &batch.Aggregates[i]); err != nil {
			return fmt.Errorf("upserting aggregate %s: %w", batch.Aggregates[i].Day, err)
		}
	}

	if !batch.Cursor.IsZero() {
		if err := setSyncState(tx, CursorKey, formatTime(batch.Cursor)); err != nil {
			return fmt.Errorf("storing cursor: %w", err)
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	return tx.Commit()
}
