// Package export writes computed readiness history to Parquet files.
package export

import (
	"fmt"

	"readiness/internal/store"

	"github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
)

// parallelism is the writer's marshalling goroutine count
const parallelism = 4

type aggregateRow struct {
	Day               string   `parquet:"name=day, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Score             float64  `parquet:"name=score, type=DOUBLE"`
	TotalTSS          float64  `parquet:"name=total_tss, type=DOUBLE"`
	Chronic           float64  `parquet:"name=chronic, type=DOUBLE"`
	Acute             float64  `parquet:"name=acute, type=DOUBLE"`
	Balance           float64  `parquet:"name=balance, type=DOUBLE"`
	RampRate          float64  `parquet:"name=ramp_rate, type=DOUBLE"`
	WorkoutCount      int32    `parquet:"name=workout_count, type=INT32"`
	AvgHRV            *float64 `parquet:"name=avg_hrv, type=DOUBLE, repetitiontype=OPTIONAL"`
	AvgRHR            *float64 `parquet:"name=avg_rhr, type=DOUBLE, repetitiontype=OPTIONAL"`
	HRVAdjustment     float64  `parquet:"name=hrv_adjustment, type=DOUBLE"`
	RHRAdjustment     float64  `parquet:"name=rhr_adjustment, type=DOUBLE"`
	Adjustment        float64  `parquet:"name=physiology_adjustment, type=DOUBLE"`
	IllnessLikelihood float64  `parquet:"name=illness_likelihood, type=DOUBLE"`
	SleepSeconds      int64    `parquet:"name=sleep_s, type=INT64"`
	DeepSleepSeconds  int64    `parquet:"name=deep_sleep_s, type=INT64"`
	SleepScore        *float64 `parquet:"name=sleep_score, type=DOUBLE, repetitiontype=OPTIONAL"`
	ComputedAtUTC     string   `parquet:"name=computed_at_utc, type=BYTE_ARRAY, convertedtype=UTF8"`
}

type workoutRow struct {
	ID              string   `parquet:"name=id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Origin          string   `parquet:"name=origin, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Day             string   `parquet:"name=day, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	StartUTC        string   `parquet:"name=start_utc, type=BYTE_ARRAY, convertedtype=UTF8"`
	DurationSeconds int64    `parquet:"name=duration_s, type=INT64"`
	Sport           string   `parquet:"name=sport, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	SportType       string   `parquet:"name=sport_type, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	DistanceM       float64  `parquet:"name=distance_m, type=DOUBLE"`
	AvgPowerW       *float64 `parquet:"name=avg_power_w, type=DOUBLE, repetitiontype=OPTIONAL"`
	NormalizedW     *float64 `parquet:"name=normalized_power_w, type=DOUBLE, repetitiontype=OPTIONAL"`
	AvgHRBPM        *float64 `parquet:"name=avg_hr_bpm, type=DOUBLE, repetitiontype=OPTIONAL"`
	MaxHRBPM        *float64 `parquet:"name=max_hr_bpm, type=DOUBLE, repetitiontype=OPTIONAL"`
	Suppressed      bool     `parquet:"name=suppressed, type=BOOLEAN"`
	TSS             float64  `parquet:"name=tss, type=DOUBLE"`
	TSSMethod       string   `parquet:"name=tss_method, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
}

const timeLayout = "2006-01-02T15:04:05Z"

func toAggregateRow(a store.DailyAggregate) aggregateRow {
	return aggregateRow{
		Day:               a.Day,
		Score:             a.Score,
		TotalTSS:          a.TotalTSS,
		Chronic:           a.Chronic,
		Acute:             a.Acute,
		Balance:           a.Balance(),
		RampRate:          a.RampRate,
		WorkoutCount:      int32(a.WorkoutCount),
		AvgHRV:            a.AvgHRV,
		AvgRHR:            a.AvgRHR,
		HRVAdjustment:     a.HRVAdjustment,
		RHRAdjustment:     a.RHRAdjustment,
		Adjustment:        a.PhysiologyAdjustment,
		IllnessLikelihood: a.IllnessLikelihood,
		SleepSeconds:      int64(a.SleepDuration.Seconds()),
		DeepSleepSeconds:  int64(a.DeepSleepDuration.Seconds()),
		SleepScore:        a.SleepScore,
		ComputedAtUTC:     a.ComputedAt.UTC().Format(timeLayout),
	}
}

func toWorkoutRow(w store.WorkoutRecord) workoutRow {
	return workoutRow{
		ID:              w.ID,
		Origin:          string(w.Origin),
		Day:             w.Day,
		StartUTC:        w.StartTime.UTC().Format(timeLayout),
		DurationSeconds: int64(w.Duration.Seconds()),
		Sport:           w.Sport,
		SportType:       w.SportType,
		DistanceM:       w.DistanceMeters,
		AvgPowerW:       w.AvgPower,
		NormalizedW:     w.NormalizedPower,
		AvgHRBPM:        w.AvgHeartrate,
		MaxHRBPM:        w.MaxHeartrate,
		Suppressed:      w.Suppressed,
		TSS:             w.TSS,
		TSSMethod:       w.TSSMethod,
	}
}

// WriteAggregates writes daily aggregates to a Parquet file at path
func WriteAggregates(path string, aggs []store.DailyAggregate) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	rows := make([]any, len(aggs))
	for i, a := range aggs {
		rows[i] = toAggregateRow(a)
	}
	return write(fw, new(aggregateRow), rows)
}

// WriteWorkouts writes workout records to a Parquet file at path
func WriteWorkouts(path string, workouts []store.WorkoutRecord) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	rows := make([]any, len(workouts))
	for i, w := range workouts {
		rows[i] = toWorkoutRow(w)
	}
	return write(fw, new(workoutRow), rows)
}

// MarshalAggregates encodes daily aggregates as an in-memory Parquet file
func MarshalAggregates(aggs []store.DailyAggregate) ([]byte, error) {
	fw := buffer.NewBufferFile()
	rows := make([]any, len(aggs))
	for i, a := range aggs {
		rows[i] = toAggregateRow(a)
	}
	if err := write(fw, new(aggregateRow), rows); err != nil {
		return nil, err
	}
	return append([]byte(nil), fw.Bytes()...), nil
}

func write(fw source.ParquetFile, schema any, rows []any) error {
	pw, err := writer.NewParquetWriter(fw, schema, parallelism)
	if err != nil {
		fw.Close()
		return fmt.Errorf("creating parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, row := range rows {
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			fw.Close()
			return fmt.Errorf("writing row: %w", err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		fw.Close()
		return fmt.Errorf("finishing parquet file: %w", err)
	}
	return fw.Close()
}
