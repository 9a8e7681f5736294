// Package fitfile reads activity FIT files exported by head units and
// watches a directory of them.
package fitfile

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tormoder/fit"
)

// namespace scopes activity IDs derived from FIT file identity
var namespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("readiness.fitfile"))

// ErrNotActivity is returned for FIT files that hold no activity
var ErrNotActivity = errors.New("not an activity FIT file")

// Activity is the part of a FIT activity the readiness engine uses
type Activity struct {
	ID             string
	Path           string
	ModTime        time.Time
	StartTime      time.Time
	Duration       time.Duration
	Sport          string
	DistanceMeters float64

	AvgPower        float64 // 0 when not recorded
	NormalizedPower float64
	AvgHeartRate    float64
	MaxHeartRate    float64

	Power     []float64 // watts, resampled to one value per second
	HeartRate []float64 // bpm, one per record that carried heart rate
}

// Decode reads one activity from r
func Decode(r io.Reader) (*Activity, error) {
	decoded, err := fit.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode FIT file: %w", err)
	}

	file, err := decoded.Activity()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotActivity, err)
	}

	records := make([]*fit.RecordMsg, 0, len(file.Records))
	for _, rec := range file.Records {
		if rec != nil && validTime(rec.Timestamp) {
			records = append(records, rec)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})

	a := &Activity{ID: activityID(decoded)}

	if len(file.Sessions) > 0 {
		s := file.Sessions[0]
		a.Sport = fmt.Sprint(s.Sport)
		if validTime(s.StartTime) {
			a.StartTime = s.StartTime
		}
		a.Duration = seconds(s.GetTotalElapsedTimeScaled())
		a.DistanceMeters = positive(s.GetTotalDistanceScaled())
		a.AvgPower = validU16(s.AvgPower)
		a.NormalizedPower = validU16(s.NormalizedPower)
		a.AvgHeartRate = validU8(s.AvgHeartRate)
		a.MaxHeartRate = validU8(s.MaxHeartRate)
	}

	if len(records) > 0 {
		first, last := records[0].Timestamp, records[len(records)-1].Timestamp
		if a.StartTime.IsZero() {
			a.StartTime = first
		}
		if a.Duration == 0 {
			a.Duration = last.Sub(first)
		}
		a.Power = powerSeries(records, a.StartTime, a.Duration)
		for _, rec := range records {
			if hr := validU8(rec.HeartRate); hr > 0 {
				a.HeartRate = append(a.HeartRate, hr)
			}
		}
	}

	if a.StartTime.IsZero() {
		return nil, fmt.Errorf("%w: no start time", ErrNotActivity)
	}
	a.StartTime = a.StartTime.UTC()
	return a, nil
}

// DecodeFile reads the activity at path
func DecodeFile(path string) (*Activity, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open FIT file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	a, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	a.Path = path
	a.ModTime = info.ModTime()
	if a.ID == "" {
		a.ID = uuid.NewSHA1(namespace, []byte(filepath.Base(path))).String()
	}
	return a, nil
}

// activityID derives a stable ID from the file's serial number and creation
// time, empty when the file carries neither
func activityID(f *fit.File) string {
	id := f.FileId
	if id.SerialNumber == 0 || id.SerialNumber == math.MaxUint32 || !validTime(id.TimeCreated) {
		return ""
	}
	key := fmt.Sprintf("%d/%d", id.SerialNumber, id.TimeCreated.Unix())
	return uuid.NewSHA1(namespace, []byte(key)).String()
}

// powerSeries holds each recorded power value until the next record, giving
// one value per second of the activity
func powerSeries(records []*fit.RecordMsg, start time.Time, d time.Duration) []float64 {
	n := int(d / time.Second)
	if n <= 0 {
		return nil
	}

	series := make([]float64, n)
	have := false
	current := 0.0
	next := 0
	for i := 0; i < n; i++ {
		t := start.Add(time.Duration(i) * time.Second)
		for next < len(records) && !records[next].Timestamp.After(t) {
			if p := records[next].Power; p != math.MaxUint16 {
				current = float64(p)
				have = true
			}
			next++
		}
		series[i] = current
	}
	if !have {
		return nil
	}
	return series
}

// IsFITFile reports whether name has a .fit extension
func IsFITFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".fit")
}

func validTime(t time.Time) bool {
	return !t.IsZero() && !fit.IsBaseTime(t)
}

func validU16(v uint16) float64 {
	if v == math.MaxUint16 {
		return 0
	}
	return float64(v)
}

func validU8(v uint8) float64 {
	if v == math.MaxUint8 {
		return 0
	}
	return float64(v)
}

func positive(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func seconds(v float64) time.Duration {
	return time.Duration(positive(v) * float64(time.Second))
}
