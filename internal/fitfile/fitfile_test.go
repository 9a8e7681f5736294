package fitfile

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tormoder/fit"
)

var rideStart = time.Date(2024, 6, 14, 7, 0, 0, 0, time.UTC)

// buildRide encodes a ride with one record every 2 seconds at constant power
func buildRide(t *testing.T, serial uint32, d time.Duration, watts uint16, hr uint8) []byte {
	t.Helper()

	header := fit.NewHeader(fit.V20, true)
	file, err := fit.NewFile(fit.FileTypeActivity, header)
	if err != nil {
		t.Fatalf("new fit file: %v", err)
	}
	file.FileId.SerialNumber = serial
	file.FileId.TimeCreated = rideStart

	activity, err := file.Activity()
	if err != nil {
		t.Fatalf("activity accessor: %v", err)
	}

	session := fit.NewSessionMsg()
	session.Timestamp = rideStart.Add(d)
	session.StartTime = rideStart
	session.Sport = fit.SportCycling
	session.TotalElapsedTime = uint32(d.Seconds() * 1000)
	session.TotalTimerTime = uint32(d.Seconds() * 1000)
	session.TotalDistance = 3000000 // 30 km, scale 100
	session.AvgPower = watts
	session.AvgHeartRate = hr
	session.MaxHeartRate = hr + 15
	activity.Sessions = append(activity.Sessions, session)

	for off := time.Duration(0); off < d; off += 2 * time.Second {
		record := fit.NewRecordMsg()
		record.Timestamp = rideStart.Add(off)
		record.Power = watts
		record.HeartRate = hr
		activity.Records = append(activity.Records, record)
	}

	var buf bytes.Buffer
	if err := fit.Encode(&buf, file, binary.LittleEndian); err != nil {
		t.Fatalf("encode fit: %v", err)
	}
	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	a, err := Decode(bytes.NewReader(buildRide(t, 12345, 10*time.Minute, 220, 140)))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if !a.StartTime.Equal(rideStart) {
		t.Errorf("StartTime = %v, want %v", a.StartTime, rideStart)
	}
	if a.Duration != 10*time.Minute {
		t.Errorf("Duration = %v, want 10m", a.Duration)
	}
	if a.DistanceMeters != 30000 {
		t.Errorf("DistanceMeters = %v, want 30000", a.DistanceMeters)
	}
	if a.AvgPower != 220 || a.AvgHeartRate != 140 || a.MaxHeartRate != 155 {
		t.Errorf("summary = %v W, %v/%v bpm", a.AvgPower, a.AvgHeartRate, a.MaxHeartRate)
	}
	if a.NormalizedPower != 0 {
		t.Errorf("NormalizedPower = %v, want 0 when not recorded", a.NormalizedPower)
	}

	// Records every 2s are held to one value per second
	if len(a.Power) != 600 {
		t.Fatalf("len(Power) = %d, want 600", len(a.Power))
	}
	for i, p := range a.Power {
		if p != 220 {
			t.Fatalf("Power[%d] = %v, want 220", i, p)
		}
	}
	if len(a.HeartRate) != 300 {
		t.Errorf("len(HeartRate) = %d, want 300", len(a.HeartRate))
	}
	if a.ID == "" {
		t.Error("ID should be derived from the file id")
	}
}

func TestDecodeStableID(t *testing.T) {
	a, _ := Decode(bytes.NewReader(buildRide(t, 777, time.Minute, 200, 130)))
	b, _ := Decode(bytes.NewReader(buildRide(t, 777, 2*time.Minute, 210, 131)))
	c, _ := Decode(bytes.NewReader(buildRide(t, 778, time.Minute, 200, 130)))

	if a.ID != b.ID {
		t.Errorf("same device and creation time gave IDs %s and %s", a.ID, b.ID)
	}
	if a.ID == c.ID {
		t.Error("different serial numbers gave the same ID")
	}
}

func TestDecodeGarbage(t *testing.T) {
	if _, err := Decode(bytes.NewReader([]byte("not a fit file"))); err == nil {
		t.Error("Decode() of garbage succeeded")
	}
}

func TestPowerSeriesWithoutPower(t *testing.T) {
	rec := fit.NewRecordMsg()
	rec.Timestamp = rideStart
	rec.HeartRate = 120
	if got := powerSeries([]*fit.RecordMsg{rec}, rideStart, time.Minute); got != nil {
		t.Errorf("powerSeries() = %v, want nil without power", got)
	}
}

func TestDirectoryActivities(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "2024")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}

	write := func(path string, data []byte, mod time.Time) {
		t.Helper()
		if err := os.WriteFile(path, data, 0644); err != nil {
			t.Fatal(err)
		}
		if err := os.Chtimes(path, mod, mod); err != nil {
			t.Fatal(err)
		}
	}

	old := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2024, 6, 14, 12, 0, 0, 0, time.UTC)
	write(filepath.Join(root, "old.fit"), buildRide(t, 1, 10*time.Minute, 200, 130), old)
	write(filepath.Join(sub, "recent.FIT"), buildRide(t, 2, 10*time.Minute, 240, 150), recent)
	write(filepath.Join(root, "broken.fit"), []byte("garbage"), recent)
	write(filepath.Join(root, "notes.txt"), []byte("ignored"), recent)

	dir := NewDirectory(root)
	ctx := context.Background()

	all, skipped, err := dir.Activities(ctx, time.Time{})
	if err != nil {
		t.Fatalf("Activities() error = %v", err)
	}
	if len(all) != 2 {
		t.Errorf("got %d activities, want 2", len(all))
	}
	if len(skipped) != 1 || filepath.Base(skipped[0].Path) != "broken.fit" {
		t.Errorf("skipped = %+v, want broken.fit", skipped)
	}

	since, _, err := dir.Activities(ctx, old)
	if err != nil {
		t.Fatal(err)
	}
	if len(since) != 1 || since[0].AvgPower != 240 {
		t.Errorf("modified after %v = %d activities, want only recent.FIT", old, len(since))
	}
	if !since[0].ModTime.Equal(recent) {
		t.Errorf("ModTime = %v, want %v", since[0].ModTime, recent)
	}
}

func TestDirectoryMissing(t *testing.T) {
	_, _, err := NewDirectory(filepath.Join(t.TempDir(), "nope")).Activities(context.Background(), time.Time{})
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Activities() error = %v, want not-exist", err)
	}
}
