package store

import (
	"testing"
	"time"

	surf "github.com/shahar42/surf-lamp-engine/pkg"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedUserAndDevice(t *testing.T, s *Store, deviceID, userID int64, location string) {
	t.Helper()
	if _, err := s.db.Exec(`INSERT INTO locations(name, wave_api_url, wind_api_url, latitude, longitude, timezone_name)
		VALUES (?, 'https://wave', 'https://wind', 32.4, 34.9, 'Asia/Jerusalem')`, location); err != nil {
		t.Fatalf("seed location: %v", err)
	}
	if _, err := s.db.Exec(`INSERT INTO users(user_id, location, wave_threshold_m, wind_threshold_knots, brightness_level, theme)
		VALUES (?, ?, 1.0, 10.0, 0.6, 'ocean')`, userID, location); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if _, err := s.db.Exec(`INSERT INTO devices(device_id, user_id, location) VALUES (?, ?, ?)`, deviceID, userID, location); err != nil {
		t.Fatalf("seed device: %v", err)
	}
}

func TestWriteLocationConditionsUpsert(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC().Truncate(time.Second)

	err := s.WriteLocationConditions(surf.LocationConditions{
		Location: "Hadera", WaveHeightM: 1.5, WavePeriodS: 8, WindSpeedMPS: 5, WindDirectionDeg: 180, LastUpdated: now,
	})
	if err != nil {
		t.Fatalf("first write: %v", err)
	}
	err = s.WriteLocationConditions(surf.LocationConditions{
		Location: "Hadera", WaveHeightM: 2.0, WavePeriodS: 9, WindSpeedMPS: 6, WindDirectionDeg: 200, LastUpdated: now,
	})
	if err != nil {
		t.Fatalf("second write (upsert): %v", err)
	}

	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM location_conditions WHERE location = 'Hadera'`).Scan(&count); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one row per location, got %d", count)
	}
}

func TestReadDeviceViewNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.ReadDeviceView(9999)
	if err != ErrDeviceNotFound {
		t.Fatalf("expected ErrDeviceNotFound, got %v", err)
	}
}

func TestReadDeviceViewMissingConditionsIsDataUnavailable(t *testing.T) {
	s := newTestStore(t)
	seedUserAndDevice(t, s, 4433, 6, "Hadera")

	view, err := s.ReadDeviceView(4433)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Conditions.DataAvailable {
		t.Fatal("expected data_available=false when no conditions row exists")
	}
	if view.Conditions.WaveHeightM != 0 {
		t.Errorf("expected zeroed wave_height_m, got %v", view.Conditions.WaveHeightM)
	}
}

func TestReadDeviceViewJoinsConditions(t *testing.T) {
	s := newTestStore(t)
	seedUserAndDevice(t, s, 4433, 6, "Hadera")
	now := time.Now().UTC().Truncate(time.Second)
	if err := s.WriteLocationConditions(surf.LocationConditions{
		Location: "Hadera", WaveHeightM: 1.5, WavePeriodS: 8, WindSpeedMPS: 5, WindDirectionDeg: 180, LastUpdated: now,
	}); err != nil {
		t.Fatalf("write conditions: %v", err)
	}

	view, err := s.ReadDeviceView(4433)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !view.Conditions.DataAvailable || view.Conditions.WaveHeightM != 1.5 {
		t.Errorf("unexpected conditions: %+v", view.Conditions)
	}
}

func TestLocationsInUseDistinct(t *testing.T) {
	s := newTestStore(t)
	seedUserAndDevice(t, s, 1, 1, "Hadera")
	seedUserAndDevice(t, s, 2, 2, "Hadera")

	inUse, err := s.LocationsInUse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(inUse) != 1 {
		t.Fatalf("expected one distinct location, got %v", inUse)
	}
	if _, ok := inUse["Hadera"]; !ok {
		t.Errorf("expected Hadera in set, got %v", inUse)
	}
}

func TestBatchUpdateDeviceLastPollSetsTime(t *testing.T) {
	s := newTestStore(t)
	seedUserAndDevice(t, s, 4433, 6, "Hadera")
	now := time.Now().UTC().Truncate(time.Second)

	if err := s.BatchUpdateDeviceLastPoll([]int64{4433}, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	view, err := s.ReadDeviceView(4433)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !view.Device.LastPollTime.Equal(now) {
		t.Errorf("expected last_poll_time=%v, got %v", now, view.Device.LastPollTime)
	}
}
