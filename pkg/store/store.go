// Package store implements the Repository (spec.md §4.5) on top of SQLite.
//
// The schema-init-in-one-string, sql.Open("sqlite3", path) pattern is
// grounded on the teacher's only real database/sql usage site,
// cmd/test-rutos-gps/local_cell_database.go — the rest of the teacher
// lists mattn/go-sqlite3 in go.mod but keeps its actual telemetry store
// in-memory (pkg/telem). Here the dependency gets its real home: the
// locations/location_conditions/users/devices tables this engine persists.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	surf "github.com/shahar42/surf-lamp-engine/pkg"
)

const schema = `
CREATE TABLE IF NOT EXISTS locations (
    name                TEXT PRIMARY KEY,
    wave_api_url        TEXT NOT NULL,
    wind_api_url        TEXT NOT NULL,
    latitude            REAL NOT NULL,
    longitude           REAL NOT NULL,
    timezone_name       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS location_conditions (
    location            TEXT PRIMARY KEY REFERENCES locations(name),
    wave_height_m       REAL NOT NULL,
    wave_period_s       REAL NOT NULL,
    wind_speed_mps       REAL NOT NULL,
    wind_direction_deg   INTEGER NOT NULL,
    last_updated        TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
    user_id                  INTEGER PRIMARY KEY,
    location                 TEXT NOT NULL,
    wave_threshold_m         REAL NOT NULL DEFAULT 0,
    wave_threshold_max_m     REAL,
    wind_threshold_knots     REAL NOT NULL DEFAULT 0,
    wind_threshold_max_knots REAL,
    brightness_level         REAL NOT NULL DEFAULT 0.6,
    theme                    TEXT NOT NULL DEFAULT 'default',
    off_hours_enabled        BOOLEAN NOT NULL DEFAULT 0,
    off_hours_start          TEXT NOT NULL DEFAULT '22:00',
    off_hours_end            TEXT NOT NULL DEFAULT '06:00',
    quiet_hours_enabled      BOOLEAN NOT NULL DEFAULT 0,
    quiet_hours_start        TEXT NOT NULL DEFAULT '21:00',
    quiet_hours_end          TEXT NOT NULL DEFAULT '07:00'
);

CREATE TABLE IF NOT EXISTS devices (
    device_id       INTEGER PRIMARY KEY,
    user_id         INTEGER NOT NULL REFERENCES users(user_id),
    location        TEXT NOT NULL REFERENCES locations(name),
    last_poll_time  TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_devices_location ON devices(location);
`

// ErrDeviceNotFound is returned by ReadDeviceView when the device, its
// user, or its location's join is empty (spec.md §4.5, §7).
var ErrDeviceNotFound = fmt.Errorf("device not found")

// Store is the SQLite-backed Repository.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the SQLite database at dataSourceName
// and ensures the schema exists.
func Open(dataSourceName string) (*Store, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// SeedLocations upserts the compiled Registry into the locations table
// ("Registry seed", SPEC_FULL.md §3) — a one-time startup operation, never
// called from the request or scheduler path.
func (s *Store) SeedLocations(locations []surf.Location) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO locations(name, wave_api_url, wind_api_url, latitude, longitude, timezone_name)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			wave_api_url=excluded.wave_api_url,
			wind_api_url=excluded.wind_api_url,
			latitude=excluded.latitude,
			longitude=excluded.longitude,
			timezone_name=excluded.timezone_name
	`)
	if err != nil {
		return fmt.Errorf("prepare seed statement: %w", err)
	}
	defer stmt.Close()

	for _, loc := range locations {
		wave := ""
		if len(loc.WaveURLs) > 0 {
			wave = loc.WaveURLs[0]
		}
		wind := ""
		if len(loc.WindURLs) > 0 {
			wind = loc.WindURLs[0]
		}
		if _, err := stmt.Exec(loc.Name, wave, wind, loc.Latitude, loc.Longitude, loc.TimezoneName); err != nil {
			return fmt.Errorf("seed location %q: %w", loc.Name, err)
		}
	}

	return tx.Commit()
}

// LocationsInUse returns the distinct device.location values (spec.md §4.5).
func (s *Store) LocationsInUse() (map[string]struct{}, error) {
	rows, err := s.db.Query(`SELECT DISTINCT location FROM devices`)
	if err != nil {
		return nil, fmt.Errorf("query locations in use: %w", err)
	}
	defer rows.Close()

	inUse := make(map[string]struct{})
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		inUse[name] = struct{}{}
	}
	return inUse, rows.Err()
}

// DeviceRef is the minimal device identity devicesAtLocation returns.
type DeviceRef struct {
	DeviceID int64
	UserID   int64
}

// DevicesAtLocation returns every device at location (spec.md §4.5).
func (s *Store) DevicesAtLocation(location string) ([]DeviceRef, error) {
	rows, err := s.db.Query(`SELECT device_id, user_id FROM devices WHERE location = ?`, location)
	if err != nil {
		return nil, fmt.Errorf("query devices at location: %w", err)
	}
	defer rows.Close()

	var out []DeviceRef
	for rows.Next() {
		var ref DeviceRef
		if err := rows.Scan(&ref.DeviceID, &ref.UserID); err != nil {
			return nil, fmt.Errorf("scan device ref: %w", err)
		}
		out = append(out, ref)
	}
	return out, rows.Err()
}

// WriteLocationConditions upserts exactly one row per location (spec.md
// §4.5, §8 invariant 1). The Scheduler is the only caller.
func (s *Store) WriteLocationConditions(conditions surf.LocationConditions) error {
	_, err := s.db.Exec(`
		INSERT INTO location_conditions(location, wave_height_m, wave_period_s, wind_speed_mps, wind_direction_deg, last_updated)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(location) DO UPDATE SET
			wave_height_m=excluded.wave_height_m,
			wave_period_s=excluded.wave_period_s,
			wind_speed_mps=excluded.wind_speed_mps,
			wind_direction_deg=excluded.wind_direction_deg,
			last_updated=excluded.last_updated
	`, conditions.Location, conditions.WaveHeightM, conditions.WavePeriodS, conditions.WindSpeedMPS, conditions.WindDirectionDeg, conditions.LastUpdated)
	if err != nil {
		return fmt.Errorf("write location conditions for %q: %w", conditions.Location, err)
	}
	return nil
}

// BatchUpdateDeviceLastPoll updates last_poll_time for the given device
// IDs. NOT called by the Scheduler — reserved for the Device Read API on
// successful delivery (spec.md §4.5, §9 Open Question resolution).
func (s *Store) BatchUpdateDeviceLastPoll(ids []int64, t time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin last-poll tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`UPDATE devices SET last_poll_time = ? WHERE device_id = ?`)
	if err != nil {
		return fmt.Errorf("prepare last-poll statement: %w", err)
	}
	defer stmt.Close()

	for _, id := range ids {
		if _, err := stmt.Exec(t, id); err != nil {
			return fmt.Errorf("update last_poll_time for device %d: %w", id, err)
		}
	}
	return tx.Commit()
}

// ReadDeviceView performs the single join the Device Read API needs:
// device, its user, and its location's current conditions. Returns
// ErrDeviceNotFound if the device (or its user/location join) is empty.
// A missing location_conditions row is NOT an error: it yields
// DataAvailable=false with zeroed numeric fields (spec.md §4.5, §7).
func (s *Store) ReadDeviceView(deviceID int64) (surf.DeviceView, error) {
	var view surf.DeviceView
	var lastPoll sql.NullTime
	var offStart, offEnd, quietStart, quietEnd string
	var waveMaxM, windMaxKnots sql.NullFloat64

	row := s.db.QueryRow(`
		SELECT
			d.device_id, d.user_id, d.location, d.last_poll_time,
			u.wave_threshold_m, u.wave_threshold_max_m,
			u.wind_threshold_knots, u.wind_threshold_max_knots,
			u.brightness_level, u.theme,
			u.off_hours_enabled, u.off_hours_start, u.off_hours_end,
			u.quiet_hours_enabled, u.quiet_hours_start, u.quiet_hours_end
		FROM devices d
		JOIN users u ON u.user_id = d.user_id
		JOIN locations l ON l.name = d.location
		WHERE d.device_id = ?
	`, deviceID)

	err := row.Scan(
		&view.Device.DeviceID, &view.Device.UserID, &view.Device.Location, &lastPoll,
		&view.User.WaveThresholdM, &waveMaxM,
		&view.User.WindThresholdKnots, &windMaxKnots,
		&view.User.BrightnessLevel, &view.User.Theme,
		&view.User.OffHoursEnabled, &offStart, &offEnd,
		&view.User.QuietHoursEnabled, &quietStart, &quietEnd,
	)
	if err == sql.ErrNoRows {
		return surf.DeviceView{}, ErrDeviceNotFound
	}
	if err != nil {
		return surf.DeviceView{}, fmt.Errorf("read device view for %d: %w", deviceID, err)
	}

	view.User.UserID = view.Device.UserID
	view.User.Location = view.Device.Location
	if lastPoll.Valid {
		view.Device.LastPollTime = lastPoll.Time
	}
	if waveMaxM.Valid {
		view.User.WaveThresholdMaxM = &waveMaxM.Float64
	}
	if windMaxKnots.Valid {
		view.User.WindThresholdMaxKnots = &windMaxKnots.Float64
	}
	view.User.OffHoursStart = parseTimeOfDay(offStart)
	view.User.OffHoursEnd = parseTimeOfDay(offEnd)
	view.User.QuietHoursStart = parseTimeOfDay(quietStart)
	view.User.QuietHoursEnd = parseTimeOfDay(quietEnd)

	conditions, err := s.readConditions(view.Device.Location)
	if err != nil {
		return surf.DeviceView{}, fmt.Errorf("read conditions for %q: %w", view.Device.Location, err)
	}
	view.Conditions = conditions

	return view, nil
}

func (s *Store) readConditions(location string) (surf.LocationConditions, error) {
	row := s.db.QueryRow(`
		SELECT wave_height_m, wave_period_s, wind_speed_mps, wind_direction_deg, last_updated
		FROM location_conditions WHERE location = ?
	`, location)

	var c surf.LocationConditions
	c.Location = location
	err := row.Scan(&c.WaveHeightM, &c.WavePeriodS, &c.WindSpeedMPS, &c.WindDirectionDeg, &c.LastUpdated)
	if err == sql.ErrNoRows {
		return surf.LocationConditions{Location: location, DataAvailable: false}, nil
	}
	if err != nil {
		return surf.LocationConditions{}, err
	}
	c.DataAvailable = true
	return c, nil
}

// parseTimeOfDay parses an "HH:MM" string; malformed values (spec.md §7
// PolicyInvalid) fall back to midnight rather than failing the whole read.
func parseTimeOfDay(s string) surf.TimeOfDay {
	var hour, minute int
	if _, err := fmt.Sscanf(s, "%d:%d", &hour, &minute); err != nil {
		return surf.TimeOfDay{}
	}
	return surf.TimeOfDay{Hour: hour, Minute: minute}
}
