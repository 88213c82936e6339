// Package pkg holds the shared domain types for the surf-lamp ingestion and
// distribution engine: locations, devices, users, and the conditions record
// the scheduler produces and the device API serves.
package pkg

import "time"

// Location identifies a named surf spot with ordered upstream URLs for its
// two required data classes. It is compiled into the binary by the Registry
// and mirrored into the locations table at startup; nothing at runtime
// writes to it.
type Location struct {
	Name         string
	WaveURLs     []string
	WindURLs     []string
	Latitude     float64
	Longitude    float64
	TimezoneName string // IANA zone, e.g. "Asia/Jerusalem"
}

// LocationConditions is the single normalized row persisted per Location.
type LocationConditions struct {
	Location         string
	WaveHeightM      float64
	WavePeriodS      float64
	WindSpeedMPS     float64
	WindDirectionDeg int
	LastUpdated      time.Time
	DataAvailable    bool // false when no row has ever been written for this location
}

// User holds the alert-threshold and schedule preferences the core reads
// but never writes. Owned externally (dashboard/account system).
type User struct {
	UserID                int64
	Location              string
	WaveThresholdM        float64
	WaveThresholdMaxM     *float64
	WindThresholdKnots    float64
	WindThresholdMaxKnots *float64
	BrightnessLevel       float64
	Theme                 string
	OffHoursEnabled       bool
	OffHoursStart         TimeOfDay
	OffHoursEnd           TimeOfDay
	QuietHoursEnabled     bool
	QuietHoursStart       TimeOfDay
	QuietHoursEnd         TimeOfDay
}

// TimeOfDay is a wall-clock time within a single day, used for off-hours and
// quiet-hours windows that may wrap past midnight.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// Minutes returns the time of day as minutes since 00:00.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

// Device identifies one network-attached lamp. Devices own LastPollTime;
// the scheduler never writes it.
type Device struct {
	DeviceID     int64
	UserID       int64
	Location     string
	LastPollTime time.Time
}

// DeviceView is the single joined read the Device Read API needs per
// request: device, its owning user, and the location's current conditions.
type DeviceView struct {
	Device     Device
	User       User
	Conditions LocationConditions
}

// AdapterResult is the sum type a Provider Adapter returns: either a partial
// normalized record or a typed failure. Exactly one of Partial/Err is set.
type AdapterResult struct {
	Partial PartialConditions
	Err     *AdapterError
}

// PartialConditions is what a single upstream source can contribute; any
// field may be unset (nil) if the source doesn't carry it.
type PartialConditions struct {
	WaveHeightM      *float64
	WavePeriodS      *float64
	WindSpeedMPS     *float64
	WindDirectionDeg *int
}

// AdapterErrorKind enumerates why an adapter attempt failed.
type AdapterErrorKind string

const (
	ErrUnknownAdapter AdapterErrorKind = "unknown_adapter"
	ErrTimeout        AdapterErrorKind = "timeout"
	ErrNetworkError   AdapterErrorKind = "network_error"
	ErrHTTPStatus     AdapterErrorKind = "http_status"
	ErrRateLimited    AdapterErrorKind = "rate_limited"
	ErrDecodeError    AdapterErrorKind = "decode_error"
)

// AdapterError is the recoverable-at-the-job-level error taxonomy from
// spec.md §4.2/§7.
type AdapterError struct {
	Kind       AdapterErrorKind
	Reason     string
	StatusCode int // set when Kind == ErrHTTPStatus or ErrRateLimited
}

func (e *AdapterError) Error() string {
	return string(e.Kind) + ": " + e.Reason
}

// FieldClass distinguishes the two required data classes a Location's URL
// lists are organized by.
type FieldClass string

const (
	FieldClassWave FieldClass = "wave"
	FieldClassWind FieldClass = "wind"
)

// DeviceEnvelope is the exact JSON shape served by the Device Read API
// (spec.md §4.7). V2-only fields are pointers so the legacy route can omit
// them entirely.
type DeviceEnvelope struct {
	WaveHeightCM            int      `json:"wave_height_cm"`
	WavePeriodS             float64  `json:"wave_period_s"`
	WindSpeedMPS            int      `json:"wind_speed_mps"`
	WindDirectionDeg        int      `json:"wind_direction_deg"`
	WaveThresholdCM         int      `json:"wave_threshold_cm"`
	WindSpeedThresholdKnots int      `json:"wind_speed_threshold_knots"`
	QuietHoursActive        bool     `json:"quiet_hours_active"`
	OffHoursActive          bool     `json:"off_hours_active"`
	BrightnessMultiplier    float64  `json:"brightness_multiplier"`
	LEDTheme                string   `json:"led_theme"`
	LastUpdated             string   `json:"last_updated"`
	DataAvailable           bool     `json:"data_available"`
	Latitude                *float64 `json:"latitude,omitempty"`
	Longitude               *float64 `json:"longitude,omitempty"`
	TZOffset                *int     `json:"tz_offset,omitempty"`
}

// NeverAlertThreshold is the sentinel value the firmware's fixed
// `current >= threshold` rule treats as "never alert" — see spec.md §4.8
// and §9 ("Rate-limit shimming via 9999 sentinel").
const NeverAlertThreshold = 9999
