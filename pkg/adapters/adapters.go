// Package adapters translates raw upstream JSON bodies into the partial
// normalized records the Normalizer merges.
//
// The hourly-array slicing rule (pick the entry for the current UTC hour,
// fall back to index 0) is grounded on the two Open-Meteo-shaped examples
// in the pack: rubiojr-ergs's openmeteo datasource and cailurus-Hearth's
// weather widget. The flat "current" decode shape follows the
// OpenWeatherMap style referenced by the hamclock-backend sibling example.
package adapters

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	surf "github.com/shahar42/surf-lamp-engine/pkg"
)

// Family names one of the registered adapter families from spec.md §4.1.
type Family string

const (
	FamilyMarineHourly  Family = "marine_hourly_array"
	FamilyWeatherHourly Family = "weather_hourly_array"
	FamilyOWMCurrent    Family = "owm_current"
	FamilyIsramar       Family = "isramar_regional"
)

// Adapter decodes one upstream provider's raw JSON body into a partial
// conditions record. now is the scheduler's wall clock, used to select the
// current-hour slice out of hourly arrays.
type Adapter func(raw []byte, now time.Time) surf.AdapterResult

// hostTable maps upstream hostnames to the adapter family that decodes
// them. Selection by hostname, per spec.md §4.1 ("Selection is by matching
// the upstream hostname to a compiled table").
var hostTable = map[string]Family{
	"marine-api.open-meteo.com": FamilyMarineHourly,
	"api.open-meteo.com":        FamilyWeatherHourly,
	"api.openweathermap.org":    FamilyOWMCurrent,
	"isramar.ocean.org.il":      FamilyIsramar,
}

// ForURL resolves the adapter family for a given upstream URL, and returns
// an unknown_adapter *surf.AdapterError when the hostname isn't in the
// compiled table.
func ForURL(rawURL string) (Adapter, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &surf.AdapterError{Kind: surf.ErrDecodeError, Reason: fmt.Sprintf("invalid url: %v", err)}
	}
	family, ok := hostTable[u.Hostname()]
	if !ok {
		return nil, &surf.AdapterError{Kind: surf.ErrUnknownAdapter, Reason: "no adapter registered for host " + u.Hostname()}
	}
	return byFamily(family), nil
}

func byFamily(f Family) Adapter {
	switch f {
	case FamilyMarineHourly:
		return DecodeMarineHourly
	case FamilyWeatherHourly:
		return DecodeWeatherHourly
	case FamilyOWMCurrent:
		return DecodeOWMCurrent
	case FamilyIsramar:
		return DecodeIsramarRegional
	default:
		return func([]byte, time.Time) surf.AdapterResult {
			return surf.AdapterResult{Err: &surf.AdapterError{Kind: surf.ErrUnknownAdapter, Reason: string(f)}}
		}
	}
}

// currentHourIndex picks the hourly-array slot whose timestamp matches
// now's UTC hour, falling back to index 0 when no timestamp matches. The
// fallback is silent: no warning is logged.
func currentHourIndex(timestamps []string, now time.Time) int {
	target := now.UTC().Format("2006-01-02T15:00")
	for i, ts := range timestamps {
		if strings.HasPrefix(ts, target) {
			return i
		}
	}
	return 0
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// marineHourlyBody is the Open-Meteo marine API hourly-array shape.
type marineHourlyBody struct {
	Hourly struct {
		Time          []string  `json:"time"`
		WaveHeight    []float64 `json:"wave_height"`
		WavePeriod    []float64 `json:"wave_period"`
		WaveDirection []float64 `json:"wave_direction"`
	} `json:"hourly"`
}

// DecodeMarineHourly implements the "Marine hourly array" family
// (spec.md §4.1): pick the array entry whose timestamp matches the
// current UTC hour.
func DecodeMarineHourly(raw []byte, now time.Time) surf.AdapterResult {
	var body marineHourlyBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return surf.AdapterResult{Err: &surf.AdapterError{Kind: surf.ErrDecodeError, Reason: err.Error()}}
	}
	idx := currentHourIndex(body.Hourly.Time, now)

	var partial surf.PartialConditions
	if idx < len(body.Hourly.WaveHeight) {
		v := round2(body.Hourly.WaveHeight[idx])
		partial.WaveHeightM = &v
	}
	if idx < len(body.Hourly.WavePeriod) {
		v := round2(body.Hourly.WavePeriod[idx])
		partial.WavePeriodS = &v
	}
	return surf.AdapterResult{Partial: partial}
}

// weatherHourlyBody is the Open-Meteo weather API hourly-array shape used
// for the wind source.
type weatherHourlyBody struct {
	Hourly struct {
		Time            []string  `json:"time"`
		WindSpeed10m    []float64 `json:"wind_speed_10m"`
		WindDirection10 []float64 `json:"wind_direction_10m"`
	} `json:"hourly"`
}

// DecodeWeatherHourly implements the "Weather hourly array" family
// (spec.md §4.1), same slicing rule as DecodeMarineHourly.
func DecodeWeatherHourly(raw []byte, now time.Time) surf.AdapterResult {
	var body weatherHourlyBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return surf.AdapterResult{Err: &surf.AdapterError{Kind: surf.ErrDecodeError, Reason: err.Error()}}
	}
	idx := currentHourIndex(body.Hourly.Time, now)

	var partial surf.PartialConditions
	if idx < len(body.Hourly.WindSpeed10m) {
		v := round2(body.Hourly.WindSpeed10m[idx])
		partial.WindSpeedMPS = &v
	}
	if idx < len(body.Hourly.WindDirection10) {
		d := int(math.Round(body.Hourly.WindDirection10[idx])) % 360
		if d < 0 {
			d += 360
		}
		partial.WindDirectionDeg = &d
	}
	return surf.AdapterResult{Partial: partial}
}

// owmCurrentBody is the OpenWeatherMap-style flat "current" shape: wind
// fields live under a "wind" object at the root.
type owmCurrentBody struct {
	Wind struct {
		Speed float64 `json:"speed"` // m/s when units=metric, as this deployment always requests
		Deg   float64 `json:"deg"`
	} `json:"wind"`
}

// DecodeOWMCurrent implements the "OpenWeatherMap current" family
// (spec.md §4.1): flat-field extraction, wind already in m/s.
func DecodeOWMCurrent(raw []byte, _ time.Time) surf.AdapterResult {
	var body owmCurrentBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return surf.AdapterResult{Err: &surf.AdapterError{Kind: surf.ErrDecodeError, Reason: err.Error()}}
	}
	speed := round2(body.Wind.Speed)
	deg := int(math.Round(body.Wind.Deg)) % 360
	if deg < 0 {
		deg += 360
	}
	return surf.AdapterResult{Partial: surf.PartialConditions{
		WindSpeedMPS:     &speed,
		WindDirectionDeg: &deg,
	}}
}

// isramarRegionalBody is the single-sample regional feed shape: one JSON
// document with scalar wave fields, no array/time dimension.
type isramarRegionalBody struct {
	WaveHeightM float64 `json:"wave_height_m"`
	WavePeriodS float64 `json:"wave_period_s"`
}

// DecodeIsramarRegional implements the "Isramar-style" regional feed
// family (spec.md §4.1).
func DecodeIsramarRegional(raw []byte, _ time.Time) surf.AdapterResult {
	var body isramarRegionalBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return surf.AdapterResult{Err: &surf.AdapterError{Kind: surf.ErrDecodeError, Reason: err.Error()}}
	}
	h := round2(body.WaveHeightM)
	p := round2(body.WavePeriodS)
	return surf.AdapterResult{Partial: surf.PartialConditions{
		WaveHeightM: &h,
		WavePeriodS: &p,
	}}
}
