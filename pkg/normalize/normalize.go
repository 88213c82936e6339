// Package normalize merges prioritized adapter partials into the single
// LocationConditions row the Scheduler writes per cycle.
package normalize

import (
	"time"

	surf "github.com/shahar42/surf-lamp-engine/pkg"
)

// Merge combines an ordered (priority-first) list of partial records into
// one LocationConditions for location, timestamped at now.
//
// Rules (spec.md §4.3):
//   - Required fields are wave_height_m and wind_speed_mps: if either is
//     absent from every partial, ok is false and ours is not written —
//     callers must keep the previous row intact.
//   - For each field, the first partial (by priority) that supplies a
//     non-nil value wins.
//   - wind_direction_deg defaults to 0 when no source supplies a
//     direction (as with a calm, zero-speed reading); a supplied value is
//     kept whatever the speed, folded into [0, 359].
//   - The row's timestamp is now, never an upstream timestamp.
func Merge(location string, partials []surf.PartialConditions, now time.Time) (surf.LocationConditions, bool) {
	var waveHeight, wavePeriod, windSpeed *float64
	var windDirection *int

	for _, p := range partials {
		if waveHeight == nil && p.WaveHeightM != nil {
			waveHeight = p.WaveHeightM
		}
		if wavePeriod == nil && p.WavePeriodS != nil {
			wavePeriod = p.WavePeriodS
		}
		if windSpeed == nil && p.WindSpeedMPS != nil {
			windSpeed = p.WindSpeedMPS
		}
		if windDirection == nil && p.WindDirectionDeg != nil {
			windDirection = p.WindDirectionDeg
		}
	}

	if waveHeight == nil || windSpeed == nil {
		return surf.LocationConditions{}, false
	}

	direction := 0
	if windDirection != nil {
		direction = foldDirection(*windDirection)
	}

	period := 0.0
	if wavePeriod != nil {
		period = *wavePeriod
	}

	return surf.LocationConditions{
		Location:         location,
		WaveHeightM:      *waveHeight,
		WavePeriodS:      period,
		WindSpeedMPS:     *windSpeed,
		WindDirectionDeg: direction,
		LastUpdated:      now.UTC(),
		DataAvailable:    true,
	}, true
}

// foldDirection folds a raw degrees value into [0, 359]; 360 folds to 0
// (spec.md §8 invariant 10).
func foldDirection(deg int) int {
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	return deg
}
