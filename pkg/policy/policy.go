// Package policy implements the pure, I/O-free functions that shape what a
// device sees: effective alert thresholds, off-hours/quiet-hours windows,
// and brightness (spec.md §4.8). Nothing here touches the network or the
// database.
package policy

import (
	"math"

	surf "github.com/shahar42/surf-lamp-engine/pkg"
)

const mpsToKnots = 1.94384

// EffectiveWaveThresholdCm implements the "range alert shim" (spec.md §4.8,
// §8 invariant 4): returns surf.NeverAlertThreshold (9999) when the
// [min,max] range is set and current exceeds max, and also when neither
// min nor max is set.
func EffectiveWaveThresholdCm(currentM float64, minM float64, maxM *float64) int {
	if maxM == nil {
		if minM == 0 {
			return surf.NeverAlertThreshold
		}
		return int(math.Round(minM * 100))
	}
	if currentM > *maxM {
		return surf.NeverAlertThreshold
	}
	// current <= max: whether current is below, at, or above min, the
	// effective threshold firmware compares against is min (spec.md §4.8:
	// "if min_m <= current_m <= max_m return round(min_m*100)... if
	// current_m < min_m return round(min_m*100)").
	return int(math.Round(minM * 100))
}

// EffectiveWindThresholdKnots is the wind analogue of
// EffectiveWaveThresholdCm, converting m/s to knots where the caller
// supplies a current value in m/s (1 mps = 1.94384 knots).
func EffectiveWindThresholdKnots(currentMPS float64, minKnots float64, maxKnots *float64) int {
	currentKnots := currentMPS * mpsToKnots
	if maxKnots == nil {
		if minKnots == 0 {
			return surf.NeverAlertThreshold
		}
		return int(math.Round(minKnots))
	}
	if currentKnots > *maxKnots {
		return surf.NeverAlertThreshold
	}
	return int(math.Round(minKnots))
}

// inWindow reports whether minutesNow falls in [start, end) of a day,
// supporting windows that wrap past midnight (start > end).
func inWindow(minutesNow, startMinutes, endMinutes int) bool {
	if startMinutes == endMinutes {
		return false
	}
	if startMinutes < endMinutes {
		return minutesNow >= startMinutes && minutesNow < endMinutes
	}
	// Wraps past midnight, e.g. 22:00-06:00.
	return minutesNow >= startMinutes || minutesNow < endMinutes
}

// OffHoursActive reports whether nowLocal falls inside the user's
// off-hours window (spec.md §4.8).
func OffHoursActive(nowLocal surf.TimeOfDay, user surf.User) bool {
	if !user.OffHoursEnabled {
		return false
	}
	return inWindow(nowLocal.Minutes(), user.OffHoursStart.Minutes(), user.OffHoursEnd.Minutes())
}

// QuietHoursActive reports whether nowLocal falls inside the user's
// quiet-hours window, independent of off-hours (spec.md §4.8, §8
// invariant 5 — both may be true simultaneously).
func QuietHoursActive(nowLocal surf.TimeOfDay, user surf.User) bool {
	if !user.QuietHoursEnabled {
		return false
	}
	return inWindow(nowLocal.Minutes(), user.QuietHoursStart.Minutes(), user.QuietHoursEnd.Minutes())
}

// BrightnessMultiplier clamps user.BrightnessLevel to [0, 1], defaulting to
// 0.6 when unset (spec.md §4.8).
func BrightnessMultiplier(user surf.User) float64 {
	if user.BrightnessLevel == 0 {
		return 0.6
	}
	if user.BrightnessLevel < 0 {
		return 0
	}
	if user.BrightnessLevel > 1 {
		return 1
	}
	return user.BrightnessLevel
}
