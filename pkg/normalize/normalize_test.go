package normalize

import (
	"testing"
	"time"

	surf "github.com/shahar42/surf-lamp-engine/pkg"
)

func f(v float64) *float64 { return &v }
func d(v int) *int         { return &v }

func TestMergeRequiresWaveHeightAndWindSpeed(t *testing.T) {
	now := time.Now()
	_, ok := Merge("Hadera", []surf.PartialConditions{
		{WaveHeightM: f(1.5)}, // no wind speed anywhere
	}, now)
	if ok {
		t.Fatal("expected no write when wind_speed_mps missing from every source")
	}
}

func TestMergeFirstPrioritySourceWins(t *testing.T) {
	now := time.Date(2026, 7, 30, 14, 0, 0, 0, time.UTC)
	partials := []surf.PartialConditions{
		{WaveHeightM: f(1.5), WavePeriodS: f(8.0)},
		{WindSpeedMPS: f(5.0), WindDirectionDeg: d(180)},
		{WaveHeightM: f(9.9)}, // lower priority, should be ignored
	}
	conditions, ok := Merge("Hadera", partials, now)
	if !ok {
		t.Fatal("expected a write")
	}
	if conditions.WaveHeightM != 1.5 {
		t.Errorf("expected wave_height_m=1.5 from highest-priority source, got %v", conditions.WaveHeightM)
	}
	if conditions.WindSpeedMPS != 5.0 {
		t.Errorf("expected wind_speed_mps=5.0, got %v", conditions.WindSpeedMPS)
	}
	if conditions.WindDirectionDeg != 180 {
		t.Errorf("expected wind_direction_deg=180, got %v", conditions.WindDirectionDeg)
	}
	if !conditions.LastUpdated.Equal(now) {
		t.Errorf("expected last_updated to be scheduler's now, got %v", conditions.LastUpdated)
	}
}

func TestMergeDefaultsWindDirectionWhenZeroSpeed(t *testing.T) {
	now := time.Now()
	conditions, ok := Merge("Hadera", []surf.PartialConditions{
		{WaveHeightM: f(1.0), WindSpeedMPS: f(0)},
	}, now)
	if !ok {
		t.Fatal("expected a write")
	}
	if conditions.WindDirectionDeg != 0 {
		t.Errorf("expected wind_direction_deg default 0, got %v", conditions.WindDirectionDeg)
	}
}

func TestMergeFoldsDirection360To0(t *testing.T) {
	now := time.Now()
	conditions, ok := Merge("Hadera", []surf.PartialConditions{
		{WaveHeightM: f(1.0), WindSpeedMPS: f(3.0), WindDirectionDeg: d(360)},
	}, now)
	if !ok {
		t.Fatal("expected a write")
	}
	if conditions.WindDirectionDeg != 0 {
		t.Errorf("expected 360 folded to 0, got %v", conditions.WindDirectionDeg)
	}
}

func TestMergeMissingWaveHeightNoWrite(t *testing.T) {
	now := time.Now()
	_, ok := Merge("Hadera", []surf.PartialConditions{
		{WindSpeedMPS: f(4.0)},
	}, now)
	if ok {
		t.Fatal("expected no write when wave_height_m missing from every source")
	}
}
