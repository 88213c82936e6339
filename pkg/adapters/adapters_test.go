package adapters

import (
	"testing"
	"time"
)

func TestDecodeMarineHourlyPicksCurrentHour(t *testing.T) {
	now := time.Date(2026, 7, 30, 14, 0, 0, 0, time.UTC)
	body := []byte(`{
		"hourly": {
			"time": ["2026-07-30T13:00", "2026-07-30T14:00", "2026-07-30T15:00"],
			"wave_height": [1.2, 1.503, 1.8],
			"wave_period": [7.0, 8.004, 9.0]
		}
	}`)

	result := DecodeMarineHourly(body, now)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if result.Partial.WaveHeightM == nil || *result.Partial.WaveHeightM != 1.50 {
		t.Errorf("expected wave_height_m=1.50, got %v", result.Partial.WaveHeightM)
	}
	if result.Partial.WavePeriodS == nil || *result.Partial.WavePeriodS != 8.0 {
		t.Errorf("expected wave_period_s=8.0, got %v", result.Partial.WavePeriodS)
	}
}

func TestDecodeMarineHourlyFallsBackToIndexZero(t *testing.T) {
	now := time.Date(2026, 7, 30, 23, 0, 0, 0, time.UTC)
	body := []byte(`{
		"hourly": {
			"time": ["2026-07-30T00:00"],
			"wave_height": [0.9],
			"wave_period": [6.0]
		}
	}`)

	result := DecodeMarineHourly(body, now)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if result.Partial.WaveHeightM == nil || *result.Partial.WaveHeightM != 0.9 {
		t.Errorf("expected fallback to index 0 (0.9), got %v", result.Partial.WaveHeightM)
	}
}

func TestDecodeWeatherHourlyFoldsDirectionTo360(t *testing.T) {
	now := time.Date(2026, 7, 30, 10, 0, 0, 0, time.UTC)
	body := []byte(`{
		"hourly": {
			"time": ["2026-07-30T10:00"],
			"wind_speed_10m": [5.0],
			"wind_direction_10m": [360]
		}
	}`)

	result := DecodeWeatherHourly(body, now)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if result.Partial.WindDirectionDeg == nil || *result.Partial.WindDirectionDeg != 0 {
		t.Errorf("expected wind_direction_deg folded to 0, got %v", result.Partial.WindDirectionDeg)
	}
}

func TestDecodeOWMCurrent(t *testing.T) {
	body := []byte(`{"wind": {"speed": 4.123, "deg": 90}}`)
	result := DecodeOWMCurrent(body, time.Now())
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if result.Partial.WindSpeedMPS == nil || *result.Partial.WindSpeedMPS != 4.12 {
		t.Errorf("expected wind_speed_mps=4.12, got %v", result.Partial.WindSpeedMPS)
	}
	if result.Partial.WindDirectionDeg == nil || *result.Partial.WindDirectionDeg != 90 {
		t.Errorf("expected wind_direction_deg=90, got %v", result.Partial.WindDirectionDeg)
	}
}

func TestDecodeIsramarRegional(t *testing.T) {
	body := []byte(`{"wave_height_m": 1.005, "wave_period_s": 7.991}`)
	result := DecodeIsramarRegional(body, time.Now())
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	// 1.005 has no exact float64 form (it is stored as 1.00499999...), so
	// two-decimal rounding yields 1.00, not 1.01.
	if result.Partial.WaveHeightM == nil || *result.Partial.WaveHeightM != 1.00 {
		t.Errorf("expected wave_height_m rounded to 1.00, got %v", result.Partial.WaveHeightM)
	}
}

func TestDecodeMarineHourlyDecodeError(t *testing.T) {
	result := DecodeMarineHourly([]byte(`not json`), time.Now())
	if result.Err == nil {
		t.Fatal("expected decode error")
	}
}

func TestForURLUnknownHost(t *testing.T) {
	_, err := ForURL("https://unknown.example.com/v1/forecast")
	if err == nil {
		t.Fatal("expected unknown_adapter error")
	}
}

func TestForURLKnownHost(t *testing.T) {
	adapter, err := ForURL("https://marine-api.open-meteo.com/v1/marine?latitude=32")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if adapter == nil {
		t.Fatal("expected non-nil adapter")
	}
}
