package registry

import surf "github.com/shahar42/surf-lamp-engine/pkg"

// CompiledLocations is the source-of-truth Location Registry (C4): it is
// not user-writable and not hot-reloaded. Changing a location means
// editing this table and redeploying; run cmd/locationcheck first to
// catch lat/lon typos.
var CompiledLocations = []surf.Location{
	{
		Name: "Hadera",
		WaveURLs: []string{
			"https://marine-api.open-meteo.com/v1/marine?latitude=32.4365&longitude=34.9196&hourly=wave_height,wave_period,wave_direction",
		},
		WindURLs: []string{
			"https://api.open-meteo.com/v1/forecast?latitude=32.4365&longitude=34.9196&hourly=wind_speed_10m,wind_direction_10m",
		},
		Latitude:     32.4365,
		Longitude:    34.9196,
		TimezoneName: "Asia/Jerusalem",
	},
	{
		Name: "Tel Aviv",
		WaveURLs: []string{
			"https://marine-api.open-meteo.com/v1/marine?latitude=32.0853&longitude=34.7818&hourly=wave_height,wave_period,wave_direction",
			"https://isramar.ocean.org.il/isramar2009/station/tel_aviv.json",
		},
		WindURLs: []string{
			"https://api.open-meteo.com/v1/forecast?latitude=32.0853&longitude=34.7818&hourly=wind_speed_10m,wind_direction_10m",
			"https://api.openweathermap.org/data/2.5/weather?lat=32.0853&lon=34.7818",
		},
		Latitude:     32.0853,
		Longitude:    34.7818,
		TimezoneName: "Asia/Jerusalem",
	},
	{
		Name: "Ashdod",
		WaveURLs: []string{
			"https://marine-api.open-meteo.com/v1/marine?latitude=31.8044&longitude=34.6553&hourly=wave_height,wave_period,wave_direction",
		},
		WindURLs: []string{
			"https://api.open-meteo.com/v1/forecast?latitude=31.8044&longitude=34.6553&hourly=wind_speed_10m,wind_direction_10m",
		},
		Latitude:     31.8044,
		Longitude:    34.6553,
		TimezoneName: "Asia/Jerusalem",
	},
}
