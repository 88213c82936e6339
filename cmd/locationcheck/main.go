// Command locationcheck is a deploy-time sanity check (C15): it reverse
// geocodes every compiled Registry location's {lat, lon} against
// Google's Geocoding API and flags any that Google can't resolve to a
// plausible address, catching a typo'd coordinate before it ships.
//
// Adapted from the teacher's cmd/test-rutos-gps/google_geolocation.go,
// which drives the same googlemaps.github.io/maps client for cell-tower
// geolocation; here the call is a reverse-geocode lookup against the
// Registry's static coordinates instead of a live cell/WiFi scan.
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"googlemaps.github.io/maps"

	"github.com/shahar42/surf-lamp-engine/pkg/registry"
)

var timeout = flag.Duration("timeout", 15*time.Second, "per-location geocode request timeout")

// maxDriftKM is how far a Registry-recorded coordinate may disagree with
// Google's reverse geocode before locationcheck flags it (spec.md §4.15).
const maxDriftKM = 5.0

func main() {
	flag.Parse()

	apiKey := os.Getenv("GOOGLE_MAPS_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "locationcheck: GOOGLE_MAPS_API_KEY not set, skipping geocode check")
		os.Exit(0)
	}

	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		fmt.Fprintf(os.Stderr, "locationcheck: failed to create Google Maps client: %v\n", err)
		os.Exit(1)
	}

	failures := 0
	for _, loc := range registry.CompiledLocations {
		addr, driftKM, err := reverseGeocode(client, loc.Latitude, loc.Longitude)
		if err != nil {
			fmt.Printf("FAIL  %-20s (%.4f, %.4f): %v\n", loc.Name, loc.Latitude, loc.Longitude, err)
			failures++
			continue
		}
		if driftKM > maxDriftKM {
			fmt.Printf("FAIL  %-20s (%.4f, %.4f) -> %s (%.2f km from recorded coordinate, exceeds %.1f km)\n",
				loc.Name, loc.Latitude, loc.Longitude, addr, driftKM, maxDriftKM)
			failures++
			continue
		}
		fmt.Printf("OK    %-20s (%.4f, %.4f) -> %s (%.2f km drift)\n", loc.Name, loc.Latitude, loc.Longitude, addr, driftKM)
	}

	if failures > 0 {
		fmt.Fprintf(os.Stderr, "locationcheck: %d of %d locations failed\n", failures, len(registry.CompiledLocations))
		os.Exit(1)
	}
}

// reverseGeocode resolves lat/lng against Google's Geocoding API and returns
// the formatted address alongside the great-circle distance (km) between
// the Registry's recorded coordinate and the geometry Google resolved it
// to, so the caller can flag a drifted entry rather than just a failed call.
func reverseGeocode(client *maps.Client, lat, lng float64) (addr string, driftKM float64, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	results, err := client.ReverseGeocode(ctx, &maps.GeocodingRequest{
		LatLng: &maps.LatLng{Lat: lat, Lng: lng},
	})
	if err != nil {
		return "", 0, fmt.Errorf("reverse geocode request failed: %w", err)
	}
	if len(results) == 0 {
		return "", 0, fmt.Errorf("no geocoding result for coordinates")
	}

	result := results[0]
	resolved := result.Geometry.Location
	return result.FormattedAddress, haversineKM(lat, lng, resolved.Lat, resolved.Lng), nil
}

// haversineKM returns the great-circle distance in kilometers between two
// lat/lng points.
func haversineKM(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadiusKM = 6371.0
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKM * c
}
