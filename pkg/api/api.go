// Package api implements the Device Read API (C7) and the Status
// Endpoint (C16): the only two HTTP surfaces lamp firmware ever talks to.
//
// The http.ServeMux + Server{Start,Stop} shape follows the teacher's
// pkg/health.Server; the handlers themselves implement an entirely
// different contract (device envelope shaping instead of daemon health).
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	surf "github.com/shahar42/surf-lamp-engine/pkg"
	"github.com/shahar42/surf-lamp-engine/pkg/logx"
	"github.com/shahar42/surf-lamp-engine/pkg/policy"
	"github.com/shahar42/surf-lamp-engine/pkg/store"
)

// Repository is the subset of pkg/store.Store the API needs.
type Repository interface {
	ReadDeviceView(deviceID int64) (surf.DeviceView, error)
	BatchUpdateDeviceLastPoll(ids []int64, t time.Time) error
}

// Registry is the subset of pkg/registry.Registry the API needs, to
// resolve a device's location timezone for the v2 tz_offset field.
type Registry interface {
	Lookup(name string) (surf.Location, bool)
}

// Metrics is the observability hook the API reports device-read latency
// through.
type Metrics interface {
	ObserveDeviceReadLatency(d time.Duration)
}

// Server serves the device-facing HTTP endpoints.
type Server struct {
	repo     Repository
	registry Registry
	metrics  Metrics
	logger   *logx.Logger
	version  string

	httpServer *http.Server
}

// New builds a Server. version is reported by the status endpoint.
func New(addr string, repo Repository, registry Registry, metrics Metrics, logger *logx.Logger, version string) *Server {
	s := &Server{repo: repo, registry: registry, metrics: metrics, logger: logger, version: version}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/arduino/status", s.statusHandler)
	mux.HandleFunc("/api/arduino/v2/", s.deviceDataHandlerV2)
	mux.HandleFunc("/api/arduino/", s.deviceDataHandlerLegacy)

	s.httpServer = &http.Server{Addr: addr, Handler: mux}
	return s
}

// Start begins serving and blocks until the listener stops. Call from a
// goroutine; use Shutdown for cooperative stop.
func (s *Server) Start() error {
	s.logger.Info("device api listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown cooperatively stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// statusHandler implements C16: always 200 while the process is up; does
// not touch the Repository.
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": s.version})
}

func (s *Server) deviceDataHandlerLegacy(w http.ResponseWriter, r *http.Request) {
	s.handleDeviceData(w, r, "/api/arduino/", false)
}

func (s *Server) deviceDataHandlerV2(w http.ResponseWriter, r *http.Request) {
	s.handleDeviceData(w, r, "/api/arduino/v2/", true)
}

// handleDeviceData implements spec.md §4.7's processing steps for both
// routes; v2 adds latitude/longitude/tz_offset to the envelope.
func (s *Server) handleDeviceData(w http.ResponseWriter, r *http.Request, prefix string, v2 bool) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveDeviceReadLatency(time.Since(start))
		}
	}()

	w.Header().Set("Date", time.Now().UTC().Format(http.TimeFormat))

	deviceID, ok := parseDeviceID(r.URL.Path, prefix)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "device not found"})
		return
	}

	view, err := s.repo.ReadDeviceView(deviceID)
	if err != nil {
		if err == store.ErrDeviceNotFound {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "device not found"})
			return
		}
		s.logger.Error("failed to read device view", "device_id", deviceID, "error", err)
		writeJSON(w, http.StatusOK, surf.DeviceEnvelope{DataAvailable: false})
		return
	}

	envelope := s.composeEnvelope(view, v2)
	writeJSON(w, http.StatusOK, envelope)

	// Best-effort last-poll update; failure does not fail the response
	// (spec.md §4.7 step 5).
	if err := s.repo.BatchUpdateDeviceLastPoll([]int64{deviceID}, time.Now().UTC()); err != nil {
		s.logger.Warn("failed to update device last_poll_time", "device_id", deviceID, "error", err)
	}
}

func (s *Server) composeEnvelope(view surf.DeviceView, v2 bool) surf.DeviceEnvelope {
	nowLocal, tzOffsetHours := s.localTime(view.Device.Location)

	envelope := surf.DeviceEnvelope{
		WaveHeightCM:            int(round(view.Conditions.WaveHeightM * 100)),
		WavePeriodS:             view.Conditions.WavePeriodS,
		WindSpeedMPS:            int(round(view.Conditions.WindSpeedMPS)),
		WindDirectionDeg:        view.Conditions.WindDirectionDeg,
		WaveThresholdCM:         policy.EffectiveWaveThresholdCm(view.Conditions.WaveHeightM, view.User.WaveThresholdM, view.User.WaveThresholdMaxM),
		WindSpeedThresholdKnots: policy.EffectiveWindThresholdKnots(view.Conditions.WindSpeedMPS, view.User.WindThresholdKnots, view.User.WindThresholdMaxKnots),
		QuietHoursActive:        policy.QuietHoursActive(nowLocal, view.User),
		OffHoursActive:          policy.OffHoursActive(nowLocal, view.User),
		BrightnessMultiplier:    policy.BrightnessMultiplier(view.User),
		LEDTheme:                view.User.Theme,
		DataAvailable:           view.Conditions.DataAvailable,
	}
	if view.Conditions.DataAvailable {
		envelope.LastUpdated = view.Conditions.LastUpdated.UTC().Format(time.RFC3339)
	}

	if v2 {
		if loc, ok := s.registry.Lookup(view.Device.Location); ok {
			lat, lon := loc.Latitude, loc.Longitude
			envelope.Latitude = &lat
			envelope.Longitude = &lon
		}
		tz := tzOffsetHours
		envelope.TZOffset = &tz
	}

	return envelope
}

// localTime resolves a location's current wall-clock time-of-day and its
// UTC offset in hours (accounting for DST), per spec.md §4.7 step 2 and
// §4.9 S6. Falls back to UTC (offset 0) if the location's timezone is
// unknown or unparseable — a PolicyInvalid condition (spec.md §7) that
// must not fail the response.
func (s *Server) localTime(locationName string) (surf.TimeOfDay, int) {
	loc, ok := s.registry.Lookup(locationName)
	if !ok {
		return toTimeOfDay(time.Now().UTC()), 0
	}
	tz, err := time.LoadLocation(loc.TimezoneName)
	if err != nil {
		s.logger.Warn("unknown timezone, defaulting to UTC", "location", locationName, "timezone", loc.TimezoneName)
		return toTimeOfDay(time.Now().UTC()), 0
	}
	now := time.Now().In(tz)
	_, offsetSeconds := now.Zone()
	return toTimeOfDay(now), offsetSeconds / 3600
}

func toTimeOfDay(t time.Time) surf.TimeOfDay {
	return surf.TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}
}

func round(v float64) float64 {
	if v < 0 {
		return -round(-v)
	}
	return float64(int64(v + 0.5))
}

// parseDeviceID extracts the numeric device ID from a path like
// "/api/arduino/4433/data" or "/api/arduino/v2/4433/data".
func parseDeviceID(path, prefix string) (int64, bool) {
	rest := strings.TrimPrefix(path, prefix)
	rest = strings.TrimSuffix(rest, "/data")
	rest = strings.TrimSuffix(rest, "/")
	if rest == "" || strings.Contains(rest, "/") {
		return 0, false
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
