// Package metrics exposes Prometheus metrics for the ingestion engine
// (C12): per-location cycle outcomes, fetch/device-read latency
// histograms, and cycle duration.
//
// Shape (GaugeVec/CounterVec registration, Start/Stop around an
// http.Server serving promhttp.Handler()) is adapted from the teacher's
// pkg/metrics.Server, which tracked per-member link scores; here the
// label set is per-location/per-result instead of per-network-member.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shahar42/surf-lamp-engine/pkg/logx"
)

// Server serves /metrics and tracks the engine's Prometheus instruments.
type Server struct {
	logger *logx.Logger
	server *http.Server

	locationWrites *prometheus.CounterVec
	fetchLatency   *prometheus.HistogramVec
	deviceReadLat  prometheus.Histogram
	cycleDuration  prometheus.Histogram
}

// NewServer creates and registers the metrics collector.
func NewServer(logger *logx.Logger) *Server {
	s := &Server{logger: logger}
	s.registerMetrics()
	return s
}

func (s *Server) registerMetrics() {
	s.locationWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "surf_location_write_total",
			Help: "Total scheduler cycle outcomes per location.",
		},
		[]string{"location", "result"},
	)

	s.fetchLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "surf_fetch_duration_seconds",
			Help:    "Upstream fetch latency per upstream URL.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"family"},
	)

	s.deviceReadLat = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "surf_device_read_duration_seconds",
		Help:    "Device Read API handler latency.",
		Buckets: prometheus.DefBuckets,
	})

	s.cycleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "surf_scheduler_cycle_duration_seconds",
		Help:    "Full scheduler cycle duration.",
		Buckets: []float64{.1, .5, 1, 5, 10, 30, 60, 120, 300},
	})

	prometheus.MustRegister(s.locationWrites, s.fetchLatency, s.deviceReadLat, s.cycleDuration)
}

// IncLocationResult implements pkg/scheduler.Metrics.
func (s *Server) IncLocationResult(location, result string) {
	s.locationWrites.WithLabelValues(location, result).Inc()
}

// ObserveFetchLatency implements pkg/scheduler.Metrics. family is used
// as-is as the label value; the scheduler passes the full upstream URL
// the fetch targeted, not an adapter family name.
func (s *Server) ObserveFetchLatency(family string, d time.Duration) {
	s.fetchLatency.WithLabelValues(family).Observe(d.Seconds())
}

// ObserveCycleDuration implements pkg/scheduler.Metrics.
func (s *Server) ObserveCycleDuration(d time.Duration) {
	s.cycleDuration.Observe(d.Seconds())
}

// ObserveDeviceReadLatency implements pkg/api.Metrics.
func (s *Server) ObserveDeviceReadLatency(d time.Duration) {
	s.deviceReadLat.Observe(d.Seconds())
}

// Start serves /metrics on addr; call from a goroutine.
func (s *Server) Start(addr string) error {
	s.logger.Info("metrics server listening", "addr", addr)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	s.server = &http.Server{Addr: addr, Handler: mux}
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop cooperatively shuts down the metrics server.
func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}
