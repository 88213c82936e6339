package main

import (
	"context"
	"sync"
	"time"

	"github.com/shahar42/surf-lamp-engine/pkg/alerts"
	"github.com/shahar42/surf-lamp-engine/pkg/logx"
	"github.com/shahar42/surf-lamp-engine/pkg/metrics"
	"github.com/shahar42/surf-lamp-engine/pkg/mqttpub"
	"github.com/shahar42/surf-lamp-engine/pkg/ophealth"
)

// cycleObserver implements pkg/scheduler.Metrics. It forwards every call
// to the Prometheus server and, once a cycle completes, mirrors a summary
// to the ops telemetry publisher, flips the scheduler's gRPC health
// status, and raises an alert when the cycle's failure rate degrades or
// a location failed outright.
type cycleObserver struct {
	metrics  *metrics.Server
	mqtt     *mqttpub.Publisher
	health   *ophealth.Server
	alerter  *alerts.Alerter
	logger   *logx.Logger

	mu        sync.Mutex
	attempted int
	written   int
	failed    int
}

func newCycleObserver(m *metrics.Server, mqtt *mqttpub.Publisher, health *ophealth.Server, alerter *alerts.Alerter, logger *logx.Logger) *cycleObserver {
	return &cycleObserver{metrics: m, mqtt: mqtt, health: health, alerter: alerter, logger: logger}
}

func (c *cycleObserver) IncLocationResult(location, result string) {
	c.metrics.IncLocationResult(location, result)

	c.mu.Lock()
	c.attempted++
	if result == "written" {
		c.written++
	} else {
		c.failed++
	}
	c.mu.Unlock()

	c.mqtt.PublishLocationWrite(mqttpub.LocationWrite{Location: location, Result: result})
	if result != "written" {
		c.alerter.Send(context.Background(), alerts.Event{
			Kind:     alerts.EventLocationFailed,
			Location: location,
			Title:    "surf-lamp-engine: location fetch failed",
			Message:  "location " + location + " produced no usable reading this cycle",
		})
	}
}

func (c *cycleObserver) ObserveFetchLatency(family string, d time.Duration) {
	c.metrics.ObserveFetchLatency(family, d)
}

func (c *cycleObserver) ObserveCycleDuration(d time.Duration) {
	c.metrics.ObserveCycleDuration(d)

	c.mu.Lock()
	attempted, written, failed := c.attempted, c.written, c.failed
	c.attempted, c.written, c.failed = 0, 0, 0
	c.mu.Unlock()

	c.mqtt.PublishCycleSummary(mqttpub.CycleSummary{
		LocationsAttempted: attempted,
		LocationsWritten:   written,
		LocationsFailed:    failed,
		Duration:           d,
	})

	if c.alerter.CycleFailureRate(attempted, failed) {
		c.health.RecordCycleFailure()
		c.alerter.Send(context.Background(), alerts.Event{
			Kind:    alerts.EventCycleDegraded,
			Title:   "surf-lamp-engine: ingestion degraded",
			Message: "a scheduler cycle failed most of its locations",
		})
		c.logger.Warn("cycle degraded", "attempted", attempted, "written", written, "failed", failed)
		return
	}
	c.health.RecordCycleSuccess()
}
