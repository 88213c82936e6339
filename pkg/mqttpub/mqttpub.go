// Package mqttpub implements the Ops Telemetry Publisher (C14): an
// optional, strictly observational MQTT mirror of scheduler cycle
// summaries for operators. Devices never subscribe to MQTT — they remain
// pull-only, so this does not reintroduce the "no real-time push to
// devices" Non-goal.
//
// Adapted from the teacher's pkg/mqtt.Client (connection options,
// auto-reconnect, JSON publish helper); the publish surface here is
// per-cycle/per-location summaries instead of per-member telemetry
// samples.
package mqttpub

import (
	"encoding/json"
	"fmt"
	"time"

	MQTT "github.com/eclipse/paho.mqtt.golang"

	"github.com/shahar42/surf-lamp-engine/pkg/logx"
)

// Config holds the publisher's connection settings. An empty Broker
// disables the publisher entirely (SPEC_FULL.md §4.14).
type Config struct {
	Broker      string
	ClientID    string
	TopicPrefix string
	QoS         byte
}

// DefaultConfig returns sensible defaults; Broker is left empty (disabled)
// until the caller sets it from MQTT_BROKER_URL.
func DefaultConfig() Config {
	return Config{ClientID: "surf-lamp-engine", TopicPrefix: "surf", QoS: 1}
}

// Publisher publishes cycle/location summaries. A Publisher with an empty
// Broker is a no-op — every method short-circuits without error so
// callers don't need to branch on whether ops telemetry is enabled.
type Publisher struct {
	client    MQTT.Client
	cfg       Config
	logger    *logx.Logger
	connected bool
}

// New creates a Publisher. If cfg.Broker is empty the publisher is
// disabled; Connect becomes a no-op.
func New(cfg Config, logger *logx.Logger) *Publisher {
	return &Publisher{cfg: cfg, logger: logger}
}

// Enabled reports whether this publisher will actually talk to a broker.
func (p *Publisher) Enabled() bool { return p.cfg.Broker != "" }

// Connect establishes the MQTT connection. No-op when disabled.
func (p *Publisher) Connect() error {
	if !p.Enabled() {
		p.logger.Debug("ops telemetry publisher disabled, no MQTT_BROKER_URL set")
		return nil
	}

	opts := MQTT.NewClientOptions()
	opts.AddBroker(p.cfg.Broker)
	opts.SetClientID(p.cfg.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(time.Minute)
	opts.SetOnConnectHandler(func(MQTT.Client) {
		p.connected = true
		p.logger.Info("ops telemetry publisher connected", "broker", p.cfg.Broker)
	})
	opts.SetConnectionLostHandler(func(_ MQTT.Client, err error) {
		p.connected = false
		p.logger.Warn("ops telemetry publisher connection lost", "error", err)
	})

	p.client = MQTT.NewClient(opts)
	if token := p.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("connect to mqtt broker: %w", token.Error())
	}
	return nil
}

// Disconnect closes the MQTT connection. No-op when disabled or not
// connected.
func (p *Publisher) Disconnect() {
	if p.client != nil && p.connected {
		p.client.Disconnect(250)
		p.connected = false
	}
}

// CycleSummary is published once per scheduler cycle to
// "<prefix>/cycle".
type CycleSummary struct {
	LocationsAttempted int           `json:"locations_attempted"`
	LocationsWritten   int           `json:"locations_written"`
	LocationsFailed    int           `json:"locations_failed"`
	Duration           time.Duration `json:"duration_ms"`
}

// MarshalJSON encodes Duration as whole milliseconds under "duration_ms".
func (s CycleSummary) MarshalJSON() ([]byte, error) {
	type fields CycleSummary
	return json.Marshal(struct {
		fields
		Duration int64 `json:"duration_ms"`
	}{fields(s), s.Duration.Milliseconds()})
}

// PublishCycleSummary publishes one CycleSummary. No-op when disabled.
func (p *Publisher) PublishCycleSummary(summary CycleSummary) {
	p.publishJSON(p.cfg.TopicPrefix+"/cycle", summary)
}

// LocationWrite is published once per location write to
// "<prefix>/location/<name>".
type LocationWrite struct {
	Location string `json:"location"`
	Result   string `json:"result"`
}

// PublishLocationWrite publishes one LocationWrite. No-op when disabled.
func (p *Publisher) PublishLocationWrite(lw LocationWrite) {
	p.publishJSON(p.cfg.TopicPrefix+"/location/"+lw.Location, lw)
}

func (p *Publisher) publishJSON(topic string, payload interface{}) {
	if !p.Enabled() || !p.connected {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		p.logger.Warn("failed to marshal ops telemetry payload", "topic", topic, "error", err)
		return
	}
	token := p.client.Publish(topic, p.cfg.QoS, false, body)
	token.WaitTimeout(2 * time.Second)
	if err := token.Error(); err != nil {
		p.logger.Warn("failed to publish ops telemetry", "topic", topic, "error", err)
	}
}
