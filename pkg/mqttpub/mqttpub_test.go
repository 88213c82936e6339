package mqttpub

import (
	"testing"

	"github.com/shahar42/surf-lamp-engine/pkg/logx"
)

func testLogger() *logx.Logger { return logx.New("error") }

func TestDisabledPublisherIsNoOp(t *testing.T) {
	p := New(Config{}, testLogger())
	if p.Enabled() {
		t.Fatal("expected publisher with empty Broker to be disabled")
	}
	if err := p.Connect(); err != nil {
		t.Fatalf("Connect on disabled publisher should be a no-op, got %v", err)
	}
	// Should not panic even though client is nil.
	p.PublishCycleSummary(CycleSummary{LocationsAttempted: 1})
	p.PublishLocationWrite(LocationWrite{Location: "Hadera", Result: "written"})
	p.Disconnect()
}

func TestDefaultConfigLeavesBrokerEmpty(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Broker != "" {
		t.Fatalf("expected empty default broker, got %q", cfg.Broker)
	}
	if cfg.TopicPrefix != "surf" {
		t.Fatalf("expected default topic prefix 'surf', got %q", cfg.TopicPrefix)
	}
}

func TestPublishBeforeConnectedIsNoOp(t *testing.T) {
	p := New(Config{Broker: "tcp://localhost:1883", TopicPrefix: "surf", ClientID: "test"}, testLogger())
	// Never connected (connected stays false), so publish must not
	// dereference the nil client.
	p.PublishCycleSummary(CycleSummary{LocationsWritten: 3})
}
