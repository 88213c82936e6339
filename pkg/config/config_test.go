package config

import (
	"os"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	vars := []string{
		"CYCLE_INTERVAL_SECONDS", "MAX_CONCURRENT_FETCHES", "HTTP_TIMEOUT_SECONDS",
		"DEVICE_ONLINE_THRESHOLD_SECONDS", "DATABASE_URL", "MQTT_BROKER_URL",
		"MQTT_TOPIC_PREFIX", "METRICS_LISTEN_ADDR", "ADMIN_GRPC_LISTEN_ADDR",
		"HTTP_LISTEN_ADDR", "GOOGLE_MAPS_API_KEY", "PUSHOVER_ENABLED",
		"PUSHOVER_TOKEN", "PUSHOVER_USER", "LOG_LEVEL",
	}
	for _, v := range vars {
		os.Unsetenv(v)
		t.Cleanup(func(v string) func() { return func() { os.Unsetenv(v) } }(v))
	}
}

func TestLoadMissingDatabaseURLFails(t *testing.T) {
	clearEnv(t)
	if _, err := Load(); err == nil {
		t.Fatal("expected error when DATABASE_URL is unset")
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	clearEnv(t)
	os.Setenv("DATABASE_URL", "/tmp/surf.db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.CycleInterval != 900*time.Second {
		t.Errorf("expected default cycle interval 900s, got %v", cfg.CycleInterval)
	}
	if cfg.MaxConcurrentFetches != 8 {
		t.Errorf("expected default max concurrent fetches 8, got %d", cfg.MaxConcurrentFetches)
	}
	if cfg.MQTTTopicPrefix != "surf" {
		t.Errorf("expected default mqtt topic prefix 'surf', got %q", cfg.MQTTTopicPrefix)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default log level 'info', got %q", cfg.LogLevel)
	}
}

func TestLoadRejectsBadLogLevel(t *testing.T) {
	clearEnv(t)
	os.Setenv("DATABASE_URL", "/tmp/surf.db")
	os.Setenv("LOG_LEVEL", "verbose")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid LOG_LEVEL")
	}
}

func TestLoadRejectsNonPositiveInterval(t *testing.T) {
	clearEnv(t)
	os.Setenv("DATABASE_URL", "/tmp/surf.db")
	os.Setenv("CYCLE_INTERVAL_SECONDS", "0")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for zero CYCLE_INTERVAL_SECONDS")
	}
}
