// Package config loads the engine's environment-driven configuration.
//
// It follows the same struct-tag convention the teacher's pkg/uci package
// used for UCI sections (`default:"..."` tags plus a typed Load/Validate
// pair), but reads os.Getenv instead of shelling out to `uci show` — this
// system has no UCI/OpenWRT host to query.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is the complete set of environment-derived settings the engine
// needs at startup. Nothing here is reloaded at runtime (spec.md §9: "hot
// reload is explicitly rejected").
type Config struct {
	CycleInterval         time.Duration `env:"CYCLE_INTERVAL_SECONDS" default:"900"`
	MaxConcurrentFetches  int           `env:"MAX_CONCURRENT_FETCHES" default:"8"`
	HTTPTimeout           time.Duration `env:"HTTP_TIMEOUT_SECONDS" default:"15"`
	DeviceOnlineThreshold time.Duration `env:"DEVICE_ONLINE_THRESHOLD_SECONDS" default:"3600"`
	DatabaseURL           string        `env:"DATABASE_URL" default:""`
	MQTTBrokerURL         string        `env:"MQTT_BROKER_URL" default:""`
	MQTTTopicPrefix       string        `env:"MQTT_TOPIC_PREFIX" default:"surf"`
	MetricsListenAddr     string        `env:"METRICS_LISTEN_ADDR" default:":9100"`
	AdminGRPCListenAddr   string        `env:"ADMIN_GRPC_LISTEN_ADDR" default:":9101"`
	HTTPListenAddr        string        `env:"HTTP_LISTEN_ADDR" default:":8080"`
	GoogleMapsAPIKey      string        `env:"GOOGLE_MAPS_API_KEY" default:""`
	PushoverEnabled       bool          `env:"PUSHOVER_ENABLED" default:"false"`
	PushoverToken         string        `env:"PUSHOVER_TOKEN" default:""`
	PushoverUser          string        `env:"PUSHOVER_USER" default:""`
	LogLevel              string        `env:"LOG_LEVEL" default:"info"`
}

// Load reads the process environment and returns a validated Config, or an
// error describing the first invalid/missing value. Callers treat a
// non-nil error as a ConfigError (spec.md §7): fatal, process exits
// non-zero.
func Load() (*Config, error) {
	cfg := &Config{
		CycleInterval:         900 * time.Second,
		MaxConcurrentFetches:  8,
		HTTPTimeout:           15 * time.Second,
		DeviceOnlineThreshold: 3600 * time.Second,
		MQTTTopicPrefix:       "surf",
		MetricsListenAddr:     ":9100",
		AdminGRPCListenAddr:   ":9101",
		HTTPListenAddr:        ":8080",
		LogLevel:              "info",
	}

	if v, ok := os.LookupEnv("CYCLE_INTERVAL_SECONDS"); ok {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("CYCLE_INTERVAL_SECONDS: %w", err)
		}
		cfg.CycleInterval = time.Duration(secs) * time.Second
	}

	if v, ok := os.LookupEnv("MAX_CONCURRENT_FETCHES"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("MAX_CONCURRENT_FETCHES: %w", err)
		}
		cfg.MaxConcurrentFetches = n
	}

	if v, ok := os.LookupEnv("HTTP_TIMEOUT_SECONDS"); ok {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("HTTP_TIMEOUT_SECONDS: %w", err)
		}
		cfg.HTTPTimeout = time.Duration(secs) * time.Second
	}

	if v, ok := os.LookupEnv("DEVICE_ONLINE_THRESHOLD_SECONDS"); ok {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("DEVICE_ONLINE_THRESHOLD_SECONDS: %w", err)
		}
		cfg.DeviceOnlineThreshold = time.Duration(secs) * time.Second
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.MQTTBrokerURL = os.Getenv("MQTT_BROKER_URL")
	cfg.GoogleMapsAPIKey = os.Getenv("GOOGLE_MAPS_API_KEY")
	cfg.PushoverToken = os.Getenv("PUSHOVER_TOKEN")
	cfg.PushoverUser = os.Getenv("PUSHOVER_USER")

	if v, ok := os.LookupEnv("MQTT_TOPIC_PREFIX"); ok {
		cfg.MQTTTopicPrefix = v
	}
	if v, ok := os.LookupEnv("PUSHOVER_ENABLED"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("PUSHOVER_ENABLED: %w", err)
		}
		cfg.PushoverEnabled = b
	}
	if v, ok := os.LookupEnv("METRICS_LISTEN_ADDR"); ok {
		cfg.MetricsListenAddr = v
	}
	if v, ok := os.LookupEnv("ADMIN_GRPC_LISTEN_ADDR"); ok {
		cfg.AdminGRPCListenAddr = v
	}
	if v, ok := os.LookupEnv("HTTP_LISTEN_ADDR"); ok {
		cfg.HTTPListenAddr = v
	}
	if v, ok := os.LookupEnv("LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration constraints a missing/malformed
// environment can produce. DATABASE_URL is the one variable spec.md §6
// calls out by name as a fatal-if-missing exit condition.
func Validate(cfg *Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.CycleInterval <= 0 {
		return fmt.Errorf("CYCLE_INTERVAL_SECONDS must be positive, got %v", cfg.CycleInterval)
	}
	if cfg.MaxConcurrentFetches <= 0 {
		return fmt.Errorf("MAX_CONCURRENT_FETCHES must be positive, got %d", cfg.MaxConcurrentFetches)
	}
	if cfg.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT_SECONDS must be positive, got %v", cfg.HTTPTimeout)
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	ok := false
	for _, l := range validLevels {
		if cfg.LogLevel == l {
			ok = true
			break
		}
	}
	if !ok {
		return fmt.Errorf("LOG_LEVEL must be one of %v, got %q", validLevels, cfg.LogLevel)
	}

	return nil
}
