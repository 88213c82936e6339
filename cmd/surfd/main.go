// Command surfd is the surf-lamp ingestion and distribution engine: it
// runs the scheduler that fetches wave/wind conditions per Registry
// location, serves the Device Read API and discovery-adjacent status
// endpoint, and exposes Prometheus metrics plus a gRPC health surface
// for ops tooling.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shahar42/surf-lamp-engine/pkg/alerts"
	"github.com/shahar42/surf-lamp-engine/pkg/api"
	"github.com/shahar42/surf-lamp-engine/pkg/config"
	"github.com/shahar42/surf-lamp-engine/pkg/fetch"
	"github.com/shahar42/surf-lamp-engine/pkg/logx"
	"github.com/shahar42/surf-lamp-engine/pkg/metrics"
	"github.com/shahar42/surf-lamp-engine/pkg/mqttpub"
	"github.com/shahar42/surf-lamp-engine/pkg/ophealth"
	"github.com/shahar42/surf-lamp-engine/pkg/registry"
	"github.com/shahar42/surf-lamp-engine/pkg/scheduler"
	"github.com/shahar42/surf-lamp-engine/pkg/store"
)

const (
	version = "1.0.0"
	appName = "surfd"
)

var showVersion = flag.Bool("version", false, "Show version and exit")

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s %s\n", appName, version)
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		// ConfigError per the error-handling design: fatal, non-zero exit.
		fmt.Fprintf(os.Stderr, "%s: configuration error: %v\n", appName, err)
		os.Exit(1)
	}

	logger := logx.New(cfg.LogLevel)
	logger.Info("starting surfd", "version", version,
		"cycle_interval", cfg.CycleInterval, "max_concurrent_fetches", cfg.MaxConcurrentFetches)

	if len(registry.CompiledLocations) == 0 {
		logger.Error("registry is empty, refusing to start")
		os.Exit(1)
	}

	db, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.SeedLocations(registry.CompiledLocations); err != nil {
		logger.Error("failed to seed registry into database", "error", err)
		os.Exit(1)
	}

	reg := registry.New(logger, registry.CompiledLocations)

	fetcher := fetch.New(fetch.DefaultConfig(), &http.Client{})

	metricsServer := metrics.NewServer(logger)
	healthServer := ophealth.New(logger)

	mqttCfg := mqttpub.DefaultConfig()
	mqttCfg.Broker = cfg.MQTTBrokerURL
	mqttCfg.TopicPrefix = cfg.MQTTTopicPrefix
	mqttPublisher := mqttpub.New(mqttCfg, logger)
	if err := mqttPublisher.Connect(); err != nil {
		logger.Warn("ops telemetry publisher failed to connect, continuing without it", "error", err)
	}
	defer mqttPublisher.Disconnect()

	alertCfg := alerts.DefaultConfig()
	alertCfg.Enabled = cfg.PushoverEnabled
	alertCfg.Token = cfg.PushoverToken
	alertCfg.User = cfg.PushoverUser
	alerter := alerts.New(alertCfg, logger)

	observer := newCycleObserver(metricsServer, mqttPublisher, healthServer, alerter, logger)

	sched := scheduler.New(
		scheduler.Config{Interval: cfg.CycleInterval, MaxConcurrentJobs: cfg.MaxConcurrentFetches},
		db, reg, fetcher, observer, logger,
	)

	apiServer := api.New(cfg.HTTPListenAddr, db, reg, metricsServer, logger, version)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := metricsServer.Start(cfg.MetricsListenAddr); err != nil {
			logger.Error("metrics server stopped", "error", err)
		}
	}()

	go func() {
		if err := healthServer.Serve(cfg.AdminGRPCListenAddr); err != nil {
			logger.Error("admin grpc server stopped", "error", err)
		}
	}()

	go func() {
		if err := apiServer.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error("device api server stopped", "error", err)
		}
	}()

	go sched.Run(ctx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	logger.Info("received shutdown signal", "signal", sig.String())
	cancel()
	healthServer.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("device api server shutdown error", "error", err)
	}
	if err := metricsServer.Stop(); err != nil {
		logger.Warn("metrics server shutdown error", "error", err)
	}

	logger.Info("surfd shut down cleanly")
}
