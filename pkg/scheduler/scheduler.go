// Package scheduler drives the fixed-interval ingestion cycle (spec.md
// §4.6): enumerate active locations, fetch+normalize+persist each one on a
// bounded worker pool, skipping a location whose previous cycle hasn't
// finished yet.
//
// The ticker-driven run loop with signal-based cooperative shutdown
// follows cmd/starfaild/main.go's shape; the bounded worker pool and
// per-location in-flight dedup use golang.org/x/sync's errgroup and
// singleflight, filling in a concern the teacher's go.mod lists
// (golang.org/x/sync is pulled in transitively there) but never directly
// imports.
package scheduler

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	surf "github.com/shahar42/surf-lamp-engine/pkg"
	"github.com/shahar42/surf-lamp-engine/pkg/adapters"
	"github.com/shahar42/surf-lamp-engine/pkg/fetch"
	"github.com/shahar42/surf-lamp-engine/pkg/logx"
	"github.com/shahar42/surf-lamp-engine/pkg/normalize"
)

// Repository is the subset of pkg/store.Store the scheduler needs. A
// narrow interface so tests can substitute a fake without pulling in
// SQLite.
type Repository interface {
	LocationsInUse() (map[string]struct{}, error)
	WriteLocationConditions(conditions surf.LocationConditions) error
}

// Registry is the subset of pkg/registry.Registry the scheduler needs.
type Registry interface {
	ActiveLocations(inUse map[string]struct{}) []surf.Location
}

// Metrics is the subset of observability hooks the scheduler reports
// through; pkg/metrics.Server implements this.
type Metrics interface {
	ObserveCycleDuration(d time.Duration)
	IncLocationResult(location, result string)
	ObserveFetchLatency(family string, d time.Duration)
}

// Config controls the scheduler's interval and concurrency.
type Config struct {
	Interval          time.Duration // default 900s, spec.md §6
	MaxConcurrentJobs int           // default 8, spec.md §4.6/§5
}

// Scheduler is the cycle driver.
type Scheduler struct {
	cfg      Config
	repo     Repository
	registry Registry
	fetcher  *fetch.Fetcher
	metrics  Metrics
	logger   *logx.Logger

	inflight singleflight.Group
}

// New builds a Scheduler.
func New(cfg Config, repo Repository, registry Registry, fetcher *fetch.Fetcher, metrics Metrics, logger *logx.Logger) *Scheduler {
	if cfg.MaxConcurrentJobs <= 0 {
		cfg.MaxConcurrentJobs = 8
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 900 * time.Second
	}
	return &Scheduler{cfg: cfg, repo: repo, registry: registry, fetcher: fetcher, metrics: metrics, logger: logger}
}

// Run blocks, firing one cycle every cfg.Interval until ctx is cancelled.
// On cancellation, in-flight jobs receive cooperative cancellation; Run
// returns once the current cycle's jobs unwind.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler shutting down")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce executes a single cycle: enumerate active locations and process
// each on a bounded worker pool. A cycle-wide deadline of cfg.Interval
// keeps a runaway job from overlapping the next tick (spec.md §5).
func (s *Scheduler) RunOnce(parent context.Context) {
	start := time.Now()
	cycleCtx, cancel := context.WithTimeout(parent, s.cfg.Interval)
	defer cancel()

	inUse, err := s.repo.LocationsInUse()
	if err != nil {
		s.logger.Error("failed to enumerate locations in use", "error", err)
		return
	}
	locations := s.registry.ActiveLocations(inUse)

	g, groupCtx := errgroup.WithContext(cycleCtx)
	g.SetLimit(s.cfg.MaxConcurrentJobs)

	for _, loc := range locations {
		loc := loc
		g.Go(func() error {
			s.runLocationJob(groupCtx, loc)
			return nil
		})
	}
	_ = g.Wait()

	if s.metrics != nil {
		s.metrics.ObserveCycleDuration(time.Since(start))
	}
	s.logger.Info("cycle complete", "locations", len(locations), "duration_ms", time.Since(start).Milliseconds())
}

// runLocationJob processes one location: fetch+decode wave and wind URLs
// in priority order, normalize, and write. Deduplicated via singleflight
// so a slow prior job for the same location collapses with this one
// instead of running twice concurrently (spec.md §4.6: "cycles never
// overlap per-location").
func (s *Scheduler) runLocationJob(ctx context.Context, loc surf.Location) {
	_, _, _ = s.inflight.Do(loc.Name, func() (interface{}, error) {
		s.processLocation(ctx, loc)
		return nil, nil
	})
}

func (s *Scheduler) processLocation(ctx context.Context, loc surf.Location) {
	now := time.Now().UTC()

	var partials []surf.PartialConditions
	partials = append(partials, s.fetchURLsInOrder(ctx, loc.WaveURLs, now)...)
	partials = append(partials, s.fetchURLsInOrder(ctx, loc.WindURLs, now)...)

	conditions, ok := normalize.Merge(loc.Name, partials, now)
	if !ok {
		s.logger.Warn("insufficient data this cycle, keeping prior row", "location", loc.Name)
		if s.metrics != nil {
			s.metrics.IncLocationResult(loc.Name, "insufficient")
		}
		return
	}

	if err := s.repo.WriteLocationConditions(conditions); err != nil {
		s.logger.Error("failed to write location conditions", "location", loc.Name, "error", err)
		if s.metrics != nil {
			s.metrics.IncLocationResult(loc.Name, "write_error")
		}
		return
	}

	if s.metrics != nil {
		s.metrics.IncLocationResult(loc.Name, "written")
	}
}

// fetchURLsInOrder tries each URL in priority order, calling Fetcher+Adapter
// until the Normalizer has enough (spec.md §4.1/§4.6, spec.md:99): as soon
// as a decode supplies this field class's required value (wave_height_m for
// a wave URL list, wind_speed_mps for a wind URL list), it stops — lower
// priority URLs are never fetched, so a location with fallback URLs only
// pays the extra request when the higher-priority source actually failed.
func (s *Scheduler) fetchURLsInOrder(ctx context.Context, urls []string, now time.Time) []surf.PartialConditions {
	var partials []surf.PartialConditions
	for _, u := range urls {
		adapter, err := adapters.ForURL(u)
		if err != nil {
			s.logger.Warn("no adapter for url", "url", u, "error", err)
			continue
		}

		fetchStart := time.Now()
		result, err := s.fetcher.Fetch(ctx, u)
		if s.metrics != nil {
			s.metrics.ObserveFetchLatency(u, time.Since(fetchStart))
		}
		if err != nil {
			s.logger.Warn("fetch failed", "url", u, "error", err)
			continue
		}

		decoded := adapter(result.Body, now)
		if decoded.Err != nil {
			s.logger.Warn("decode failed", "url", u, "error", decoded.Err)
			continue
		}
		partials = append(partials, decoded.Partial)

		if decoded.Partial.WaveHeightM != nil || decoded.Partial.WindSpeedMPS != nil {
			break
		}
	}
	return partials
}
