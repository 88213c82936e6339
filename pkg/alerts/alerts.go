// Package alerts sends ops notifications when ingestion degrades: a
// location ends a cycle without a written row, or a cycle's failure rate
// crosses a threshold. This is operator-facing only — never sent to
// lamp firmware.
//
// Adapted from the teacher's pkg/notifications.Manager (Pushover POST
// shape, cooldown-gated sends, retry loop) cut down to the two event
// types this system actually raises; the teacher's failover/member/
// predictive taxonomy doesn't apply here, and the priority-threshold /
// rich-context / acknowledgment-tracking machinery is dropped since
// there is no multi-priority event stream to justify it.
package alerts

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/shahar42/surf-lamp-engine/pkg/logx"
)

// EventKind distinguishes the two alert-worthy conditions this system
// raises.
type EventKind string

const (
	// EventLocationFailed fires when a location ends a cycle without a
	// written row: its sources lacked a required field, or the write
	// failed.
	EventLocationFailed EventKind = "location_failed"
	// EventCycleDegraded fires when a cycle's failure rate crosses
	// Config.CycleFailureRateThreshold.
	EventCycleDegraded EventKind = "cycle_degraded"
)

// Config holds the alerter's Pushover credentials and rate limiting.
// An empty Token or User disables sending entirely.
type Config struct {
	Enabled                   bool
	Token                     string
	User                      string
	Cooldown                  time.Duration
	CycleFailureRateThreshold float64
	HTTPTimeout               time.Duration
	RetryAttempts             int
	RetryDelay                time.Duration
}

// DefaultConfig returns conservative defaults; Enabled, Token and User are
// left zero (sending disabled) for the caller to set from configuration.
func DefaultConfig() Config {
	return Config{
		Cooldown:                  15 * time.Minute,
		CycleFailureRateThreshold: 0.5,
		HTTPTimeout:               10 * time.Second,
		RetryAttempts:             2,
		RetryDelay:                5 * time.Second,
	}
}

// Event is a single alert-worthy condition.
type Event struct {
	Kind     EventKind
	Location string // set for EventLocationFailed
	Title    string
	Message  string
}

const pushoverMessagesURL = "https://api.pushover.net/1/messages.json"

// Alerter sends rate-limited Pushover notifications for ingestion
// failures.
type Alerter struct {
	cfg        Config
	logger     *logx.Logger
	httpClient *http.Client
	apiURL     string

	mu       sync.Mutex
	lastSent map[EventKind]time.Time
}

// New creates an Alerter. Calls are no-ops unless cfg.Enabled and both
// Token and User are set.
func New(cfg Config, logger *logx.Logger) *Alerter {
	return &Alerter{
		cfg:        cfg,
		logger:     logger,
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
		apiURL:     pushoverMessagesURL,
		lastSent:   make(map[EventKind]time.Time),
	}
}

// pushoverURLForTest overrides the Pushover endpoint for tests.
func (a *Alerter) pushoverURLForTest(u string) { a.apiURL = u }

// Enabled reports whether this alerter will actually send notifications.
func (a *Alerter) Enabled() bool {
	return a.cfg.Enabled && a.cfg.Token != "" && a.cfg.User != ""
}

// Send delivers ev, subject to per-kind cooldown. Errors are logged, not
// returned, so a flaky Pushover endpoint never blocks a scheduler cycle.
func (a *Alerter) Send(ctx context.Context, ev Event) {
	if !a.Enabled() {
		return
	}
	if !a.shouldSend(ev.Kind) {
		a.logger.Debug("alert suppressed by cooldown", "kind", ev.Kind, "location", ev.Location)
		return
	}
	if err := a.sendWithRetry(ctx, ev); err != nil {
		a.logger.Warn("alert send failed after retries", "kind", ev.Kind, "error", err)
		return
	}
	a.logger.Info("alert sent", "kind", ev.Kind, "location", ev.Location)
}

func (a *Alerter) shouldSend(kind EventKind) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := time.Now()
	if last, ok := a.lastSent[kind]; ok && now.Sub(last) < a.cfg.Cooldown {
		return false
	}
	a.lastSent[kind] = now
	return true
}

// CycleFailureRate decides whether a completed cycle's failure rate
// warrants an EventCycleDegraded alert.
func (a *Alerter) CycleFailureRate(attempted, failed int) bool {
	if attempted == 0 {
		return false
	}
	return float64(failed)/float64(attempted) >= a.cfg.CycleFailureRateThreshold
}

func (a *Alerter) sendWithRetry(ctx context.Context, ev Event) error {
	var lastErr error
	for attempt := 0; attempt <= a.cfg.RetryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(a.cfg.RetryDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err := a.post(ctx, ev); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}
	return fmt.Errorf("pushover send failed after %d attempts: %w", a.cfg.RetryAttempts+1, lastErr)
}

func (a *Alerter) post(ctx context.Context, ev Event) error {
	data := url.Values{}
	data.Set("token", a.cfg.Token)
	data.Set("user", a.cfg.User)
	data.Set("title", ev.Title)
	data.Set("message", ev.Message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.apiURL, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("build pushover request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("pushover request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("pushover returned status %d", resp.StatusCode)
	}
	return nil
}
