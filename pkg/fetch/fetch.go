// Package fetch issues rate-limited, retried HTTP GETs against upstream
// weather providers.
//
// The retry/backoff shape is adapted from the teacher's pkg/retry.Runner
// (originally built around exec.CommandContext output capture); here the
// unit of work is an HTTP round trip instead of a subprocess, and a
// golang.org/x/time/rate limiter is added per upstream host so one noisy
// location doesn't trip a shared provider's rate limit for every other
// location using the same host.
package fetch

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	surf "github.com/shahar42/surf-lamp-engine/pkg"
	"golang.org/x/time/rate"
)

// Config controls the fetcher's timeout, retry, and backoff behavior.
// Mirrors the teacher's retry.Config shape.
type Config struct {
	Timeout       time.Duration
	MaxRetries    int // retries beyond the first attempt; spec.md §4.2 default 2
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
	// RatePerHost is the steady-state request rate allowed per upstream
	// host; BurstPerHost is the token bucket burst size.
	RatePerHost  rate.Limit
	BurstPerHost int
}

// DefaultConfig returns the retry/backoff defaults spec.md §4.2 describes:
// 15s timeout, up to 2 retries, no retry on 4xx.
func DefaultConfig() Config {
	return Config{
		Timeout:       15 * time.Second,
		MaxRetries:    2,
		InitialDelay:  200 * time.Millisecond,
		MaxDelay:      4 * time.Second,
		BackoffFactor: 2.0,
		RatePerHost:   rate.Limit(2), // 2 req/s per host family
		BurstPerHost:  4,
	}
}

// Result is a successful fetch: the raw response body and the upstream's
// HTTP Date header. The scheduler does not use Date, and the Device Read
// API stamps its own Date header from the server clock rather than
// forwarding this one.
type Result struct {
	Body []byte
	Date string
}

// Fetcher issues GETs with the spec's timeout/retry/rate-limit contract.
type Fetcher struct {
	client *http.Client
	cfg    Config

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// New creates a Fetcher. client may be nil to use http.DefaultClient with
// cfg.Timeout applied per-request via context.
func New(cfg Config, client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{}
	}
	return &Fetcher{
		client:   client,
		cfg:      cfg,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (f *Fetcher) limiterFor(host string) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.limiters[host]
	if !ok {
		l = rate.NewLimiter(f.cfg.RatePerHost, f.cfg.BurstPerHost)
		f.limiters[host] = l
	}
	return l
}

// Fetch performs a rate-limited, retried GET against rawURL, returning the
// body and Date header, or a typed *surf.AdapterError on failure.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (Result, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Result{}, &surf.AdapterError{Kind: surf.ErrDecodeError, Reason: "invalid url: " + err.Error()}
	}

	limiter := f.limiterFor(u.Hostname())

	var lastErr error
	for attempt := 0; attempt <= f.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := f.calculateDelay(attempt)
			select {
			case <-ctx.Done():
				return Result{}, &surf.AdapterError{Kind: surf.ErrTimeout, Reason: ctx.Err().Error()}
			case <-time.After(delay):
			}
		}

		if err := limiter.Wait(ctx); err != nil {
			return Result{}, &surf.AdapterError{Kind: surf.ErrTimeout, Reason: err.Error()}
		}

		result, retriable, err := f.attempt(ctx, rawURL)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !retriable {
			return Result{}, err
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("fetch failed with no attempts made")
	}
	return Result{}, lastErr
}

// attempt performs one GET, returning whether the caller should retry.
func (f *Fetcher) attempt(ctx context.Context, rawURL string) (Result, bool, error) {
	reqCtx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Result{}, false, &surf.AdapterError{Kind: surf.ErrNetworkError, Reason: err.Error()}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if reqCtx.Err() != nil {
			return Result{}, true, &surf.AdapterError{Kind: surf.ErrTimeout, Reason: err.Error()}
		}
		return Result{}, true, &surf.AdapterError{Kind: surf.ErrNetworkError, Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
		if retryAfter > 30*time.Second || retryAfter <= 0 {
			return Result{}, false, &surf.AdapterError{
				Kind: surf.ErrRateLimited, Reason: "rate limited, giving up this cycle", StatusCode: resp.StatusCode,
			}
		}
		select {
		case <-time.After(retryAfter):
		case <-ctx.Done():
			return Result{}, false, &surf.AdapterError{Kind: surf.ErrTimeout, Reason: ctx.Err().Error()}
		}
		return Result{}, true, &surf.AdapterError{Kind: surf.ErrRateLimited, Reason: "rate limited, honoring Retry-After", StatusCode: resp.StatusCode}
	}

	if resp.StatusCode >= 500 {
		return Result{}, true, &surf.AdapterError{Kind: surf.ErrHTTPStatus, Reason: resp.Status, StatusCode: resp.StatusCode}
	}
	if resp.StatusCode >= 400 {
		// No retry on 4xx, per spec.md §4.2.
		return Result{}, false, &surf.AdapterError{Kind: surf.ErrHTTPStatus, Reason: resp.Status, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, true, &surf.AdapterError{Kind: surf.ErrNetworkError, Reason: err.Error()}
	}

	return Result{Body: body, Date: resp.Header.Get("Date")}, false, nil
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		return time.Until(t)
	}
	return 0
}

// calculateDelay computes exponential backoff, same shape as the teacher's
// retry.Runner.calculateDelay.
func (f *Fetcher) calculateDelay(attempt int) time.Duration {
	delay := float64(f.cfg.InitialDelay) * math.Pow(f.cfg.BackoffFactor, float64(attempt-1))
	if delay > float64(f.cfg.MaxDelay) {
		delay = float64(f.cfg.MaxDelay)
	}
	return time.Duration(delay)
}
