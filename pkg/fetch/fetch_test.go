package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	surf "github.com/shahar42/surf-lamp-engine/pkg"
)

func TestFetchSuccessReturnsBodyAndDate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Date", "Thu, 30 Jul 2026 14:00:00 GMT")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	f := New(DefaultConfig(), srv.Client())
	result, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(result.Body) != `{"ok":true}` {
		t.Errorf("unexpected body: %s", result.Body)
	}
	if result.Date == "" {
		t.Error("expected Date header to be forwarded")
	}
}

func TestFetchNoRetryOn4xx(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.InitialDelay = time.Millisecond
	f := New(cfg, srv.Client())
	_, err := f.Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected error")
	}
	adapterErr, ok := err.(*surf.AdapterError)
	if !ok {
		t.Fatalf("expected *surf.AdapterError, got %T", err)
	}
	if adapterErr.Kind != surf.ErrHTTPStatus {
		t.Errorf("expected ErrHTTPStatus, got %v", adapterErr.Kind)
	}
	if attempts != 1 {
		t.Errorf("expected exactly one attempt on 4xx, got %d", attempts)
	}
}

func TestFetchRetriesOn5xxThenSucceeds(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.InitialDelay = time.Millisecond
	cfg.MaxDelay = 5 * time.Millisecond
	f := New(cfg, srv.Client())
	result, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(result.Body) != `{"ok":true}` {
		t.Errorf("unexpected body: %s", result.Body)
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
}

func TestFetchRateLimitedGivesUpOnLongRetryAfter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "60")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.InitialDelay = time.Millisecond
	f := New(cfg, srv.Client())
	_, err := f.Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected error")
	}
	adapterErr, ok := err.(*surf.AdapterError)
	if !ok {
		t.Fatalf("expected *surf.AdapterError, got %T", err)
	}
	if adapterErr.Kind != surf.ErrRateLimited {
		t.Errorf("expected ErrRateLimited, got %v", adapterErr.Kind)
	}
}

func TestParseRetryAfterSeconds(t *testing.T) {
	d := parseRetryAfter("30")
	if d != 30*time.Second {
		t.Errorf("expected 30s, got %v", d)
	}
}
