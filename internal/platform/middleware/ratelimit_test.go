package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func serve(e *echo.Echo, h echo.HandlerFunc, remoteAddr string) (*httptest.ResponseRecorder, error) {
	req := httptest.NewRequest(http.MethodGet, "/appointments", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	return rec, h(e.NewContext(req, rec))
}

func okHandler(c echo.Context) error { return c.String(http.StatusOK, "ok") }

func TestRateLimit_RequestsWithinLimit(t *testing.T) {
	e := echo.New()
	h := RateLimit(RateLimitConfig{RequestsPerSecond: 10, BurstSize: 5})(okHandler)

	for i := 0; i < 5; i++ {
		rec, err := serve(e, h, "10.0.0.1:1234")
		if err != nil {
			t.Fatalf("request %d: expected no error, got %v", i+1, err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rec.Code)
		}
		if got := rec.Header().Get("X-RateLimit-Limit"); got != "10" {
			t.Errorf("request %d: expected X-RateLimit-Limit '10', got %q", i+1, got)
		}
	}
}

func TestRateLimit_ExceedsLimit(t *testing.T) {
	e := echo.New()
	h := RateLimit(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 2})(okHandler)

	for i := 0; i < 2; i++ {
		if _, err := serve(e, h, "10.0.0.1:1234"); err != nil {
			t.Fatalf("request %d: expected no error, got %v", i+1, err)
		}
	}

	rec, err := serve(e, h, "10.0.0.1:1234")
	if err == nil {
		t.Fatal("expected error for rate-limited request")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", httpErr.Code)
	}

	retry, perr := strconv.Atoi(rec.Header().Get("Retry-After"))
	if perr != nil || retry < 1 {
		t.Errorf("expected Retry-After >= 1, got %q", rec.Header().Get("Retry-After"))
	}
	if rec.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Errorf("expected X-RateLimit-Remaining '0', got %q", rec.Header().Get("X-RateLimit-Remaining"))
	}
}

func TestRateLimit_PerClientIsolation(t *testing.T) {
	e := echo.New()
	h := RateLimit(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 1})(okHandler)

	if _, err := serve(e, h, "10.0.0.1:1000"); err != nil {
		t.Fatalf("client a first request: %v", err)
	}
	if _, err := serve(e, h, "10.0.0.1:1001"); err == nil {
		t.Fatal("client a second request: expected rate limit error")
	}
	if _, err := serve(e, h, "10.0.0.2:1000"); err != nil {
		t.Fatalf("client b first request: %v", err)
	}
}

func TestTokenBucket_Refills(t *testing.T) {
	start := time.Date(2025, 12, 20, 10, 0, 0, 0, time.UTC)
	b := newTokenBucket(2, 1, start)
	if !b.allow(start) {
		t.Fatal("expected first token")
	}
	if b.allow(start) {
		t.Fatal("expected bucket to be empty")
	}
	if !b.allow(start.Add(600 * time.Millisecond)) {
		t.Error("expected a token after refill")
	}
}

func TestTokenBucket_RetryAfterWithZeroRate(t *testing.T) {
	now := time.Now()
	b := newTokenBucket(0, 1, now)
	b.allow(now)
	if ra := b.retryAfter(); ra != 1 {
		t.Errorf("expected retryAfter 1 for zero rate, got %d", ra)
	}
}

func TestRateLimiterStore_SweepsIdleBuckets(t *testing.T) {
	now := time.Date(2025, 12, 20, 10, 0, 0, 0, time.UTC)
	s := newRateLimiterStore(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 1, IdleTTL: time.Minute})
	s.now = func() time.Time { return now }

	s.getBucket("a")
	s.getBucket("b")
	if s.size() != 2 {
		t.Fatalf("expected 2 buckets, got %d", s.size())
	}

	now = now.Add(2 * time.Minute)
	s.getBucket("c")
	if s.size() != 1 {
		t.Errorf("expected idle buckets to be swept, got %d", s.size())
	}
}

func TestRateLimit_DefaultConfig(t *testing.T) {
	cfg := DefaultRateLimitConfig()
	if cfg.RequestsPerSecond != 50 || cfg.BurstSize != 100 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}
