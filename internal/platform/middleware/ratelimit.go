package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
	// IdleTTL drops buckets for clients not seen within the window.
	IdleTTL time.Duration
}

// DefaultRateLimitConfig allows a handful of browser tabs polling every few
// seconds from one address with plenty of headroom.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 50,
		BurstSize:         100,
		IdleTTL:           10 * time.Minute,
	}
}

type tokenBucket struct {
	mu         sync.Mutex
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
}

func newTokenBucket(rate float64, burst int, now time.Time) *tokenBucket {
	return &tokenBucket{
		tokens:     float64(burst),
		maxTokens:  float64(burst),
		refillRate: rate,
		lastRefill: now,
	}
}

func (b *tokenBucket) allow(now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.tokens += now.Sub(b.lastRefill).Seconds() * b.refillRate
	if b.tokens > b.maxTokens {
		b.tokens = b.maxTokens
	}
	b.lastRefill = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// retryAfter is the whole number of seconds until one token is available.
func (b *tokenBucket) retryAfter() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.refillRate <= 0 {
		return 1
	}
	return int((1-b.tokens)/b.refillRate) + 1
}

func (b *tokenBucket) idleSince(now time.Time) time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return now.Sub(b.lastRefill)
}

type rateLimiterStore struct {
	mu        sync.Mutex
	buckets   map[string]*tokenBucket
	config    RateLimitConfig
	lastSweep time.Time
	now       func() time.Time
}

func newRateLimiterStore(cfg RateLimitConfig) *rateLimiterStore {
	return &rateLimiterStore{
		buckets: make(map[string]*tokenBucket),
		config:  cfg,
		now:     time.Now,
	}
}

func (s *rateLimiterStore) getBucket(key string) *tokenBucket {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweepLocked(now)

	bucket, ok := s.buckets[key]
	if !ok {
		bucket = newTokenBucket(s.config.RequestsPerSecond, s.config.BurstSize, now)
		s.buckets[key] = bucket
	}
	return bucket
}

// sweepLocked drops idle buckets at most once per IdleTTL.
func (s *rateLimiterStore) sweepLocked(now time.Time) {
	ttl := s.config.IdleTTL
	if ttl <= 0 || now.Sub(s.lastSweep) < ttl {
		return
	}
	for k, b := range s.buckets {
		if b.idleSince(now) > ttl {
			delete(s.buckets, k)
		}
	}
	s.lastSweep = now
}

func (s *rateLimiterStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}

// RateLimit limits requests per client address with a token bucket.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	store := newRateLimiterStore(cfg)
	limit := strconv.FormatFloat(cfg.RequestsPerSecond, 'f', 0, 64)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			bucket := store.getBucket(c.RealIP())
			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", limit)

			if !bucket.allow(store.now()) {
				h.Set("Retry-After", strconv.Itoa(bucket.retryAfter()))
				h.Set("X-RateLimit-Remaining", "0")
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}
