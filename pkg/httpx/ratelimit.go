package httpx

import (
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/spoutbreeze/pkg/slogx"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines the rate limiting parameters.
type RateLimitConfig struct {
	// RequestsPerWindow is the number of requests allowed in the time window
	RequestsPerWindow int
	// Window is the time window for rate limiting
	Window time.Duration
	// Burst allows for temporary bursts above the rate limit
	Burst int
}

// JoinLimit guards the public join page, which calls the backend without
// credentials. Override with RATELIMIT_JOIN_REQUESTS, RATELIMIT_JOIN_WINDOW_SEC
// and RATELIMIT_JOIN_BURST.
var JoinLimit = RateLimitConfig{
	RequestsPerWindow: 30,
	Window:            time.Minute,
	Burst:             10,
}

func init() {
	JoinLimit = ParseRateLimitFromEnv("JOIN", JoinLimit)
}

// ParseRateLimitFromEnv overlays RATELIMIT_{prefix}_{REQUESTS,WINDOW_SEC,BURST}
// onto def. Non-positive or malformed values are ignored.
func ParseRateLimitFromEnv(prefix string, def RateLimitConfig) RateLimitConfig {
	cfg := def
	if n, ok := positiveEnv("RATELIMIT_" + prefix + "_REQUESTS"); ok {
		cfg.RequestsPerWindow = n
	}
	if n, ok := positiveEnv("RATELIMIT_" + prefix + "_WINDOW_SEC"); ok {
		cfg.Window = time.Duration(n) * time.Second
	}
	if n, ok := positiveEnv("RATELIMIT_" + prefix + "_BURST"); ok {
		cfg.Burst = n
	}
	return cfg
}

func positiveEnv(key string) (int, bool) {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// KeyExtractor groups requests for rate limiting.
type KeyExtractor func(*http.Request) string

// IPKeyExtractor returns the client IP, honouring X-Forwarded-For and X-Real-IP.
func IPKeyExtractor(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// Limiter hands out one token bucket per key.
type Limiter struct {
	cfg   RateLimitConfig
	limit rate.Limit

	mu       sync.Mutex
	buckets  map[string]*rate.Limiter
	lastSwep time.Time
}

func NewLimiter(cfg RateLimitConfig) *Limiter {
	return &Limiter{
		cfg:      cfg,
		limit:    rate.Limit(float64(cfg.RequestsPerWindow) / cfg.Window.Seconds()),
		buckets:  make(map[string]*rate.Limiter),
		lastSwep: time.Now(),
	}
}

// Allow consumes a token for key. When it refuses, retryAfter is the wait
// until the next token, rounded up to at least one second.
func (l *Limiter) Allow(key string) (ok bool, retryAfter time.Duration) {
	l.mu.Lock()
	b, found := l.buckets[key]
	if !found {
		b = rate.NewLimiter(l.limit, l.cfg.Burst)
		l.buckets[key] = b
	}
	l.sweepLocked()
	l.mu.Unlock()

	if b.Allow() {
		return true, 0
	}

	res := b.Reserve()
	delay := res.Delay()
	res.Cancel()
	return false, max(delay.Round(time.Second), time.Second)
}

// sweepLocked drops idle buckets (full of tokens) every few minutes so
// one-off clients do not accumulate.
func (l *Limiter) sweepLocked() {
	if time.Since(l.lastSwep) < 5*time.Minute {
		return
	}
	l.lastSwep = time.Now()
	for k, b := range l.buckets {
		if b.Tokens() >= float64(l.cfg.Burst) {
			delete(l.buckets, k)
		}
	}
}

// RateLimitMiddleware rejects requests over cfg with 429 and a Retry-After header.
// Requests whose key cannot be extracted pass through.
func RateLimitMiddleware(cfg RateLimitConfig, keyOf KeyExtractor) Middleware {
	l := NewLimiter(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyOf(r)
			if key == "" {
				slogx.FromContext(r.Context()).Warn("rate limit: no key, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			ok, wait := l.Allow(key)
			if ok {
				next.ServeHTTP(w, r)
				return
			}

			secs := int(wait / time.Second)
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.RequestsPerWindow))
			w.Header().Set("X-RateLimit-Window", cfg.Window.String())

			slogx.FromContext(r.Context()).Warn("rate limit exceeded",
				"key", key,
				"path", r.URL.Path,
				"retry_after", secs,
			)
			WriteError(w, http.StatusTooManyRequests, "rate_limit_exceeded",
				"Too many requests. Please try again later.")
		})
	}
}

// RateLimitByIP limits by client IP only.
func RateLimitByIP(cfg RateLimitConfig) Middleware {
	return RateLimitMiddleware(cfg, IPKeyExtractor)
}
