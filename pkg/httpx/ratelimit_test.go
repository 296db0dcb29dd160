package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aussiebroadwan/spoutbreeze/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func fromIP(ip string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/join/evt-1", nil)
	req.RemoteAddr = ip + ":12345"
	return req
}

func TestIPKeyExtractor(t *testing.T) {
	t.Parallel()

	req := fromIP("192.168.1.1")
	require.Equal(t, "192.168.1.1", httpx.IPKeyExtractor(req))

	req.Header.Set("X-Real-IP", "203.0.113.2")
	require.Equal(t, "203.0.113.2", httpx.IPKeyExtractor(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.1, 192.168.1.1")
	require.Equal(t, "203.0.113.1", httpx.IPKeyExtractor(req))
}

func TestRateLimitBlocksOverLimit(t *testing.T) {
	t.Parallel()

	h := httpx.RateLimitByIP(httpx.RateLimitConfig{
		RequestsPerWindow: 3,
		Window:            time.Minute,
		Burst:             3,
	})(okHandler())

	for i := range 3 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, fromIP("10.0.0.1"))
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, fromIP("10.0.0.1"))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))
	require.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
	require.Equal(t, "1m0s", rec.Header().Get("X-RateLimit-Window"))
	require.Contains(t, rec.Body.String(), "rate_limit_exceeded")

	// Another client is unaffected.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, fromIP("10.0.0.2"))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitEmptyKeyPassesThrough(t *testing.T) {
	t.Parallel()

	h := httpx.RateLimitMiddleware(
		httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1},
		func(*http.Request) string { return "" },
	)(okHandler())

	for range 3 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, fromIP("10.0.0.1"))
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestLimiterRetryAfterAtLeastOneSecond(t *testing.T) {
	t.Parallel()

	l := httpx.NewLimiter(httpx.RateLimitConfig{RequestsPerWindow: 100, Window: time.Second, Burst: 1})

	ok, _ := l.Allow("k")
	require.True(t, ok)

	ok, wait := l.Allow("k")
	require.False(t, ok)
	require.GreaterOrEqual(t, wait, time.Second)
}

func TestJoinLimitDefaults(t *testing.T) {
	t.Parallel()

	require.Positive(t, httpx.JoinLimit.RequestsPerWindow)
	require.Positive(t, httpx.JoinLimit.Burst)
	require.Positive(t, httpx.JoinLimit.Window)
}

func TestParseRateLimitFromEnv(t *testing.T) {
	def := httpx.RateLimitConfig{RequestsPerWindow: 10, Window: time.Minute, Burst: 10}

	t.Run("defaults", func(t *testing.T) {
		require.Equal(t, def, httpx.ParseRateLimitFromEnv("TEST", def))
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("RATELIMIT_TEST_REQUESTS", "50")
		t.Setenv("RATELIMIT_TEST_WINDOW_SEC", "120")
		t.Setenv("RATELIMIT_TEST_BURST", "7")

		got := httpx.ParseRateLimitFromEnv("TEST", def)
		require.Equal(t, httpx.RateLimitConfig{RequestsPerWindow: 50, Window: 2 * time.Minute, Burst: 7}, got)
	})

	t.Run("ignores invalid", func(t *testing.T) {
		t.Setenv("RATELIMIT_TEST_REQUESTS", "-1")
		t.Setenv("RATELIMIT_TEST_BURST", "lots")

		require.Equal(t, def, httpx.ParseRateLimitFromEnv("TEST", def))
	})
}

func TestChainOrder(t *testing.T) {
	t.Parallel()

	var order []string
	mark := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(okHandler(), mark("outer"), mark("inner"))
	h.ServeHTTP(httptest.NewRecorder(), fromIP("10.0.0.1"))

	require.Equal(t, []string{"outer", "inner"}, order)
}

func TestRedirectSetsReason(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	httpx.Redirect(rec, httptest.NewRequest(http.MethodGet, "/home", nil), "/", "unauthenticated")

	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))
	require.Equal(t, "unauthenticated", rec.Header().Get(httpx.RedirectReasonHeader))
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}
