package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimitByIP(t *testing.T) {
	limited := Chain(okHandler(), RateLimitByIP(RateLimitConfig{
		RequestsPerWindow: 2,
		Window:            time.Minute,
		Burst:             2,
	}))

	do := func(remoteAddr string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = remoteAddr
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, do("10.0.0.1:1234"))
	require.Equal(t, http.StatusOK, do("10.0.0.1:1234"))
	require.Equal(t, http.StatusTooManyRequests, do("10.0.0.1:1234"))

	// A different client is unaffected.
	require.Equal(t, http.StatusOK, do("10.0.0.2:1234"))
}

func TestRateLimitByUser(t *testing.T) {
	limited := Chain(okHandler(), RateLimitByUser(RateLimitConfig{
		RequestsPerWindow: 1,
		Window:            time.Minute,
		Burst:             1,
	}))

	do := func(userID string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if userID != "" {
			req = req.WithContext(context.WithValue(req.Context(), CtxKeyUserID, userID))
		}
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, do("user-a"))
	require.Equal(t, http.StatusTooManyRequests, do("user-a"))
	require.Equal(t, http.StatusOK, do("user-b"))
}

func TestRateLimitRefills(t *testing.T) {
	limited := Chain(okHandler(), RateLimitByIP(RateLimitConfig{
		RequestsPerWindow: 10,
		Window:            time.Second,
		Burst:             1,
	}))

	req := func() int {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = "10.0.0.9:1234"
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, r)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, req())
	require.Equal(t, http.StatusTooManyRequests, req())

	// One token refills after ~100ms at 10 rps.
	time.Sleep(150 * time.Millisecond)
	require.Equal(t, http.StatusOK, req())
}

func TestParseRateLimitFromEnv(t *testing.T) {
	base := RateLimitConfig{RequestsPerWindow: 5, Window: time.Minute, Burst: 5}

	t.Run("unset leaves defaults", func(t *testing.T) {
		cfg := ParseRateLimitFromEnv("TESTPROFILE", base)
		require.Equal(t, base, cfg)
	})

	t.Run("overrides apply", func(t *testing.T) {
		t.Setenv("RATELIMIT_TESTPROFILE_REQUESTS", "42")
		t.Setenv("RATELIMIT_TESTPROFILE_WINDOW_SEC", "30")
		t.Setenv("RATELIMIT_TESTPROFILE_BURST", "7")

		cfg := ParseRateLimitFromEnv("TESTPROFILE", base)
		require.Equal(t, 42, cfg.RequestsPerWindow)
		require.Equal(t, 30*time.Second, cfg.Window)
		require.Equal(t, 7, cfg.Burst)
	})
}
