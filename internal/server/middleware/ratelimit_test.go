package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock управляемые часы для limiter
type fakeClock struct {
	now time.Time
	mu  sync.Mutex
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLimiter(t *testing.T, rate int, window time.Duration) (*RateLimiter, *fakeClock) {
	t.Helper()

	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(rate, window, discardLogger())
	rl.now = clock.Now
	t.Cleanup(rl.Stop)

	return rl, clock
}

func TestRateLimiter_Allow(t *testing.T) {
	t.Run("requests over limit are denied", func(t *testing.T) {
		rl, _ := newTestLimiter(t, 3, time.Minute)

		for i := 0; i < 3; i++ {
			assert.True(t, rl.Allow("10.0.0.1"), fmt.Sprintf("request %d should be allowed", i+1))
		}
		assert.False(t, rl.Allow("10.0.0.1"))
	})

	t.Run("keys are tracked separately", func(t *testing.T) {
		rl, _ := newTestLimiter(t, 1, time.Minute)

		assert.True(t, rl.Allow("a"))
		assert.False(t, rl.Allow("a"))
		assert.True(t, rl.Allow("b"))
	})

	t.Run("window refills tokens", func(t *testing.T) {
		rl, clock := newTestLimiter(t, 2, time.Minute)

		assert.True(t, rl.Allow("a"))
		assert.True(t, rl.Allow("a"))
		assert.False(t, rl.Allow("a"))

		clock.Advance(59 * time.Second)
		assert.False(t, rl.Allow("a"))

		clock.Advance(time.Second)
		assert.True(t, rl.Allow("a"))
	})
}

func TestRateLimiter_Concurrent(t *testing.T) {
	rl, _ := newTestLimiter(t, 50, time.Minute)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if rl.Allow("shared") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, allowed)
}

func TestRateLimiter_CleanupOldBuckets(t *testing.T) {
	rl, clock := newTestLimiter(t, 1, time.Minute)

	rl.Allow("old")
	clock.Advance(90 * time.Second)
	rl.Allow("fresh")
	clock.Advance(45 * time.Second)

	assert.Equal(t, 1, rl.cleanupOldBuckets())

	rl.mu.RLock()
	defer rl.mu.RUnlock()
	assert.Contains(t, rl.buckets, "fresh")
	assert.NotContains(t, rl.buckets, "old")
}

func TestRateLimiter_StopTwice(t *testing.T) {
	rl, _ := newTestLimiter(t, 1, time.Minute)
	assert.NotPanics(t, func() {
		rl.Stop()
		rl.Stop()
	})
}

func TestRateLimiter_Middleware(t *testing.T) {
	rl, _ := newTestLimiter(t, 1, 30*time.Second)
	h := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(remote, xff string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
		req.RemoteAddr = remote
		if xff != "" {
			req.Header.Set("X-Forwarded-For", xff)
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w
	}

	require.Equal(t, http.StatusOK, send("192.0.2.1:1234", "").Code)

	// другой порт того же адреса считается тем же клиентом
	w := send("192.0.2.1:5678", "")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "30", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "rate_limited")

	assert.Equal(t, http.StatusOK, send("192.0.2.1:1234", "203.0.113.5, 10.0.0.1").Code)
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		remote  string
		headers map[string]string
		want    string
	}{
		{name: "remote addr", remote: "192.0.2.7:4000", want: "192.0.2.7"},
		{name: "remote without port", remote: "192.0.2.7", want: "192.0.2.7"},
		{name: "forwarded for", remote: "10.0.0.1:1", headers: map[string]string{"X-Forwarded-For": "198.51.100.1, 10.0.0.1"}, want: "198.51.100.1"},
		{name: "real ip", remote: "10.0.0.1:1", headers: map[string]string{"X-Real-IP": "198.51.100.2"}, want: "198.51.100.2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getClientIP(req))
		})
	}
}
