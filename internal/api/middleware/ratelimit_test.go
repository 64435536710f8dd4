package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestMemoryLimiter_SlidingWindow(t *testing.T) {
	rl := NewMemoryLimiter(2, time.Minute)
	defer rl.Stop()

	now := time.Now()
	rl.now = func() time.Time { return now }
	ctx := context.Background()

	d, err := rl.Allow(ctx, "a")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Remaining)

	d, _ = rl.Allow(ctx, "a")
	assert.True(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)

	d, _ = rl.Allow(ctx, "a")
	assert.False(t, d.Allowed)
	assert.Equal(t, now.Add(time.Minute), d.Reset)

	d, _ = rl.Allow(ctx, "b")
	assert.True(t, d.Allowed, "keys are independent")

	now = now.Add(time.Minute + time.Second)
	d, _ = rl.Allow(ctx, "a")
	assert.True(t, d.Allowed, "window slides")
}

func TestMemoryLimiter_Defaults(t *testing.T) {
	rl := NewMemoryLimiter(0, 0)
	defer rl.Stop()

	assert.Equal(t, defaultRequests, rl.requests)
	assert.Equal(t, defaultWindow, rl.window)
}

func setupRedisLimiter(t *testing.T, requests int) (*RedisLimiter, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLimiter(client, "test", requests, time.Minute), mr
}

func TestRedisLimiter_FixedWindow(t *testing.T) {
	rl, mr := setupRedisLimiter(t, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		d, err := rl.Allow(ctx, "login:1.2.3.4")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	}

	d, err := rl.Allow(ctx, "login:1.2.3.4")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)

	assert.True(t, mr.Exists("test:login:1.2.3.4"))
	assert.Equal(t, time.Minute, mr.TTL("test:login:1.2.3.4"))

	mr.FastForward(time.Minute + time.Second)

	d, err = rl.Allow(ctx, "login:1.2.3.4")
	require.NoError(t, err)
	assert.True(t, d.Allowed, "counter resets once the key expires")
}

func TestRedisLimiter_Unavailable(t *testing.T) {
	rl, mr := setupRedisLimiter(t, 2)
	mr.SetError("ERR redis unavailable")

	_, err := rl.Allow(context.Background(), "k")
	assert.Error(t, err)
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (Decision, error) {
	return Decision{}, errors.New("down")
}

func TestRateLimit_Middleware(t *testing.T) {
	rl := NewMemoryLimiter(1, time.Minute)
	defer rl.Stop()

	handler := RateLimit(rl, "login", discard)(okHandler(t, nil))

	send := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/api/v1/auth/login", nil)
		req.Header.Set("X-Forwarded-For", ip+", 10.0.0.1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	rec := send("1.1.1.1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = send("1.1.1.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "rate limit exceeded")

	assert.Equal(t, http.StatusOK, send("2.2.2.2").Code)
}

func TestRateLimit_FailsOpen(t *testing.T) {
	handler := RateLimit(failingLimiter{}, "login", discard)(okHandler(t, nil))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": "9.9.9.9, 10.0.0.1"}, "127.0.0.1:1234", "9.9.9.9"},
		{"real ip", map[string]string{"X-Real-IP": "8.8.8.8"}, "127.0.0.1:1234", "8.8.8.8"},
		{"remote addr", nil, "192.168.1.5:4321", "192.168.1.5"},
		{"ipv6 remote addr", nil, "[::1]:4321", "::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, clientIP(req))
		})
	}
}
