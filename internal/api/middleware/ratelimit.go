package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultRequests = 100
	defaultWindow   = 60 * time.Second
)

// Decision is the outcome of a single rate limit check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Time
}

// Limiter counts requests per key.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

func normalize(requests int, window time.Duration) (int, time.Duration) {
	if requests <= 0 {
		requests = defaultRequests
	}
	if window <= 0 {
		window = defaultWindow
	}
	return requests, window
}

// MemoryLimiter is a per-process sliding window limiter.
type MemoryLimiter struct {
	requests      int
	window        time.Duration
	clients       map[string]*clientWindow
	mu            sync.RWMutex
	cleanupTicker *time.Ticker
	done          chan struct{}
	now           func() time.Time
}

type clientWindow struct {
	timestamps []time.Time
	mu         sync.Mutex
}

func NewMemoryLimiter(requests int, window time.Duration) *MemoryLimiter {
	requests, window = normalize(requests, window)

	rl := &MemoryLimiter{
		requests:      requests,
		window:        window,
		clients:       make(map[string]*clientWindow),
		cleanupTicker: time.NewTicker(time.Minute),
		done:          make(chan struct{}),
		now:           time.Now,
	}
	go rl.cleanup()

	return rl
}

// Stop ends the background cleanup.
func (rl *MemoryLimiter) Stop() {
	rl.cleanupTicker.Stop()
	close(rl.done)
}

// cleanup drops clients with no activity in the last two windows.
func (rl *MemoryLimiter) cleanup() {
	for {
		select {
		case <-rl.done:
			return
		case <-rl.cleanupTicker.C:
		}

		rl.mu.Lock()
		now := rl.now()
		for key, client := range rl.clients {
			client.mu.Lock()
			if len(client.timestamps) == 0 || now.Sub(client.timestamps[len(client.timestamps)-1]) > rl.window*2 {
				delete(rl.clients, key)
			}
			client.mu.Unlock()
		}
		rl.mu.Unlock()
	}
}

func (rl *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	rl.mu.RLock()
	client, exists := rl.clients[key]
	rl.mu.RUnlock()

	if !exists {
		rl.mu.Lock()
		if client, exists = rl.clients[key]; !exists {
			client = &clientWindow{timestamps: make([]time.Time, 0, rl.requests)}
			rl.clients[key] = client
		}
		rl.mu.Unlock()
	}

	client.mu.Lock()
	defer client.mu.Unlock()

	now := rl.now()
	windowStart := now.Add(-rl.window)

	valid := len(client.timestamps)
	for i, ts := range client.timestamps {
		if ts.After(windowStart) {
			valid = i
			break
		}
	}
	client.timestamps = client.timestamps[valid:]

	if len(client.timestamps) >= rl.requests {
		return Decision{
			Allowed: false,
			Limit:   rl.requests,
			Reset:   client.timestamps[0].Add(rl.window),
		}, nil
	}

	client.timestamps = append(client.timestamps, now)
	return Decision{
		Allowed:   true,
		Limit:     rl.requests,
		Remaining: rl.requests - len(client.timestamps),
		Reset:     now.Add(rl.window),
	}, nil
}

// RedisLimiter is a fixed window limiter shared by every server instance.
type RedisLimiter struct {
	client   *redis.Client
	prefix   string
	requests int
	window   time.Duration
}

func NewRedisLimiter(client *redis.Client, prefix string, requests int, window time.Duration) *RedisLimiter {
	requests, window = normalize(requests, window)
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &RedisLimiter{client: client, prefix: prefix, requests: requests, window: window}
}

func (rl *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	redisKey := fmt.Sprintf("%s:%s", rl.prefix, key)

	count, err := rl.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("incrementing %s: %w", redisKey, err)
	}
	if count == 1 {
		if err := rl.client.Expire(ctx, redisKey, rl.window).Err(); err != nil {
			return Decision{}, fmt.Errorf("setting expiry on %s: %w", redisKey, err)
		}
	}

	ttl, err := rl.client.PTTL(ctx, redisKey).Result()
	if err != nil || ttl < 0 {
		ttl = rl.window
	}

	remaining := rl.requests - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   count <= int64(rl.requests),
		Limit:     rl.requests,
		Remaining: remaining,
		Reset:     time.Now().Add(ttl),
	}, nil
}

// RateLimit limits requests per client IP under scope. A limiter failure is
// logged and the request is let through.
func RateLimit(limiter Limiter, scope string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision, err := limiter.Allow(r.Context(), scope+":"+clientIP(r))
			if err != nil {
				logger.Error("rate limiter unavailable", "scope", scope, "error", err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(decision.Reset.Unix(), 10))

			if !decision.Allowed {
				retry := int64(time.Until(decision.Reset).Seconds()) + 1
				w.Header().Set("Retry-After", strconv.FormatInt(retry, 10))
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP prefers proxy headers and falls back to the connection address.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
