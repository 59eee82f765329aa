package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingLimiter struct {
	max  int
	seen map[string]int
	err  error
}

func (l *countingLimiter) Allow(_ context.Context, key string) (Decision, error) {
	if l.err != nil {
		return Decision{}, l.err
	}
	l.seen[key]++
	return Decision{
		Allowed:   l.seen[key] <= l.max,
		Limit:     l.max,
		Remaining: l.max - l.seen[key],
		ResetAt:   time.Now().Add(time.Minute),
	}, nil
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddleware_RejectsOverLimitPerClient(t *testing.T) {
	limiter := &countingLimiter{max: 2, seen: map[string]int{}}
	h := Middleware(limiter, "login")(okHandler())

	call := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/auth/login", nil)
		req.RemoteAddr = ip + ":5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, call("10.0.0.1").Code)

	rec := call("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, call("10.0.0.2").Code)
	assert.Equal(t, 3, limiter.seen["login:10.0.0.1"])
}

func TestMiddleware_FailsOpenOnLimiterError(t *testing.T) {
	h := Middleware(&countingLimiter{err: errors.New("redis down")}, "login")(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/auth/login", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "192.168.1.9:4000"
	assert.Equal(t, "192.168.1.9", ClientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", ClientIP(req))
}

func TestRedisLimiter(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	defer client.Close()

	ctx := context.Background()
	key := fmt.Sprintf("test-%d", time.Now().UnixNano())
	defer client.Del(ctx, keyPrefix+key)

	limiter := NewRedisLimiter(client, 2, time.Minute)
	for i := 0; i < 2; i++ {
		d, err := limiter.Allow(ctx, key)
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	}

	d, err := limiter.Allow(ctx, key)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
}
