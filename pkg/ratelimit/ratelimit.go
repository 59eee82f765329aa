package ratelimit

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tair/smart-inventory/pkg/logger"
)

const keyPrefix = "ratelimit:"

// Decision is the outcome of one rate limit check
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Limiter counts requests per key
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// RedisLimiter implements a sliding window over a Redis sorted set
type RedisLimiter struct {
	redis       *redis.Client
	maxRequests int
	window      time.Duration
	now         func() time.Time
}

// NewRedisLimiter allows maxRequests per key within window
func NewRedisLimiter(client *redis.Client, maxRequests int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		redis:       client,
		maxRequests: maxRequests,
		window:      window,
		now:         time.Now,
	}
}

// Allow records the request and reports whether it fits the window
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	redisKey := keyPrefix + key
	now := l.now()
	windowStart := now.Add(-l.window)

	pipe := l.redis.Pipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", strconv.FormatInt(windowStart.UnixNano(), 10))
	countCmd := pipe.ZCard(ctx, redisKey)
	pipe.ZAdd(ctx, redisKey, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: now.UnixNano(),
	})
	pipe.Expire(ctx, redisKey, l.window+time.Minute)

	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, fmt.Errorf("rate limit check failed: %w", err)
	}

	count := int(countCmd.Val())
	remaining := l.maxRequests - count - 1
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   count < l.maxRequests,
		Limit:     l.maxRequests,
		Remaining: remaining,
		ResetAt:   now.Add(l.window),
	}, nil
}

// Middleware rejects requests over the limit with 429. scope namespaces the
// counters. Limiter errors let the request through.
func Middleware(limiter Limiter, scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identifier := ClientIP(r)

			decision, err := limiter.Allow(r.Context(), scope+":"+identifier)
			if err != nil {
				logger.Error(r.Context()).Err(err).Str("identifier", identifier).Msg("Rate limiter error")
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))

			if !decision.Allowed {
				logger.Warn(r.Context()).
					Str("identifier", identifier).
					Str("scope", scope).
					Int("limit", decision.Limit).
					Msg("Rate limit exceeded")

				retryAfter := int(time.Until(decision.ResetAt).Round(time.Second).Seconds())
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]interface{}{
					"success": false,
					"error":   "Rate limit exceeded",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the first X-Forwarded-For hop, or the remote address host
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first := strings.TrimSpace(strings.Split(fwd, ",")[0]); first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
