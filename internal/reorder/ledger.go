package reorder

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// AttemptLedger remembers which items were already ordered in a cycle
type AttemptLedger interface {
	// Acquire claims the (cycle, item) slot. It reports false when the slot
	// was claimed before.
	Acquire(ctx context.Context, cycle string, itemID uint) (bool, error)
	// Release frees the slot so a failed order can be retried in the same cycle.
	Release(ctx context.Context, cycle string, itemID uint) error
}

const attemptKeyPrefix = "reorder:"

// RedisAttemptLedger stores attempts as expiring Redis keys
type RedisAttemptLedger struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisAttemptLedger creates a new Redis attempt ledger
func NewRedisAttemptLedger(client *redis.Client, ttl time.Duration) *RedisAttemptLedger {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisAttemptLedger{client: client, ttl: ttl}
}

func attemptKey(cycle string, itemID uint) string {
	return fmt.Sprintf("%s%s:%d", attemptKeyPrefix, cycle, itemID)
}

// Acquire claims the slot with SETNX
func (l *RedisAttemptLedger) Acquire(ctx context.Context, cycle string, itemID uint) (bool, error) {
	ok, err := l.client.SetNX(ctx, attemptKey(cycle, itemID), time.Now().UTC().Format(time.RFC3339), l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to record reorder attempt: %w", err)
	}
	return ok, nil
}

// Release deletes the slot
func (l *RedisAttemptLedger) Release(ctx context.Context, cycle string, itemID uint) error {
	return l.client.Del(ctx, attemptKey(cycle, itemID)).Err()
}
