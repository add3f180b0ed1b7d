package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// FailureTracker stores per-key authentication failure counters in Redis.
//
// RecordFailure relies on INCR for atomicity: parallel failures against the
// same key cannot lose updates. Every key carries a TTL equal to the block
// duration, so abandoned counters self-expire and the count resets once the
// window elapses.
type FailureTracker struct {
	client        *redis.Client
	maxAttempts   int
	blockDuration time.Duration
}

func NewFailureTracker(client *redis.Client, maxAttempts int, blockDuration time.Duration) *FailureTracker {
	return &FailureTracker{client: client, maxAttempts: maxAttempts, blockDuration: blockDuration}
}

// IsBlocked reports whether key has reached the failure threshold. Read-only.
func (t *FailureTracker) IsBlocked(ctx context.Context, key string) (bool, error) {
	n, err := t.client.Get(ctx, key).Int()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failure tracker get: %w", err)
	}
	return n >= t.maxAttempts, nil
}

// RecordFailure atomically increments the counter for key. The TTL is set
// on the first failure and restarted when the threshold is hit, so the
// block window runs from the failure that triggered the lock.
func (t *FailureTracker) RecordFailure(ctx context.Context, key string) error {
	count, err := t.client.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failure tracker incr: %w", err)
	}

	if count == 1 || count >= int64(t.maxAttempts) {
		if err := t.client.Expire(ctx, key, t.blockDuration).Err(); err != nil {
			return fmt.Errorf("failure tracker expire: %w", err)
		}
	}
	return nil
}
