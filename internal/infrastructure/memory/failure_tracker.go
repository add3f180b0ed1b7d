// Package memory provides in-process implementations of infrastructure
// ports, used in tests and in deployments that run without Redis.
package memory

import (
	"context"
	"sync"
	"time"
)

type failureEntry struct {
	count       int
	lockedUntil time.Time
	expiresAt   time.Time
}

// FailureTracker is a mutex-guarded map of failure counters with TTL
// semantics. Entries expire blockDuration after their last recorded
// failure, so the counter resets once the window elapses and the map stays
// bounded.
type FailureTracker struct {
	mu            sync.Mutex
	entries       map[string]*failureEntry
	maxAttempts   int
	blockDuration time.Duration
	now           func() time.Time
}

func NewFailureTracker(maxAttempts int, blockDuration time.Duration) *FailureTracker {
	return &FailureTracker{
		entries:       make(map[string]*failureEntry),
		maxAttempts:   maxAttempts,
		blockDuration: blockDuration,
		now:           time.Now,
	}
}

// IsBlocked reports whether key has reached the failure threshold inside
// its block window. It never increments the counter.
func (t *FailureTracker) IsBlocked(_ context.Context, key string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[key]
	if !ok {
		return false, nil
	}

	now := t.now()
	if !now.Before(e.expiresAt) {
		delete(t.entries, key)
		return false, nil
	}
	return e.count >= t.maxAttempts && now.Before(e.lockedUntil), nil
}

// RecordFailure increments the counter for key under the lock, so parallel
// failures against the same key never lose updates. Reaching the threshold
// starts the block window.
func (t *FailureTracker) RecordFailure(_ context.Context, key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	e, ok := t.entries[key]
	if !ok || !now.Before(e.expiresAt) {
		e = &failureEntry{}
		t.entries[key] = e
	}

	e.count++
	e.expiresAt = now.Add(t.blockDuration)
	if e.count >= t.maxAttempts {
		e.lockedUntil = now.Add(t.blockDuration)
	}
	return nil
}
