package ports

import "context"

// FailureTracker maintains per-key authentication failure counters with
// lockout semantics. Keys are opaque strings; callers track the email and
// the client IP as independent keys.
//
// IsBlocked is read-only: checking never mutates a counter. RecordFailure
// is the sole mutator and must not lose updates under concurrent callers
// hammering the same key.
type FailureTracker interface {
	IsBlocked(ctx context.Context, key string) (bool, error)
	RecordFailure(ctx context.Context, key string) error
}
