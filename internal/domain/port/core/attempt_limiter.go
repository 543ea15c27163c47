package core

import (
	"context"
	"time"
)

// AttemptLimiter tracks failed attempts per key within a sliding lockout window
type AttemptLimiter interface {
	// Locked reports whether the key is locked out and for how long
	Locked(ctx context.Context, key string) (bool, time.Duration, error)
	// RecordFailure counts a failed attempt and returns the attempts in the current window
	RecordFailure(ctx context.Context, key string) (int, error)
	// Reset clears the attempts for the key
	Reset(ctx context.Context, key string) error
}
