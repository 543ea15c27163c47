package core

import (
	"context"
	"time"
)

// TimeProvider abstracts clock operations for the domain
type TimeProvider interface {
	// Now returns the current instant in UTC
	Now() time.Time
	Since(t time.Time) time.Duration
	// After waits for the duration to elapse and then sends the current time
	After(d time.Duration) <-chan time.Time
	WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc)
}
