package ratelimit

import (
	"context"
	"sync"
	"time"

	coreport "github.com/amirhossein-jamali/plutus-backend/internal/domain/port/core"
)

type window struct {
	count   int
	expires time.Time
}

// MemoryLimiter counts failed attempts per key in process memory.
// The window starts at the first failure; the key stays locked until the window ends.
type MemoryLimiter struct {
	mu          sync.Mutex
	maxAttempts int
	window      time.Duration
	clock       coreport.TimeProvider
	entries     map[string]*window
	lastSweep   time.Time
}

// NewMemoryLimiter creates a limiter that locks a key after maxAttempts failures within window
func NewMemoryLimiter(maxAttempts int, windowSize time.Duration, clock coreport.TimeProvider) *MemoryLimiter {
	return &MemoryLimiter{
		maxAttempts: maxAttempts,
		window:      windowSize,
		clock:       clock,
		entries:     make(map[string]*window),
	}
}

func (l *MemoryLimiter) current(key string, now time.Time) *window {
	w, ok := l.entries[key]
	if !ok {
		return nil
	}
	if !now.Before(w.expires) {
		delete(l.entries, key)
		return nil
	}
	return w
}

// Locked reports whether the key reached the attempt limit and the remaining lockout
func (l *MemoryLimiter) Locked(_ context.Context, key string) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	w := l.current(key, now)
	if w == nil || w.count < l.maxAttempts {
		return false, 0, nil
	}
	return true, w.expires.Sub(now), nil
}

// RecordFailure counts a failed attempt
func (l *MemoryLimiter) RecordFailure(_ context.Context, key string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	if now.Sub(l.lastSweep) >= l.window {
		l.prune(now)
	}
	w := l.current(key, now)
	if w == nil {
		w = &window{expires: now.Add(l.window)}
		l.entries[key] = w
	}
	w.count++
	return w.count, nil
}

// Prune drops every expired window and returns how many were removed.
// RecordFailure also prunes once per window so unknown keys cannot pile up.
func (l *MemoryLimiter) Prune() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.prune(l.clock.Now())
}

func (l *MemoryLimiter) prune(now time.Time) int {
	removed := 0
	for key, w := range l.entries {
		if !now.Before(w.expires) {
			delete(l.entries, key)
			removed++
		}
	}
	l.lastSweep = now
	return removed
}

// Len returns the number of tracked keys
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Reset forgets the key
func (l *MemoryLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, key)
	return nil
}
