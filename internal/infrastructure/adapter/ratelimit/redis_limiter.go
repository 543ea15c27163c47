package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var recordFailureScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
  ttl = tonumber(ARGV[1])
end
return {current, ttl}
`)

// RedisLimiter counts failed attempts in Redis so every API instance shares the lockout
type RedisLimiter struct {
	client      redis.UniversalClient
	prefix      string
	maxAttempts int
	window      time.Duration
}

// NewRedisLimiter creates a limiter storing counters under <prefix>:<key>
func NewRedisLimiter(client redis.UniversalClient, prefix string, maxAttempts int, windowSize time.Duration) *RedisLimiter {
	prefix = strings.TrimSuffix(strings.TrimSpace(prefix), ":")
	if prefix == "" {
		prefix = "plutus:login_attempts"
	}
	return &RedisLimiter{client: client, prefix: prefix, maxAttempts: maxAttempts, window: windowSize}
}

func (l *RedisLimiter) key(key string) string {
	return l.prefix + ":" + key
}

// Locked reads the counter and its remaining TTL
func (l *RedisLimiter) Locked(ctx context.Context, key string) (bool, time.Duration, error) {
	count, err := l.client.Get(ctx, l.key(key)).Int()
	if errors.Is(err, redis.Nil) {
		return false, 0, nil
	}
	if err != nil {
		return false, 0, err
	}
	if count < l.maxAttempts {
		return false, 0, nil
	}

	ttl, err := l.client.PTTL(ctx, l.key(key)).Result()
	if err != nil {
		return true, l.window, err
	}
	if ttl < 0 {
		ttl = l.window
	}
	return true, ttl, nil
}

// RecordFailure increments the counter, starting the window on the first failure
func (l *RedisLimiter) RecordFailure(ctx context.Context, key string) (int, error) {
	windowMs := l.window.Milliseconds()
	if windowMs < 1000 {
		windowMs = 1000
	}

	raw, err := recordFailureScript.Run(ctx, l.client, []string{l.key(key)}, windowMs).Result()
	if err != nil {
		return 0, err
	}
	values, ok := raw.([]interface{})
	if !ok || len(values) != 2 {
		return 0, fmt.Errorf("unexpected redis limiter response shape: %T", raw)
	}
	count, ok := values[0].(int64)
	if !ok {
		return 0, fmt.Errorf("unexpected redis limiter count type: %T", values[0])
	}
	return int(count), nil
}

// Reset deletes the counter
func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	return l.client.Del(ctx, l.key(key)).Err()
}
