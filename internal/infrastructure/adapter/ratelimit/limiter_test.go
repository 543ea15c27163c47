package ratelimit

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreport "github.com/amirhossein-jamali/plutus-backend/internal/domain/port/core"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/usecase/testenv"
	mockcore "github.com/amirhossein-jamali/plutus-backend/mocks/port/core"
)

func exerciseLimiter(t *testing.T, limiter coreport.AttemptLimiter, key string) {
	ctx := context.Background()
	require.NoError(t, limiter.Reset(ctx, key))

	for i := 1; i <= 3; i++ {
		locked, _, err := limiter.Locked(ctx, key)
		require.NoError(t, err)
		assert.False(t, locked, "attempt %d", i)

		count, err := limiter.RecordFailure(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, i, count)
	}

	locked, retryAfter, err := limiter.Locked(ctx, key)
	require.NoError(t, err)
	assert.True(t, locked)
	assert.Positive(t, retryAfter)

	require.NoError(t, limiter.Reset(ctx, key))
	locked, _, err = limiter.Locked(ctx, key)
	require.NoError(t, err)
	assert.False(t, locked)
}

func TestMemoryLimiter(t *testing.T) {
	now := time.Date(2025, 8, 29, 10, 0, 0, 0, time.UTC)
	clock := mockcore.NewMockTimeProvider(t)
	clock.On("Now").Return(now)

	exerciseLimiter(t, NewMemoryLimiter(3, 15*time.Minute, clock), "login:alice")
}

func TestMemoryLimiter_WindowExpires(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, 8, 29, 10, 0, 0, 0, time.UTC)
	clock := mockcore.NewMockTimeProvider(t)
	clock.On("Now").Return(start).Times(3)
	clock.On("Now").Return(start.Add(16 * time.Minute))

	limiter := NewMemoryLimiter(2, 15*time.Minute, clock)
	_, _ = limiter.RecordFailure(ctx, "k")
	_, _ = limiter.RecordFailure(ctx, "k")

	locked, retryAfter, _ := limiter.Locked(ctx, "k")
	assert.True(t, locked)
	assert.Equal(t, 15*time.Minute, retryAfter)

	locked, _, _ = limiter.Locked(ctx, "k")
	assert.False(t, locked)
}

func TestMemoryLimiter_ExpiredKeysArePruned(t *testing.T) {
	ctx := context.Background()
	clock := testenv.NewClock()
	limiter := NewMemoryLimiter(3, 15*time.Minute, clock)

	for i := 0; i < 50; i++ {
		_, err := limiter.RecordFailure(ctx, fmt.Sprintf("login:ghost%d", i))
		require.NoError(t, err)
	}
	assert.Equal(t, 50, limiter.Len())

	clock.Advance(16 * time.Minute)
	_, err := limiter.RecordFailure(ctx, "login:alice")
	require.NoError(t, err)
	assert.Equal(t, 1, limiter.Len())

	clock.Advance(16 * time.Minute)
	assert.Equal(t, 1, limiter.Prune())
	assert.Zero(t, limiter.Len())
}

func TestRedisLimiter(t *testing.T) {
	addr := os.Getenv("PLUTUS_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("PLUTUS_TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	exerciseLimiter(t, NewRedisLimiter(client, "plutus:test", 3, time.Minute), "login:alice")
}
