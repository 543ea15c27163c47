package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/amirhossein-jamali/plutus-backend/internal/domain/error"
	"github.com/amirhossein-jamali/plutus-backend/internal/infrastructure/adapter/logger"
)

func newTestBlobBackend() (*BlobBackend, *memBlobClient, *testClock) {
	clock := newTestClock()
	client := newMemBlobClient(clock)
	b := NewBlobBackend(client, BlobConfig{
		Prefix:          "/plutus/",
		LeaseTimeout:    time.Second,
		LeaseRetryDelay: 100 * time.Millisecond,
	}, clock, logger.NewNoopLogger())
	return b, client, clock
}

func TestBlobBackend_BlobNames(t *testing.T) {
	ctx := context.Background()
	b, client, _ := newTestBlobBackend()

	require.NoError(t, b.WriteTable(ctx, "users", []byte("user_id\n")))
	ok, err := client.Exists(ctx, "plutus/users.csv")
	require.NoError(t, err)
	assert.True(t, ok)

	name, err := b.Backup(ctx, "users")
	require.NoError(t, err)
	ok, err = client.Exists(ctx, "plutus/backups/"+name)
	require.NoError(t, err)
	assert.True(t, ok)

	backups, err := b.ListBackups(ctx)
	require.NoError(t, err)
	require.Len(t, backups, 1)
	assert.Equal(t, name, backups[0].Name)

	require.NoError(t, b.RemoveBackup(ctx, name))
}

func TestBlobBackend_DetectsConcurrentWriter(t *testing.T) {
	ctx := context.Background()
	b, client, _ := newTestBlobBackend()

	require.NoError(t, b.WriteTable(ctx, "users", []byte("v1\n")))
	_, err := b.ReadTable(ctx, "users")
	require.NoError(t, err)

	// another process rewrites the blob after our read
	_, err = client.Upload(ctx, "plutus/users.csv", []byte("other\n"), UploadOptions{})
	require.NoError(t, err)

	err = b.WriteTable(ctx, "users", []byte("v2\n"))
	assert.ErrorIs(t, err, errs.ErrConcurrentWrite)
}

func TestBlobBackend_CreateRacesAreDetected(t *testing.T) {
	ctx := context.Background()
	b, client, _ := newTestBlobBackend()

	_, err := b.ReadTable(ctx, "users")
	require.ErrorIs(t, err, ErrTableNotFound)

	_, err = client.Upload(ctx, "plutus/users.csv", []byte("other\n"), UploadOptions{})
	require.NoError(t, err)

	assert.ErrorIs(t, b.WriteTable(ctx, "users", []byte("mine\n")), errs.ErrConcurrentWrite)
}

func TestBlobBackend_LeaseExcludesOtherWriters(t *testing.T) {
	ctx := context.Background()
	b, client, _ := newTestBlobBackend()

	foreignLease, err := client.AcquireLease(ctx, "plutus/users.csv", time.Minute)
	require.NoError(t, err)

	_, err = b.Lock(ctx, "users")
	assert.ErrorIs(t, err, errs.ErrLeaseUnavailable)

	require.NoError(t, client.ReleaseLease(ctx, "plutus/users.csv", foreignLease))
	unlock, err := b.Lock(ctx, "users")
	require.NoError(t, err)

	require.NoError(t, b.WriteTable(ctx, "users", []byte("leased\n")))
	unlock()

	_, err = client.AcquireLease(ctx, "plutus/users.csv", time.Minute)
	assert.NoError(t, err, "lease must be released by unlock")
}

func TestBlobBackend_Info(t *testing.T) {
	ctx := context.Background()
	b, _, clock := newTestBlobBackend()

	info, err := b.Info(ctx, "users")
	require.NoError(t, err)
	assert.False(t, info.Exists)

	require.NoError(t, b.WriteTable(ctx, "users", []byte("abc\n")))
	info, err = b.Info(ctx, "users")
	require.NoError(t, err)
	assert.True(t, info.Exists)
	assert.Equal(t, int64(4), info.SizeBytes)
	assert.Equal(t, clock.Now(), info.ModifiedAt)
}
