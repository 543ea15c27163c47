package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/amirhossein-jamali/plutus-backend/internal/domain/error"
	"github.com/amirhossein-jamali/plutus-backend/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/plutus-backend/internal/infrastructure/adapter/storage"
)

func newTestBlobStore(t *testing.T) *BlobStore {
	log := logger.NewNoopLogger()
	m := NewTestDBManager(t, log)
	return NewBlobStore(m.Manager, m.TimeProvider, log)
}

func TestBlobStore_UploadConditions(t *testing.T) {
	ctx := context.Background()
	store := newTestBlobStore(t)
	name := "plutus/users.csv"

	_, _, err := store.Download(ctx, name)
	require.ErrorIs(t, err, storage.ErrBlobNotFound)

	etag, err := store.Upload(ctx, name, []byte("user_id\n"), storage.UploadOptions{IfNoneMatch: true})
	require.NoError(t, err)

	_, err = store.Upload(ctx, name, []byte("other\n"), storage.UploadOptions{IfNoneMatch: true})
	assert.ErrorIs(t, err, errs.ErrConcurrentWrite)

	_, err = store.Upload(ctx, name, []byte("other\n"), storage.UploadOptions{IfMatch: "stale"})
	assert.ErrorIs(t, err, errs.ErrConcurrentWrite)

	newETag, err := store.Upload(ctx, name, []byte("user_id\nUSR1\n"), storage.UploadOptions{IfMatch: etag})
	require.NoError(t, err)
	assert.NotEqual(t, etag, newETag)

	data, gotETag, err := store.Download(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, "user_id\nUSR1\n", string(data))
	assert.Equal(t, newETag, gotETag)

	props, err := store.Properties(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), props.Size)
}

func TestBlobStore_Leases(t *testing.T) {
	ctx := context.Background()
	store := newTestBlobStore(t)
	name := "plutus/transactions.csv"

	leaseID, err := store.AcquireLease(ctx, name, time.Minute)
	require.NoError(t, err)

	_, err = store.AcquireLease(ctx, name, time.Minute)
	assert.ErrorIs(t, err, errs.ErrLeaseUnavailable)

	_, err = store.Upload(ctx, name, []byte("x\n"), storage.UploadOptions{})
	assert.ErrorIs(t, err, errs.ErrLeaseUnavailable)

	_, err = store.Upload(ctx, name, []byte("x\n"), storage.UploadOptions{LeaseID: leaseID})
	require.NoError(t, err)

	require.NoError(t, store.ReleaseLease(ctx, name, leaseID))
	_, err = store.AcquireLease(ctx, name, -time.Second)
	require.NoError(t, err)

	// the lease above expired on arrival
	removed, err := store.DeleteExpiredLeases(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}

func TestBlobStore_CopyListDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestBlobStore(t)

	_, err := store.Upload(ctx, "plutus/users.csv", []byte("a\n"), storage.UploadOptions{})
	require.NoError(t, err)
	require.NoError(t, store.Copy(ctx, "plutus/users.csv", "plutus/backups/users_20250829_100000.csv"))
	require.NoError(t, store.Copy(ctx, "plutus/users.csv", "plutus/backups/users_20250830_100000.csv"))
	assert.ErrorIs(t, store.Copy(ctx, "plutus/missing.csv", "plutus/backups/x.csv"), storage.ErrBlobNotFound)

	list, err := store.List(ctx, "plutus/backups/")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "plutus/backups/users_20250829_100000.csv", list[0].Name)

	require.NoError(t, store.Delete(ctx, list[0].Name))
	assert.ErrorIs(t, store.Delete(ctx, list[0].Name), storage.ErrBlobNotFound)

	exists, err := store.Exists(ctx, "plutus/backups/users_20250830_100000.csv")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestBlobStore_BackendRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestBlobStore(t)
	log := logger.NewNoopLogger()
	backend := storage.NewBlobBackend(store, storage.BlobConfig{Prefix: "plutus"}, store.clock, log)

	unlock, err := backend.Lock(ctx, "users")
	require.NoError(t, err)
	_, err = backend.ReadTable(ctx, "users")
	require.ErrorIs(t, err, storage.ErrTableNotFound)
	require.NoError(t, backend.WriteTable(ctx, "users", []byte("user_id,username\nUSR1,alice\n")))
	unlock()

	data, err := backend.ReadTable(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, "user_id,username\nUSR1,alice\n", string(data))
}
