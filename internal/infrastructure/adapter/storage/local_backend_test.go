package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/plutus-backend/internal/infrastructure/adapter/logger"
)

func newTestLocalBackend(t *testing.T) (*LocalBackend, afero.Fs, *testClock) {
	t.Helper()
	fs := afero.NewMemMapFs()
	clock := newTestClock()
	b, err := NewLocalBackend(fs, LocalConfig{DataDir: "data", FileLock: true}, clock, logger.NewNoopLogger())
	require.NoError(t, err)
	return b, fs, clock
}

func TestLocalBackend_ReadWrite(t *testing.T) {
	ctx := context.Background()
	b, fs, _ := newTestLocalBackend(t)

	_, err := b.ReadTable(ctx, "users")
	assert.ErrorIs(t, err, ErrTableNotFound)

	require.NoError(t, b.WriteTable(ctx, "users", []byte("user_id\nUSR1\n")))
	data, err := b.ReadTable(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, "user_id\nUSR1\n", string(data))

	exists, err := b.Exists(ctx, "users")
	require.NoError(t, err)
	assert.True(t, exists)

	// no temporary files left behind by the rename
	entries, err := afero.ReadDir(fs, "data")
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp-")
	}
}

func TestLocalBackend_Backups(t *testing.T) {
	ctx := context.Background()
	b, fs, clock := newTestLocalBackend(t)

	_, err := b.Backup(ctx, "users")
	assert.ErrorIs(t, err, ErrTableNotFound)

	require.NoError(t, b.WriteTable(ctx, "users", []byte("user_id\n")))
	first, err := b.Backup(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, "users_20250829_100000.csv", first)

	second, err := b.Backup(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, "users_20250829_100000_1.csv", second)

	clock.Advance(time.Hour)
	ok, err := afero.Exists(fs, filepath.Join("data", "backups", first))
	require.NoError(t, err)
	assert.True(t, ok)

	backups, err := b.ListBackups(ctx)
	require.NoError(t, err)
	assert.Len(t, backups, 2)

	require.NoError(t, b.RemoveBackup(ctx, first))
	assert.Error(t, b.RemoveBackup(ctx, "../users.csv"))

	backups, err = b.ListBackups(ctx)
	require.NoError(t, err)
	assert.Len(t, backups, 1)
}

func TestLocalBackend_LockDisabledOnMemFs(t *testing.T) {
	b, _, _ := newTestLocalBackend(t)
	assert.False(t, b.cfg.FileLock)

	unlock, err := b.Lock(context.Background(), "users")
	require.NoError(t, err)
	unlock()
}

func TestLocalBackend_FileLockOnDisk(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	b, err := NewLocalBackend(afero.NewOsFs(), LocalConfig{
		DataDir:     dir,
		FileLock:    true,
		LockTimeout: 100 * time.Millisecond,
	}, newTestClock(), logger.NewNoopLogger())
	require.NoError(t, err)

	unlock, err := b.Lock(ctx, "users")
	require.NoError(t, err)

	other, err := NewLocalBackend(afero.NewOsFs(), LocalConfig{
		DataDir:     dir,
		FileLock:    true,
		LockTimeout: 100 * time.Millisecond,
	}, newTestClock(), logger.NewNoopLogger())
	require.NoError(t, err)

	_, err = other.Lock(ctx, "users")
	assert.Error(t, err)

	unlock()
	unlockOther, err := other.Lock(ctx, "users")
	require.NoError(t, err)
	unlockOther()
}
