package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/afero"

	coreport "github.com/amirhossein-jamali/plutus-backend/internal/domain/port/core"
)

const backupDir = "backups"

// LocalConfig configures the filesystem backend
type LocalConfig struct {
	DataDir string
	// FileLock enables cross-process flock locks; only honoured on the OS filesystem
	FileLock        bool
	LockTimeout     time.Duration
	LockRetryPeriod time.Duration
}

// LocalBackend keeps each table in <DataDir>/<table>.csv
type LocalBackend struct {
	fs     afero.Fs
	cfg    LocalConfig
	clock  coreport.TimeProvider
	logger coreport.Logger
}

// NewLocalBackend creates the data and backup directories when missing
func NewLocalBackend(fs afero.Fs, cfg LocalConfig, clock coreport.TimeProvider, logger coreport.Logger) (*LocalBackend, error) {
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	if cfg.LockTimeout <= 0 {
		cfg.LockTimeout = 10 * time.Second
	}
	if cfg.LockRetryPeriod <= 0 {
		cfg.LockRetryPeriod = 50 * time.Millisecond
	}
	if err := fs.MkdirAll(filepath.Join(cfg.DataDir, backupDir), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory %s: %w", cfg.DataDir, err)
	}
	if _, isOS := fs.(*afero.OsFs); cfg.FileLock && !isOS {
		logger.Warn("File locking disabled for non-OS filesystem", map[string]any{"data_dir": cfg.DataDir})
		cfg.FileLock = false
	}
	return &LocalBackend{fs: fs, cfg: cfg, clock: clock, logger: logger}, nil
}

// Name returns BackendLocal
func (b *LocalBackend) Name() string { return BackendLocal }

func (b *LocalBackend) tablePath(table string) string {
	return filepath.Join(b.cfg.DataDir, table+".csv")
}

// ReadTable reads <table>.csv
func (b *LocalBackend) ReadTable(_ context.Context, table string) ([]byte, error) {
	data, err := afero.ReadFile(b.fs, b.tablePath(table))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrTableNotFound
	}
	return data, err
}

// WriteTable writes to a temporary file in the same directory and renames it over the table
func (b *LocalBackend) WriteTable(_ context.Context, table string, data []byte) error {
	target := b.tablePath(table)
	tmp := target + ".tmp-" + uuid.NewString()[:8]

	if err := afero.WriteFile(b.fs, tmp, data, 0o644); err != nil {
		_ = b.fs.Remove(tmp)
		return err
	}
	if err := b.fs.Rename(tmp, target); err != nil {
		_ = b.fs.Remove(tmp)
		return err
	}
	return nil
}

// Exists reports whether the table file is present
func (b *LocalBackend) Exists(_ context.Context, table string) (bool, error) {
	return afero.Exists(b.fs, b.tablePath(table))
}

// Backup copies the table into the backups directory
func (b *LocalBackend) Backup(ctx context.Context, table string) (string, error) {
	data, err := b.ReadTable(ctx, table)
	if err != nil {
		return "", err
	}

	name := backupName(table, b.clock.Now())
	base := strings.TrimSuffix(name, ".csv")
	path := filepath.Join(b.cfg.DataDir, backupDir, name)
	// several backups within one second get a counter suffix
	for i := 1; ; i++ {
		exists, err := afero.Exists(b.fs, path)
		if err != nil {
			return "", err
		}
		if !exists {
			break
		}
		name = fmt.Sprintf("%s_%d.csv", base, i)
		path = filepath.Join(b.cfg.DataDir, backupDir, name)
	}

	if err := afero.WriteFile(b.fs, path, data, 0o644); err != nil {
		return "", err
	}
	return name, nil
}

// Info stats the table file
func (b *LocalBackend) Info(_ context.Context, table string) (ObjectInfo, error) {
	info := ObjectInfo{Name: table}
	st, err := b.fs.Stat(b.tablePath(table))
	if errors.Is(err, os.ErrNotExist) {
		return info, nil
	}
	if err != nil {
		return info, err
	}
	info.Exists = true
	info.SizeBytes = st.Size()
	info.ModifiedAt = st.ModTime().UTC()
	return info, nil
}

// Lock takes <table>.csv.lock with flock when file locking is enabled
func (b *LocalBackend) Lock(ctx context.Context, table string) (func(), error) {
	if !b.cfg.FileLock {
		return func() {}, nil
	}

	lock := flock.New(b.tablePath(table) + ".lock")
	lockCtx, cancel := context.WithTimeout(ctx, b.cfg.LockTimeout)
	defer cancel()

	locked, err := lock.TryLockContext(lockCtx, b.cfg.LockRetryPeriod)
	if err != nil || !locked {
		if err == nil {
			err = context.DeadlineExceeded
		}
		return nil, fmt.Errorf("acquiring file lock for %s: %w", table, err)
	}

	return func() {
		if err := lock.Unlock(); err != nil {
			b.logger.Warn("Failed to release table file lock", map[string]any{
				"table": table,
				"error": err.Error(),
			})
		}
	}, nil
}

// ListBackups returns the backup files, oldest first
func (b *LocalBackend) ListBackups(_ context.Context) ([]ObjectInfo, error) {
	entries, err := afero.ReadDir(b.fs, filepath.Join(b.cfg.DataDir, backupDir))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	backups := make([]ObjectInfo, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}
		info := ObjectInfo{
			Name:       e.Name(),
			Exists:     true,
			SizeBytes:  e.Size(),
			ModifiedAt: e.ModTime().UTC(),
		}
		if created, ok := backupTime(info.Name); ok {
			info.ModifiedAt = created
		}
		backups = append(backups, info)
	}
	sort.Slice(backups, func(i, j int) bool { return backups[i].ModifiedAt.Before(backups[j].ModifiedAt) })
	return backups, nil
}

// RemoveBackup deletes one backup file
func (b *LocalBackend) RemoveBackup(_ context.Context, name string) error {
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid backup name %q", name)
	}
	return b.fs.Remove(filepath.Join(b.cfg.DataDir, backupDir, name))
}
