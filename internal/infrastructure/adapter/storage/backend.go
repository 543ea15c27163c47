package storage

import (
	"context"
	"errors"
	"regexp"
	"time"
)

// Backend names
const (
	BackendLocal = "local"
	BackendBlob  = "blob"
)

// ErrTableNotFound is returned by backends when a table has never been written
var ErrTableNotFound = errors.New("table not found")

// ObjectInfo describes a persisted table or backup
type ObjectInfo struct {
	Name       string
	Exists     bool
	SizeBytes  int64
	ModifiedAt time.Time
}

// Backend stores whole CSV tables as opaque byte blobs.
// Encoding, schema checks and in-process locking are the Manager's job.
type Backend interface {
	// Name returns BackendLocal or BackendBlob
	Name() string

	// ReadTable returns the raw table content or ErrTableNotFound
	ReadTable(ctx context.Context, table string) ([]byte, error)

	// WriteTable atomically replaces the table content
	WriteTable(ctx context.Context, table string, data []byte) error

	Exists(ctx context.Context, table string) (bool, error)

	// Backup copies the current table content and returns the backup name
	Backup(ctx context.Context, table string) (string, error)

	Info(ctx context.Context, table string) (ObjectInfo, error)

	// Lock excludes writers in other processes until the returned func is called
	Lock(ctx context.Context, table string) (func(), error)

	ListBackups(ctx context.Context) ([]ObjectInfo, error)

	RemoveBackup(ctx context.Context, name string) error
}

// backupName builds <table>_<YYYYmmdd_HHMMSS>.csv
func backupName(table string, at time.Time) string {
	return table + "_" + at.UTC().Format("20060102_150405") + ".csv"
}

var backupStamp = regexp.MustCompile(`_(\d{8}_\d{6})(?:_\d+)?\.csv$`)

// backupTime recovers the creation time encoded in a backup name
func backupTime(name string) (time.Time, bool) {
	m := backupStamp.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, false
	}
	t, err := time.Parse("20060102_150405", m[1])
	return t, err == nil
}
