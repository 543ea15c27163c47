package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	errs "github.com/amirhossein-jamali/plutus-backend/internal/domain/error"
	coreport "github.com/amirhossein-jamali/plutus-backend/internal/domain/port/core"
)

// ErrBlobNotFound is returned by a BlobClient for a missing blob
var ErrBlobNotFound = errors.New("blob not found")

// UploadOptions makes an upload conditional
type UploadOptions struct {
	// IfMatch requires the current ETag to equal this value
	IfMatch string
	// IfNoneMatch requires the blob to not exist yet
	IfNoneMatch bool
	// LeaseID must match the active lease on the blob, if any
	LeaseID string
}

// BlobProperties describes a stored blob
type BlobProperties struct {
	Name         string
	ETag         string
	Size         int64
	LastModified time.Time
}

// BlobClient is the object store the blob backend runs on.
// Conditional uploads fail with ErrConcurrentWrite, busy leases with ErrLeaseUnavailable.
type BlobClient interface {
	Download(ctx context.Context, name string) ([]byte, string, error)
	Upload(ctx context.Context, name string, data []byte, opts UploadOptions) (string, error)
	Exists(ctx context.Context, name string) (bool, error)
	Copy(ctx context.Context, src, dst string) error
	Properties(ctx context.Context, name string) (BlobProperties, error)
	List(ctx context.Context, prefix string) ([]BlobProperties, error)
	Delete(ctx context.Context, name string) error
	AcquireLease(ctx context.Context, name string, ttl time.Duration) (string, error)
	ReleaseLease(ctx context.Context, name, leaseID string) error
}

// BlobConfig configures the blob backend
type BlobConfig struct {
	Prefix          string
	LeaseDuration   time.Duration
	LeaseRetryDelay time.Duration
	LeaseTimeout    time.Duration
}

// BlobBackend keeps each table in the blob <prefix>/<table>.csv
type BlobBackend struct {
	client BlobClient
	cfg    BlobConfig
	clock  coreport.TimeProvider
	logger coreport.Logger

	mu     sync.Mutex
	etags  map[string]string // ETag seen by the last read, per table
	leases map[string]string // lease held by this process, per table
}

// NewBlobBackend creates a blob backend over the client
func NewBlobBackend(client BlobClient, cfg BlobConfig, clock coreport.TimeProvider, logger coreport.Logger) *BlobBackend {
	if cfg.LeaseDuration <= 0 {
		cfg.LeaseDuration = 30 * time.Second
	}
	if cfg.LeaseRetryDelay <= 0 {
		cfg.LeaseRetryDelay = 100 * time.Millisecond
	}
	if cfg.LeaseTimeout <= 0 {
		cfg.LeaseTimeout = 10 * time.Second
	}
	cfg.Prefix = strings.Trim(cfg.Prefix, "/")
	return &BlobBackend{
		client: client,
		cfg:    cfg,
		clock:  clock,
		logger: logger,
		etags:  make(map[string]string),
		leases: make(map[string]string),
	}
}

// Name returns BackendBlob
func (b *BlobBackend) Name() string { return BackendBlob }

func (b *BlobBackend) blobName(table string) string {
	return path.Join(b.cfg.Prefix, table+".csv")
}

func (b *BlobBackend) backupPrefix() string {
	return path.Join(b.cfg.Prefix, backupDir) + "/"
}

// ReadTable downloads the table blob and remembers its ETag
func (b *BlobBackend) ReadTable(ctx context.Context, table string) ([]byte, error) {
	data, etag, err := b.client.Download(ctx, b.blobName(table))
	if errors.Is(err, ErrBlobNotFound) {
		b.setETag(table, "")
		return nil, ErrTableNotFound
	}
	if err != nil {
		return nil, err
	}
	b.setETag(table, etag)
	return data, nil
}

// WriteTable uploads under the held lease, conditional on the ETag of the last read
func (b *BlobBackend) WriteTable(ctx context.Context, table string, data []byte) error {
	b.mu.Lock()
	etag, seen := b.etags[table]
	leaseID := b.leases[table]
	b.mu.Unlock()

	opts := UploadOptions{LeaseID: leaseID}
	switch {
	case seen && etag != "":
		opts.IfMatch = etag
	case seen:
		opts.IfNoneMatch = true
	}

	newETag, err := b.client.Upload(ctx, b.blobName(table), data, opts)
	if err != nil {
		if errors.Is(err, errs.ErrConcurrentWrite) {
			b.logger.Warn("Blob changed since last read", map[string]any{
				"table": table,
				"etag":  etag,
			})
		}
		return err
	}
	b.setETag(table, newETag)
	return nil
}

func (b *BlobBackend) setETag(table, etag string) {
	b.mu.Lock()
	b.etags[table] = etag
	b.mu.Unlock()
}

// Exists reports whether the table blob is present
func (b *BlobBackend) Exists(ctx context.Context, table string) (bool, error) {
	return b.client.Exists(ctx, b.blobName(table))
}

// Backup copies the table blob under <prefix>/backups/
func (b *BlobBackend) Backup(ctx context.Context, table string) (string, error) {
	exists, err := b.Exists(ctx, table)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", ErrTableNotFound
	}

	name := backupName(table, b.clock.Now())
	if err := b.client.Copy(ctx, b.blobName(table), b.backupPrefix()+name); err != nil {
		return "", err
	}
	return name, nil
}

// Info reads the blob properties
func (b *BlobBackend) Info(ctx context.Context, table string) (ObjectInfo, error) {
	info := ObjectInfo{Name: table}
	props, err := b.client.Properties(ctx, b.blobName(table))
	if errors.Is(err, ErrBlobNotFound) {
		return info, nil
	}
	if err != nil {
		return info, err
	}
	info.Exists = true
	info.SizeBytes = props.Size
	info.ModifiedAt = props.LastModified
	return info, nil
}

// Lock acquires the table lease, retrying until LeaseTimeout
func (b *BlobBackend) Lock(ctx context.Context, table string) (func(), error) {
	name := b.blobName(table)
	deadline := b.clock.Now().Add(b.cfg.LeaseTimeout)

	for {
		leaseID, err := b.client.AcquireLease(ctx, name, b.cfg.LeaseDuration)
		if err == nil {
			b.mu.Lock()
			b.leases[table] = leaseID
			b.mu.Unlock()
			return func() { b.release(table, name, leaseID) }, nil
		}
		if !errors.Is(err, errs.ErrLeaseUnavailable) {
			return nil, err
		}
		if b.clock.Now().After(deadline) {
			return nil, fmt.Errorf("lease on %s not acquired within %s: %w", name, b.cfg.LeaseTimeout, err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-b.clock.After(b.cfg.LeaseRetryDelay):
		}
	}
}

func (b *BlobBackend) release(table, name, leaseID string) {
	b.mu.Lock()
	delete(b.leases, table)
	b.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := b.client.ReleaseLease(ctx, name, leaseID); err != nil {
		b.logger.Warn("Failed to release blob lease", map[string]any{
			"table":    table,
			"lease_id": leaseID,
			"error":    err.Error(),
		})
	}
}

// ListBackups lists the backup blobs, oldest first
func (b *BlobBackend) ListBackups(ctx context.Context) ([]ObjectInfo, error) {
	props, err := b.client.List(ctx, b.backupPrefix())
	if err != nil {
		return nil, err
	}

	backups := make([]ObjectInfo, 0, len(props))
	for _, p := range props {
		info := ObjectInfo{
			Name:       strings.TrimPrefix(p.Name, b.backupPrefix()),
			Exists:     true,
			SizeBytes:  p.Size,
			ModifiedAt: p.LastModified,
		}
		if created, ok := backupTime(info.Name); ok {
			info.ModifiedAt = created
		}
		backups = append(backups, info)
	}
	sort.Slice(backups, func(i, j int) bool { return backups[i].ModifiedAt.Before(backups[j].ModifiedAt) })
	return backups, nil
}

// RemoveBackup deletes one backup blob
func (b *BlobBackend) RemoveBackup(ctx context.Context, name string) error {
	return b.client.Delete(ctx, b.backupPrefix()+name)
}
