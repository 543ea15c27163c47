package storage

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	errs "github.com/amirhossein-jamali/plutus-backend/internal/domain/error"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 8, 29, 10, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func (c *testClock) Since(t time.Time) time.Duration { return c.Now().Sub(t) }

func (c *testClock) After(d time.Duration) <-chan time.Time {
	c.Advance(d)
	ch := make(chan time.Time, 1)
	ch <- c.Now()
	return ch
}

func (c *testClock) WithTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d)
}

type memBlob struct {
	data     []byte
	etag     string
	modified time.Time
}

// memBlobClient is an in-memory BlobClient with ETags and exclusive leases
type memBlobClient struct {
	mu     sync.Mutex
	clock  *testClock
	blobs  map[string]*memBlob
	leases map[string]string
}

func newMemBlobClient(clock *testClock) *memBlobClient {
	return &memBlobClient{clock: clock, blobs: map[string]*memBlob{}, leases: map[string]string{}}
}

func etagOf(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

func (c *memBlobClient) Download(_ context.Context, name string) ([]byte, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.blobs[name]
	if !ok {
		return nil, "", ErrBlobNotFound
	}
	return append([]byte(nil), b.data...), b.etag, nil
}

func (c *memBlobClient) Upload(_ context.Context, name string, data []byte, opts UploadOptions) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if lease, held := c.leases[name]; held && lease != opts.LeaseID {
		return "", errs.ErrLeaseUnavailable
	}
	current, exists := c.blobs[name]
	if opts.IfNoneMatch && exists {
		return "", errs.ErrConcurrentWrite
	}
	if opts.IfMatch != "" && (!exists || current.etag != opts.IfMatch) {
		return "", errs.ErrConcurrentWrite
	}
	b := &memBlob{data: append([]byte(nil), data...), etag: etagOf(data) + uuid.NewString()[:4], modified: c.clock.Now()}
	c.blobs[name] = b
	return b.etag, nil
}

func (c *memBlobClient) Exists(_ context.Context, name string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.blobs[name]
	return ok, nil
}

func (c *memBlobClient) Copy(_ context.Context, src, dst string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.blobs[src]
	if !ok {
		return ErrBlobNotFound
	}
	c.blobs[dst] = &memBlob{data: append([]byte(nil), b.data...), etag: b.etag, modified: c.clock.Now()}
	return nil
}

func (c *memBlobClient) Properties(_ context.Context, name string) (BlobProperties, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.blobs[name]
	if !ok {
		return BlobProperties{}, ErrBlobNotFound
	}
	return BlobProperties{Name: name, ETag: b.etag, Size: int64(len(b.data)), LastModified: b.modified}, nil
}

func (c *memBlobClient) List(_ context.Context, prefix string) ([]BlobProperties, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []BlobProperties
	for name, b := range c.blobs {
		if strings.HasPrefix(name, prefix) {
			out = append(out, BlobProperties{Name: name, ETag: b.etag, Size: int64(len(b.data)), LastModified: b.modified})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (c *memBlobClient) Delete(_ context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.blobs[name]; !ok {
		return ErrBlobNotFound
	}
	delete(c.blobs, name)
	return nil
}

func (c *memBlobClient) AcquireLease(_ context.Context, name string, _ time.Duration) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, held := c.leases[name]; held {
		return "", errs.ErrLeaseUnavailable
	}
	id := uuid.NewString()
	c.leases[name] = id
	return id, nil
}

func (c *memBlobClient) ReleaseLease(_ context.Context, name, leaseID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.leases[name] == leaseID {
		delete(c.leases, name)
	}
	return nil
}
