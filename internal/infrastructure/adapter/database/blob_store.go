package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	errs "github.com/amirhossein-jamali/plutus-backend/internal/domain/error"
	coreport "github.com/amirhossein-jamali/plutus-backend/internal/domain/port/core"
	"github.com/amirhossein-jamali/plutus-backend/internal/infrastructure/adapter/model"
	"github.com/amirhossein-jamali/plutus-backend/internal/infrastructure/adapter/storage"
)

// BlobStore keeps blobs in the csv_blobs table and write leases in blob_leases
type BlobStore struct {
	db          *gorm.DB
	clock       coreport.TimeProvider
	logger      coreport.Logger
	errorMapper *ErrorMapper
	retry       RetryConfig
	timeout     time.Duration
}

var _ storage.BlobClient = (*BlobStore)(nil)

// NewBlobStore creates a blob store over a connected manager
func NewBlobStore(manager *Manager, clock coreport.TimeProvider, logger coreport.Logger) *BlobStore {
	return &BlobStore{
		db:          manager.DB(),
		clock:       clock,
		logger:      logger,
		errorMapper: manager.ErrorMapper(),
		retry:       DefaultRetryConfig(),
		timeout:     manager.config.QueryTimeout,
	}
}

// run executes one statement group within the query timeout, retrying transient failures
func (s *BlobStore) run(ctx context.Context, operation, name string, fn func(db *gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := RetryOnTransientError(ctx, s.retry, func() error {
		return fn(s.db.WithContext(ctx))
	}, s.logger)
	if err == nil {
		return nil
	}

	// errors already in the storage vocabulary pass through unchanged
	if errors.Is(err, storage.ErrBlobNotFound) || errors.Is(err, errs.ErrConcurrentWrite) || errors.Is(err, errs.ErrLeaseUnavailable) {
		return err
	}
	return s.errorMapper.MapError(err, operation, name)
}

// Download returns the blob content and its ETag
func (s *BlobStore) Download(ctx context.Context, name string) ([]byte, string, error) {
	var blob model.CSVBlob
	err := s.run(ctx, "download", name, func(db *gorm.DB) error {
		return db.Where("name = ?", name).Take(&blob).Error
	})
	if err != nil {
		return nil, "", err
	}
	return blob.Data, blob.ETag, nil
}

// Upload writes the blob when the lease and the ETag conditions hold
func (s *BlobStore) Upload(ctx context.Context, name string, data []byte, opts storage.UploadOptions) (string, error) {
	etag := uuid.NewString()
	now := s.clock.Now().UTC()

	err := s.run(ctx, "upload", name, func(db *gorm.DB) error {
		return db.Transaction(func(tx *gorm.DB) error {
			if err := s.checkLease(tx, name, opts.LeaseID, now); err != nil {
				return err
			}

			var current model.CSVBlob
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Select("name", "etag", "created_at").
				Where("name = ?", name).
				Take(&current).Error
			exists := err == nil
			if err != nil && !isNotFound(err) {
				return err
			}

			if opts.IfNoneMatch && exists {
				return fmt.Errorf("%w: %s already exists", errs.ErrConcurrentWrite, name)
			}
			if opts.IfMatch != "" && (!exists || current.ETag != opts.IfMatch) {
				return fmt.Errorf("%w: %s changed since it was read", errs.ErrConcurrentWrite, name)
			}

			if !exists {
				return tx.Create(&model.CSVBlob{
					Name:      name,
					Data:      data,
					ETag:      etag,
					Size:      int64(len(data)),
					CreatedAt: now,
					UpdatedAt: now,
				}).Error
			}
			return tx.Model(&model.CSVBlob{}).Where("name = ?", name).Updates(map[string]any{
				"data":       data,
				"etag":       etag,
				"size":       int64(len(data)),
				"updated_at": now,
			}).Error
		})
	})
	if err != nil {
		return "", err
	}
	return etag, nil
}

// checkLease rejects writers that do not hold the active lease
func (s *BlobStore) checkLease(tx *gorm.DB, name, leaseID string, now time.Time) error {
	var lease model.BlobLease
	err := tx.Where("blob_name = ?", name).Take(&lease).Error
	if isNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if lease.Expired(now) || lease.LeaseID == leaseID {
		return nil
	}
	return fmt.Errorf("%w: %s", errs.ErrLeaseUnavailable, name)
}

// Exists reports whether the blob is stored
func (s *BlobStore) Exists(ctx context.Context, name string) (bool, error) {
	var count int64
	err := s.run(ctx, "exists", name, func(db *gorm.DB) error {
		return db.Model(&model.CSVBlob{}).Where("name = ?", name).Count(&count).Error
	})
	return count > 0, err
}

// Copy duplicates src into dst, replacing dst
func (s *BlobStore) Copy(ctx context.Context, src, dst string) error {
	now := s.clock.Now().UTC()
	return s.run(ctx, "copy", src, func(db *gorm.DB) error {
		var blob model.CSVBlob
		if err := db.Where("name = ?", src).Take(&blob).Error; err != nil {
			return err
		}
		return db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"data", "etag", "size", "updated_at"}),
		}).Create(&model.CSVBlob{
			Name:      dst,
			Data:      blob.Data,
			ETag:      uuid.NewString(),
			Size:      blob.Size,
			CreatedAt: now,
			UpdatedAt: now,
		}).Error
	})
}

// Properties reads the metadata of one blob without its content
func (s *BlobStore) Properties(ctx context.Context, name string) (storage.BlobProperties, error) {
	var blob model.CSVBlob
	err := s.run(ctx, "properties", name, func(db *gorm.DB) error {
		return db.Select("name", "etag", "size", "updated_at").Where("name = ?", name).Take(&blob).Error
	})
	if err != nil {
		return storage.BlobProperties{}, err
	}
	return toProperties(blob), nil
}

// List returns the metadata of every blob under prefix, ordered by name
func (s *BlobStore) List(ctx context.Context, prefix string) ([]storage.BlobProperties, error) {
	var blobs []model.CSVBlob
	err := s.run(ctx, "list", prefix, func(db *gorm.DB) error {
		return db.Select("name", "etag", "size", "updated_at").
			Where("name LIKE ? ESCAPE '\\'", escapeLike(prefix)+"%").
			Order("name").
			Find(&blobs).Error
	})
	if err != nil {
		return nil, err
	}

	out := make([]storage.BlobProperties, len(blobs))
	for i, blob := range blobs {
		out[i] = toProperties(blob)
	}
	return out, nil
}

// Delete removes one blob
func (s *BlobStore) Delete(ctx context.Context, name string) error {
	return s.run(ctx, "delete", name, func(db *gorm.DB) error {
		result := db.Where("name = ?", name).Delete(&model.CSVBlob{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return storage.ErrBlobNotFound
		}
		return nil
	})
}

// AcquireLease takes the write lease on name unless another writer holds an unexpired one
func (s *BlobStore) AcquireLease(ctx context.Context, name string, ttl time.Duration) (string, error) {
	leaseID := uuid.NewString()
	now := s.clock.Now().UTC()

	err := s.run(ctx, "lease", name, func(db *gorm.DB) error {
		return db.Transaction(func(tx *gorm.DB) error {
			var current model.BlobLease
			err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "NOWAIT"}).
				Where("blob_name = ?", name).
				Take(&current).Error
			switch {
			case isNotFound(err):
				return tx.Create(&model.BlobLease{
					BlobName:   name,
					LeaseID:    leaseID,
					AcquiredAt: now,
					ExpiresAt:  now.Add(ttl),
				}).Error
			case err != nil:
				return err
			case !current.Expired(now):
				return fmt.Errorf("%w: %s", errs.ErrLeaseUnavailable, name)
			}

			if current.LeaseID != "" {
				s.logger.Warn("Taking over expired blob lease", map[string]any{
					"blob":       name,
					"lease_id":   current.LeaseID,
					"expired_at": current.ExpiresAt,
				})
			}
			return tx.Model(&model.BlobLease{}).Where("blob_name = ?", name).Updates(map[string]any{
				"lease_id":    leaseID,
				"acquired_at": now,
				"expires_at":  now.Add(ttl),
			}).Error
		})
	})
	if errors.Is(err, errs.ErrConcurrentWrite) {
		// two writers inserted the first lease row at once
		return "", fmt.Errorf("%w: %s", errs.ErrLeaseUnavailable, name)
	}
	if err != nil {
		return "", err
	}
	return leaseID, nil
}

// ReleaseLease drops the lease if it is still the one held
func (s *BlobStore) ReleaseLease(ctx context.Context, name, leaseID string) error {
	return s.run(ctx, "release", name, func(db *gorm.DB) error {
		return db.Where("blob_name = ? AND lease_id = ?", name, leaseID).Delete(&model.BlobLease{}).Error
	})
}

// DeleteExpiredLeases removes leases abandoned by crashed writers
func (s *BlobStore) DeleteExpiredLeases(ctx context.Context) (int64, error) {
	var removed int64
	err := s.run(ctx, "lease-cleanup", "blob_leases", func(db *gorm.DB) error {
		result := db.Where("expires_at <= ?", s.clock.Now().UTC()).Delete(&model.BlobLease{})
		removed = result.RowsAffected
		return result.Error
	})
	return removed, err
}

func toProperties(blob model.CSVBlob) storage.BlobProperties {
	return storage.BlobProperties{
		Name:         blob.Name,
		ETag:         blob.ETag,
		Size:         blob.Size,
		LastModified: blob.UpdatedAt,
	}
}

// escapeLike quotes the LIKE wildcards in a literal prefix
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
