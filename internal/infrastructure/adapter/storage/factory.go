package storage

import (
	"fmt"

	"github.com/spf13/afero"

	coreport "github.com/amirhossein-jamali/plutus-backend/internal/domain/port/core"
)

// Config selects and configures the storage backend
type Config struct {
	Backend       string // local | blob
	BackupOnWrite bool
	Local         LocalConfig
	Blob          BlobConfig
}

// BlobClientFactory opens the blob store lazily so the local backend needs no database
type BlobClientFactory func() (BlobClient, error)

// SelectBackend builds the configured backend.
// When the blob backend cannot be constructed it falls back to local storage with a warning.
func SelectBackend(
	cfg Config,
	fs afero.Fs,
	newBlobClient BlobClientFactory,
	clock coreport.TimeProvider,
	logger coreport.Logger,
) (Backend, error) {
	switch cfg.Backend {
	case BackendBlob:
		if newBlobClient != nil {
			client, err := newBlobClient()
			if err == nil {
				logger.Info("Using blob storage backend", map[string]any{"prefix": cfg.Blob.Prefix})
				return NewBlobBackend(client, cfg.Blob, clock, logger), nil
			}
			logger.Warn("Blob storage unavailable, falling back to local storage", map[string]any{
				"error": err.Error(),
			})
		} else {
			logger.Warn("Blob storage not configured, falling back to local storage", nil)
		}
	case BackendLocal, "":
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}

	logger.Info("Using local storage backend", map[string]any{"data_dir": cfg.Local.DataDir})
	return NewLocalBackend(fs, cfg.Local, clock, logger)
}
