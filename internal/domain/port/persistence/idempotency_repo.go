package persistence

import (
	"context"

	"github.com/amirhossein-jamali/plutus-backend/internal/domain/entity"
)

// IdempotencyRepository remembers which transfer a client key produced
type IdempotencyRepository interface {
	// Get returns the record for the user's key, or nil when the key is unused
	Get(ctx context.Context, userID, key string) (*entity.IdempotencyRecord, error)

	// Save stores a new record
	//
	// Possible errors:
	// - ErrIdempotencyConflict: If the user already used the key
	Save(ctx context.Context, record *entity.IdempotencyRecord) error
}
