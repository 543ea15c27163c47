package repository

import (
	"context"

	"github.com/amirhossein-jamali/plutus-backend/internal/domain/entity"
	errs "github.com/amirhossein-jamali/plutus-backend/internal/domain/error"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/port/persistence"
)

// IdempotencyRepository implements persistence.IdempotencyRepository over the idempotency_keys table
type IdempotencyRepository struct {
	store persistence.TableStore
}

// NewIdempotencyRepository creates a new IdempotencyRepository instance
func NewIdempotencyRepository(store persistence.TableStore) *IdempotencyRepository {
	return &IdempotencyRepository{store: store}
}

// Get returns the user's record for the key, or nil
func (r *IdempotencyRepository) Get(ctx context.Context, userID, key string) (*entity.IdempotencyRecord, error) {
	t, err := r.store.Read(ctx, IdempotencyTable)
	if err != nil {
		return nil, err
	}
	rows := t.Filter(persistence.Match{"idempotency_key": key, "user_id": userID})
	if len(rows) == 0 {
		return nil, nil
	}
	row := rows[0]
	return &entity.IdempotencyRecord{
		Key:           row["idempotency_key"],
		UserID:        row["user_id"],
		RequestHash:   row["request_hash"],
		TransactionID: row["transaction_id"],
		CreatedAt:     parseTime(row["created_at"]),
	}, nil
}

// Save stores a new record unless the user already used the key
func (r *IdempotencyRepository) Save(ctx context.Context, record *entity.IdempotencyRecord) error {
	return r.store.Mutate(ctx, IdempotencyTable, func(t *persistence.Table) error {
		if len(t.Filter(persistence.Match{"idempotency_key": record.Key, "user_id": record.UserID})) > 0 {
			return errs.ErrIdempotencyConflict
		}
		t.Rows = append(t.Rows, persistence.Row{
			"idempotency_key": record.Key,
			"user_id":         record.UserID,
			"request_hash":    record.RequestHash,
			"transaction_id":  record.TransactionID,
			"created_at":      formatTime(record.CreatedAt),
		})
		return nil
	})
}
