package persistence

import (
	"context"

	"github.com/amirhossein-jamali/plutus-backend/internal/domain/entity"
)

// AuditRepository stores the append-only audit trail
type AuditRepository interface {
	Append(ctx context.Context, entry *entity.AuditEntry) error

	// ListByUser returns the user's entries in table order
	ListByUser(ctx context.Context, userID string) ([]*entity.AuditEntry, error)

	// LastByAction returns the user's most recent entry for the action, or nil when there is none
	LastByAction(ctx context.Context, userID string, action entity.AuditAction) (*entity.AuditEntry, error)
}
