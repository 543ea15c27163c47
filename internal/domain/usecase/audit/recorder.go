package audit

import (
	"context"

	"github.com/amirhossein-jamali/plutus-backend/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/plutus-backend/internal/domain/port/core"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/port/persistence"
)

// Recorder appends audit entries. A failed append is logged and never fails the caller.
type Recorder struct {
	repo   persistence.AuditRepository
	ids    coreport.IDGenerator
	clock  coreport.TimeProvider
	logger coreport.Logger
}

// NewRecorder creates a new audit Recorder
func NewRecorder(
	repo persistence.AuditRepository,
	ids coreport.IDGenerator,
	clock coreport.TimeProvider,
	logger coreport.Logger,
) *Recorder {
	return &Recorder{repo: repo, ids: ids, clock: clock, logger: logger}
}

// Record stores an entry for the user; origin data comes from the request context
func (r *Recorder) Record(ctx context.Context, userID string, action entity.AuditAction, details map[string]any) {
	entry := &entity.AuditEntry{
		ID:        r.ids.AuditID(),
		UserID:    userID,
		Action:    action,
		Details:   details,
		Timestamp: r.clock.Now(),
		IPAddress: entity.UnknownOrigin,
		RequestID: entity.UnknownOrigin,
	}
	if meta, ok := coreport.RequestMetaFrom(ctx); ok {
		if meta.IPAddress != "" {
			entry.IPAddress = meta.IPAddress
		}
		if meta.RequestID != "" {
			entry.RequestID = meta.RequestID
		}
	}

	// the audit trail must survive a cancelled request
	if err := r.repo.Append(context.WithoutCancel(ctx), entry); err != nil {
		r.logger.Error("Failed to write audit entry", map[string]any{
			"user_id":    userID,
			"action":     action,
			"request_id": entry.RequestID,
			"error":      err.Error(),
		})
	}
}

// LastLogin returns the user's latest successful login entry, or nil
func (r *Recorder) LastLogin(ctx context.Context, userID string) *entity.AuditEntry {
	entry, err := r.repo.LastByAction(ctx, userID, entity.ActionLoginSuccess)
	if err != nil {
		r.logger.Warn("Failed to read last login", map[string]any{
			"user_id": userID,
			"error":   err.Error(),
		})
		return nil
	}
	return entry
}
