package repository

import (
	"context"
	"encoding/json"

	"github.com/amirhossein-jamali/plutus-backend/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/plutus-backend/internal/domain/port/core"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/port/persistence"
)

// AuditRepository implements persistence.AuditRepository over the audit_logs table
type AuditRepository struct {
	store  persistence.TableStore
	logger coreport.Logger
}

// NewAuditRepository creates a new AuditRepository instance
func NewAuditRepository(store persistence.TableStore, logger coreport.Logger) *AuditRepository {
	return &AuditRepository{store: store, logger: logger}
}

func orUnknown(v string) string {
	if v == "" {
		return entity.UnknownOrigin
	}
	return v
}

func auditToRow(e *entity.AuditEntry) (persistence.Row, error) {
	details := "{}"
	if len(e.Details) > 0 {
		raw, err := json.Marshal(e.Details)
		if err != nil {
			return nil, err
		}
		details = string(raw)
	}
	return persistence.Row{
		"log_id":     e.ID,
		"user_id":    e.UserID,
		"action":     string(e.Action),
		"details":    details,
		"timestamp":  formatTime(e.Timestamp),
		"ip_address": orUnknown(e.IPAddress),
		"request_id": orUnknown(e.RequestID),
	}, nil
}

func rowToAudit(r persistence.Row) *entity.AuditEntry {
	details := map[string]any{}
	// rows edited by hand may carry non-JSON details
	if err := json.Unmarshal([]byte(r["details"]), &details); err != nil {
		details = map[string]any{"raw": r["details"]}
	}
	return &entity.AuditEntry{
		ID:        r["log_id"],
		UserID:    r["user_id"],
		Action:    entity.AuditAction(r["action"]),
		Details:   details,
		Timestamp: parseTime(r["timestamp"]),
		IPAddress: r["ip_address"],
		RequestID: r["request_id"],
	}
}

// Append adds an audit entry at the end of the log
func (r *AuditRepository) Append(ctx context.Context, entry *entity.AuditEntry) error {
	row, err := auditToRow(entry)
	if err != nil {
		return err
	}
	return r.store.Append(ctx, AuditLogsTable, row)
}

// ListByUser returns the user's entries in table order
func (r *AuditRepository) ListByUser(ctx context.Context, userID string) ([]*entity.AuditEntry, error) {
	t, err := r.store.Read(ctx, AuditLogsTable)
	if err != nil {
		return nil, err
	}
	rows := t.Filter(persistence.Match{"user_id": userID})
	out := make([]*entity.AuditEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, rowToAudit(row))
	}
	return out, nil
}

// LastByAction returns the user's latest entry for the action, or nil
func (r *AuditRepository) LastByAction(ctx context.Context, userID string, action entity.AuditAction) (*entity.AuditEntry, error) {
	t, err := r.store.Read(ctx, AuditLogsTable)
	if err != nil {
		return nil, err
	}
	rows := t.Filter(persistence.Match{"user_id": userID, "action": string(action)})
	if len(rows) == 0 {
		return nil, nil
	}
	return rowToAudit(rows[len(rows)-1]), nil
}
