package event

import (
	"context"

	coreport "github.com/amirhossein-jamali/plutus-backend/internal/domain/port/core"
)

// Emitter publishes domain events on a best-effort basis
type Emitter struct {
	publisher coreport.EventPublisher
	ids       coreport.IDGenerator
	clock     coreport.TimeProvider
	logger    coreport.Logger
}

// NewEmitter creates a new Emitter
func NewEmitter(
	publisher coreport.EventPublisher,
	ids coreport.IDGenerator,
	clock coreport.TimeProvider,
	logger coreport.Logger,
) *Emitter {
	return &Emitter{publisher: publisher, ids: ids, clock: clock, logger: logger}
}

// Emit builds and publishes an event; delivery failures are logged only
func (e *Emitter) Emit(ctx context.Context, eventType coreport.EventType, userID string, data map[string]any) {
	event := coreport.Event{
		ID:         e.ids.EventID(),
		Type:       eventType,
		OccurredAt: e.clock.Now(),
		UserID:     userID,
		Data:       data,
	}
	if err := e.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		e.logger.Warn("Failed to publish event", map[string]any{
			"event_id":   event.ID,
			"event_type": eventType,
			"user_id":    userID,
			"error":      err.Error(),
		})
	}
}
