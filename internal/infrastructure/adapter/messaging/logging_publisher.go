package messaging

import (
	"context"

	coreport "github.com/amirhossein-jamali/plutus-backend/internal/domain/port/core"
)

// LoggingPublisher writes events to the log instead of a broker
type LoggingPublisher struct {
	logger coreport.Logger
}

var _ coreport.EventPublisher = (*LoggingPublisher)(nil)

// NewLoggingPublisher creates a LoggingPublisher
func NewLoggingPublisher(logger coreport.Logger) *LoggingPublisher {
	return &LoggingPublisher{logger: logger}
}

// Publish logs the event at debug level
func (p *LoggingPublisher) Publish(_ context.Context, event coreport.Event) error {
	p.logger.Debug("Domain event", map[string]any{
		"event_id":   event.ID,
		"event_type": string(event.Type),
		"user_id":    event.UserID,
		"data":       event.Data,
	})
	return nil
}

func (p *LoggingPublisher) Close() error { return nil }

// NewEventPublisher returns a RabbitMQ publisher when events are enabled and the
// broker is reachable, and a LoggingPublisher otherwise.
func NewEventPublisher(cfg Config, logger coreport.Logger) coreport.EventPublisher {
	if !cfg.Enabled {
		logger.Info("Event publishing disabled, logging events instead", nil)
		return NewLoggingPublisher(logger)
	}

	publisher, err := NewRabbitMQPublisher(cfg, logger)
	if err != nil {
		logger.Warn("RabbitMQ unavailable, logging events instead", map[string]any{
			"error": err.Error(),
		})
		return NewLoggingPublisher(logger)
	}
	return publisher
}
