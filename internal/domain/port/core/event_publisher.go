package core

import (
	"context"
	"time"
)

// EventType is the routing key of a published domain event
type EventType string

// Published event types
const (
	EventUserRegistered    EventType = "user.registered"
	EventTransferCompleted EventType = "transfer.completed"
	EventTransferFailed    EventType = "transfer.failed"
	EventBalanceDeposited  EventType = "balance.deposited"
	EventBalanceWithdrawn  EventType = "balance.withdrawn"
)

// Event is a domain event delivered to downstream consumers
type Event struct {
	ID         string         `json:"event_id"`
	Type       EventType      `json:"type"`
	OccurredAt time.Time      `json:"occurred_at"`
	UserID     string         `json:"user_id"`
	Data       map[string]any `json:"data"`
}

// EventPublisher delivers domain events; delivery is best effort
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}
