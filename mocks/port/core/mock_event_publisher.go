package core

import (
	"context"

	"github.com/stretchr/testify/mock"

	coreport "github.com/amirhossein-jamali/plutus-backend/internal/domain/port/core"
)

// MockEventPublisher is a testify mock of core.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

// NewMockEventPublisher creates a mock that asserts its expectations on cleanup
func NewMockEventPublisher(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockEventPublisher {
	m := &MockEventPublisher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockEventPublisher) Publish(ctx context.Context, event coreport.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

// EventOfType matches a published event by its type
func EventOfType(eventType coreport.EventType) interface{} {
	return mock.MatchedBy(func(e coreport.Event) bool { return e.Type == eventType })
}
