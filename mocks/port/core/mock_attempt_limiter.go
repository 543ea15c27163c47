package core

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockAttemptLimiter is a testify mock of core.AttemptLimiter
type MockAttemptLimiter struct {
	mock.Mock
}

// NewMockAttemptLimiter creates a mock that asserts its expectations on cleanup
func NewMockAttemptLimiter(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockAttemptLimiter {
	m := &MockAttemptLimiter{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockAttemptLimiter) Locked(ctx context.Context, key string) (bool, time.Duration, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Get(1).(time.Duration), args.Error(2)
}

func (m *MockAttemptLimiter) RecordFailure(ctx context.Context, key string) (int, error) {
	args := m.Called(ctx, key)
	return args.Int(0), args.Error(1)
}

func (m *MockAttemptLimiter) Reset(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
