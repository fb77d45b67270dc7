package mocks

import (
	"context"

	"github.com/you/storeapi/domain"
)

// MockRateLimiter implements domain.RateLimiter interface for testing
type MockRateLimiter struct {
	AllowFunc func(ctx context.Context, key string) (bool, error)
}

// NewMockRateLimiter creates a limiter that allows everything
func NewMockRateLimiter() *MockRateLimiter {
	return &MockRateLimiter{}
}

// Allow allows by default
func (m *MockRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if m.AllowFunc != nil {
		return m.AllowFunc(ctx, key)
	}
	return true, nil
}

// Compile-time interface compliance verification
var _ domain.RateLimiter = (*MockRateLimiter)(nil)
