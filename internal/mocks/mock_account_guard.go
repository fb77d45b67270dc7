package mocks

import (
	"context"

	"github.com/you/storeapi/domain"
)

// MockAccountGuard implements domain.AccountGuard interface for testing
type MockAccountGuard struct {
	LoginFunc     func(ctx context.Context, email, password string) (*domain.AuthResult, error)
	AuthorizeFunc func(ctx context.Context, userID uint, allowed bool, roles ...domain.Role) (*domain.User, error)
}

// NewMockAccountGuard creates a new MockAccountGuard with default behaviors
func NewMockAccountGuard() *MockAccountGuard {
	return &MockAccountGuard{}
}

// Login fails with an incorrect password by default
func (m *MockAccountGuard) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return nil, domain.ErrInvalidPassword
}

// Authorize allows any user holding one of roles when allowed is set
func (m *MockAccountGuard) Authorize(ctx context.Context, userID uint, allowed bool, roles ...domain.Role) (*domain.User, error) {
	if m.AuthorizeFunc != nil {
		return m.AuthorizeFunc(ctx, userID, allowed, roles...)
	}
	if !allowed || len(roles) == 0 {
		return nil, domain.ErrNotAllowed
	}
	return &domain.User{ID: userID, Role: roles[0], Status: domain.StatusActive}, nil
}

// Compile-time interface compliance verification
var _ domain.AccountGuard = (*MockAccountGuard)(nil)
