package mocks

import (
	"context"

	"github.com/you/storeapi/domain"
)

// MockSessionService implements domain.SessionService interface for testing
type MockSessionService struct {
	IssueTokensFunc  func(user *domain.User) (*domain.TokenPair, error)
	AuthenticateFunc func(ctx context.Context, accessToken, refreshToken string) (*domain.Identity, error)
	IsActiveFunc     func(ctx context.Context, refreshToken string) bool
	LogoutFunc       func(ctx context.Context, refreshToken string) error
}

// NewMockSessionService creates a new MockSessionService with default behaviors
func NewMockSessionService() *MockSessionService {
	return &MockSessionService{}
}

// IssueTokens issues a token pair
func (m *MockSessionService) IssueTokens(user *domain.User) (*domain.TokenPair, error) {
	if m.IssueTokensFunc != nil {
		return m.IssueTokensFunc(user)
	}
	return &domain.TokenPair{AccessToken: "access", RefreshToken: "refresh"}, nil
}

// Authenticate fails unauthenticated by default
func (m *MockSessionService) Authenticate(ctx context.Context, accessToken, refreshToken string) (*domain.Identity, error) {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, accessToken, refreshToken)
	}
	return nil, domain.ErrUnauthenticated
}

// IsActive reports false by default
func (m *MockSessionService) IsActive(ctx context.Context, refreshToken string) bool {
	if m.IsActiveFunc != nil {
		return m.IsActiveFunc(ctx, refreshToken)
	}
	return false
}

// Logout succeeds by default
func (m *MockSessionService) Logout(ctx context.Context, refreshToken string) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, refreshToken)
	}
	return nil
}

// Compile-time interface compliance verification
var _ domain.SessionService = (*MockSessionService)(nil)
