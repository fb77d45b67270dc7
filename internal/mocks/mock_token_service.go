package mocks

import (
	"fmt"
	"strings"

	"github.com/you/storeapi/domain"
)

// MockTokenService implements domain.TokenService interface for testing.
// Default tokens look like "access|<id>" and "refresh|<id>|<email>"; a token
// starting with "expired|" is reported as expired.
type MockTokenService struct {
	GenerateAccessTokenFunc  func(userID uint) (string, error)
	GenerateRefreshTokenFunc func(userID uint, email string) (string, error)
	ValidateAccessTokenFunc  func(token string) (*domain.AccessClaims, error)
	ValidateRefreshTokenFunc func(token string) (*domain.RefreshClaims, error)
}

// NewMockTokenService creates a new MockTokenService with default behaviors
func NewMockTokenService() *MockTokenService {
	return &MockTokenService{}
}

// GenerateAccessToken generates an access token for the user
func (m *MockTokenService) GenerateAccessToken(userID uint) (string, error) {
	if m.GenerateAccessTokenFunc != nil {
		return m.GenerateAccessTokenFunc(userID)
	}
	return fmt.Sprintf("access|%d", userID), nil
}

// GenerateRefreshToken generates a refresh token for the user
func (m *MockTokenService) GenerateRefreshToken(userID uint, email string) (string, error) {
	if m.GenerateRefreshTokenFunc != nil {
		return m.GenerateRefreshTokenFunc(userID, email)
	}
	return fmt.Sprintf("refresh|%d|%s", userID, email), nil
}

// ValidateAccessToken validates an access token and returns claims
func (m *MockTokenService) ValidateAccessToken(token string) (*domain.AccessClaims, error) {
	if m.ValidateAccessTokenFunc != nil {
		return m.ValidateAccessTokenFunc(token)
	}
	if strings.HasPrefix(token, "expired|") {
		return nil, domain.ErrTokenExpired
	}
	var id uint
	if _, err := fmt.Sscanf(token, "access|%d", &id); err != nil || id == 0 {
		return nil, domain.ErrTokenInvalid
	}
	return &domain.AccessClaims{UserID: id}, nil
}

// ValidateRefreshToken validates a refresh token and returns claims
func (m *MockTokenService) ValidateRefreshToken(token string) (*domain.RefreshClaims, error) {
	if m.ValidateRefreshTokenFunc != nil {
		return m.ValidateRefreshTokenFunc(token)
	}
	if strings.HasPrefix(token, "expired|") {
		return nil, domain.ErrTokenExpired
	}
	parts := strings.SplitN(token, "|", 3)
	if len(parts) != 3 || parts[0] != "refresh" {
		return nil, domain.ErrTokenInvalid
	}
	var id uint
	if _, err := fmt.Sscanf(parts[1], "%d", &id); err != nil || id == 0 {
		return nil, domain.ErrTokenInvalid
	}
	return &domain.RefreshClaims{UserID: id, Email: parts[2]}, nil
}

// Compile-time interface compliance verification
var _ domain.TokenService = (*MockTokenService)(nil)
