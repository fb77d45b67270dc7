package mocks

import (
	"context"

	"github.com/you/storeapi/domain"
)

// MockAuthService implements domain.AuthService interface for testing
type MockAuthService struct {
	RegisterFunc              func(ctx context.Context, email string) (*domain.OtpIssue, error)
	VerifyRegistrationOTPFunc func(ctx context.Context, email, code, rememberToken string) (string, error)
	ConfirmPasswordFunc       func(ctx context.Context, email, password, verifyToken string) (*domain.AuthResult, error)
	ResendOTPFunc             func(ctx context.Context, email string) (*domain.OtpIssue, error)
	ForgotPasswordFunc        func(ctx context.Context, email string) (*domain.OtpIssue, error)
	VerifyPasswordOTPFunc     func(ctx context.Context, email, code, rememberToken string) (string, error)
	ResetPasswordFunc         func(ctx context.Context, email, password, verifyToken string) error
	GetUserProfileFunc        func(ctx context.Context, userID uint) (*domain.User, error)
}

// NewMockAuthService creates a new MockAuthService with default behaviors
func NewMockAuthService() *MockAuthService {
	return &MockAuthService{}
}

func defaultIssue(email string) *domain.OtpIssue {
	return &domain.OtpIssue{Email: email, Code: "123456", RememberToken: "remember-token"}
}

// Register starts registration
func (m *MockAuthService) Register(ctx context.Context, email string) (*domain.OtpIssue, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, email)
	}
	return defaultIssue(email), nil
}

// VerifyRegistrationOTP verifies a registration code
func (m *MockAuthService) VerifyRegistrationOTP(ctx context.Context, email, code, rememberToken string) (string, error) {
	if m.VerifyRegistrationOTPFunc != nil {
		return m.VerifyRegistrationOTPFunc(ctx, email, code, rememberToken)
	}
	return "verify-token", nil
}

// ConfirmPassword creates the account
func (m *MockAuthService) ConfirmPassword(ctx context.Context, email, password, verifyToken string) (*domain.AuthResult, error) {
	if m.ConfirmPasswordFunc != nil {
		return m.ConfirmPasswordFunc(ctx, email, password, verifyToken)
	}
	return &domain.AuthResult{
		User:   &domain.User{ID: 1, Email: email, Role: domain.RoleUser, Status: domain.StatusActive},
		Tokens: domain.TokenPair{AccessToken: "access|1", RefreshToken: "refresh|1|" + email},
	}, nil
}

// ResendOTP issues a new code
func (m *MockAuthService) ResendOTP(ctx context.Context, email string) (*domain.OtpIssue, error) {
	if m.ResendOTPFunc != nil {
		return m.ResendOTPFunc(ctx, email)
	}
	return defaultIssue(email), nil
}

// ForgotPassword starts a password reset
func (m *MockAuthService) ForgotPassword(ctx context.Context, email string) (*domain.OtpIssue, error) {
	if m.ForgotPasswordFunc != nil {
		return m.ForgotPasswordFunc(ctx, email)
	}
	return defaultIssue(email), nil
}

// VerifyPasswordOTP verifies a password reset code
func (m *MockAuthService) VerifyPasswordOTP(ctx context.Context, email, code, rememberToken string) (string, error) {
	if m.VerifyPasswordOTPFunc != nil {
		return m.VerifyPasswordOTPFunc(ctx, email, code, rememberToken)
	}
	return "verify-token", nil
}

// ResetPassword sets a new password
func (m *MockAuthService) ResetPassword(ctx context.Context, email, password, verifyToken string) error {
	if m.ResetPasswordFunc != nil {
		return m.ResetPasswordFunc(ctx, email, password, verifyToken)
	}
	return nil
}

// GetUserProfile returns a user
func (m *MockAuthService) GetUserProfile(ctx context.Context, userID uint) (*domain.User, error) {
	if m.GetUserProfileFunc != nil {
		return m.GetUserProfileFunc(ctx, userID)
	}
	return &domain.User{ID: userID, Email: "user@example.com", Role: domain.RoleUser, Status: domain.StatusActive}, nil
}

// Compile-time interface compliance verification
var _ domain.AuthService = (*MockAuthService)(nil)
