package mocks

import (
	"context"
	"sync"

	"github.com/you/storeapi/domain"
)

// SentOTP is a code handed to MockNotificationService
type SentOTP struct {
	Email string
	Code  string
}

// MockNotificationService implements domain.NotificationService interface for testing
type MockNotificationService struct {
	SendOTPFunc func(ctx context.Context, email, code string) error

	mu   sync.Mutex
	Sent []SentOTP
}

// NewMockNotificationService creates a new MockNotificationService with default behaviors
func NewMockNotificationService() *MockNotificationService {
	return &MockNotificationService{}
}

// SendOTP records the code
func (m *MockNotificationService) SendOTP(ctx context.Context, email, code string) error {
	if m.SendOTPFunc != nil {
		return m.SendOTPFunc(ctx, email, code)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, SentOTP{Email: email, Code: code})
	return nil
}

// Compile-time interface compliance verification
var _ domain.NotificationService = (*MockNotificationService)(nil)
