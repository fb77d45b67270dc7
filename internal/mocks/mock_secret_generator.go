package mocks

import (
	"fmt"
	"sync"

	"github.com/you/storeapi/domain"
)

// MockSecretGenerator implements domain.SecretGenerator with predictable output
type MockSecretGenerator struct {
	OTPFunc   func() (string, error)
	TokenFunc func() (string, error)

	mu sync.Mutex
	n  int
}

// NewMockSecretGenerator creates a new MockSecretGenerator with default behaviors
func NewMockSecretGenerator() *MockSecretGenerator {
	return &MockSecretGenerator{}
}

// OTP returns "123456" by default
func (m *MockSecretGenerator) OTP() (string, error) {
	if m.OTPFunc != nil {
		return m.OTPFunc()
	}
	return "123456", nil
}

// Token returns "token-1", "token-2", ... by default
func (m *MockSecretGenerator) Token() (string, error) {
	if m.TokenFunc != nil {
		return m.TokenFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.n++
	return fmt.Sprintf("token-%d", m.n), nil
}

// Compile-time interface compliance verification
var _ domain.SecretGenerator = (*MockSecretGenerator)(nil)
