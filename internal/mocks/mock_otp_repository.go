package mocks

import (
	"context"
	"errors"
	"sync"

	"github.com/you/storeapi/domain"
)

// MockOtpRepository implements domain.OtpRepository interface for testing.
// Without overrides it behaves like an in-memory table.
type MockOtpRepository struct {
	CreateFunc      func(ctx context.Context, otp *domain.Otp) error
	FindByEmailFunc func(ctx context.Context, email string) (*domain.Otp, error)
	UpdateFunc      func(ctx context.Context, id uint, changes domain.OtpChanges) (*domain.Otp, error)

	mu     sync.Mutex
	rows   map[uint]*domain.Otp
	nextID uint
}

// NewMockOtpRepository creates a new MockOtpRepository with default behaviors
func NewMockOtpRepository() *MockOtpRepository {
	return &MockOtpRepository{rows: make(map[uint]*domain.Otp)}
}

// Create creates a new otp row
func (m *MockOtpRepository) Create(ctx context.Context, otp *domain.Otp) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, otp)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.Email == otp.Email {
			return errors.New("duplicate key value violates unique constraint")
		}
	}
	m.nextID++
	otp.ID = m.nextID
	stored := *otp
	m.rows[otp.ID] = &stored
	return nil
}

// FindByEmail finds the otp row of an email
func (m *MockOtpRepository) FindByEmail(ctx context.Context, email string) (*domain.Otp, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.Email == email {
			found := *r
			return &found, nil
		}
	}
	return nil, domain.ErrOtpNotFound
}

// Update applies changes to an existing otp row
func (m *MockOtpRepository) Update(ctx context.Context, id uint, changes domain.OtpChanges) (*domain.Otp, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, changes)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return nil, domain.ErrOtpNotFound
	}
	if changes.OTP != nil {
		r.OTP = *changes.OTP
	}
	if changes.RememberToken != nil {
		r.RememberToken = *changes.RememberToken
	}
	switch {
	case changes.ClearVerifyToken:
		r.VerifyToken = nil
	case changes.VerifyToken != nil:
		v := *changes.VerifyToken
		r.VerifyToken = &v
	}
	switch {
	case changes.IncrementError:
		r.Error++
	case changes.Error != nil:
		r.Error = *changes.Error
	}
	switch {
	case changes.IncrementCount:
		r.Count++
	case changes.Count != nil:
		r.Count = *changes.Count
	}
	r.UpdatedAt = changes.UpdatedAt
	found := *r
	return &found, nil
}

// Compile-time interface compliance verification
var _ domain.OtpRepository = (*MockOtpRepository)(nil)
