package mocks

import (
	"context"
	"errors"
	"sync"

	"github.com/you/storeapi/domain"
)

// MockUserRepository implements domain.UserRepository interface for testing.
// Without overrides it behaves like an in-memory table.
type MockUserRepository struct {
	CreateFunc         func(ctx context.Context, user *domain.User) error
	FindByEmailFunc    func(ctx context.Context, email string) (*domain.User, error)
	FindByUsernameFunc func(ctx context.Context, username string) (*domain.User, error)
	FindByIDFunc       func(ctx context.Context, id uint) (*domain.User, error)
	UpdateFunc         func(ctx context.Context, id uint, changes domain.UserChanges) (*domain.User, error)

	mu     sync.Mutex
	users  map[uint]*domain.User
	nextID uint
}

// NewMockUserRepository creates a new MockUserRepository with default behaviors
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[uint]*domain.User)}
}

// Create creates a new user
func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email || u.Username == user.Username {
			return errors.New("duplicate key value violates unique constraint")
		}
	}
	if user.ID == 0 {
		m.nextID++
		user.ID = m.nextID
	} else if user.ID > m.nextID {
		m.nextID = user.ID
	}
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

// Seed stores user as is, for arranging test state
func (m *MockUserRepository) Seed(user *domain.User) *domain.User {
	if err := m.Create(context.Background(), user); err != nil {
		panic(err)
	}
	return user
}

// FindByEmail finds a user by email
func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return m.find(func(u *domain.User) bool { return u.Email == email })
}

// FindByUsername finds a user by username
func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.FindByUsernameFunc != nil {
		return m.FindByUsernameFunc(ctx, username)
	}
	return m.find(func(u *domain.User) bool { return u.Username == username })
}

// FindByID finds a user by ID
func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return m.find(func(u *domain.User) bool { return u.ID == id })
}

// Update applies changes to an existing user
func (m *MockUserRepository) Update(ctx context.Context, id uint, changes domain.UserChanges) (*domain.User, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, changes)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if changes.Password != nil {
		u.Password = *changes.Password
	}
	if changes.Role != nil {
		u.Role = *changes.Role
	}
	if changes.Status != nil {
		u.Status = *changes.Status
	}
	switch {
	case changes.IncrementErrorLogins:
		u.ErrorLoginCount++
	case changes.ErrorLoginCount != nil:
		u.ErrorLoginCount = *changes.ErrorLoginCount
	}
	if changes.RandToken != nil {
		u.RandToken = *changes.RandToken
	}
	if changes.LastLogin != nil {
		t := *changes.LastLogin
		u.LastLogin = &t
	}
	u.UpdatedAt = changes.UpdatedAt
	found := *u
	return &found, nil
}

func (m *MockUserRepository) find(match func(*domain.User) bool) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if match(u) {
			found := *u
			return &found, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// Compile-time interface compliance verification
var _ domain.UserRepository = (*MockUserRepository)(nil)
