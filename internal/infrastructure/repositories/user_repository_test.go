package repositories

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/you/storeapi/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// a single connection keeps every query on the same in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&DBUser{}, &DBOtp{}))
	return db
}

func newTestUser(email, username string, at time.Time) *domain.User {
	return &domain.User{
		Email:     email,
		Username:  username,
		Password:  "hashed_password",
		Role:      domain.RoleUser,
		Status:    domain.StatusActive,
		RandToken: "refresh-token",
		CreatedAt: at,
		UpdatedAt: at,
	}
}

func TestUserRepositoryImpl_CreateAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	at := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	user := newTestUser("alice@example.com", "alice123", at)
	require.NoError(t, repo.Create(ctx, user))
	require.NotZero(t, user.ID)

	tests := []struct {
		name string
		find func() (*domain.User, error)
	}{
		{"by email", func() (*domain.User, error) { return repo.FindByEmail(ctx, "alice@example.com") }},
		{"by username", func() (*domain.User, error) { return repo.FindByUsername(ctx, "alice123") }},
		{"by id", func() (*domain.User, error) { return repo.FindByID(ctx, user.ID) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := tt.find()
			require.NoError(t, err)
			assert.Equal(t, user.ID, found.ID)
			assert.Equal(t, "alice@example.com", found.Email)
			assert.Equal(t, domain.RoleUser, found.Role)
			assert.Equal(t, domain.StatusActive, found.Status)
			assert.Equal(t, "refresh-token", found.RandToken)
			assert.True(t, at.Equal(found.UpdatedAt))
		})
	}
}

func TestUserRepositoryImpl_NotFound(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	_, err := repo.FindByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = repo.FindByID(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = repo.Update(ctx, 99, domain.UserChanges{UpdatedAt: time.Now()})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepositoryImpl_UniqueEmail(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()
	at := time.Now()

	require.NoError(t, repo.Create(ctx, newTestUser("dup@example.com", "first", at)))
	assert.Error(t, repo.Create(ctx, newTestUser("dup@example.com", "second", at)))
}

func TestUserRepositoryImpl_Update(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()
	created := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	user := newTestUser("bob@example.com", "bob", created)
	require.NoError(t, repo.Create(ctx, user))

	later := created.Add(26 * time.Hour)
	freeze := domain.StatusFreeze
	token := "rotated"

	updated, err := repo.Update(ctx, user.ID, domain.UserChanges{
		Status:               &freeze,
		IncrementErrorLogins: true,
		RandToken:            &token,
		UpdatedAt:            later,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFreeze, updated.Status)
	assert.Equal(t, 1, updated.ErrorLoginCount)
	assert.Equal(t, "rotated", updated.RandToken)
	assert.True(t, later.Equal(updated.UpdatedAt), "updated_at must come from the caller")
	assert.Equal(t, "hashed_password", updated.Password)

	zero := 0
	updated, err = repo.Update(ctx, user.ID, domain.UserChanges{ErrorLoginCount: &zero, UpdatedAt: later})
	require.NoError(t, err)
	assert.Equal(t, 0, updated.ErrorLoginCount)
}

func TestUserRepositoryImpl_ConcurrentIncrements(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	user := newTestUser("carol@example.com", "carol", time.Now())
	require.NoError(t, repo.Create(ctx, user))

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Update(ctx, user.ID, domain.UserChanges{IncrementErrorLogins: true, UpdatedAt: time.Now()})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	found, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, found.ErrorLoginCount)
}
