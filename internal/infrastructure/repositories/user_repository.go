package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/you/storeapi/domain"
	"gorm.io/gorm"
)

// UserRepositoryImpl implements domain.UserRepository using GORM
type UserRepositoryImpl struct {
	db *gorm.DB
}

// DBUser represents the database model for User (with GORM tags).
// UpdatedAt drives the daily counters so it is always written by the caller.
type DBUser struct {
	ID              uint    `gorm:"primaryKey"`
	Email           string  `gorm:"uniqueIndex;size:255;not null"`
	Username        string  `gorm:"uniqueIndex;size:64;not null"`
	FirstName       *string `gorm:"size:100"`
	LastName        *string `gorm:"size:100"`
	Phone           *string `gorm:"size:32"`
	Password        string  `gorm:"not null"`
	Role            string  `gorm:"index;size:16;not null"`
	Status          string  `gorm:"size:16;not null"`
	ErrorLoginCount int     `gorm:"not null"`
	RandToken       string  `gorm:"size:512;not null"`
	LastLogin       *time.Time
	Image           *string
	CreatedAt       time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime:false;index"`
}

// TableName returns the table name for GORM
func (DBUser) TableName() string {
	return "users"
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) domain.UserRepository {
	return &UserRepositoryImpl{db: db}
}

// Create implements domain.UserRepository
func (r *UserRepositoryImpl) Create(ctx context.Context, user *domain.User) error {
	dbUser := r.domainToDB(user)
	if dbUser.CreatedAt.IsZero() {
		dbUser.CreatedAt = time.Now()
	}
	if dbUser.UpdatedAt.IsZero() {
		dbUser.UpdatedAt = dbUser.CreatedAt
	}
	if err := r.db.WithContext(ctx).Create(dbUser).Error; err != nil {
		return err
	}
	user.ID = dbUser.ID
	user.CreatedAt = dbUser.CreatedAt
	user.UpdatedAt = dbUser.UpdatedAt
	return nil
}

// FindByEmail implements domain.UserRepository
func (r *UserRepositoryImpl) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

// FindByUsername implements domain.UserRepository
func (r *UserRepositoryImpl) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, "username = ?", username)
}

// FindByID implements domain.UserRepository
func (r *UserRepositoryImpl) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *UserRepositoryImpl) findOne(ctx context.Context, query string, arg interface{}) (*domain.User, error) {
	var dbUser DBUser
	err := r.db.WithContext(ctx).Where(query, arg).First(&dbUser).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return r.dbToDomain(&dbUser), nil
}

// Update implements domain.UserRepository. Counter increments are applied in
// the database so concurrent failures are not lost.
func (r *UserRepositoryImpl) Update(ctx context.Context, id uint, changes domain.UserChanges) (*domain.User, error) {
	values := map[string]interface{}{
		"updated_at": changes.UpdatedAt,
	}
	if changes.Password != nil {
		values["password"] = *changes.Password
	}
	if changes.Role != nil {
		values["role"] = string(*changes.Role)
	}
	if changes.Status != nil {
		values["status"] = string(*changes.Status)
	}
	switch {
	case changes.IncrementErrorLogins:
		values["error_login_count"] = gorm.Expr("error_login_count + ?", 1)
	case changes.ErrorLoginCount != nil:
		values["error_login_count"] = *changes.ErrorLoginCount
	}
	if changes.RandToken != nil {
		values["rand_token"] = *changes.RandToken
	}
	if changes.LastLogin != nil {
		values["last_login"] = *changes.LastLogin
	}

	result := r.db.WithContext(ctx).Model(&DBUser{}).Where("id = ?", id).Updates(values)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, domain.ErrUserNotFound
	}
	return r.FindByID(ctx, id)
}

// domainToDB converts domain user to database user
func (r *UserRepositoryImpl) domainToDB(user *domain.User) *DBUser {
	return &DBUser{
		ID:              user.ID,
		Email:           user.Email,
		Username:        user.Username,
		FirstName:       user.FirstName,
		LastName:        user.LastName,
		Phone:           user.Phone,
		Password:        user.Password,
		Role:            string(user.Role),
		Status:          string(user.Status),
		ErrorLoginCount: user.ErrorLoginCount,
		RandToken:       user.RandToken,
		LastLogin:       user.LastLogin,
		Image:           user.Image,
		CreatedAt:       user.CreatedAt,
		UpdatedAt:       user.UpdatedAt,
	}
}

// dbToDomain converts database user to domain user
func (r *UserRepositoryImpl) dbToDomain(dbUser *DBUser) *domain.User {
	return &domain.User{
		ID:              dbUser.ID,
		Email:           dbUser.Email,
		Username:        dbUser.Username,
		FirstName:       dbUser.FirstName,
		LastName:        dbUser.LastName,
		Phone:           dbUser.Phone,
		Password:        dbUser.Password,
		Role:            domain.Role(dbUser.Role),
		Status:          domain.Status(dbUser.Status),
		ErrorLoginCount: dbUser.ErrorLoginCount,
		RandToken:       dbUser.RandToken,
		LastLogin:       dbUser.LastLogin,
		Image:           dbUser.Image,
		CreatedAt:       dbUser.CreatedAt,
		UpdatedAt:       dbUser.UpdatedAt,
	}
}
