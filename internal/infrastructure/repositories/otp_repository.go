package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/you/storeapi/domain"
	"gorm.io/gorm"
)

// OtpRepositoryImpl implements domain.OtpRepository using GORM
type OtpRepositoryImpl struct {
	db *gorm.DB
}

// DBOtp is the otps table. One row per email.
type DBOtp struct {
	ID            uint      `gorm:"primaryKey"`
	Email         string    `gorm:"uniqueIndex;size:255;not null"`
	OTP           string    `gorm:"column:otp;not null"`
	RememberToken string    `gorm:"size:128;not null"`
	VerifyToken   *string   `gorm:"size:128"`
	ErrorCount    int       `gorm:"column:error_count;not null"`
	RequestCount  int       `gorm:"column:request_count;not null"`
	CreatedAt     time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime:false"`
}

// TableName returns the table name for GORM
func (DBOtp) TableName() string {
	return "otps"
}

// NewOtpRepository creates a new otp repository
func NewOtpRepository(db *gorm.DB) domain.OtpRepository {
	return &OtpRepositoryImpl{db: db}
}

// Create implements domain.OtpRepository
func (r *OtpRepositoryImpl) Create(ctx context.Context, otp *domain.Otp) error {
	row := &DBOtp{
		Email:         otp.Email,
		OTP:           otp.OTP,
		RememberToken: otp.RememberToken,
		VerifyToken:   otp.VerifyToken,
		ErrorCount:    otp.Error,
		RequestCount:  otp.Count,
		CreatedAt:     otp.CreatedAt,
		UpdatedAt:     otp.UpdatedAt,
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	otp.ID = row.ID
	otp.CreatedAt = row.CreatedAt
	otp.UpdatedAt = row.UpdatedAt
	return nil
}

// FindByEmail implements domain.OtpRepository
func (r *OtpRepositoryImpl) FindByEmail(ctx context.Context, email string) (*domain.Otp, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *OtpRepositoryImpl) findOne(ctx context.Context, query string, arg interface{}) (*domain.Otp, error) {
	var row DBOtp
	err := r.db.WithContext(ctx).Where(query, arg).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOtpNotFound
		}
		return nil, err
	}
	return &domain.Otp{
		ID:            row.ID,
		Email:         row.Email,
		OTP:           row.OTP,
		RememberToken: row.RememberToken,
		VerifyToken:   row.VerifyToken,
		Error:         row.ErrorCount,
		Count:         row.RequestCount,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}, nil
}

// Update implements domain.OtpRepository
func (r *OtpRepositoryImpl) Update(ctx context.Context, id uint, changes domain.OtpChanges) (*domain.Otp, error) {
	values := map[string]interface{}{
		"updated_at": changes.UpdatedAt,
	}
	if changes.OTP != nil {
		values["otp"] = *changes.OTP
	}
	if changes.RememberToken != nil {
		values["remember_token"] = *changes.RememberToken
	}
	switch {
	case changes.ClearVerifyToken:
		values["verify_token"] = nil
	case changes.VerifyToken != nil:
		values["verify_token"] = *changes.VerifyToken
	}
	switch {
	case changes.IncrementError:
		values["error_count"] = gorm.Expr("error_count + ?", 1)
	case changes.Error != nil:
		values["error_count"] = *changes.Error
	}
	switch {
	case changes.IncrementCount:
		values["request_count"] = gorm.Expr("request_count + ?", 1)
	case changes.Count != nil:
		values["request_count"] = *changes.Count
	}

	result := r.db.WithContext(ctx).Model(&DBOtp{}).Where("id = ?", id).Updates(values)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, domain.ErrOtpNotFound
	}
	return r.findOne(ctx, "id = ?", id)
}
