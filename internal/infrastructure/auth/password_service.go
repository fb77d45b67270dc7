package auth

import (
	"github.com/you/storeapi/domain"
	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt cost used for passwords and OTP codes
const DefaultCost = 10

// PasswordServiceImpl implements domain.PasswordService
type PasswordServiceImpl struct {
	cost int
}

// NewPasswordService creates a new password service
func NewPasswordService() domain.PasswordService {
	return NewPasswordServiceWithCost(DefaultCost)
}

// NewPasswordServiceWithCost creates a password service with a custom bcrypt cost
func NewPasswordServiceWithCost(cost int) domain.PasswordService {
	return &PasswordServiceImpl{cost: cost}
}

// Hash implements domain.PasswordService
func (p *PasswordServiceImpl) Hash(secret string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(secret), p.cost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// Verify implements domain.PasswordService
func (p *PasswordServiceImpl) Verify(hashed, secret string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(secret))
	return err == nil
}
