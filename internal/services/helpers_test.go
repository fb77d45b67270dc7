package services

import (
	"context"
	"testing"
	"time"

	"github.com/you/storeapi/domain"
	"github.com/you/storeapi/internal/infrastructure/auth"
	"github.com/you/storeapi/internal/mocks"
	"go.uber.org/zap"
)

// fixture wires the real services over in-memory stores and a clock that
// only moves when the test advances it
type fixture struct {
	now      time.Time
	clock    Clock
	users    *mocks.MockUserRepository
	otps     *mocks.MockOtpRepository
	hasher   *mocks.MockPasswordService
	tokens   *auth.JWTServiceImpl
	secrets  *mocks.MockSecretGenerator
	notifier *mocks.MockNotificationService
	audit    *mocks.MockAuditLogger

	otp      domain.OTPService
	sessions domain.SessionService
	guard    domain.AccountGuard
	auth     domain.AuthService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		now:      time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		users:    mocks.NewMockUserRepository(),
		otps:     mocks.NewMockOtpRepository(),
		hasher:   mocks.NewMockPasswordService(),
		secrets:  mocks.NewMockSecretGenerator(),
		notifier: mocks.NewMockNotificationService(),
		audit:    mocks.NewMockAuditLogger(),
	}
	f.clock = Clock{Now: func() time.Time { return f.now }, Location: time.UTC}
	f.tokens = newTestTokens("access-secret", "refresh-secret", f.clock.Now)

	log := zap.NewNop()
	f.otp = NewOTPService(f.otps, f.hasher, f.secrets, f.audit, log, f.clock, DefaultOTPConfig)
	f.sessions = NewSessionService(f.users, f.tokens, f.secrets, f.audit, log, f.clock)
	f.guard = NewAccountGuard(f.users, f.hasher, f.sessions, f.audit, log, f.clock, 3)
	f.auth = NewAuthService(f.users, f.hasher, f.otp, f.sessions, f.notifier, f.secrets, f.audit, log, f.clock)
	return f
}

func newTestTokens(accessSecret, refreshSecret string, now func() time.Time) *auth.JWTServiceImpl {
	return auth.NewJWTService(auth.JWTConfig{
		AccessSecret:  accessSecret,
		RefreshSecret: refreshSecret,
		Issuer:        "storeapi-test",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    30 * 24 * time.Hour,
	}).WithClock(now)
}

func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

// seedUser stores an active user whose password is "password1"
func (f *fixture) seedUser(t *testing.T, email string, mutate func(*domain.User)) *domain.User {
	t.Helper()
	user := &domain.User{
		Email:     email,
		Username:  "user-" + email,
		Password:  "hashed_password1",
		Role:      domain.RoleUser,
		Status:    domain.StatusActive,
		RandToken: "initial",
		CreatedAt: f.now,
		UpdatedAt: f.now,
	}
	if mutate != nil {
		mutate(user)
	}
	return f.users.Seed(user)
}

// seedOtp stores an otp row for email with the code "123456"
func (f *fixture) seedOtp(t *testing.T, email string, mutate func(*domain.Otp)) *domain.Otp {
	t.Helper()
	row := &domain.Otp{
		Email:         email,
		OTP:           "hashed_123456",
		RememberToken: "remember",
		Count:         1,
		CreatedAt:     f.now,
		UpdatedAt:     f.now,
	}
	if mutate != nil {
		mutate(row)
	}
	if err := f.otps.Create(context.Background(), row); err != nil {
		t.Fatalf("seed otp: %v", err)
	}
	return row
}

func (f *fixture) otpRow(t *testing.T, email string) *domain.Otp {
	t.Helper()
	row, err := f.otps.FindByEmail(context.Background(), email)
	if err != nil {
		t.Fatalf("load otp: %v", err)
	}
	return row
}

func (f *fixture) user(t *testing.T, email string) *domain.User {
	t.Helper()
	user, err := f.users.FindByEmail(context.Background(), email)
	if err != nil {
		t.Fatalf("load user: %v", err)
	}
	return user
}
