package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/you/storeapi/domain"
	"go.uber.org/zap"
)

// OTPConfig holds OTP limits
type OTPConfig struct {
	TTL         time.Duration
	MaxErrors   int
	MaxRequests int
}

// DefaultOTPConfig is 2 minute freshness, 5 wrong codes and 3 requests per day
var DefaultOTPConfig = OTPConfig{TTL: 2 * time.Minute, MaxErrors: 5, MaxRequests: 3}

// OTPServiceImpl implements domain.OTPService. The row's updated_at anchors
// both the freshness window and the daily counters.
type OTPServiceImpl struct {
	otpRepo domain.OtpRepository
	hasher  domain.PasswordService
	secrets domain.SecretGenerator
	audit   domain.AuditLogger
	log     *zap.Logger
	clock   Clock
	config  OTPConfig
}

// NewOTPService creates a new OTP service
func NewOTPService(
	otpRepo domain.OtpRepository,
	hasher domain.PasswordService,
	secrets domain.SecretGenerator,
	audit domain.AuditLogger,
	log *zap.Logger,
	clock Clock,
	config OTPConfig,
) domain.OTPService {
	return &OTPServiceImpl{
		otpRepo: otpRepo,
		hasher:  hasher,
		secrets: secrets,
		audit:   audit,
		log:     log,
		clock:   clock,
		config:  config,
	}
}

// RefreshOrCreate implements domain.OTPService
func (s *OTPServiceImpl) RefreshOrCreate(ctx context.Context, email string) (*domain.OtpIssue, error) {
	row, err := s.otpRepo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, domain.ErrOtpNotFound) {
		return nil, fmt.Errorf("failed to load otp: %w", err)
	}

	if row != nil && s.clock.Today(row.UpdatedAt) {
		if row.Error >= s.config.MaxErrors {
			return nil, domain.ErrOtpErrorCountLimitExceeded
		}
		if row.Count >= s.config.MaxRequests {
			return nil, domain.ErrOtpCountLimitExceeded
		}
	}

	code, err := s.secrets.OTP()
	if err != nil {
		return nil, fmt.Errorf("failed to generate otp: %w", err)
	}
	rememberToken, err := s.secrets.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to generate remember token: %w", err)
	}
	hashed, err := s.hasher.Hash(code)
	if err != nil {
		return nil, fmt.Errorf("failed to hash otp: %w", err)
	}

	now := s.clock.Now()
	switch {
	case row == nil:
		err = s.otpRepo.Create(ctx, &domain.Otp{
			Email:         email,
			OTP:           hashed,
			RememberToken: rememberToken,
			Count:         1,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	case s.clock.Today(row.UpdatedAt):
		_, err = s.otpRepo.Update(ctx, row.ID, domain.OtpChanges{
			OTP:              &hashed,
			RememberToken:    &rememberToken,
			ClearVerifyToken: true,
			IncrementCount:   true,
			UpdatedAt:        now,
		})
	default:
		one, zero := 1, 0
		_, err = s.otpRepo.Update(ctx, row.ID, domain.OtpChanges{
			OTP:              &hashed,
			RememberToken:    &rememberToken,
			ClearVerifyToken: true,
			Count:            &one,
			Error:            &zero,
			UpdatedAt:        now,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to store otp: %w", err)
	}

	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.OTPRequestEvent, 0).WithEmail(email))
	return &domain.OtpIssue{Email: email, Code: code, RememberToken: rememberToken}, nil
}

// Verify implements domain.OTPService
func (s *OTPServiceImpl) Verify(ctx context.Context, email, code, rememberToken string) (string, error) {
	row, err := s.find(ctx, email)
	if err != nil {
		return "", err
	}

	today := s.clock.Today(row.UpdatedAt)
	if today && row.Error >= s.config.MaxErrors {
		return "", domain.ErrOtpErrorCountLimitExceeded
	}

	if !equalTokens(row.RememberToken, rememberToken) {
		return "", s.lock(ctx, row, "remember token mismatch")
	}

	if !s.hasher.Verify(row.OTP, code) {
		changes := domain.OtpChanges{UpdatedAt: s.clock.Now()}
		if today {
			changes.IncrementError = true
		} else {
			one := 1
			changes.Error = &one
		}
		if _, err := s.otpRepo.Update(ctx, row.ID, changes); err != nil {
			return "", fmt.Errorf("failed to record otp failure: %w", err)
		}
		s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.OTPVerifyFailureEvent, 0).
			WithEmail(email).WithError(domain.ErrInvalidOrWrongOtp))
		return "", domain.ErrInvalidOrWrongOtp
	}

	if s.expired(row) {
		return "", domain.ErrExpiredOtp
	}

	verifyToken, err := s.secrets.Token()
	if err != nil {
		return "", fmt.Errorf("failed to generate verify token: %w", err)
	}
	zero, one := 0, 1
	if _, err := s.otpRepo.Update(ctx, row.ID, domain.OtpChanges{
		VerifyToken: &verifyToken,
		Error:       &zero,
		Count:       &one,
		UpdatedAt:   s.clock.Now(),
	}); err != nil {
		return "", fmt.Errorf("failed to store verify token: %w", err)
	}

	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.OTPVerifyEvent, 0).WithEmail(email))
	return verifyToken, nil
}

// ConsumeVerifyToken implements domain.OTPService. A stale verify token is
// cleared, whatever token was presented, so the caller has to verify a code
// again.
func (s *OTPServiceImpl) ConsumeVerifyToken(ctx context.Context, email, verifyToken string) error {
	row, err := s.find(ctx, email)
	if err != nil {
		return err
	}

	if s.clock.Today(row.UpdatedAt) && row.Error >= s.config.MaxErrors {
		return domain.ErrOtpErrorCountLimitExceeded
	}
	if !row.Verified() {
		return domain.ErrOtpNotVerified
	}
	if s.expired(row) {
		if _, err := s.otpRepo.Update(ctx, row.ID, domain.OtpChanges{
			ClearVerifyToken: true,
			UpdatedAt:        s.clock.Now(),
		}); err != nil {
			return fmt.Errorf("failed to clear verify token: %w", err)
		}
		return domain.ErrExpiredOtp
	}
	if !equalTokens(*row.VerifyToken, verifyToken) {
		return s.lock(ctx, row, "verify token mismatch")
	}
	return nil
}

func (s *OTPServiceImpl) find(ctx context.Context, email string) (*domain.Otp, error) {
	row, err := s.otpRepo.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrOtpNotFound) {
		return nil, domain.ErrOtpNotExist
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load otp: %w", err)
	}
	return row, nil
}

// lock exhausts the day's error budget of a row and reports an invalid token
func (s *OTPServiceImpl) lock(ctx context.Context, row *domain.Otp, reason string) error {
	limit := s.config.MaxErrors
	if _, err := s.otpRepo.Update(ctx, row.ID, domain.OtpChanges{
		Error:     &limit,
		UpdatedAt: s.clock.Now(),
	}); err != nil {
		return fmt.Errorf("failed to lock otp: %w", err)
	}

	s.log.Warn("otp token mismatch", zap.String("email", row.Email), zap.String("reason", reason), zap.Bool("security", true))
	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.AttackDetectedEvent, 0).
		WithEmail(row.Email).WithError(domain.ErrInvalidToken).WithMetadata("reason", reason))
	return domain.ErrInvalidToken
}

func (s *OTPServiceImpl) expired(row *domain.Otp) bool {
	return s.clock.Now().Sub(row.UpdatedAt) > s.config.TTL
}

func equalTokens(stored, presented string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) == 1
}
