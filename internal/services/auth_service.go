package services

import (
	"context"
	"errors"
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/you/storeapi/domain"
	"go.uber.org/zap"
)

const (
	usernameAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	usernameAttempts = 10
)

// AuthServiceImpl implements domain.AuthService
type AuthServiceImpl struct {
	userRepo    domain.UserRepository
	passwordSvc domain.PasswordService
	otpSvc      domain.OTPService
	sessions    domain.SessionService
	notifier    domain.NotificationService
	secrets     domain.SecretGenerator
	audit       domain.AuditLogger
	log         *zap.Logger
	clock       Clock
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo domain.UserRepository,
	passwordSvc domain.PasswordService,
	otpSvc domain.OTPService,
	sessions domain.SessionService,
	notifier domain.NotificationService,
	secrets domain.SecretGenerator,
	audit domain.AuditLogger,
	log *zap.Logger,
	clock Clock,
) domain.AuthService {
	return &AuthServiceImpl{
		userRepo:    userRepo,
		passwordSvc: passwordSvc,
		otpSvc:      otpSvc,
		sessions:    sessions,
		notifier:    notifier,
		secrets:     secrets,
		audit:       audit,
		log:         log,
		clock:       clock,
	}
}

// Register implements domain.AuthService
func (s *AuthServiceImpl) Register(ctx context.Context, email string) (*domain.OtpIssue, error) {
	if err := s.requireNoUser(ctx, email); err != nil {
		return nil, err
	}
	return s.issueOTP(ctx, email)
}

// VerifyRegistrationOTP implements domain.AuthService
func (s *AuthServiceImpl) VerifyRegistrationOTP(ctx context.Context, email, code, rememberToken string) (string, error) {
	if err := s.requireNoUser(ctx, email); err != nil {
		return "", err
	}
	return s.otpSvc.Verify(ctx, email, code, rememberToken)
}

// ConfirmPassword implements domain.AuthService. It creates the account and
// signs the new user in.
func (s *AuthServiceImpl) ConfirmPassword(ctx context.Context, email, password, verifyToken string) (*domain.AuthResult, error) {
	if err := s.requireNoUser(ctx, email); err != nil {
		return nil, err
	}
	if err := s.otpSvc.ConsumeVerifyToken(ctx, email, verifyToken); err != nil {
		return nil, err
	}

	username, err := s.generateUsername(ctx)
	if err != nil {
		return nil, err
	}
	hashed, err := s.passwordSvc.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	randToken, err := s.secrets.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to generate rand token: %w", err)
	}

	now := s.clock.Now()
	user := &domain.User{
		Email:     email,
		Username:  username,
		Password:  hashed,
		Role:      domain.RoleUser,
		Status:    domain.StatusActive,
		RandToken: randToken,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	tokens, err := s.sessions.IssueTokens(user)
	if err != nil {
		return nil, err
	}
	user, err = s.userRepo.Update(ctx, user.ID, domain.UserChanges{
		RandToken: &tokens.RefreshToken,
		UpdatedAt: s.clock.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.UserRegistrationEvent, user.ID).WithEmail(email))
	return &domain.AuthResult{User: user, Tokens: *tokens}, nil
}

// ResendOTP implements domain.AuthService
func (s *AuthServiceImpl) ResendOTP(ctx context.Context, email string) (*domain.OtpIssue, error) {
	return s.issueOTP(ctx, email)
}

// ForgotPassword implements domain.AuthService
func (s *AuthServiceImpl) ForgotPassword(ctx context.Context, email string) (*domain.OtpIssue, error) {
	if _, err := s.requireUser(ctx, email); err != nil {
		return nil, err
	}
	return s.issueOTP(ctx, email)
}

// VerifyPasswordOTP implements domain.AuthService
func (s *AuthServiceImpl) VerifyPasswordOTP(ctx context.Context, email, code, rememberToken string) (string, error) {
	if _, err := s.requireUser(ctx, email); err != nil {
		return "", err
	}
	return s.otpSvc.Verify(ctx, email, code, rememberToken)
}

// ResetPassword implements domain.AuthService
func (s *AuthServiceImpl) ResetPassword(ctx context.Context, email, password, verifyToken string) error {
	user, err := s.requireUser(ctx, email)
	if err != nil {
		return err
	}
	if err := s.otpSvc.ConsumeVerifyToken(ctx, email, verifyToken); err != nil {
		return err
	}

	hashed, err := s.passwordSvc.Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if _, err := s.userRepo.Update(ctx, user.ID, domain.UserChanges{
		Password:  &hashed,
		UpdatedAt: s.clock.Now(),
	}); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.PasswordResetEvent, user.ID).WithEmail(email))
	return nil
}

// GetUserProfile implements domain.AuthService
func (s *AuthServiceImpl) GetUserProfile(ctx context.Context, userID uint) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrNotFound
	}
	return user, err
}

// issueOTP refreshes the code for email and hands it to the delivery channel
func (s *AuthServiceImpl) issueOTP(ctx context.Context, email string) (*domain.OtpIssue, error) {
	issue, err := s.otpSvc.RefreshOrCreate(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := s.notifier.SendOTP(ctx, email, issue.Code); err != nil {
		return nil, fmt.Errorf("failed to deliver otp: %w", err)
	}
	return issue, nil
}

func (s *AuthServiceImpl) requireNoUser(ctx context.Context, email string) error {
	_, err := s.userRepo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return domain.ErrUserAlreadyExists
	case errors.Is(err, domain.ErrUserNotFound):
		return nil
	default:
		return fmt.Errorf("failed to load user: %w", err)
	}
}

func (s *AuthServiceImpl) requireUser(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrAuthUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

// generateUsername picks a random handle, adding a short suffix on collision
func (s *AuthServiceImpl) generateUsername(ctx context.Context) (string, error) {
	base, err := gonanoid.Generate(usernameAlphabet, 8)
	if err != nil {
		return "", fmt.Errorf("failed to generate username: %w", err)
	}

	username := base
	for i := 0; i < usernameAttempts; i++ {
		_, err := s.userRepo.FindByUsername(ctx, username)
		if errors.Is(err, domain.ErrUserNotFound) {
			return username, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to check username: %w", err)
		}
		suffix, err := gonanoid.Generate(usernameAlphabet, 2)
		if err != nil {
			return "", fmt.Errorf("failed to generate username: %w", err)
		}
		username = base + "-" + suffix
	}
	return "", errors.New("failed to generate a unique username")
}
