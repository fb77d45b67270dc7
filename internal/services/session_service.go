package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/you/storeapi/domain"
	"go.uber.org/zap"
)

// SessionServiceImpl implements domain.SessionService.
//
// A refresh token is valid only while it equals the user's stored randToken,
// which allows one active session per user and revocation on logout. Silent
// renewal issues a new access token but never rotates the refresh token:
// parallel requests renewing with the same refresh token must all succeed.
type SessionServiceImpl struct {
	userRepo domain.UserRepository
	tokens   domain.TokenService
	secrets  domain.SecretGenerator
	audit    domain.AuditLogger
	log      *zap.Logger
	clock    Clock
}

// NewSessionService creates a new session service
func NewSessionService(
	userRepo domain.UserRepository,
	tokens domain.TokenService,
	secrets domain.SecretGenerator,
	audit domain.AuditLogger,
	log *zap.Logger,
	clock Clock,
) domain.SessionService {
	return &SessionServiceImpl{
		userRepo: userRepo,
		tokens:   tokens,
		secrets:  secrets,
		audit:    audit,
		log:      log,
		clock:    clock,
	}
}

// IssueTokens implements domain.SessionService
func (s *SessionServiceImpl) IssueTokens(user *domain.User) (*domain.TokenPair, error) {
	accessToken, err := s.tokens.GenerateAccessToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refreshToken, err := s.tokens.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return &domain.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Authenticate implements domain.SessionService
func (s *SessionServiceImpl) Authenticate(ctx context.Context, accessToken, refreshToken string) (*domain.Identity, error) {
	if refreshToken == "" {
		return nil, domain.ErrUnauthenticated
	}

	if accessToken != "" {
		claims, err := s.tokens.ValidateAccessToken(accessToken)
		switch {
		case err == nil:
			return &domain.Identity{UserID: claims.UserID}, nil
		case !errors.Is(err, domain.ErrTokenExpired):
			s.attack(ctx, "access", err)
			return nil, domain.ErrAccessTokenAttack.Wrap(err)
		}
	}

	user, err := s.checkRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	renewed, err := s.tokens.GenerateAccessToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	return &domain.Identity{UserID: user.ID, RenewedAccessToken: renewed}, nil
}

// IsActive implements domain.SessionService. It reports whether refreshToken
// belongs to a live session and never fails.
func (s *SessionServiceImpl) IsActive(ctx context.Context, refreshToken string) bool {
	if refreshToken == "" {
		return false
	}
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return false
	}
	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return false
	}
	return user.Email == claims.Email && equalTokens(user.RandToken, refreshToken)
}

// Logout implements domain.SessionService. Overwriting randToken revokes the
// presented refresh token for good.
func (s *SessionServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return domain.ErrUnauthenticated
	}

	user, err := s.checkRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrAuthUserNotFound
		}
		return err
	}

	randToken, err := s.secrets.Token()
	if err != nil {
		return fmt.Errorf("failed to generate rand token: %w", err)
	}
	if _, err := s.userRepo.Update(ctx, user.ID, domain.UserChanges{
		RandToken: &randToken,
		UpdatedAt: s.clock.Now(),
	}); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.UserLogoutEvent, user.ID).WithEmail(user.Email))
	return nil
}

// checkRefreshToken verifies the signature and that the token is the one
// stored for its user
func (s *SessionServiceImpl) checkRefreshToken(ctx context.Context, refreshToken string) (*domain.User, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrTokenExpired) {
			return nil, domain.ErrUnauthenticated
		}
		s.attack(ctx, "refresh", err)
		return nil, domain.ErrRefreshAttack.Wrap(err)
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if user.Email != claims.Email || !equalTokens(user.RandToken, refreshToken) {
		s.log.Debug("stale refresh token", zap.Uint("user_id", user.ID))
		return nil, domain.ErrUnauthenticated
	}
	return user, nil
}

func (s *SessionServiceImpl) attack(ctx context.Context, kind string, err error) {
	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.AttackDetectedEvent, 0).
		WithError(err).WithMetadata("token", kind))
}
