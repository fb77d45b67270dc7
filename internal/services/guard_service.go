package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/you/storeapi/domain"
	"go.uber.org/zap"
)

// AccountGuardImpl implements domain.AccountGuard
type AccountGuardImpl struct {
	userRepo  domain.UserRepository
	hasher    domain.PasswordService
	sessions  domain.SessionService
	audit     domain.AuditLogger
	log       *zap.Logger
	clock     Clock
	maxErrors int
}

// NewAccountGuard creates a new account guard. An account is frozen on the
// first failed sign-in after maxErrors failures on the same day.
func NewAccountGuard(
	userRepo domain.UserRepository,
	hasher domain.PasswordService,
	sessions domain.SessionService,
	audit domain.AuditLogger,
	log *zap.Logger,
	clock Clock,
	maxErrors int,
) domain.AccountGuard {
	return &AccountGuardImpl{
		userRepo:  userRepo,
		hasher:    hasher,
		sessions:  sessions,
		audit:     audit,
		log:       log,
		clock:     clock,
		maxErrors: maxErrors,
	}
}

// Login implements domain.AccountGuard. Unknown emails fail exactly like a
// wrong password.
func (g *AccountGuardImpl) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	user, err := g.userRepo.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		g.audit.LogEvent(ctx, domain.NewAuditEvent(domain.UserLoginFailureEvent, 0).
			WithEmail(email).WithError(err))
		return nil, domain.ErrInvalidPassword
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	today := g.clock.Today(user.UpdatedAt)
	if today {
		if user.Status == domain.StatusFreeze {
			return nil, domain.ErrAccountFreeze
		}
	} else if user.Status != domain.StatusActive {
		active := domain.StatusActive
		user, err = g.userRepo.Update(ctx, user.ID, domain.UserChanges{Status: &active, UpdatedAt: g.clock.Now()})
		if err != nil {
			return nil, fmt.Errorf("failed to reactivate user: %w", err)
		}
		g.log.Info("account reactivated", zap.Uint("user_id", user.ID))
	}

	if !g.hasher.Verify(user.Password, password) {
		if err := g.recordFailure(ctx, user, today); err != nil {
			return nil, err
		}
		return nil, domain.ErrInvalidPassword
	}

	tokens, err := g.sessions.IssueTokens(user)
	if err != nil {
		return nil, err
	}
	now := g.clock.Now()
	zero := 0
	user, err = g.userRepo.Update(ctx, user.ID, domain.UserChanges{
		ErrorLoginCount: &zero,
		RandToken:       &tokens.RefreshToken,
		LastLogin:       &now,
		UpdatedAt:       now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	g.audit.LogEvent(ctx, domain.NewAuditEvent(domain.UserLoginEvent, user.ID).WithEmail(user.Email))
	return &domain.AuthResult{User: user, Tokens: *tokens}, nil
}

// recordFailure advances the daily failure counter or freezes the account
func (g *AccountGuardImpl) recordFailure(ctx context.Context, user *domain.User, today bool) error {
	changes := domain.UserChanges{UpdatedAt: g.clock.Now()}
	frozen := false
	switch {
	case !today:
		one := 1
		changes.ErrorLoginCount = &one
	case user.ErrorLoginCount >= g.maxErrors:
		freeze := domain.StatusFreeze
		changes.Status = &freeze
		frozen = true
	default:
		changes.IncrementErrorLogins = true
	}

	if _, err := g.userRepo.Update(ctx, user.ID, changes); err != nil {
		return fmt.Errorf("failed to record login failure: %w", err)
	}

	g.audit.LogEvent(ctx, domain.NewAuditEvent(domain.UserLoginFailureEvent, user.ID).
		WithEmail(user.Email).WithError(domain.ErrInvalidPassword))
	if frozen {
		g.log.Warn("account frozen", zap.Uint("user_id", user.ID))
		g.audit.LogEvent(ctx, domain.NewAuditEvent(domain.AccountFreezeEvent, user.ID).WithEmail(user.Email))
	}
	return nil
}

// Authorize implements domain.AccountGuard. The role is read from the store on
// every call so that role changes apply immediately.
func (g *AccountGuardImpl) Authorize(ctx context.Context, userID uint, allowed bool, roles ...domain.Role) (*domain.User, error) {
	if userID == 0 {
		return nil, domain.ErrUnauthenticated
	}
	user, err := g.userRepo.FindByID(ctx, userID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if allowed {
		for _, role := range roles {
			if user.Role == role {
				return user, nil
			}
		}
	}

	g.audit.LogEvent(ctx, domain.NewAuditEvent(domain.AccessDeniedEvent, user.ID).
		WithError(domain.ErrNotAllowed).WithMetadata("role", string(user.Role)))
	return nil, domain.ErrNotAllowed
}
