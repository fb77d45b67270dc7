package domain

import "context"

// UserRepository defines user data access operations
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByID(ctx context.Context, id uint) (*User, error)
	Update(ctx context.Context, id uint, changes UserChanges) (*User, error)
}

// OtpRepository defines otp data access operations
type OtpRepository interface {
	Create(ctx context.Context, otp *Otp) error
	FindByEmail(ctx context.Context, email string) (*Otp, error)
	Update(ctx context.Context, id uint, changes OtpChanges) (*Otp, error)
}

// PasswordService hashes secrets (passwords and OTP codes)
type PasswordService interface {
	Hash(secret string) (string, error)
	Verify(hashed, secret string) bool
}

// TokenService issues and verifies signed session tokens. Verification returns
// ErrTokenExpired for clock expiry and ErrTokenInvalid for anything else.
type TokenService interface {
	GenerateAccessToken(userID uint) (string, error)
	GenerateRefreshToken(userID uint, email string) (string, error)
	ValidateAccessToken(token string) (*AccessClaims, error)
	ValidateRefreshToken(token string) (*RefreshClaims, error)
}

// SecretGenerator produces random secrets
type SecretGenerator interface {
	OTP() (string, error)
	Token() (string, error)
}

// NotificationService delivers one-time codes out of band
type NotificationService interface {
	SendOTP(ctx context.Context, email, code string) error
}

// OTPService owns the otp row state machine
type OTPService interface {
	RefreshOrCreate(ctx context.Context, email string) (*OtpIssue, error)
	Verify(ctx context.Context, email, code, rememberToken string) (string, error)
	ConsumeVerifyToken(ctx context.Context, email, verifyToken string) error
}

// SessionService issues, validates and revokes session tokens. Callers persist
// the refresh token of a newly issued pair as the user's randToken.
type SessionService interface {
	IssueTokens(user *User) (*TokenPair, error)
	Authenticate(ctx context.Context, accessToken, refreshToken string) (*Identity, error)
	IsActive(ctx context.Context, refreshToken string) bool
	Logout(ctx context.Context, refreshToken string) error
}

// AccountGuard throttles sign-in and gates access by role
type AccountGuard interface {
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Authorize(ctx context.Context, userID uint, allowed bool, roles ...Role) (*User, error)
}

// AuthService implements the registration and password reset flows
type AuthService interface {
	Register(ctx context.Context, email string) (*OtpIssue, error)
	VerifyRegistrationOTP(ctx context.Context, email, code, rememberToken string) (string, error)
	ConfirmPassword(ctx context.Context, email, password, verifyToken string) (*AuthResult, error)
	ResendOTP(ctx context.Context, email string) (*OtpIssue, error)
	ForgotPassword(ctx context.Context, email string) (*OtpIssue, error)
	VerifyPasswordOTP(ctx context.Context, email, code, rememberToken string) (string, error)
	ResetPassword(ctx context.Context, email, password, verifyToken string) error
	GetUserProfile(ctx context.Context, userID uint) (*User, error)
}

// PolicyService defines authorization policy operations
type PolicyService interface {
	AddPolicy(role Role, resource, action string) (bool, error)
	RemovePolicy(role Role, resource, action string) (bool, error)
	CheckPermission(role Role, resource, action string) (bool, error)
	GetPolicies() ([][]string, error)
}

// CasbinEnforcer interface defines the methods we need from Casbin enforcer
type CasbinEnforcer interface {
	AddPolicy(params ...interface{}) (bool, error)
	RemovePolicy(params ...interface{}) (bool, error)
	Enforce(rvals ...interface{}) (bool, error)
	GetPolicy() ([][]string, error)
}

// RateLimiter counts requests per key in fixed windows
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}
