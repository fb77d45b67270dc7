package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/you/storeapi/domain"
)

// JWTConfig configures the token codec. Access and refresh tokens are signed
// with distinct secrets.
type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	Issuer        string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

type accessClaims struct {
	ID uint `json:"id"`
	jwt.RegisteredClaims
}

type refreshClaims struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// JWTServiceImpl implements domain.TokenService
type JWTServiceImpl struct {
	accessSecret  []byte
	refreshSecret []byte
	issuer        string
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewJWTService creates a new JWT service
func NewJWTService(cfg JWTConfig) *JWTServiceImpl {
	return &JWTServiceImpl{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		issuer:        cfg.Issuer,
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		now:           time.Now,
	}
}

// WithClock replaces the time source used for issuing and validating tokens
func (j *JWTServiceImpl) WithClock(now func() time.Time) *JWTServiceImpl {
	j.now = now
	return j
}

func (j *JWTServiceImpl) registered(ttl time.Duration) jwt.RegisteredClaims {
	now := j.now()
	return jwt.RegisteredClaims{
		Issuer:    j.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

// GenerateAccessToken implements domain.TokenService
func (j *JWTServiceImpl) GenerateAccessToken(userID uint) (string, error) {
	claims := accessClaims{ID: userID, RegisteredClaims: j.registered(j.accessTTL)}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.accessSecret)
}

// GenerateRefreshToken implements domain.TokenService
func (j *JWTServiceImpl) GenerateRefreshToken(userID uint, email string) (string, error) {
	claims := refreshClaims{ID: userID, Email: email, RegisteredClaims: j.registered(j.refreshTTL)}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.refreshSecret)
}

// ValidateAccessToken implements domain.TokenService
func (j *JWTServiceImpl) ValidateAccessToken(tokenString string) (*domain.AccessClaims, error) {
	var claims accessClaims
	if err := j.parse(tokenString, &claims, j.accessSecret); err != nil {
		return nil, err
	}
	if claims.ID == 0 {
		return nil, domain.ErrTokenInvalid
	}
	return &domain.AccessClaims{UserID: claims.ID}, nil
}

// ValidateRefreshToken implements domain.TokenService
func (j *JWTServiceImpl) ValidateRefreshToken(tokenString string) (*domain.RefreshClaims, error) {
	var claims refreshClaims
	if err := j.parse(tokenString, &claims, j.refreshSecret); err != nil {
		return nil, err
	}
	if claims.ID == 0 {
		return nil, domain.ErrTokenInvalid
	}
	return &domain.RefreshClaims{UserID: claims.ID, Email: claims.Email}, nil
}

// parse classifies failures: a bad signature or shape is ErrTokenInvalid even
// when the token is also past its expiry.
func (j *JWTServiceImpl) parse(tokenString string, claims jwt.Claims, secret []byte) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
		}
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	switch {
	case err == nil && token.Valid:
		return nil
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", domain.ErrTokenInvalid, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return domain.ErrTokenExpired
	case err != nil:
		return fmt.Errorf("%w: %v", domain.ErrTokenInvalid, err)
	default:
		return domain.ErrTokenInvalid
	}
}
