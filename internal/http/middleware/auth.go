package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/you/storeapi/domain"
)

// Context keys set by the session and permit middleware
const (
	UserIDKey = "user_id"
	UserKey   = "user"
)

// AuthMW authenticates requests from the session cookies
type AuthMW struct {
	sessions domain.SessionService
	cookies  Cookies
}

// NewAuthMW creates new auth middleware wrapper
func NewAuthMW(sessions domain.SessionService, cookies Cookies) *AuthMW {
	return &AuthMW{sessions: sessions, cookies: cookies}
}

// WithSession requires a live session. An expired access token is renewed from
// the refresh token and its cookie replaced; the refresh token is left as is.
func (mw *AuthMW) WithSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := mw.Identify(c)
		if err != nil {
			Fail(c, err)
			return
		}
		c.Set(UserIDKey, identity.UserID)
		c.Next()
	}
}

// EnsureUnauthenticated rejects requests that already carry a live session
func (mw *AuthMW) EnsureUnauthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		refreshToken, _ := c.Cookie(RefreshCookie)
		if mw.sessions.IsActive(c.Request.Context(), refreshToken) {
			Fail(c, domain.ErrAlreadyLoggedIn)
			return
		}
		c.Next()
	}
}

// Identify authenticates the request cookies and refreshes the access cookie
// when a new access token was issued
func (mw *AuthMW) Identify(c *gin.Context) (*domain.Identity, error) {
	accessToken, _ := c.Cookie(AccessCookie)
	refreshToken, _ := c.Cookie(RefreshCookie)

	identity, err := mw.sessions.Authenticate(c.Request.Context(), accessToken, refreshToken)
	if err != nil {
		return nil, err
	}
	if identity.RenewedAccessToken != "" {
		mw.cookies.SetAccess(c, identity.RenewedAccessToken)
	}
	return identity, nil
}

// UserID returns the id stored by WithSession, or 0
func UserID(c *gin.Context) uint {
	id, _ := c.Get(UserIDKey)
	v, _ := id.(uint)
	return v
}

// CurrentUser returns the user stored by Permit
func CurrentUser(c *gin.Context) (*domain.User, bool) {
	v, ok := c.Get(UserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*domain.User)
	return user, ok
}
