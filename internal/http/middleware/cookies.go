package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/you/storeapi/domain"
)

// Session cookie names
const (
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"
)

// Cookies writes the httpOnly session cookies
type Cookies struct {
	Domain     string
	Secure     bool
	SameSite   http.SameSite
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// SetSession sets both session cookies
func (k Cookies) SetSession(c *gin.Context, tokens domain.TokenPair) {
	k.set(c, AccessCookie, tokens.AccessToken, k.AccessTTL)
	k.set(c, RefreshCookie, tokens.RefreshToken, k.RefreshTTL)
}

// SetAccess replaces the access token cookie
func (k Cookies) SetAccess(c *gin.Context, accessToken string) {
	k.set(c, AccessCookie, accessToken, k.AccessTTL)
}

// Clear expires both session cookies
func (k Cookies) Clear(c *gin.Context) {
	k.write(c, AccessCookie, "", -1)
	k.write(c, RefreshCookie, "", -1)
}

func (k Cookies) set(c *gin.Context, name, value string, ttl time.Duration) {
	k.write(c, name, value, int(ttl/time.Second))
}

func (k Cookies) write(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(k.SameSite)
	c.SetCookie(name, value, maxAge, "/", k.Domain, k.Secure, true)
}
