package httpx

import (
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/you/storeapi/domain"
	"github.com/you/storeapi/internal/http/handlers"
	"github.com/you/storeapi/internal/http/middleware"
	"go.uber.org/zap"
)

// Limiters are the request rate limiters of the route groups
type Limiters struct {
	Auth      domain.RateLimiter
	AuthCheck domain.RateLimiter
	Normal    domain.RateLimiter
}

// RouterDeps is everything the router wires into routes
type RouterDeps struct {
	Log *zap.Logger
	// TrustedProxies may set X-Forwarded-For; with none the TCP peer is the
	// client IP the rate limits count
	TrustedProxies []string
	CORSOrigins    []string
	Auth           *handlers.AuthHandlers
	Policies       *handlers.PolicyHandlers
	AuthMW         *middleware.AuthMW
	Casbin         *middleware.CasbinMW
	Guard          domain.AccountGuard
	Limiters       Limiters
	Health         map[string]handlers.Pinger
}

func BuildRouter(d RouterDeps) (*gin.Engine, error) {
	r := gin.New()
	if err := r.SetTrustedProxies(d.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}
	r.Use(
		ginzap.RecoveryWithZap(d.Log, true),
		middleware.RequestID(),
		ginzap.Ginzap(d.Log, time.RFC3339, true),
	)
	if len(d.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     d.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
			ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	r.Use(middleware.ErrorHandler(d.Log))

	r.GET("/health", handlers.Health(d.Health))

	authLimit := middleware.RateLimit(d.Limiters.Auth, d.Log)
	authCheckLimit := middleware.RateLimit(d.Limiters.AuthCheck, d.Log)
	normalLimit := middleware.RateLimit(d.Limiters.Normal, d.Log)
	session := d.AuthMW.WithSession()

	v1 := r.Group("/api/v1")

	auth := v1.Group("/auth", authLimit)
	auth.POST("/logout", d.Auth.Logout)

	guest := auth.Group("", d.AuthMW.EnsureUnauthenticated())
	guest.POST("/register", d.Auth.Register)
	guest.POST("/verify-otp", d.Auth.VerifyOTP)
	guest.POST("/resend-otp", d.Auth.ResendOTP)
	guest.POST("/confirm-password", d.Auth.ConfirmPassword)
	guest.POST("/sign-in", d.Auth.SignIn)
	guest.POST("/forgot-password", d.Auth.ForgotPassword)
	guest.POST("/verify-password-otp", d.Auth.VerifyPasswordOTP)
	guest.POST("/reset-password", d.Auth.ResetPassword)

	v1.GET("/auth-check", authCheckLimit, d.Auth.AuthCheck)

	profile := v1.Group("/profile", normalLimit, session,
		middleware.Permit(d.Guard, true, domain.RoleAdmin, domain.RoleAuthor, domain.RoleUser))
	profile.GET("/me", d.Auth.Me)

	adm := v1.Group("/admin", normalLimit, session,
		middleware.Permit(d.Guard, true, domain.RoleAdmin), d.Casbin.Enforce())
	adm.GET("/policies", d.Policies.List)
	adm.POST("/policies", d.Policies.Add)
	adm.DELETE("/policies", d.Policies.Remove)

	return r, nil
}
