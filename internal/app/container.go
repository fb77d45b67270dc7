package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/you/storeapi/domain"
	"github.com/you/storeapi/internal/config"
	httpx "github.com/you/storeapi/internal/http"
	"github.com/you/storeapi/internal/http/handlers"
	"github.com/you/storeapi/internal/http/middleware"
	"github.com/you/storeapi/internal/infrastructure/audit"
	"github.com/you/storeapi/internal/infrastructure/auth"
	"github.com/you/storeapi/internal/infrastructure/database"
	"github.com/you/storeapi/internal/infrastructure/notifications"
	"github.com/you/storeapi/internal/infrastructure/ratelimit"
	"github.com/you/storeapi/internal/infrastructure/repositories"
	"github.com/you/storeapi/internal/services"
)

// defaultPolicies are seeded into an empty casbin_rule table
var defaultPolicies = [][]string{
	{services.Subject(domain.RoleAdmin), "/api/v1/admin/*", ".*"},
}

// Container holds all dependencies
type Container struct {
	Config *config.Config
	Log    *zap.Logger

	// Infrastructure
	DB    *gorm.DB
	Redis *database.RedisClient

	// Repositories
	UserRepo domain.UserRepository
	OtpRepo  domain.OtpRepository

	// Services
	PasswordSvc     domain.PasswordService
	TokenSvc        domain.TokenService
	NotificationSvc domain.NotificationService
	OTPSvc          domain.OTPService
	SessionSvc      domain.SessionService
	Guard           domain.AccountGuard
	AuthSvc         domain.AuthService
	PolicySvc       domain.PolicyService
}

// NewContainer connects the stores and builds the services
func NewContainer(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Container, error) {
	c := &Container{Config: cfg, Log: log}

	if err := c.initDatabase(); err != nil {
		return nil, err
	}
	if err := c.initRedis(ctx); err != nil {
		return nil, err
	}
	c.initRepositories()
	if err := c.initServices(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Container) initDatabase() error {
	db, err := database.Open(c.Config.DSN, c.Config.IsProduction())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		return err
	}
	c.DB = db
	return nil
}

func (c *Container) initRedis(ctx context.Context) error {
	rdb := database.NewRedis(c.Config.RedisAddr, c.Config.RedisPassword, c.Config.RedisDB)
	if err := rdb.Ping(ctx); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	c.Redis = rdb
	return nil
}

func (c *Container) initRepositories() {
	c.UserRepo = repositories.NewUserRepository(c.DB)
	c.OtpRepo = repositories.NewOtpRepository(c.DB)
}

func (c *Container) initServices() error {
	cfg := c.Config

	cas, err := auth.NewCasbinService(c.DB)
	if err != nil {
		return err
	}
	seeded, err := cas.SeedDefaults(defaultPolicies)
	if err != nil {
		return fmt.Errorf("failed to seed policies: %w", err)
	}
	if seeded {
		c.Log.Info("casbin: seeded default policies", zap.Int("count", len(defaultPolicies)))
	}

	c.PasswordSvc = auth.NewPasswordService()
	c.TokenSvc = auth.NewJWTService(auth.JWTConfig{
		AccessSecret:  cfg.AccessSecret,
		RefreshSecret: cfg.RefreshSecret,
		Issuer:        cfg.JWTIssuer,
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
	})
	c.NotificationSvc = notifications.NewMailService(notifications.MailConfig{
		Host:     cfg.MailHost,
		Port:     cfg.MailPort,
		Username: cfg.MailUsername,
		Password: cfg.MailPassword,
		From:     cfg.MailFrom,
	}, c.Log)

	secrets := auth.NewSecretGenerator()
	auditLog := audit.NewZapAuditLogger(c.Log)
	clock := services.NewClock(cfg.Location)

	c.OTPSvc = services.NewOTPService(c.OtpRepo, c.PasswordSvc, secrets, auditLog, c.Log, clock, services.OTPConfig{
		TTL:         cfg.OTPTTL,
		MaxErrors:   cfg.OTPMaxErrors,
		MaxRequests: cfg.OTPMaxRequests,
	})
	c.SessionSvc = services.NewSessionService(c.UserRepo, c.TokenSvc, secrets, auditLog, c.Log, clock)
	c.Guard = services.NewAccountGuard(c.UserRepo, c.PasswordSvc, c.SessionSvc, auditLog, c.Log, clock, cfg.LoginMaxErrors)
	c.AuthSvc = services.NewAuthService(c.UserRepo, c.PasswordSvc, c.OTPSvc, c.SessionSvc, c.NotificationSvc, secrets, auditLog, c.Log, clock)
	c.PolicySvc = services.NewPolicyService(cas.E)
	return nil
}

// Router builds the HTTP handler over the container's services
func (c *Container) Router() (*gin.Engine, error) {
	cfg := c.Config

	if err := handlers.RegisterValidators(); err != nil {
		return nil, err
	}

	cookies := middleware.Cookies{
		Domain:     cfg.CookieDomain,
		Secure:     cfg.CookieSecure,
		SameSite:   cfg.CookieSameSite,
		AccessTTL:  cfg.AccessTTL,
		RefreshTTL: cfg.RefreshTTL,
	}
	authMW := middleware.NewAuthMW(c.SessionSvc, cookies)

	return httpx.BuildRouter(httpx.RouterDeps{
		Log:            c.Log,
		TrustedProxies: cfg.TrustedProxies,
		CORSOrigins:    cfg.CORSOrigins,
		Auth:           handlers.NewAuthHandlers(c.AuthSvc, c.Guard, c.SessionSvc, authMW, cookies),
		Policies:       handlers.NewPolicyHandlers(c.PolicySvc),
		AuthMW:         authMW,
		Casbin:         middleware.NewCasbinMW(c.PolicySvc),
		Guard:          c.Guard,
		Limiters: httpx.Limiters{
			Auth:      ratelimit.NewFixedWindowLimiter(c.Redis.Client, "auth", cfg.AuthLimit.Requests, cfg.AuthLimit.Window),
			AuthCheck: ratelimit.NewFixedWindowLimiter(c.Redis.Client, "auth-check", cfg.AuthCheckLimit.Requests, cfg.AuthCheckLimit.Window),
			Normal:    ratelimit.NewFixedWindowLimiter(c.Redis.Client, "normal", cfg.NormalLimit.Requests, cfg.NormalLimit.Window),
		},
		Health: map[string]handlers.Pinger{
			"database": database.DBPinger{DB: c.DB},
			"redis":    c.Redis,
		},
	})
}

// Close releases the store connections
func (c *Container) Close() {
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Log.Warn("failed to close redis", zap.Error(err))
		}
	}
	if c.DB != nil {
		if sqlDB, err := c.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
