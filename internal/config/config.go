package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultConfigPath = "config/config.yml"

type AppConfig struct {
	Port     int    `yaml:"port"`
	Env      string `yaml:"env"`
	GinMode  string `yaml:"gin_mode"`
	LogLevel string `yaml:"log_level"`
	Timezone string `yaml:"timezone"`
	// TrustedProxies are the IPs or CIDRs allowed to set X-Forwarded-For.
	// Empty means the TCP peer is the client.
	TrustedProxies []string `yaml:"trusted_proxies"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type JWTConfig struct {
	AccessSecret  string `yaml:"access_secret"`
	RefreshSecret string `yaml:"refresh_secret"`
	Issuer        string `yaml:"issuer"`
	AccessTTL     string `yaml:"access_ttl"`
	RefreshTTL    string `yaml:"refresh_ttl"`
}

type OTPConfig struct {
	TTL         string `yaml:"ttl"`
	MaxErrors   int    `yaml:"max_errors"`
	MaxRequests int    `yaml:"max_requests"`
}

type LoginConfig struct {
	MaxErrors int `yaml:"max_errors"`
}

type CookieConfig struct {
	Domain   string `yaml:"domain"`
	Secure   *bool  `yaml:"secure"`
	SameSite string `yaml:"same_site"`
}

type CORSConfig struct {
	Origins []string `yaml:"origins"`
}

type LimitConfig struct {
	Limit  int    `yaml:"limit"`
	Window string `yaml:"window"`
}

type RateLimitConfig struct {
	Auth      LimitConfig `yaml:"auth"`
	AuthCheck LimitConfig `yaml:"auth_check"`
	Normal    LimitConfig `yaml:"normal"`
}

type MailConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type ConfigFile struct {
	App       AppConfig       `yaml:"app"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	JWT       JWTConfig       `yaml:"jwt"`
	OTP       OTPConfig       `yaml:"otp"`
	Login     LoginConfig     `yaml:"login"`
	Cookie    CookieConfig    `yaml:"cookie"`
	CORS      CORSConfig      `yaml:"cors"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Mail      MailConfig      `yaml:"mail"`
}

// Limit is a fixed request window
type Limit struct {
	Requests int
	Window   time.Duration
}

type Config struct {
	Port     string
	Env      string
	GinMode  string
	LogLevel string
	Location *time.Location

	TrustedProxies []string

	DSN           string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AccessSecret  string
	RefreshSecret string
	JWTIssuer     string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration

	OTPTTL         time.Duration
	OTPMaxErrors   int
	OTPMaxRequests int
	LoginMaxErrors int

	CookieDomain   string
	CookieSecure   bool
	CookieSameSite http.SameSite

	CORSOrigins []string

	AuthLimit      Limit
	AuthCheckLimit Limit
	NormalLimit    Limit

	MailHost     string
	MailPort     int
	MailUsername string
	MailPassword string
	MailFrom     string
}

// IsProduction reports whether the service runs with production settings
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// Load reads .env if present, then the YAML file at CONFIG_PATH
// (config/config.yml by default), then applies environment overrides.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return LoadFile(env("CONFIG_PATH", defaultConfigPath))
}

// LoadFile builds the configuration from a YAML file plus environment overrides
func LoadFile(path string) (*Config, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file at %s: %w", path, err)
	}
	return Parse(bytes)
}

// Parse builds the configuration from YAML bytes plus environment overrides
func Parse(data []byte) (*Config, error) {
	file := defaults()
	if err := yaml.Unmarshal(data, file); err != nil {
		return nil, fmt.Errorf("could not parse config yaml: %w", err)
	}
	applyEnv(file)
	return build(file)
}

func defaults() *ConfigFile {
	return &ConfigFile{
		App:   AppConfig{Port: 8080, Env: "development", GinMode: "debug", LogLevel: "info", Timezone: "Local"},
		Redis: RedisConfig{Addr: "localhost:6379"},
		JWT:   JWTConfig{Issuer: "storeapi", AccessTTL: "15m", RefreshTTL: "720h"},
		OTP:   OTPConfig{TTL: "2m", MaxErrors: 5, MaxRequests: 3},
		Login: LoginConfig{MaxErrors: 3},
		CORS:  CORSConfig{Origins: []string{"http://localhost:5173"}},
		RateLimit: RateLimitConfig{
			Auth:      LimitConfig{Limit: 5, Window: "15m"},
			AuthCheck: LimitConfig{Limit: 5, Window: "15m"},
			Normal:    LimitConfig{Limit: 60, Window: "1m"},
		},
		Mail: MailConfig{Port: 587},
	}
}

func applyEnv(f *ConfigFile) {
	f.App.Env = env("APP_ENV", f.App.Env)
	if port, err := strconv.Atoi(os.Getenv("PORT")); err == nil {
		f.App.Port = port
	}
	f.Database.DSN = env("DATABASE_DSN", f.Database.DSN)
	f.Redis.Addr = env("REDIS_ADDR", f.Redis.Addr)
	f.Redis.Password = env("REDIS_PASSWORD", f.Redis.Password)
	f.JWT.AccessSecret = env("ACCESS_TOKEN_SECRET_KEY", f.JWT.AccessSecret)
	f.JWT.RefreshSecret = env("REFRESH_TOKEN_SECRET_KEY", f.JWT.RefreshSecret)
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		f.CORS.Origins = splitList(origins)
	}
	if proxies := os.Getenv("TRUSTED_PROXIES"); proxies != "" {
		f.App.TrustedProxies = splitList(proxies)
	}
	f.Cookie.SameSite = env("COOKIE_SAME_SITE", f.Cookie.SameSite)
	f.Mail.Host = env("MAIL_HOST", f.Mail.Host)
	if port, err := strconv.Atoi(os.Getenv("MAIL_PORT")); err == nil {
		f.Mail.Port = port
	}
	f.Mail.Username = env("MAIL_USERNAME", f.Mail.Username)
	f.Mail.Password = env("MAIL_PASSWORD", f.Mail.Password)
	f.Mail.From = env("MAIL_FROM", f.Mail.From)
}

func build(f *ConfigFile) (*Config, error) {
	if f.JWT.AccessSecret == "" || f.JWT.RefreshSecret == "" {
		return nil, errors.New("ACCESS_TOKEN_SECRET_KEY and REFRESH_TOKEN_SECRET_KEY are required")
	}
	if f.JWT.AccessSecret == f.JWT.RefreshSecret {
		return nil, errors.New("access and refresh token secrets must differ")
	}

	accTTL, err := positiveDuration("jwt.access_ttl", f.JWT.AccessTTL)
	if err != nil {
		return nil, err
	}
	refTTL, err := positiveDuration("jwt.refresh_ttl", f.JWT.RefreshTTL)
	if err != nil {
		return nil, err
	}
	otpTTL, err := positiveDuration("otp.ttl", f.OTP.TTL)
	if err != nil {
		return nil, err
	}
	if f.OTP.MaxErrors <= 0 || f.OTP.MaxRequests <= 0 || f.Login.MaxErrors <= 0 {
		return nil, errors.New("otp and login limits must be positive")
	}

	for _, p := range f.App.TrustedProxies {
		if !validProxy(p) {
			return nil, fmt.Errorf("invalid app.trusted_proxies entry %q", p)
		}
	}

	loc, err := time.LoadLocation(f.App.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid app.timezone %q: %w", f.App.Timezone, err)
	}

	production := f.App.Env == "production"
	secure := production
	if f.Cookie.Secure != nil {
		secure = *f.Cookie.Secure
	}
	sameSiteName := f.Cookie.SameSite
	if sameSiteName == "" {
		sameSiteName = "strict"
		if production {
			sameSiteName = "none"
		}
	}
	sameSite, err := parseSameSite(sameSiteName)
	if err != nil {
		return nil, err
	}
	if sameSite == http.SameSiteNoneMode {
		secure = true
	}

	authLimit, err := parseLimit("rate_limit.auth", f.RateLimit.Auth)
	if err != nil {
		return nil, err
	}
	authCheckLimit, err := parseLimit("rate_limit.auth_check", f.RateLimit.AuthCheck)
	if err != nil {
		return nil, err
	}
	normalLimit, err := parseLimit("rate_limit.normal", f.RateLimit.Normal)
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:           fmt.Sprintf("%d", f.App.Port),
		Env:            f.App.Env,
		GinMode:        f.App.GinMode,
		LogLevel:       f.App.LogLevel,
		Location:       loc,
		TrustedProxies: f.App.TrustedProxies,
		DSN:            f.Database.DSN,
		RedisAddr:      f.Redis.Addr,
		RedisPassword:  f.Redis.Password,
		RedisDB:        f.Redis.DB,
		AccessSecret:   f.JWT.AccessSecret,
		RefreshSecret:  f.JWT.RefreshSecret,
		JWTIssuer:      f.JWT.Issuer,
		AccessTTL:      accTTL,
		RefreshTTL:     refTTL,
		OTPTTL:         otpTTL,
		OTPMaxErrors:   f.OTP.MaxErrors,
		OTPMaxRequests: f.OTP.MaxRequests,
		LoginMaxErrors: f.Login.MaxErrors,
		CookieDomain:   f.Cookie.Domain,
		CookieSecure:   secure,
		CookieSameSite: sameSite,
		CORSOrigins:    f.CORS.Origins,
		AuthLimit:      authLimit,
		AuthCheckLimit: authCheckLimit,
		NormalLimit:    normalLimit,
		MailHost:       f.Mail.Host,
		MailPort:       f.Mail.Port,
		MailUsername:   f.Mail.Username,
		MailPassword:   f.Mail.Password,
		MailFrom:       f.Mail.From,
	}, nil
}

func positiveDuration(name, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", name)
	}
	return d, nil
}

func parseLimit(name string, l LimitConfig) (Limit, error) {
	window, err := positiveDuration(name+".window", l.Window)
	if err != nil {
		return Limit{}, err
	}
	if l.Limit <= 0 {
		return Limit{}, fmt.Errorf("%s.limit must be positive", name)
	}
	return Limit{Requests: l.Limit, Window: window}, nil
}

func parseSameSite(s string) (http.SameSite, error) {
	switch strings.ToLower(s) {
	case "strict":
		return http.SameSiteStrictMode, nil
	case "lax":
		return http.SameSiteLaxMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	}
	return 0, fmt.Errorf("invalid cookie.same_site %q", s)
}

func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func validProxy(p string) bool {
	if net.ParseIP(p) != nil {
		return true
	}
	_, _, err := net.ParseCIDR(p)
	return err == nil
}
