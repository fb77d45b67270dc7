package config

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setSecrets(t *testing.T) {
	for _, k := range []string{"APP_ENV", "PORT", "DATABASE_DSN", "CORS_ORIGINS", "MAIL_HOST", "COOKIE_SAME_SITE", "TRUSTED_PROXIES"} {
		t.Setenv(k, "")
	}
	t.Setenv("ACCESS_TOKEN_SECRET_KEY", "access")
	t.Setenv("REFRESH_TOKEN_SECRET_KEY", "refresh")
}

func TestParse_Defaults(t *testing.T) {
	setSecrets(t)

	cfg, err := Parse([]byte("app:\n  timezone: UTC\n"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 15*time.Minute, cfg.AccessTTL)
	assert.Equal(t, 30*24*time.Hour, cfg.RefreshTTL)
	assert.Equal(t, 2*time.Minute, cfg.OTPTTL)
	assert.Equal(t, 5, cfg.OTPMaxErrors)
	assert.Equal(t, 3, cfg.OTPMaxRequests)
	assert.Equal(t, 3, cfg.LoginMaxErrors)
	assert.Equal(t, Limit{Requests: 5, Window: 15 * time.Minute}, cfg.AuthLimit)
	assert.Equal(t, Limit{Requests: 60, Window: time.Minute}, cfg.NormalLimit)
	assert.Equal(t, http.SameSiteStrictMode, cfg.CookieSameSite)
	assert.False(t, cfg.CookieSecure)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.False(t, cfg.IsProduction())
	assert.Empty(t, cfg.TrustedProxies)
}

func TestParse_ProductionCookies(t *testing.T) {
	setSecrets(t)
	t.Setenv("APP_ENV", "production")

	cfg, err := Parse([]byte("app:\n  timezone: UTC\n"))
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, http.SameSiteNoneMode, cfg.CookieSameSite)
}

func TestParse_SameSiteNoneForcesSecure(t *testing.T) {
	setSecrets(t)

	cfg, err := Parse([]byte("app:\n  timezone: UTC\ncookie:\n  secure: false\n  same_site: none\n"))
	require.NoError(t, err)
	assert.True(t, cfg.CookieSecure)
}

func TestParse_EnvOverrides(t *testing.T) {
	setSecrets(t)
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_DSN", "postgres://env")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("MAIL_HOST", "smtp.example.com")

	cfg, err := Parse([]byte("database:\n  dsn: postgres://file\ncors:\n  origins: [http://file]\n"))
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "postgres://env", cfg.DSN)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, "smtp.example.com", cfg.MailHost)
	assert.Equal(t, "access", cfg.AccessSecret)
	assert.Equal(t, "refresh", cfg.RefreshSecret)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		access  string
		refresh string
		yaml    string
	}{
		{"missing secrets", "", "", ""},
		{"identical secrets", "same", "same", ""},
		{"bad ttl", "a", "r", "jwt:\n  access_ttl: soon\n"},
		{"negative ttl", "a", "r", "otp:\n  ttl: -1m\n"},
		{"bad timezone", "a", "r", "app:\n  timezone: Mars/Base\n"},
		{"bad same site", "a", "r", "cookie:\n  same_site: sometimes\n"},
		{"bad proxy", "a", "r", "app:\n  trusted_proxies: [proxy.internal]\n"},
		{"zero limit", "a", "r", "rate_limit:\n  normal:\n    limit: 0\n    window: 1m\n"},
		{"bad yaml", "a", "r", "app: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ACCESS_TOKEN_SECRET_KEY", tt.access)
			t.Setenv("REFRESH_TOKEN_SECRET_KEY", tt.refresh)
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	setSecrets(t)
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("app:\n  port: 7000\n  timezone: UTC\n"), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.Port)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestLoadFile_ShippedConfig(t *testing.T) {
	tests := []struct {
		name         string
		env          string
		sameSiteEnv  string
		wantSameSite http.SameSite
		wantSecure   bool
	}{
		{"development", "development", "", http.SameSiteStrictMode, false},
		{"production", "production", "", http.SameSiteNoneMode, true},
		{"production with override", "production", "lax", http.SameSiteLaxMode, true},
		{"development with none", "development", "none", http.SameSiteNoneMode, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setSecrets(t)
			t.Setenv("APP_ENV", tt.env)
			t.Setenv("COOKIE_SAME_SITE", tt.sameSiteEnv)

			cfg, err := LoadFile(filepath.Join("..", "..", defaultConfigPath))
			require.NoError(t, err)
			assert.Equal(t, tt.wantSameSite, cfg.CookieSameSite)
			assert.Equal(t, tt.wantSecure, cfg.CookieSecure)
			assert.Empty(t, cfg.TrustedProxies)
		})
	}
}

func TestParse_TrustedProxies(t *testing.T) {
	setSecrets(t)

	cfg, err := Parse([]byte("app:\n  timezone: UTC\n  trusted_proxies: [10.0.0.0/8, 192.0.2.1]\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.0/8", "192.0.2.1"}, cfg.TrustedProxies)

	t.Setenv("TRUSTED_PROXIES", "172.16.0.0/12, ::1")
	cfg, err = Parse([]byte("app:\n  timezone: UTC\n  trusted_proxies: [10.0.0.0/8]\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"172.16.0.0/12", "::1"}, cfg.TrustedProxies)
}
