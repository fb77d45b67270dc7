package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/you/storeapi/domain"
	"github.com/you/storeapi/internal/http/middleware"
	"github.com/you/storeapi/internal/mocks"
	"go.uber.org/zap"
)

type authMocks struct {
	auth     *mocks.MockAuthService
	guard    *mocks.MockAccountGuard
	sessions *mocks.MockSessionService
}

func newAuthHandlers(setup func(m *authMocks)) *AuthHandlers {
	m := &authMocks{
		auth:     mocks.NewMockAuthService(),
		guard:    mocks.NewMockAccountGuard(),
		sessions: mocks.NewMockSessionService(),
	}
	if setup != nil {
		setup(m)
	}
	return NewAuthHandlers(m.auth, m.guard, m.sessions, middleware.NewAuthMW(m.sessions, testCookies), testCookies)
}

func TestAuthHandlers_Register(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		setupMocks     func(m *authMocks)
		expectedStatus int
		expectedCode   string
		expectedMsg    string
	}{
		{
			name: "normalizes the email and returns the remember token",
			body: gin.H{"email": "  A@X.com "},
			setupMocks: func(m *authMocks) {
				m.auth.RegisterFunc = func(ctx context.Context, email string) (*domain.OtpIssue, error) {
					if email != "a@x.com" {
						return nil, errors.New("email not normalized: " + email)
					}
					return &domain.OtpIssue{Email: email, Code: "123456", RememberToken: "remember"}, nil
				}
			},
			expectedStatus: http.StatusOK,
			expectedMsg:    "We are sending OTP to a@x.com",
		},
		{
			name:           "invalid email",
			body:           gin.H{"email": "not-an-email"},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   domain.CodeInvalid,
			expectedMsg:    "Invalid email address!",
		},
		{
			name:           "missing email",
			body:           gin.H{},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   domain.CodeInvalid,
			expectedMsg:    "Invalid email address!",
		},
		{
			name:           "malformed json",
			body:           "{",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   domain.CodeInvalid,
		},
		{
			name: "email already registered",
			body: gin.H{"email": "a@x.com"},
			setupMocks: func(m *authMocks) {
				m.auth.RegisterFunc = func(ctx context.Context, email string) (*domain.OtpIssue, error) {
					return nil, domain.ErrUserAlreadyExists
				}
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   domain.CodeUserAlreadyExists,
			expectedMsg:    "This email address has already been registered.",
		},
		{
			name: "daily otp cap",
			body: gin.H{"email": "a@x.com"},
			setupMocks: func(m *authMocks) {
				m.auth.RegisterFunc = func(ctx context.Context, email string) (*domain.OtpIssue, error) {
					return nil, domain.ErrOtpCountLimitExceeded
				}
			},
			expectedStatus: http.StatusTooManyRequests,
			expectedCode:   domain.CodeOtpCountLimitExceeded,
		},
		{
			name: "mail delivery failure",
			body: gin.H{"email": "a@x.com"},
			setupMocks: func(m *authMocks) {
				m.auth.RegisterFunc = func(ctx context.Context, email string) (*domain.OtpIssue, error) {
					return nil, errors.New("failed to deliver otp: dial tcp: refused")
				}
			},
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   domain.CodeServer,
			expectedMsg:    "Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newAuthHandlers(tt.setupMocks)
			w, resp := do(t, http.MethodPost, "/register", tt.body, h.Register)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedCode, resp.Error)
			if tt.expectedMsg != "" {
				assert.Equal(t, tt.expectedMsg, resp.Message)
			}
			if tt.expectedStatus == http.StatusOK {
				assert.True(t, resp.Success)
				var data TokenResponse
				require.NoError(t, json.Unmarshal(resp.Data, &data))
				assert.Equal(t, TokenResponse{Email: "a@x.com", Token: "remember"}, data)
				assert.NotContains(t, w.Body.String(), "123456", "the code only travels by mail")
			}
		})
	}
}

func TestAuthHandlers_VerifyOTP_Validation(t *testing.T) {
	tests := []struct {
		name        string
		body        gin.H
		expectedMsg string
	}{
		{"short otp", gin.H{"email": "a@x.com", "otp": "12345", "token": "t"}, "Invalid Otp!"},
		{"non digit otp", gin.H{"email": "a@x.com", "otp": "12a456", "token": "t"}, "Invalid Otp!"},
		{"missing token", gin.H{"email": "a@x.com", "otp": "123456"}, "Invalid token!"},
		{"blank token", gin.H{"email": "a@x.com", "otp": "123456", "token": "   "}, "Invalid token!"},
		{"bad email first", gin.H{"email": "x", "otp": "1", "token": ""}, "Invalid email address!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			h := newAuthHandlers(func(m *authMocks) {
				m.auth.VerifyRegistrationOTPFunc = func(ctx context.Context, email, code, token string) (string, error) {
					called = true
					return "verify", nil
				}
			})
			w, resp := do(t, http.MethodPost, "/verify-otp", tt.body, h.VerifyOTP)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, domain.CodeInvalid, resp.Error)
			assert.Equal(t, tt.expectedMsg, resp.Message)
			assert.False(t, called, "invalid input never reaches the service")
		})
	}
}

func TestAuthHandlers_VerifyOTP(t *testing.T) {
	var got [3]string
	h := newAuthHandlers(func(m *authMocks) {
		m.auth.VerifyRegistrationOTPFunc = func(ctx context.Context, email, code, token string) (string, error) {
			got = [3]string{email, code, token}
			return "verify", nil
		}
	})

	w, resp := do(t, http.MethodPost, "/verify-otp", gin.H{"email": "A@x.com", "otp": " 123456 ", "token": "remember"}, h.VerifyOTP)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, [3]string{"a@x.com", "123456", "remember"}, got)
	assert.Equal(t, "OTP is successfully verified.", resp.Message)

	var data TokenResponse
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, "verify", data.Token)
}

func TestAuthHandlers_ConfirmPassword(t *testing.T) {
	tests := []struct {
		name           string
		body           gin.H
		setupMocks     func(m *authMocks)
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "creates the account and sets cookies",
			body:           gin.H{"email": "a@x.com", "password": " password1 ", "token": "verify"},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "password too short",
			body:           gin.H{"email": "a@x.com", "password": "short", "token": "verify"},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   domain.CodeInvalid,
		},
		{
			name:           "password too long",
			body:           gin.H{"email": "a@x.com", "password": "thirteen-char", "token": "verify"},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   domain.CodeInvalid,
		},
		{
			name: "otp not verified",
			body: gin.H{"email": "a@x.com", "password": "password1", "token": "verify"},
			setupMocks: func(m *authMocks) {
				m.auth.ConfirmPasswordFunc = func(ctx context.Context, email, password, token string) (*domain.AuthResult, error) {
					return nil, domain.ErrOtpNotVerified
				}
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   domain.CodeOtpNotVerified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPassword string
			h := newAuthHandlers(func(m *authMocks) {
				m.auth.ConfirmPasswordFunc = func(ctx context.Context, email, password, token string) (*domain.AuthResult, error) {
					gotPassword = password
					return &domain.AuthResult{
						User: &domain.User{
							ID: 1, Email: email, Username: "abcd1234", Password: "hashed",
							RandToken: "refresh-token", Role: domain.RoleUser, Status: domain.StatusActive,
						},
						Tokens: domain.TokenPair{AccessToken: "access-token", RefreshToken: "refresh-token"},
					}, nil
				}
				if tt.setupMocks != nil {
					tt.setupMocks(m)
				}
			})
			w, resp := do(t, http.MethodPost, "/confirm-password", tt.body, h.ConfirmPassword)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedCode, resp.Error)
			if tt.expectedStatus != http.StatusCreated {
				assert.Nil(t, cookie(w, middleware.RefreshCookie))
				return
			}

			assert.Equal(t, "password1", gotPassword)
			assert.Equal(t, "Successfully create an account.", resp.Message)
			assert.Equal(t, "access-token", cookie(w, middleware.AccessCookie).Value)
			assert.Equal(t, "refresh-token", cookie(w, middleware.RefreshCookie).Value)

			var user map[string]interface{}
			require.NoError(t, json.Unmarshal(resp.Data, &user))
			assert.Equal(t, "abcd1234", user["username"])
			assert.Equal(t, "USER", user["role"])
			assert.NotContains(t, user, "password")
			assert.NotContains(t, user, "randToken")
			assert.NotContains(t, w.Body.String(), "hashed")
		})
	}
}

func TestAuthHandlers_SignIn(t *testing.T) {
	tests := []struct {
		name           string
		login          func(ctx context.Context, email, password string) (*domain.AuthResult, error)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "success",
			login: func(ctx context.Context, email, password string) (*domain.AuthResult, error) {
				return &domain.AuthResult{
					User:   &domain.User{ID: 3, Email: email, Role: domain.RoleAuthor, Status: domain.StatusActive},
					Tokens: domain.TokenPair{AccessToken: "access-token", RefreshToken: "refresh-token"},
				}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "wrong password",
			login: func(ctx context.Context, email, password string) (*domain.AuthResult, error) {
				return nil, domain.ErrInvalidPassword
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   domain.CodeInvalid,
		},
		{
			name: "frozen",
			login: func(ctx context.Context, email, password string) (*domain.AuthResult, error) {
				return nil, domain.ErrAccountFreeze
			},
			expectedStatus: http.StatusLocked,
			expectedCode:   domain.CodeAccountFreeze,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newAuthHandlers(func(m *authMocks) { m.guard.LoginFunc = tt.login })
			w, resp := do(t, http.MethodPost, "/sign-in", gin.H{"email": "a@x.com", "password": "password1"}, h.SignIn)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedCode, resp.Error)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, "Successfully login", resp.Message)
				assert.Equal(t, "refresh-token", cookie(w, middleware.RefreshCookie).Value)
			} else {
				assert.Nil(t, cookie(w, middleware.AccessCookie))
			}
		})
	}
}

func TestAuthHandlers_Logout(t *testing.T) {
	var presented string
	h := newAuthHandlers(func(m *authMocks) {
		m.sessions.LogoutFunc = func(ctx context.Context, refresh string) error {
			presented = refresh
			if refresh != "refresh-token" {
				return domain.ErrUnauthenticated
			}
			return nil
		}
	})

	r := gin.New()
	r.Use(middleware.ErrorHandler(zap.NewNop()))
	r.POST("/logout", h.Logout)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: middleware.RefreshCookie, Value: "refresh-token"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "refresh-token", presented)
	assert.Contains(t, w.Body.String(), "Successfully logged out.")
	for _, name := range []string{middleware.AccessCookie, middleware.RefreshCookie} {
		c := cookie(w, name)
		require.NotNil(t, c, name)
		assert.Less(t, c.MaxAge, 0)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/logout", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Nil(t, cookie(w, middleware.RefreshCookie))
}

func TestAuthHandlers_PasswordReset(t *testing.T) {
	h := newAuthHandlers(func(m *authMocks) {
		m.auth.ForgotPasswordFunc = func(ctx context.Context, email string) (*domain.OtpIssue, error) {
			if email != "a@x.com" {
				return nil, domain.ErrAuthUserNotFound
			}
			return &domain.OtpIssue{Email: email, Code: "123456", RememberToken: "remember"}, nil
		}
		m.auth.ResetPasswordFunc = func(ctx context.Context, email, password, token string) error {
			if token != "verify" {
				return domain.ErrInvalidToken
			}
			return nil
		}
	})

	w, resp := do(t, http.MethodPost, "/forgot-password", gin.H{"email": "a@x.com"}, h.ForgotPassword)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "We are sending OTP to a@x.com", resp.Message)

	w, resp = do(t, http.MethodPost, "/forgot-password", gin.H{"email": "b@x.com"}, h.ForgotPassword)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, domain.CodeUserNotFound, resp.Error)

	w, resp = do(t, http.MethodPost, "/verify-password-otp", gin.H{"email": "a@x.com", "otp": "123456", "token": "remember"}, h.VerifyPasswordOTP)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(resp.Data), "verify-token")

	w, resp = do(t, http.MethodPost, "/reset-password", gin.H{"email": "a@x.com", "password": "newpass99", "token": "verify"}, h.ResetPassword)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Successfully reset your account password.", resp.Message)

	w, resp = do(t, http.MethodPost, "/reset-password", gin.H{"email": "a@x.com", "password": "newpass99", "token": "forged"}, h.ResetPassword)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, domain.CodeInvalidToken, resp.Error)
}

func TestAuthHandlers_ResendOTP(t *testing.T) {
	h := newAuthHandlers(nil)
	w, resp := do(t, http.MethodPost, "/resend-otp", gin.H{"email": "a@x.com"}, h.ResendOTP)

	assert.Equal(t, http.StatusOK, w.Code)
	var data TokenResponse
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, "remember-token", data.Token)
}

func TestAuthHandlers_AuthCheck(t *testing.T) {
	tests := []struct {
		name          string
		authenticate  func(ctx context.Context, access, refresh string) (*domain.Identity, error)
		profile       func(ctx context.Context, id uint) (*domain.User, error)
		expectSuccess bool
		expectedMsg   string
	}{
		{
			name: "authenticated",
			authenticate: func(ctx context.Context, access, refresh string) (*domain.Identity, error) {
				return &domain.Identity{UserID: 4}, nil
			},
			expectSuccess: true,
			expectedMsg:   "User is authenticated.",
		},
		{
			name: "no session",
			authenticate: func(ctx context.Context, access, refresh string) (*domain.Identity, error) {
				return nil, domain.ErrUnauthenticated
			},
			expectedMsg: "You are not an authenticated user.",
		},
		{
			name: "attack is reported without an error status",
			authenticate: func(ctx context.Context, access, refresh string) (*domain.Identity, error) {
				return nil, domain.ErrAccessTokenAttack.Wrap(domain.ErrTokenInvalid)
			},
			expectedMsg: "Access Token is invalid.",
		},
		{
			name: "user deleted",
			authenticate: func(ctx context.Context, access, refresh string) (*domain.Identity, error) {
				return &domain.Identity{UserID: 4}, nil
			},
			profile: func(ctx context.Context, id uint) (*domain.User, error) {
				return nil, domain.ErrNotFound
			},
			expectedMsg: "User not found.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newAuthHandlers(func(m *authMocks) {
				m.sessions.AuthenticateFunc = tt.authenticate
				m.auth.GetUserProfileFunc = tt.profile
			})
			w, resp := do(t, http.MethodGet, "/auth-check", nil, h.AuthCheck)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.expectSuccess, resp.Success)
			assert.Equal(t, tt.expectedMsg, resp.Message)
			if !tt.expectSuccess {
				var raw map[string]interface{}
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
				assert.Contains(t, raw, "data")
				assert.Nil(t, raw["data"])
			}
		})
	}
}

func TestAuthHandlers_Me(t *testing.T) {
	h := newAuthHandlers(nil)
	setUser := func(c *gin.Context) {
		c.Set(middleware.UserKey, &domain.User{ID: 9, Email: "me@x.com", Role: domain.RoleAdmin, RandToken: "secret"})
		c.Next()
	}

	w, resp := do(t, http.MethodGet, "/me", nil, setUser, h.Me)
	require.Equal(t, http.StatusOK, w.Code)
	var user UserResponse
	require.NoError(t, json.Unmarshal(resp.Data, &user))
	assert.Equal(t, uint(9), user.ID)
	assert.Equal(t, "ADMIN", user.Role)
	assert.NotContains(t, w.Body.String(), "secret")

	w, _ = do(t, http.MethodGet, "/me", nil, h.Me)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
