package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/you/storeapi/domain"
	"github.com/you/storeapi/internal/http/middleware"
)

// AuthHandlers handles the registration, sign-in and password reset requests
type AuthHandlers struct {
	authSvc  domain.AuthService
	guard    domain.AccountGuard
	sessions domain.SessionService
	authMW   *middleware.AuthMW
	cookies  middleware.Cookies
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(
	authSvc domain.AuthService,
	guard domain.AccountGuard,
	sessions domain.SessionService,
	authMW *middleware.AuthMW,
	cookies middleware.Cookies,
) *AuthHandlers {
	return &AuthHandlers{
		authSvc:  authSvc,
		guard:    guard,
		sessions: sessions,
		authMW:   authMW,
		cookies:  cookies,
	}
}

// Register starts a registration by sending an OTP
func (h *AuthHandlers) Register(c *gin.Context) {
	var req EmailRequest
	if err := bind(c, &req); err != nil {
		middleware.Fail(c, err)
		return
	}

	issue, err := h.authSvc.Register(c.Request.Context(), req.Email)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	h.otpSent(c, issue)
}

// VerifyOTP checks the registration OTP and returns a verify token
func (h *AuthHandlers) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := bind(c, &req); err != nil {
		middleware.Fail(c, err)
		return
	}

	verifyToken, err := h.authSvc.VerifyRegistrationOTP(c.Request.Context(), req.Email, req.OTP, req.Token)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	success(c, http.StatusOK, "OTP is successfully verified.", TokenResponse{Email: req.Email, Token: verifyToken})
}

// ResendOTP sends a new OTP for either flow
func (h *AuthHandlers) ResendOTP(c *gin.Context) {
	var req EmailRequest
	if err := bind(c, &req); err != nil {
		middleware.Fail(c, err)
		return
	}

	issue, err := h.authSvc.ResendOTP(c.Request.Context(), req.Email)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	h.otpSent(c, issue)
}

// ConfirmPassword creates the account and signs the user in
func (h *AuthHandlers) ConfirmPassword(c *gin.Context) {
	var req PasswordRequest
	if err := bind(c, &req); err != nil {
		middleware.Fail(c, err)
		return
	}

	result, err := h.authSvc.ConfirmPassword(c.Request.Context(), req.Email, req.Password, req.Token)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	h.cookies.SetSession(c, result.Tokens)
	success(c, http.StatusCreated, "Successfully create an account.", newUserResponse(result.User))
}

// SignIn checks the password and starts a session
func (h *AuthHandlers) SignIn(c *gin.Context) {
	var req SignInRequest
	if err := bind(c, &req); err != nil {
		middleware.Fail(c, err)
		return
	}

	result, err := h.guard.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	h.cookies.SetSession(c, result.Tokens)
	success(c, http.StatusOK, "Successfully login", newUserResponse(result.User))
}

// Logout revokes the session of the refresh token cookie
func (h *AuthHandlers) Logout(c *gin.Context) {
	refreshToken, _ := c.Cookie(middleware.RefreshCookie)
	if err := h.sessions.Logout(c.Request.Context(), refreshToken); err != nil {
		middleware.Fail(c, err)
		return
	}
	h.cookies.Clear(c)
	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out."})
}

// ForgotPassword sends an OTP to an existing account
func (h *AuthHandlers) ForgotPassword(c *gin.Context) {
	var req EmailRequest
	if err := bind(c, &req); err != nil {
		middleware.Fail(c, err)
		return
	}

	issue, err := h.authSvc.ForgotPassword(c.Request.Context(), req.Email)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	h.otpSent(c, issue)
}

// VerifyPasswordOTP checks the password reset OTP and returns a verify token
func (h *AuthHandlers) VerifyPasswordOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := bind(c, &req); err != nil {
		middleware.Fail(c, err)
		return
	}

	verifyToken, err := h.authSvc.VerifyPasswordOTP(c.Request.Context(), req.Email, req.OTP, req.Token)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	success(c, http.StatusOK, "OTP is successfully verified.", TokenResponse{Email: req.Email, Token: verifyToken})
}

// ResetPassword sets a new password
func (h *AuthHandlers) ResetPassword(c *gin.Context) {
	var req PasswordRequest
	if err := bind(c, &req); err != nil {
		middleware.Fail(c, err)
		return
	}

	if err := h.authSvc.ResetPassword(c.Request.Context(), req.Email, req.Password, req.Token); err != nil {
		middleware.Fail(c, err)
		return
	}
	success(c, http.StatusOK, "Successfully reset your account password.", gin.H{"email": req.Email})
}

// AuthCheck reports whether the request carries a session. Failures are
// answered with success false instead of an error status.
func (h *AuthHandlers) AuthCheck(c *gin.Context) {
	identity, err := h.authMW.Identify(c)
	if err != nil {
		message := "You are not an authenticated user."
		var appErr *domain.AppError
		if errors.As(err, &appErr) {
			message = appErr.Message
		}
		c.JSON(http.StatusOK, gin.H{"success": false, "data": nil, "message": message})
		return
	}

	user, err := h.authSvc.GetUserProfile(c.Request.Context(), identity.UserID)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "data": nil, "message": "User not found."})
		return
	}
	success(c, http.StatusOK, "User is authenticated.", newUserResponse(user))
}

// Me returns the current user
func (h *AuthHandlers) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		middleware.Fail(c, domain.ErrUnauthenticated)
		return
	}
	success(c, http.StatusOK, "", newUserResponse(user))
}

func (h *AuthHandlers) otpSent(c *gin.Context, issue *domain.OtpIssue) {
	success(c, http.StatusOK, "We are sending OTP to "+issue.Email, TokenResponse{Email: issue.Email, Token: issue.RememberToken})
}
