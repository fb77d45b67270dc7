package domain

import (
	"errors"
	"net/http"
)

// Error codes returned to clients in the "error" field
const (
	CodeInvalid         = "Error_Invalid"
	CodeUnauthenticated = "Error_Unauthenticated"
	CodeAttack          = "Error_Attack"
	CodeAlreadyExists   = "Error_AlreadyExists"
	CodeAccountFreeze   = "Error_AccountFreeze"
	CodeNotFound        = "Error_NotFound"
	CodeNotAllowed      = "Error_NotAllowed"
	CodeOverLimit       = "Error_OverLimit"
	CodeServer          = "Error_Server"
)

// Error codes for the register, verify-otp, confirm-password, forgot-password
// and reset-password flows
const (
	CodeUserAlreadyExists          = "Error_UserAlreadyExists"
	CodeOtpNotExist                = "Error_OtpNotExist"
	CodeOtpErrorCountLimitExceeded = "Error_OtpErrorCountLimitExceeded"
	CodeOtpCountLimitExceeded      = "Error_OtpCountLimitExceeded"
	CodeInvalidToken               = "Error_InvalidToken"
	CodeExpiredOtp                 = "Error_ExpiredOtp"
	CodeInvalidOrWrongOtp          = "Error_InvalidOrWrongOtp"
	CodeOtpNotVerified             = "Error_OtpNotVerified"
	CodeUserNotFound               = "Error_UserNotFound"
)

// AppError is a failure that is reported to the client with a status and code
type AppError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// Is matches any AppError carrying the same code
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewAppError creates an AppError
func NewAppError(status int, code, message string) *AppError {
	return &AppError{Status: status, Code: code, Message: message}
}

// Wrap returns a copy of e carrying err as its cause
func (e *AppError) Wrap(err error) *AppError {
	c := *e
	c.Err = err
	return &c
}

// CodeOf returns the code of the first AppError in err's chain, or CodeServer
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeServer
}

// Repository sentinels
var (
	ErrUserNotFound = errors.New("user not found")
	ErrOtpNotFound  = errors.New("otp not found")
)

// Token codec errors
var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("invalid token")
)

// Client facing errors. Handlers and middleware return these; the error handler
// renders them.
var (
	ErrInvalidInput      = NewAppError(http.StatusBadRequest, CodeInvalid, "Invalid request.")
	ErrInvalidPassword   = NewAppError(http.StatusBadRequest, CodeInvalid, "Password is incorrect.")
	ErrUnauthenticated   = NewAppError(http.StatusUnauthorized, CodeUnauthenticated, "You are not an authenticated user.")
	ErrAccessTokenAttack = NewAppError(http.StatusBadRequest, CodeAttack, "Access Token is invalid.")
	ErrRefreshAttack     = NewAppError(http.StatusBadRequest, CodeAttack, "Refresh Token is invalid.")
	ErrAlreadyLoggedIn   = NewAppError(http.StatusForbidden, CodeAlreadyExists, "You are already logged in.")
	ErrAccountFreeze     = NewAppError(http.StatusLocked, CodeAccountFreeze, "Your account is temporarily locked.")
	ErrNotFound          = NewAppError(http.StatusNotFound, CodeNotFound, "This user does not exist.")
	ErrNotAllowed        = NewAppError(http.StatusForbidden, CodeNotAllowed, "This action is not allowed.")
	ErrOverLimit         = NewAppError(http.StatusTooManyRequests, CodeOverLimit, "Too many requests, please try again later.")

	ErrUserAlreadyExists          = NewAppError(http.StatusConflict, CodeUserAlreadyExists, "This email address has already been registered.")
	ErrOtpNotExist                = NewAppError(http.StatusBadRequest, CodeOtpNotExist, "OTP does not exist for this email address.")
	ErrOtpErrorCountLimitExceeded = NewAppError(http.StatusTooManyRequests, CodeOtpErrorCountLimitExceeded, "OTP is wrong for 5 times. Please try again tomorrow")
	ErrOtpCountLimitExceeded      = NewAppError(http.StatusTooManyRequests, CodeOtpCountLimitExceeded, "OTP is allowed to request 3 times per day")
	ErrInvalidToken               = NewAppError(http.StatusBadRequest, CodeInvalidToken, "Invalid token!")
	ErrExpiredOtp                 = NewAppError(http.StatusBadRequest, CodeExpiredOtp, "Otp is expired!")
	ErrInvalidOrWrongOtp          = NewAppError(http.StatusBadRequest, CodeInvalidOrWrongOtp, "Otp is incorrect!")
	ErrOtpNotVerified             = NewAppError(http.StatusBadRequest, CodeOtpNotVerified, "OTP has not been verified for this email address.")
	ErrAuthUserNotFound           = NewAppError(http.StatusNotFound, CodeUserNotFound, "This user does not exist.")
)
