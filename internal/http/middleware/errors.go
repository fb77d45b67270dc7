package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/you/storeapi/domain"
	"go.uber.org/zap"
)

// ErrorHandler renders the last error attached with c.Error as
// {message, error}. Errors that are not a domain.AppError become a 500 without
// leaking their text.
func ErrorHandler(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		appErr := &domain.AppError{Status: http.StatusInternalServerError, Code: domain.CodeServer, Message: "Server Error"}
		var known *domain.AppError
		if errors.As(err, &known) {
			appErr = known
		}

		fields := []zap.Field{
			zap.Error(err),
			zap.String("code", appErr.Code),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("ip", c.ClientIP()),
			zap.String("request_id", c.GetString(RequestIDKey)),
		}
		switch {
		case appErr.Code == domain.CodeAttack:
			log.Warn("suspicious request", append(fields, zap.Bool("security", true))...)
		case appErr.Code == domain.CodeUnauthenticated:
			log.Debug("unauthenticated request", fields...)
		case appErr.Status >= http.StatusInternalServerError:
			log.Error("request failed", fields...)
		default:
			log.Info("request rejected", fields...)
		}

		if c.Writer.Written() {
			return
		}
		c.JSON(appErr.Status, gin.H{"message": appErr.Message, "error": appErr.Code})
	}
}

// Fail attaches err for ErrorHandler and stops the chain
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
