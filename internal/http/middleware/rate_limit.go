package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/you/storeapi/domain"
	"go.uber.org/zap"
)

// RateLimit counts requests per client IP. When the limiter store is down the
// request is let through.
func RateLimit(limiter domain.RateLimiter, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			log.Warn("rate limiter failed open", zap.Error(err), zap.String("ip", c.ClientIP()))
			c.Next()
			return
		}
		if !allowed {
			Fail(c, domain.ErrOverLimit)
			return
		}
		c.Next()
	}
}
