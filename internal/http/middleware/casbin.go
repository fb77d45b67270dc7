package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/you/storeapi/domain"
)

// CasbinMW enforces the route policies of the current user's role
type CasbinMW struct {
	policies domain.PolicyService
}

// NewCasbinMW creates new casbin middleware wrapper
func NewCasbinMW(policies domain.PolicyService) *CasbinMW {
	return &CasbinMW{policies: policies}
}

// Enforce checks (role_<ROLE>, path, method). It runs after Permit, which
// loads the user.
func (mw *CasbinMW) Enforce() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			Fail(c, domain.ErrUnauthenticated)
			return
		}

		allowed, err := mw.policies.CheckPermission(user.Role, c.Request.URL.Path, c.Request.Method)
		if err != nil {
			Fail(c, fmt.Errorf("authorization check failed: %w", err))
			return
		}
		if !allowed {
			Fail(c, domain.ErrNotAllowed)
			return
		}
		c.Next()
	}
}
