package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/you/storeapi/domain"
)

// Permit lets the request through when allowed is set and the current user
// holds one of roles. The role is read fresh from the store on every request.
func Permit(guard domain.AccountGuard, allowed bool, roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := guard.Authorize(c.Request.Context(), UserID(c), allowed, roles...)
		if err != nil {
			Fail(c, err)
			return
		}
		c.Set(UserKey, user)
		c.Next()
	}
}
