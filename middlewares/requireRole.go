package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/PressTune/models"
)

// RequireRole lets the request through only when the current user's role is
// at least min. It must run after CheckAuth.
func RequireRole(min models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		if !user.Role.AtLeast(min) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient role"})
			return
		}

		c.Next()
	}
}
