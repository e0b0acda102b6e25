package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meblomat/meblomat/internal/domain/user"
)

// RequireRole admits a request when the identity holds any of the given
// roles.
func (m *AuthMiddleware) RequireRole(required ...user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := UserFromContext(c)

		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthorized",
					"message": "Missing identity context",
				},
			})
			return
		}

		for _, role := range required {
			if identity.HasRole(role) {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error": gin.H{
				"code":    "forbidden",
				"message": "Insufficient role",
			},
		})
	}
}
