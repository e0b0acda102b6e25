package middlewares

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meblomat/meblomat/internal/domain/user"
)

// SessionResolver keeps this interface small so tests can fake it easily.
type SessionResolver interface {
	CurrentUser(ctx context.Context, token string) (*user.Authenticated, error)
	TokenFromRequest(ctx *gin.Context) string
	ClearCookie(ctx *gin.Context)
}

type AuthMiddleware struct {
	sessions SessionResolver
}

func NewAuthMiddleware(sessions SessionResolver) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

// Attach resolves the session cookie to an identity and stashes it on the
// context. A missing or expired session is not an error here; routes that
// need an identity add RequireAuth on top. A cookie that no longer resolves
// is cleared so the client stops replaying it.
func (m *AuthMiddleware) Attach() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := m.sessions.TokenFromRequest(c)

		identity, err := m.sessions.CurrentUser(c.Request.Context(), token)

		if err != nil {
			// store failure, not an auth decision
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": gin.H{
					"code":    "internal_error",
					"message": "Could not resolve session",
				},
			})
			return
		}

		if identity == nil {
			if token != "" {
				m.sessions.ClearCookie(c)
			}

			c.Next()
			return
		}

		c.Set(ctxUserKey, *identity)
		c.Next()
	}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := UserFromContext(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthorized",
					"message": "Sign in to continue",
				},
			})
			return
		}

		c.Next()
	}
}

func UserFromContext(c *gin.Context) (user.Authenticated, bool) {
	v, ok := c.Get(ctxUserKey)

	if !ok {
		return user.Authenticated{}, false
	}

	u, ok := v.(user.Authenticated)
	return u, ok
}
