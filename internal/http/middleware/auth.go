// README: Bearer session auth; loads the caller's user record into the context.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"carpool/internal/domain"
	"carpool/internal/types"
)

const (
	callerKey = "caller"
	tokenKey  = "session_token"
)

// Authenticator resolves a raw bearer token to the email of a live session.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (types.Email, error)
}

type UserLoader interface {
	Get(ctx context.Context, email types.Email) (domain.User, error)
}

// Auth rejects requests without a live session. The user is re-read on every
// request so role and admin changes apply immediately.
func Auth(auth Authenticator, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

		email, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			abortAuth(c, err)
			return
		}
		u, err := users.Get(c.Request.Context(), email)
		if err != nil {
			abortAuth(c, err)
			return
		}
		c.Set(callerKey, u)
		c.Set(tokenKey, token)
		c.Next()
	}
}

// RequireAdmin must run after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !Caller(c).IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

func abortAuth(c *gin.Context, err error) {
	if domain.IsStoreFailure(err) {
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired session"})
}

// Caller returns the authenticated user; the zero User when Auth did not run.
func Caller(c *gin.Context) domain.User {
	if v, ok := c.Get(callerKey); ok {
		if u, ok := v.(domain.User); ok {
			return u
		}
	}
	return domain.User{}
}

func CallerToken(c *gin.Context) string {
	return c.GetString(tokenKey)
}
