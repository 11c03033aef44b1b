package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"studybuddy/internal/model"
	"studybuddy/internal/pkg/jwtutil"
	"studybuddy/internal/transport/http/response"
)

const (
	ContextUserIDKey      = "user_id"
	ContextEmailKey       = "email"
	ContextRoleKey        = "role"
	ContextTokenKey       = "token"
	ContextTokenExpiryKey = "token_expiry"
)

// TokenDenylist reports whether a presented token was revoked by logout.
type TokenDenylist interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
}

func AuthJWT(secret string, denylist TokenDenylist) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			response.Error(c, 401, response.CodeUnauthorized, "missing authorization header")
			c.Abort()
			return
		}

		const prefix = "Bearer "
		if !strings.HasPrefix(authHeader, prefix) {
			response.Error(c, 401, response.CodeUnauthorized, "invalid authorization scheme")
			c.Abort()
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, prefix))
		claims, err := jwtutil.ParseToken(secret, token)
		if err != nil {
			response.Error(c, 401, response.CodeUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		if denylist != nil {
			revoked, err := denylist.IsRevoked(c.Request.Context(), token)
			if err == nil && revoked {
				response.Error(c, 401, response.CodeUnauthorized, "token has been revoked")
				c.Abort()
				return
			}
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextEmailKey, claims.Email)
		c.Set(ContextRoleKey, claims.Role)
		c.Set(ContextTokenKey, token)
		if claims.ExpiresAt != nil {
			c.Set(ContextTokenExpiryKey, claims.ExpiresAt.Time)
		} else {
			c.Set(ContextTokenExpiryKey, time.Time{})
		}
		c.Next()
	}
}

// RequireAdmin gates admin routes on the role claim.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		roleAny, exists := c.Get(ContextRoleKey)
		role, ok := roleAny.(string)
		if !exists || !ok || role != model.RoleAdmin {
			response.Error(c, 403, response.CodeForbidden, "admin access required")
			c.Abort()
			return
		}
		c.Next()
	}
}
