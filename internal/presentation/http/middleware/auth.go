package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pulsekit/pulse-go/internal/infrastructure/security"
	"github.com/pulsekit/pulse-go/pkg/config"
)

const (
	// ContextKeyRole is the gin context key for the authenticated role.
	ContextKeyRole = "authRole"
	// ContextKeySubject is the gin context key for the token subject.
	ContextKeySubject = "authSubject"
)

// AuthMiddleware validates a bearer token (or admin_auth cookie) and stores
// the claims on the request context. Reporting and admin routes require it.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		claims, err := security.ValidateJWT(token, config.JWTSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		if sub, ok := claims["sub"].(string); ok {
			c.Set(ContextKeySubject, sub)
		}
		if role, ok := claims["role"].(string); ok {
			c.Set(ContextKeyRole, role)
		}

		c.Next()
	}
}

// AdminOnlyMiddleware restricts a route to admin-role tokens. Must run
// after AuthMiddleware.
func AdminOnlyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if role, _ := c.Get(ContextKeyRole); role != "admin" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	if cookie, err := c.Cookie("admin_auth"); err == nil && cookie != "" {
		return cookie
	}
	return ""
}
