package middleware

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const (
	ctxUserIDKey = "auth.userId"
	ctxRoleKey   = "auth.role"

	// RoleAdmin grants access to admin-only endpoints. Absence or any
	// other role claim value denies.
	RoleAdmin = "admin"
)

// Authenticate resolves the caller's identity from a Bearer token issued by
// the identity provider. The token's subject is the opaque user id; an
// optional "role" claim carries the role.
func Authenticate(logger *zap.Logger) gin.HandlerFunc {
	secret := []byte(os.Getenv("AUTH_JWT_SECRET"))
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		token, err := jwt.Parse(strings.TrimPrefix(header, prefix), func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return secret, nil
		})
		if err != nil || !token.Valid {
			logger.Debug("Rejected bearer token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		sub, _ := claims["sub"].(string)
		if sub == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		role, _ := claims["role"].(string)

		c.Set(ctxUserIDKey, sub)
		c.Set(ctxRoleKey, role)
		c.Next()
	}
}

// WithIdentity injects a fixed identity without token verification. Meant
// for tests and local tooling only.
func WithIdentity(userID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ctxUserIDKey, userID)
		c.Set(ctxRoleKey, role)
		c.Next()
	}
}

// RequireAdmin must run after Authenticate.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if Role(c) != RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		c.Next()
	}
}

func UserID(c *gin.Context) string {
	return c.GetString(ctxUserIDKey)
}

func Role(c *gin.Context) string {
	return c.GetString(ctxRoleKey)
}
