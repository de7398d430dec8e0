package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ArowuTest/tourbook-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys set by JWTAuthMiddleware
const (
	ActorKey = "actor"
	RoleKey  = "role"
)

// JWTAuthMiddleware creates a gin middleware for JWT authentication.
// The token subject becomes the acting user of the request.
func JWTAuthMiddleware(tokens *jwt.TokenService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const BearerSchema = "Bearer "
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		if !strings.HasPrefix(authHeader, BearerSchema) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header must start with Bearer "})
			return
		}

		claims, err := tokens.Parse(strings.TrimSpace(authHeader[len(BearerSchema):]))
		if err != nil {
			logger.Debug("token rejected", zap.String("request_id", c.GetString(RequestIDKey)), zap.Error(err))
			if errors.Is(err, jwt.ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token has expired"})
			} else {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			}
			return
		}

		if claims.Role != jwt.RoleAdmin && claims.Role != jwt.RoleOperator {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient role"})
			return
		}

		c.Set(ActorKey, claims.Subject)
		c.Set(RoleKey, claims.Role)
		c.Next()
	}
}

// RequireRole rejects requests whose authenticated role is not one of roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(RoleKey)
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient role"})
	}
}

// Actor returns the authenticated user of the request
func Actor(c *gin.Context) string {
	return c.GetString(ActorKey)
}
