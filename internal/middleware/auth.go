package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/scorecard/api/internal/auth"
	"github.com/scorecard/api/internal/model"
)

// AuthMiddleware requires a valid JWT token and stores the caller's
// identity and role in the request context.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseBearerClaims(c, jwtSecret)
		if !ok {
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("username", claims.Username)
		c.Set("role", claims.Role)

		c.Next()
	}
}

// SuperadminMiddleware requires a valid JWT token AND the superadmin role.
func SuperadminMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseBearerClaims(c, jwtSecret)
		if !ok {
			return
		}

		if claims.Role != model.RoleSuperadmin {
			c.JSON(http.StatusForbidden, gin.H{"message": "superadmin access required"})
			c.Abort()
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("username", claims.Username)
		c.Set("role", claims.Role)

		c.Next()
	}
}

func parseBearerClaims(c *gin.Context, jwtSecret string) (*auth.Claims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "authorization header required"})
		c.Abort()
		return nil, false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid authorization header format"})
		c.Abort()
		return nil, false
	}

	claims, err := auth.ValidateAccessToken(parts[1], jwtSecret)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid or expired token"})
		c.Abort()
		return nil, false
	}

	return claims, true
}
