// internal/interfaces/http/middleware/auth.go
package middleware

import (
	"net/http"

	"github.com/furnishop/furniture-backend/internal/config"
	"github.com/furnishop/furniture-backend/internal/pkg/auth"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	contextUserID = "user_id"
	contextEmail  = "user_email"
	contextRole   = "user_role"
	contextClaims = "token_claims"
)

// AuthMiddleware creates JWT authentication middleware. Tokens whose id is on
// the revocation list are rejected; a nil list skips the check.
func AuthMiddleware(cfg *config.Config, revocations auth.RevocationList, logger *logrus.Logger) gin.HandlerFunc {
	jwtManager := auth.NewJWTManager(cfg)

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header required",
			})
			c.Abort()
			return
		}

		tokenString := auth.ExtractTokenFromHeader(authHeader)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid authorization header format",
			})
			c.Abort()
			return
		}

		claims, err := jwtManager.ValidateAccessToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		if revocations != nil {
			revoked, err := revocations.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				logger.WithError(err).WithField("user_id", claims.UserID).Error("Failed to check token revocation")
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"error": "Authentication temporarily unavailable",
				})
				c.Abort()
				return
			}
			if revoked {
				c.JSON(http.StatusUnauthorized, gin.H{
					"error": "Token has been revoked",
				})
				c.Abort()
				return
			}
		}

		c.Set(contextUserID, claims.UserID)
		c.Set(contextEmail, claims.Email)
		c.Set(contextRole, claims.Role)
		c.Set(contextClaims, claims)

		c.Next()
	}
}

// AdminMiddleware ensures the user holds the admin role
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(contextRole); !exists {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
			})
			c.Abort()
			return
		}

		if !IsAdminFromContext(c) {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Admin access required",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetUserIDFromContext extracts user ID from gin context
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID := c.GetString(contextUserID)
	return userID, userID != ""
}

// GetUserEmailFromContext extracts user email from gin context
func GetUserEmailFromContext(c *gin.Context) (string, bool) {
	email := c.GetString(contextEmail)
	return email, email != ""
}

// GetClaimsFromContext returns the validated access token claims
func GetClaimsFromContext(c *gin.Context) (*auth.Claims, bool) {
	v, exists := c.Get(contextClaims)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}

// IsAdminFromContext checks if user is admin from gin context
func IsAdminFromContext(c *gin.Context) bool {
	return c.GetString(contextRole) == auth.RoleAdmin
}
