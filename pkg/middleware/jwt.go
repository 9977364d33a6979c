package middleware

import (
	"errors"
	"net/http"
	"strings"

	"piclips/video-api/internal/model"
	"piclips/video-api/pkg/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// bearerToken reads the session token from the Authorization header and
// falls back to the auth_token cookie
func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}

		return ""
	}

	token, err := c.Cookie("auth_token")
	if err != nil {
		return ""
	}

	return token
}

// NewJWTMiddleware rejects requests without a valid session token for a user
// that still exists. The user's ID is set as userID.
func NewJWTMiddleware(d *gorm.DB, s *security.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.MustGet("requestID").(string)

		tokenStr := bearerToken(c)
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "No token, authorization denied",
				"requestID": requestID,
			})
			return
		}

		userID, err := s.Parse(tokenStr)
		if err != nil {
			msg := "Authorization token invalid"
			if errors.Is(err, security.ErrTokenExpired) {
				msg = "Authorization token expired. Please log in again"
			}

			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     msg,
				"requestID": requestID,
			})

			zap.L().Debug("Rejected session token", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		// The account may be gone even though the token is still valid
		err = d.WithContext(c.Request.Context()).
			Select("id").
			Where("id = ?", userID).
			First(&model.User{}).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error":     "User not found",
					"requestID": requestID,
				})
				return
			}

			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to check if user exists", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		c.Set("userID", userID)
		c.Next()
	}
}

// NewOptionalJWTMiddleware sets userID when a valid token is present and
// lets the request through either way
func NewOptionalJWTMiddleware(s *security.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenStr := bearerToken(c); tokenStr != "" {
			if userID, err := s.Parse(tokenStr); err == nil {
				c.Set("userID", userID)
			}
		}

		c.Next()
	}
}
