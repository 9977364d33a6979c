// Package reply writes the error responses shared by every handler
package reply

import (
	"net/http"

	"piclips/video-api/config"
	"piclips/video-api/internal/service"
	"piclips/video-api/pkg/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Status maps a service error class to its response code
func Status(err error) int {
	switch {
	case service.NotFound.Has(err):
		return http.StatusNotFound
	case service.Validation.Has(err):
		return http.StatusBadRequest
	case service.Forbidden.Has(err):
		return http.StatusForbidden
	case service.Unauthorized.Has(err):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Error answers with a message and the request ID
func Error(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{
		"error":     msg,
		"requestID": c.GetString("requestID"),
	})
}

// Fail answers with the status err's class maps to. Anything unclassified
// is logged with what and answered with a 500, or a 408 if the request ran
// out of time.
func Fail(c *gin.Context, err error, what string) {
	requestID := c.GetString("requestID")

	if service.Classified(err) {
		Error(c, Status(err), service.Message(err))
		return
	}

	if middleware.TimedOut(c) {
		Error(c, http.StatusRequestTimeout, middleware.TimeoutMessage)
		return
	}

	zap.L().Error(what, zap.Error(err), zap.String("requestID", requestID))

	body := gin.H{
		"error":     "Internal server error",
		"requestID": requestID,
	}

	if config.Dev() {
		body["details"] = err.Error()
	}

	c.JSON(http.StatusInternalServerError, body)
}

// Owner rejects the request with a 403 unless the caller is the user in the :id path segment
func Owner(c *gin.Context) (string, bool) {
	userID := c.MustGet("userID").(string)

	if c.Param("id") != userID {
		Error(c, http.StatusForbidden, "User not authorized")
		return "", false
	}

	return userID, true
}
