package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const TimeoutMessage = "Request has timed out"

// NewTimeoutMiddleware gives every request context a deadline. If the
// deadline passes before the handler wrote anything the client gets a 408.
func NewTimeoutMiddleware(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		if !c.Writer.Written() && TimedOut(c) {
			c.AbortWithStatusJSON(http.StatusRequestTimeout, gin.H{
				"error":     TimeoutMessage,
				"requestID": c.GetString("requestID"),
			})
		}
	}
}

// TimedOut reports whether the request's deadline has passed
func TimedOut(c *gin.Context) bool {
	return errors.Is(c.Request.Context().Err(), context.DeadlineExceeded)
}
