package user

import (
	"net/http"

	"piclips/video-api/app/reply"
	"piclips/video-api/app/video"
	"piclips/video-api/internal"
	"piclips/video-api/internal/service"

	"github.com/gin-gonic/gin"
)

// UserFetch returns the caller's profile and their 10 newest videos
func UserFetch(c *gin.Context, d *internal.Deps) {
	ctx := c.Request.Context()
	userID := c.MustGet("userID").(string)

	profile, err := service.GetProfile(ctx, d.DB, userID)
	if err != nil {
		reply.Fail(c, err, "Failed to fetch initial user data")
		return
	}

	videos, err := service.ListUserVideos(ctx, d.DB, userID, userID, 10)
	if err != nil {
		reply.Fail(c, err, "Failed to fetch initial user data")
		return
	}

	views, err := video.Present(ctx, d, userID, videos)
	if err != nil {
		reply.Fail(c, err, "Failed to prepare videos")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":   profile,
		"videos": views,
	})
}
