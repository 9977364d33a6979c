package video

import (
	"net/http"

	"piclips/video-api/app/reply"
	"piclips/video-api/internal"
	"piclips/video-api/internal/service"

	"github.com/gin-gonic/gin"
)

// VideoList returns the public feed
func VideoList(c *gin.Context, d *internal.Deps) {
	ctx := c.Request.Context()
	viewerID := c.GetString("userID")

	videos, err := service.ListPublicVideos(ctx, d.DB)
	if err != nil {
		reply.Fail(c, err, "Failed to fetch videos")
		return
	}

	views, err := Present(ctx, d, viewerID, videos)
	if err != nil {
		reply.Fail(c, err, "Failed to prepare videos")
		return
	}

	c.JSON(http.StatusOK, views)
}

// VideoListUser returns the videos uploaded by :userId
func VideoListUser(c *gin.Context, d *internal.Deps) {
	ctx := c.Request.Context()
	viewerID := c.MustGet("userID").(string)

	videos, err := service.ListUserVideos(ctx, d.DB, c.Param("userId"), viewerID, 0)
	if err != nil {
		reply.Fail(c, err, "Failed to fetch user videos")
		return
	}

	views, err := Present(ctx, d, viewerID, videos)
	if err != nil {
		reply.Fail(c, err, "Failed to prepare videos")
		return
	}

	c.JSON(http.StatusOK, views)
}

// VideoListLiked returns the videos :userId liked
func VideoListLiked(c *gin.Context, d *internal.Deps) {
	ctx := c.Request.Context()
	viewerID := c.MustGet("userID").(string)

	videos, err := service.ListLikedVideos(ctx, d.DB, c.Param("userId"), viewerID)
	if err != nil {
		reply.Fail(c, err, "Failed to fetch liked videos")
		return
	}

	views, err := Present(ctx, d, viewerID, videos)
	if err != nil {
		reply.Fail(c, err, "Failed to prepare videos")
		return
	}

	c.JSON(http.StatusOK, views)
}
