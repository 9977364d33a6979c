package video

import (
	"net/http"

	"piclips/video-api/app/reply"
	"piclips/video-api/internal"
	"piclips/video-api/internal/service"

	"github.com/gin-gonic/gin"
)

func VideoFetch(c *gin.Context, d *internal.Deps) {
	ctx := c.Request.Context()
	viewerID := c.GetString("userID")

	v, err := service.GetVideo(ctx, d.DB, c.Param("id"), viewerID)
	if err != nil {
		reply.Fail(c, err, "Failed to fetch video")
		return
	}

	view, err := presentOne(ctx, d, viewerID, v)
	if err != nil {
		reply.Fail(c, err, "Failed to prepare video")
		return
	}

	c.JSON(http.StatusOK, view)
}
