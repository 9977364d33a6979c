package video

import (
	"net/http"

	"piclips/video-api/app/reply"
	"piclips/video-api/internal"
	"piclips/video-api/internal/service"

	"github.com/gin-gonic/gin"
)

func VideoDelete(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	err := service.DeleteVideo(c.Request.Context(), d.DB, d.Store, c.Param("id"), userID)
	if err != nil {
		reply.Fail(c, err, "Failed to delete video")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Video deleted successfully",
	})
}
