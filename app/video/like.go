package video

import (
	"net/http"

	"piclips/video-api/app/reply"
	"piclips/video-api/internal"
	"piclips/video-api/internal/service"

	"github.com/gin-gonic/gin"
)

func VideoLike(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	likes, isLiked, err := service.ToggleLike(c.Request.Context(), d.DB, c.Param("id"), userID)
	if err != nil {
		reply.Fail(c, err, "Failed to toggle like")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"likes":   likes,
		"isLiked": isLiked,
	})
}
