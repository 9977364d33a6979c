package video

import (
	"net/http"

	"piclips/video-api/app/reply"
	"piclips/video-api/internal"
	"piclips/video-api/internal/service"

	"github.com/gin-gonic/gin"
)

type interactionBody struct {
	Type string `json:"type"`
}

// VideoInteraction records a view or share of a video
func VideoInteraction(c *gin.Context, d *internal.Deps) {
	var data interactionBody
	if err := c.ShouldBindJSON(&data); err != nil {
		reply.Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	views, err := service.RecordInteraction(c.Request.Context(), d.DB, c.Param("id"), c.GetString("userID"), data.Type)
	if err != nil {
		reply.Fail(c, err, "Failed to record interaction")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"views": views,
	})
}
