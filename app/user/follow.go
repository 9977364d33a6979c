package user

import (
	"net/http"

	"piclips/video-api/app/reply"
	"piclips/video-api/internal"
	"piclips/video-api/internal/service"

	"github.com/gin-gonic/gin"
)

// UserFollow follows or unfollows the user in the path
func UserFollow(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	following, followers, err := service.ToggleFollow(c.Request.Context(), d.DB, userID, c.Param("id"))
	if err != nil {
		reply.Fail(c, err, "Failed to toggle follow")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"following": following,
		"followers": followers,
	})
}
