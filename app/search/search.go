// Package search contains the user search endpoint
package search

import (
	"net/http"
	"strings"

	"piclips/video-api/app/reply"
	"piclips/video-api/internal"
	"piclips/video-api/internal/service"
	"piclips/video-api/pkg/validators"

	"github.com/gin-gonic/gin"
)

func UserSearch(c *gin.Context, d *internal.Deps) {
	term := strings.TrimSpace(c.Query("term"))
	if term == "" {
		reply.Error(c, http.StatusBadRequest, validators.ErrSearchTermEmpty.Error())
		return
	}

	by := c.DefaultQuery("type", service.SearchByName)
	if by != service.SearchByName && by != service.SearchByHashtag {
		reply.Error(c, http.StatusBadRequest, validators.ErrSearchType.Error())
		return
	}

	results, err := service.SearchUsers(c.Request.Context(), d.DB, term, by)
	if err != nil {
		reply.Fail(c, err, "Failed to search users")
		return
	}

	c.JSON(http.StatusOK, results)
}
