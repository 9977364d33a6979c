package video

import (
	"errors"
	"net/http"

	"piclips/video-api/app/reply"
	"piclips/video-api/internal"
	"piclips/video-api/internal/model"
	"piclips/video-api/internal/service"
	"piclips/video-api/pkg/middleware"
	"piclips/video-api/pkg/validators"

	"github.com/gin-gonic/gin"
)

func VideoUpload(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	fh, err := c.FormFile("video")
	if err != nil {
		switch {
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
			reply.Error(c, http.StatusBadRequest, validators.ErrNoFile.Error())
		case middleware.IsTooLarge(err):
			reply.Error(c, http.StatusRequestEntityTooLarge, validators.ErrFileTooLarge.Error())
		default:
			reply.Fail(c, err, "Failed to read multipart body")
		}
		return
	}

	title, desc, err := validators.VideoMetaValidator(c.PostForm("title"), c.PostForm("description"))
	if err != nil {
		reply.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	privacy := c.DefaultPostForm("privacy", model.PrivacyPublic)
	if !model.ValidPrivacy(privacy) {
		reply.Error(c, http.StatusBadRequest, validators.ErrPrivacyInvalid.Error())
		return
	}

	code, up, err := validators.VideoValidator(fh)
	if err != nil {
		if code == http.StatusInternalServerError {
			reply.Fail(c, err, "Failed to validate video file")
			return
		}

		c.JSON(code, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}
	defer up.File.Close()

	v, err := d.Uploader.Do(c.Request.Context(), &service.NewVideo{
		UserID:      userID,
		Title:       title,
		Description: desc,
		Privacy:     privacy,
		Thumbnail:   c.PostForm("thumbnail"),
		Filename:    up.Name,
		ContentType: up.ContentType,
		Size:        up.Size,
		Body:        up.File,
	})
	if err != nil {
		reply.Fail(c, err, "Failed to upload video")
		return
	}

	view, err := presentOne(c.Request.Context(), d, userID, v)
	if err != nil {
		reply.Fail(c, err, "Failed to prepare video")
		return
	}

	c.JSON(http.StatusCreated, view)
}
