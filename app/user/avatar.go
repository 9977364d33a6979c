package user

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"piclips/video-api/app/reply"
	"piclips/video-api/internal"
	"piclips/video-api/internal/service"
	"piclips/video-api/pkg/middleware"
	"piclips/video-api/pkg/util"
	"piclips/video-api/pkg/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var avatarExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

func AvatarUpload(c *gin.Context, d *internal.Deps) {
	userID, ok := reply.Owner(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("avatar")
	if err != nil {
		switch {
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
			reply.Error(c, http.StatusBadRequest, validators.ErrNoImage.Error())
		case middleware.IsTooLarge(err):
			reply.Error(c, http.StatusRequestEntityTooLarge, validators.ErrFileTooLarge.Error())
		default:
			reply.Fail(c, err, "Failed to read multipart body")
		}
		return
	}

	code, up, err := validators.AvatarValidator(fh)
	if err != nil {
		if code == http.StatusInternalServerError {
			reply.Fail(c, err, "Failed to validate avatar")
			return
		}

		reply.Error(c, code, err.Error())
		return
	}
	defer up.File.Close()

	name := fmt.Sprintf("avatar-%d-%s%s", time.Now().UnixMilli(), util.RandStr(8), avatarExt[up.ContentType])

	avatar, err := d.Avatars.Save(name, up.File)
	if err != nil {
		reply.Fail(c, err, "Failed to save avatar")
		return
	}

	old, err := service.SetAvatar(c.Request.Context(), d.DB, userID, avatar)
	if err != nil {
		if rmErr := d.Avatars.Remove(avatar); rmErr != nil {
			zap.L().Warn("Failed to remove unused avatar", zap.String("avatar", avatar), zap.Error(rmErr))
		}

		reply.Fail(c, err, "Failed to update avatar")
		return
	}

	if old != avatar {
		if err := d.Avatars.Remove(old); err != nil {
			zap.L().Warn("Failed to remove previous avatar", zap.String("avatar", old), zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"avatar": avatar,
	})
}
