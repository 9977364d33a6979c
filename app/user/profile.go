package user

import (
	"net/http"
	"strings"

	"piclips/video-api/app/reply"
	"piclips/video-api/internal"
	"piclips/video-api/internal/service"
	"piclips/video-api/pkg/validators"

	"github.com/gin-gonic/gin"
)

type profileBody struct {
	DisplayName *string   `json:"displayName"`
	Username    *string   `json:"username"`
	Bio         *string   `json:"bio"`
	Instagram   *string   `json:"instagram"`
	Youtube     *string   `json:"youtube"`
	Hashtags    *[]string `json:"hashtags"`
}

func trim(s *string) *string {
	if s == nil {
		return nil
	}

	t := strings.TrimSpace(*s)
	return &t
}

func (p *profileBody) validate() (service.ProfileUpdate, error) {
	u := service.ProfileUpdate{
		DisplayName: trim(p.DisplayName),
		Username:    trim(p.Username),
		Bio:         trim(p.Bio),
		Instagram:   trim(p.Instagram),
		Youtube:     trim(p.Youtube),
	}

	if u.DisplayName != nil {
		if err := validators.DisplayNameValidator(*u.DisplayName); err != nil {
			return u, err
		}
	}

	if u.Username != nil {
		if err := validators.UsernameValidator(*u.Username); err != nil {
			return u, err
		}
	}

	if u.Bio != nil {
		if err := validators.BioValidator(*u.Bio); err != nil {
			return u, err
		}
	}

	for _, l := range []*string{u.Instagram, u.Youtube} {
		if l == nil {
			continue
		}

		if err := validators.LinkValidator(*l); err != nil {
			return u, err
		}
	}

	if p.Hashtags != nil {
		tags, err := validators.NormalizeHashtags(*p.Hashtags)
		if err != nil {
			return u, err
		}
		u.Hashtags = &tags
	}

	return u, nil
}

// ProfileFetch returns the caller's own profile
func ProfileFetch(c *gin.Context, d *internal.Deps) {
	userID, ok := reply.Owner(c)
	if !ok {
		return
	}

	profile, err := service.GetProfile(c.Request.Context(), d.DB, userID)
	if err != nil {
		reply.Fail(c, err, "Failed to fetch profile")
		return
	}

	c.JSON(http.StatusOK, profile)
}

func ProfileUpdate(c *gin.Context, d *internal.Deps) {
	userID, ok := reply.Owner(c)
	if !ok {
		return
	}

	var data profileBody
	if err := c.ShouldBindJSON(&data); err != nil {
		reply.Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	update, err := data.validate()
	if err != nil {
		reply.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	profile, err := service.UpdateProfile(c.Request.Context(), d.DB, userID, update)
	if err != nil {
		reply.Fail(c, err, "Failed to update profile")
		return
	}

	c.JSON(http.StatusOK, profile)
}

// ProfileByUsername returns the public part of a profile
func ProfileByUsername(c *gin.Context, d *internal.Deps) {
	user, err := service.GetUserByUsername(c.Request.Context(), d.DB, c.Param("username"))
	if err != nil {
		reply.Fail(c, err, "Failed to fetch user")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"_id":                 user.ID,
		"username":            user.Username,
		"displayName":         user.DisplayName,
		"avatar":              user.Avatar,
		"bio":                 user.Bio,
		"instagram":           user.Instagram,
		"youtube":             user.Youtube,
		"hashtags":            user.Hashtags,
		"likes":               user.Likes,
		"uploadedVideosCount": user.UploadedVideosCount,
	})
}
