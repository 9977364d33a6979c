// Package user contains the account and profile endpoints
package user

import (
	"net/http"
	"strings"

	"piclips/video-api/app/reply"
	"piclips/video-api/internal"
	"piclips/video-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type authenticateBody struct {
	UID         string `json:"uid"`
	Username    string `json:"username"`
	AccessToken string `json:"accessToken"`
}

// UserAuthenticate checks the access token with the identity platform,
// signs the user in (registering them on first use) and returns a session token
func UserAuthenticate(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data authenticateBody
	if err := c.ShouldBindJSON(&data); err != nil {
		reply.Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	data.UID = strings.TrimSpace(data.UID)
	if data.UID == "" || data.AccessToken == "" {
		reply.Error(c, http.StatusBadRequest, "uid and accessToken are required")
		return
	}

	id, err := d.Identity.Verify(c.Request.Context(), data.AccessToken)
	if err != nil {
		reply.Error(c, http.StatusUnauthorized, "Authentication failed")

		zap.L().Info("Identity verification failed", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if id.UID != data.UID {
		reply.Error(c, http.StatusUnauthorized, "Authentication failed")

		zap.L().Warn("Claimed uid doesn't match the verified one", zap.String("requestID", requestID))
		return
	}

	username := id.Username
	if username == "" {
		username = strings.TrimSpace(data.Username)
	}

	if username == "" {
		reply.Error(c, http.StatusBadRequest, "username is required")
		return
	}

	user, err := service.FindOrCreateUser(c.Request.Context(), d.DB, id.UID, username)
	if err != nil {
		reply.Fail(c, err, "Failed to find or create user")
		return
	}

	token, err := d.Sessions.Issue(user.ID)
	if err != nil {
		reply.Fail(c, err, "Failed to generate JWT auth token")
		return
	}

	sslEnabled := viper.GetBool("host.ssl.enabled")
	maxAge := int(d.Sessions.Expiry().Seconds())

	c.SetCookie("auth_token", token, maxAge, "/", "", sslEnabled, true)
	c.SetCookie("logged_in", "1", maxAge, "/", "", sslEnabled, false)
	c.JSON(http.StatusOK, gin.H{
		"user":  user,
		"token": token,
	})
}
