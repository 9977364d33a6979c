package app_test

import (
	"net/http"
	"testing"

	"piclips/video-api/app"
	"piclips/video-api/app/video"
	"piclips/video-api/internal/apptest"
	"piclips/video-api/internal/model"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedCache(t *testing.T) {
	e := apptest.New(t)
	viper.Set("cache.ttl", 15)
	e.Router = app.NewRouter(e.Deps)

	owner, ownerToken := e.User("owner", 0)
	fan, fanToken := e.User("fan", 0)
	v := e.Video(owner, model.PrivacyPublic)

	feed := func(token string) []video.View {
		t.Helper()

		rec := e.Do(http.MethodGet, "/api/videos", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		return apptest.Decode[[]video.View](t, rec)
	}

	require.Len(t, feed(fanToken), 1)
	assert.False(t, feed(fanToken)[0].IsLiked)
	require.Len(t, feed(""), 1)

	rec := e.Do(http.MethodPost, "/api/videos/"+v.ID+"/like", fanToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	after := feed(fanToken)
	require.Len(t, after, 1)
	assert.True(t, after[0].IsLiked)
	assert.Equal(t, []string{fan.ID}, after[0].Likes)

	rec = e.Do(http.MethodDelete, "/api/videos/"+v.ID, ownerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Empty(t, feed(fanToken))
	assert.Empty(t, feed(ownerToken))

	// Anonymous readers share one cached copy until it expires
	anon := feed("")
	require.Len(t, anon, 1)
	assert.Empty(t, anon[0].Likes)
}
