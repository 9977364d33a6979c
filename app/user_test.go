package app_test

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"piclips/video-api/internal/apptest"
	"piclips/video-api/internal/model"
	"piclips/video-api/internal/service"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfile(t *testing.T) {
	e := apptest.New(t)

	alice, aliceToken := e.User("alice", 0)
	bob, bobToken := e.User("bob", 0)

	t.Run("owner only", func(t *testing.T) {
		rec := e.Do(http.MethodGet, "/api/users/"+alice.ID, bobToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = e.Do(http.MethodPut, "/api/users/"+alice.ID, bobToken, map[string]string{"bio": "hacked"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Empty(t, e.Reload(alice).Bio)
	})

	t.Run("update", func(t *testing.T) {
		rec := e.Do(http.MethodPut, "/api/users/"+alice.ID, aliceToken, map[string]any{
			"displayName": " Alice A. ",
			"username":    "alice_a",
			"bio":         "I film things",
			"instagram":   "alice.films",
			"hashtags":    []string{"#travel", "food"},
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		p := apptest.Decode[service.Profile](t, rec)
		assert.Equal(t, "Alice A.", p.DisplayName)
		assert.Equal(t, "alice_a", p.Username)
		assert.Equal(t, "I film things", p.Bio)
		assert.Equal(t, model.StringSlice{"travel", "food"}, p.Hashtags)
	})

	t.Run("username taken", func(t *testing.T) {
		rec := e.Do(http.MethodPut, "/api/users/"+bob.ID, bobToken, map[string]string{"username": "alice_a"})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Username is already taken", apptest.Decode[errorBody](t, rec).Error)
		assert.Equal(t, "bob", e.Reload(bob).Username)
	})

	t.Run("invalid fields", func(t *testing.T) {
		for _, body := range []map[string]any{
			{"username": "no spaces allowed"},
			{"username": "ab"},
			{"bio": strings.Repeat("b", 301)},
			{"displayName": ""},
			{"hashtags": []string{"a,b"}},
		} {
			rec := e.Do(http.MethodPut, "/api/users/"+bob.ID, bobToken, body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		}
	})

	t.Run("fetch", func(t *testing.T) {
		rec := e.Do(http.MethodGet, "/api/users/"+alice.ID, aliceToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "alice_a", apptest.Decode[service.Profile](t, rec).Username)

		rec = e.Do(http.MethodGet, "/api/users/by-username/alice_a", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		public := apptest.Decode[map[string]any](t, rec)
		assert.Equal(t, alice.ID, public["_id"])
		assert.NotContains(t, public, "tokenBalance")
		assert.NotContains(t, public, "uid")

		rec = e.Do(http.MethodGet, "/api/users/by-username/nobody", "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestUserFetch(t *testing.T) {
	e := apptest.New(t)

	u, token := e.User("creator", 0)
	for range 12 {
		e.Video(u, model.PrivacyPublic)
	}

	rec := e.Do(http.MethodGet, "/api/users", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := apptest.Decode[struct {
		User   service.Profile  `json:"user"`
		Videos []map[string]any `json:"videos"`
	}](t, rec)
	assert.Equal(t, u.ID, body.User.ID)
	assert.Equal(t, 12, body.User.UploadedVideosCount)
	assert.Len(t, body.Videos, 10)
}

func TestFollow(t *testing.T) {
	e := apptest.New(t)

	alice, aliceToken := e.User("alice", 0)
	bob, _ := e.User("bob", 0)

	type followBody struct {
		Following bool  `json:"following"`
		Followers int64 `json:"followers"`
	}

	rec := e.Do(http.MethodPost, "/api/users/"+bob.ID+"/follow", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, followBody{Following: true, Followers: 1}, apptest.Decode[followBody](t, rec))

	rec = e.Do(http.MethodGet, "/api/users/"+alice.ID, aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{bob.ID}, apptest.Decode[service.Profile](t, rec).Following)

	rec = e.Do(http.MethodPost, "/api/users/"+bob.ID+"/follow", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, followBody{Following: false, Followers: 0}, apptest.Decode[followBody](t, rec))

	rec = e.Do(http.MethodPost, "/api/users/"+alice.ID+"/follow", aliceToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.Do(http.MethodPost, "/api/users/missing/follow", aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAvatarUpload(t *testing.T) {
	e := apptest.New(t)

	u, token := e.User("painter", 0)
	_, otherToken := e.User("other", 0)
	path := "/api/users/" + u.ID + "/avatar"
	dir := filepath.Join(viper.GetString("upload.dir"), "avatars")

	rec := e.Upload(path, otherToken, nil, map[string][]byte{"avatar": apptest.PNG})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.Upload(path, token, nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.Upload(path, token, nil, map[string][]byte{"avatar": apptest.MP4})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.Upload(path, token, nil, map[string][]byte{"avatar": apptest.PNG})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	first := apptest.Decode[map[string]string](t, rec)["avatar"]
	assert.True(t, strings.HasPrefix(first, "/uploads/avatars/avatar-"))
	assert.True(t, strings.HasSuffix(first, ".png"))
	assert.Equal(t, first, e.Reload(u).Avatar)

	_, err := os.Stat(filepath.Join(dir, filepath.Base(first)))
	require.NoError(t, err)

	// Served as a static file
	rec = e.Do(http.MethodGet, first, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = e.Upload(path, token, nil, map[string][]byte{"avatar": apptest.PNG})
	require.Equal(t, http.StatusOK, rec.Code)

	second := apptest.Decode[map[string]string](t, rec)["avatar"]
	assert.NotEqual(t, first, second)

	_, err = os.Stat(filepath.Join(dir, filepath.Base(first)))
	assert.True(t, os.IsNotExist(err), "previous avatar should be removed")
}

func TestSearch(t *testing.T) {
	e := apptest.New(t)

	_, token := e.User("searcher", 0)
	e.User("Gopher_Dan", 0)
	e.User("danielle", 0)
	e.User("percent%guy", 0)
	tagged, _ := e.User("tagged", 0)
	require.NoError(t, e.Deps.DB.Model(tagged).Update("hashtags", model.StringSlice{"surfing", "travel"}).Error)

	search := func(query string) []model.UserSummary {
		t.Helper()

		rec := e.Do(http.MethodGet, "/api/search?"+query, token, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		return apptest.Decode[[]model.UserSummary](t, rec)
	}

	names := func(res []model.UserSummary) []string {
		out := make([]string, len(res))
		for i, r := range res {
			out[i] = r.Username
		}
		return out
	}

	assert.ElementsMatch(t, []string{"Gopher_Dan", "danielle"}, names(search("term=DAN")))
	assert.ElementsMatch(t, []string{"percent%guy"}, names(search("term=%25")))
	assert.ElementsMatch(t, []string{"Gopher_Dan"}, names(search("term=r_d")))
	assert.ElementsMatch(t, []string{"tagged"}, names(search("term=%23surf&type=hashtag")))
	assert.Empty(t, search("term=dan&type=hashtag"))

	rec := e.Do(http.MethodGet, "/api/search?term=", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.Do(http.MethodGet, "/api/search?term=dan&type=email", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.Do(http.MethodGet, "/api/search?term=dan", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	for i := range 25 {
		e.User("bulk_"+strings.Repeat("x", i+1), 0)
	}
	assert.Len(t, search("term=bulk"), 20)
}
