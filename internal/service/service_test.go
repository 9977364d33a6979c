package service_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"piclips/video-api/internal/apptest"
	"piclips/video-api/internal/model"
	"piclips/video-api/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecount(t *testing.T) {
	e := apptest.New(t)
	ctx := context.Background()

	owner, _ := e.User("owner", 0)
	fan, _ := e.User("fan", 0)

	v := e.Video(owner, model.PrivacyPublic)
	e.Video(owner, model.PrivacyPrivate)

	_, _, err := service.ToggleLike(ctx, e.Deps.DB, v.ID, fan.ID)
	require.NoError(t, err)

	// Drift both counters
	require.NoError(t, e.Deps.DB.Model(owner).Updates(map[string]any{
		"likes":                 40,
		"uploaded_videos_count": 0,
	}).Error)

	n, err := service.Recount(ctx, e.Deps.DB)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	fresh := e.Reload(owner)
	assert.EqualValues(t, 1, fresh.Likes)
	assert.Equal(t, 2, fresh.UploadedVideosCount)

	assert.Zero(t, e.Reload(fan).Likes)
}

func TestSweepOrphans(t *testing.T) {
	e := apptest.New(t)
	ctx := context.Background()

	owner, _ := e.User("owner", 0)
	v := e.Video(owner, model.PrivacyPublic)

	e.Store.FailDeletes = true
	require.NoError(t, service.DeleteVideo(ctx, e.Deps.DB, e.Store, v.ID, owner.ID))
	require.NoError(t, service.RecordOrphan(ctx, e.Deps.DB, "videos/already-gone.mp4", "test"))

	// Logging the same key twice keeps one row
	require.NoError(t, service.RecordOrphan(ctx, e.Deps.DB, "videos/already-gone.mp4", "test"))
	assert.EqualValues(t, 2, e.Count(&model.OrphanObject{}, "1 = 1"))

	cleaned, err := service.SweepOrphans(ctx, e.Deps.DB, e.Store)
	require.NoError(t, err)
	assert.Zero(t, cleaned)

	var o model.OrphanObject
	require.NoError(t, e.Deps.DB.Where("object_key = ?", v.ObjectKey).First(&o).Error)
	assert.Equal(t, 1, o.Attempts)
	assert.NotNil(t, o.LastTriedAt)

	e.Store.FailDeletes = false

	cleaned, err = service.SweepOrphans(ctx, e.Deps.DB, e.Store)
	require.NoError(t, err)
	assert.Equal(t, 2, cleaned)
	assert.Zero(t, e.Count(&model.OrphanObject{}, "1 = 1"))
	assert.False(t, e.Store.Has(v.ObjectKey))
}

func TestMaintenanceRunOnce(t *testing.T) {
	e := apptest.New(t)

	owner, _ := e.User("owner", 0)
	e.Video(owner, model.PrivacyPublic)
	require.NoError(t, e.Deps.DB.Model(owner).Update("uploaded_videos_count", 9).Error)
	require.NoError(t, service.RecordOrphan(context.Background(), e.Deps.DB, "videos/stale.mp4", "test"))

	m := service.NewMaintenance(e.Deps.DB, e.Store)
	require.NoError(t, m.Start(""))
	m.RunOnce(context.Background())
	m.Stop()

	assert.Equal(t, 1, e.Reload(owner).UploadedVideosCount)
	assert.Zero(t, e.Count(&model.OrphanObject{}, "1 = 1"))

	assert.Error(t, m.Start("not a schedule"))
}

func TestUploaderRollback(t *testing.T) {
	e := apptest.New(t)

	_, err := e.Deps.Uploader.Do(context.Background(), &service.NewVideo{
		UserID:      "missing",
		Title:       "ghost",
		Filename:    "ghost.mp4",
		ContentType: "video/mp4",
		Size:        int64(len(apptest.MP4)),
		Body:        bytes.NewReader(apptest.MP4),
	})
	require.Error(t, err)
	assert.True(t, service.NotFound.Has(err))

	assert.Zero(t, e.Store.Len())
	assert.Zero(t, e.Count(&model.Video{}, "1 = 1"))
}

func TestUploaderDefaults(t *testing.T) {
	e := apptest.New(t)

	owner, _ := e.User("owner", 0)

	v, err := e.Deps.Uploader.Do(context.Background(), &service.NewVideo{
		UserID:      owner.ID,
		Title:       "defaults",
		Filename:    "../../My Holiday (1).mp4",
		ContentType: "video/mp4",
		Size:        int64(len(apptest.MP4)),
		Body:        bytes.NewReader(apptest.MP4),
	})
	require.NoError(t, err)

	assert.Equal(t, model.PrivacyPublic, v.Privacy)
	assert.Equal(t, model.PlaceholderImage, v.Thumbnail)
	assert.True(t, strings.HasPrefix(v.ObjectKey, "videos/"))
	assert.True(t, strings.HasSuffix(v.ObjectKey, "-My_Holiday__1_.mp4"), v.ObjectKey)
	assert.True(t, e.Store.Has(v.ObjectKey))
	require.NotNil(t, v.User)
	assert.Equal(t, owner.ID, v.User.ID)
	assert.Equal(t, 1, e.Reload(owner).UploadedVideosCount)
}

func TestObjectKey(t *testing.T) {
	a := service.ObjectKey("clip.mp4")
	b := service.ObjectKey("clip.mp4")

	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasSuffix(a, "-clip.mp4"))

	assert.True(t, strings.HasSuffix(service.ObjectKey(`C:\Users\me\clip.mp4`), "-clip.mp4"))
	assert.True(t, strings.HasSuffix(service.ObjectKey("..."), "-video"))

	long := service.ObjectKey(strings.Repeat("a", 300) + ".mp4")
	assert.True(t, strings.HasSuffix(long, ".mp4"))
	assert.LessOrEqual(t, len(long), len("videos/")+36+1+100)
}

func TestVisibility(t *testing.T) {
	e := apptest.New(t)
	ctx := context.Background()

	owner, _ := e.User("owner", 0)
	other, _ := e.User("other", 0)

	private := e.Video(owner, model.PrivacyPrivate)
	unlisted := e.Video(owner, model.PrivacyUnlisted)
	e.Video(owner, model.PrivacyPublic)

	_, err := service.GetVideo(ctx, e.Deps.DB, private.ID, other.ID)
	assert.True(t, service.Forbidden.Has(err))

	_, err = service.GetVideo(ctx, e.Deps.DB, private.ID, "")
	assert.True(t, service.Forbidden.Has(err))

	v, err := service.GetVideo(ctx, e.Deps.DB, private.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, private.ID, v.ID)

	_, err = service.GetVideo(ctx, e.Deps.DB, unlisted.ID, other.ID)
	assert.NoError(t, err)

	_, err = service.GetVideo(ctx, e.Deps.DB, "missing", owner.ID)
	assert.True(t, service.NotFound.Has(err))

	feed, err := service.ListPublicVideos(ctx, e.Deps.DB)
	require.NoError(t, err)
	assert.Len(t, feed, 1)

	mine, err := service.ListUserVideos(ctx, e.Deps.DB, owner.ID, owner.ID, 0)
	require.NoError(t, err)
	assert.Len(t, mine, 3)

	theirs, err := service.ListUserVideos(ctx, e.Deps.DB, owner.ID, other.ID, 0)
	require.NoError(t, err)
	assert.Len(t, theirs, 1)

	_, _, err = service.ToggleLike(ctx, e.Deps.DB, private.ID, other.ID)
	assert.True(t, service.Forbidden.Has(err))
}

func TestToggleFollow(t *testing.T) {
	e := apptest.New(t)
	ctx := context.Background()

	a, _ := e.User("a_user", 0)
	b, _ := e.User("b_user", 0)
	c, _ := e.User("c_user", 0)

	following, followers, err := service.ToggleFollow(ctx, e.Deps.DB, a.ID, c.ID)
	require.NoError(t, err)
	assert.True(t, following)
	assert.EqualValues(t, 1, followers)

	_, followers, err = service.ToggleFollow(ctx, e.Deps.DB, b.ID, c.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, followers)

	p, err := service.GetProfile(ctx, e.Deps.DB, c.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a.ID, b.ID}, p.Followers)
	assert.Empty(t, p.Following)

	following, followers, err = service.ToggleFollow(ctx, e.Deps.DB, a.ID, c.ID)
	require.NoError(t, err)
	assert.False(t, following)
	assert.EqualValues(t, 1, followers)

	_, _, err = service.ToggleFollow(ctx, e.Deps.DB, a.ID, a.ID)
	assert.True(t, service.Validation.Has(err))
}

func TestUpdateProfile(t *testing.T) {
	e := apptest.New(t)
	ctx := context.Background()

	a, _ := e.User("first", 0)
	b, _ := e.User("second", 0)

	name := "second"
	_, err := service.UpdateProfile(ctx, e.Deps.DB, a.ID, service.ProfileUpdate{Username: &name})
	require.Error(t, err)
	assert.Equal(t, "Username is already taken", service.Message(err))

	// Keeping your own username isn't a conflict
	name = "first"
	bio := "hello"
	tags := []string{"go", "film"}
	p, err := service.UpdateProfile(ctx, e.Deps.DB, a.ID, service.ProfileUpdate{
		Username: &name,
		Bio:      &bio,
		Hashtags: &tags,
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", p.Bio)
	assert.Equal(t, model.StringSlice{"go", "film"}, p.Hashtags)
	assert.Equal(t, "second", e.Reload(b).Username)

	// An empty update changes nothing
	p, err = service.UpdateProfile(ctx, e.Deps.DB, a.ID, service.ProfileUpdate{})
	require.NoError(t, err)
	assert.Equal(t, "hello", p.Bio)

	_, err = service.UpdateProfile(ctx, e.Deps.DB, "missing", service.ProfileUpdate{Bio: &bio})
	assert.True(t, service.NotFound.Has(err))
}

func TestFindOrCreateUser(t *testing.T) {
	e := apptest.New(t)
	ctx := context.Background()

	u, err := service.FindOrCreateUser(ctx, e.Deps.DB, "pi-uid", "pioneer")
	require.NoError(t, err)
	assert.Equal(t, "pioneer", u.DisplayName)
	assert.Equal(t, model.PlaceholderImage, u.Avatar)
	assert.Zero(t, u.TokenBalance)

	again, err := service.FindOrCreateUser(ctx, e.Deps.DB, "pi-uid", "renamed")
	require.NoError(t, err)
	assert.Equal(t, u.ID, again.ID)
	assert.Equal(t, "pioneer", again.Username)
}

func TestSearchUsersEscaping(t *testing.T) {
	e := apptest.New(t)
	ctx := context.Background()

	e.User("under_score", 0)
	e.User("underXscore", 0)
	e.User(`back\slash`, 0)

	res, err := service.SearchUsers(ctx, e.Deps.DB, "r_s", service.SearchByName)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "under_score", res[0].Username)

	res, err = service.SearchUsers(ctx, e.Deps.DB, `k\s`, service.SearchByName)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, `back\slash`, res[0].Username)

	res, err = service.SearchUsers(ctx, e.Deps.DB, "nobody", service.SearchByName)
	require.NoError(t, err)
	assert.NotNil(t, res)
	assert.Empty(t, res)
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "Insufficient tokens", service.Message(service.Validation.New("Insufficient tokens")))
	assert.Equal(t, "plain", service.Message(errors.New("plain")))
}

func TestConcurrentLikesAndFollows(t *testing.T) {
	e := apptest.New(t)
	ctx := context.Background()

	owner, _ := e.User("owner", 0)
	v := e.Video(owner, model.PrivacyPublic)

	fans := make([]*model.User, 6)
	for i := range fans {
		fans[i], _ = e.User(fmt.Sprintf("fan%d", i), 0)
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(fans)*3)

	for _, f := range fans {
		// Each fan races two likes of their own plus a follow
		for range 2 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _, err := service.ToggleLike(ctx, e.Deps.DB, v.ID, f.ID)
				errs <- err
			}()
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := service.ToggleFollow(ctx, e.Deps.DB, f.ID, owner.ID)
			errs <- err
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	// Two toggles per fan always cancel out
	assert.Zero(t, e.Count(&model.VideoLike{}, "video_id = ?", v.ID))
	assert.Zero(t, e.Reload(owner).Likes)
	assert.EqualValues(t, len(fans), e.Count(&model.Follow{}, "followee_id = ?", owner.ID))
}

func TestMutationsAfterDelete(t *testing.T) {
	e := apptest.New(t)
	ctx := context.Background()

	owner, _ := e.User("owner", 0)
	fan, _ := e.User("fan", 20)
	v := e.Video(owner, model.PrivacyPublic)

	require.NoError(t, service.DeleteVideo(ctx, e.Deps.DB, e.Store, v.ID, owner.ID))

	_, _, err := service.ToggleLike(ctx, e.Deps.DB, v.ID, fan.ID)
	assert.True(t, service.NotFound.Has(err))

	_, _, err = service.AddComment(ctx, e.Deps.DB, v.ID, fan.ID, "late")
	assert.True(t, service.NotFound.Has(err))

	_, err = service.SendTip(ctx, e.Deps.DB, fan.ID, v.ID, 5)
	assert.True(t, service.NotFound.Has(err))

	_, err = service.RecordInteraction(ctx, e.Deps.DB, v.ID, fan.ID, model.InteractionView)
	assert.True(t, service.NotFound.Has(err))

	assert.Zero(t, e.Count(&model.VideoLike{}, "video_id = ?", v.ID))
	assert.Zero(t, e.Count(&model.Comment{}, "video_id = ?", v.ID))
	assert.Zero(t, e.Count(&model.Tip{}, "video_id = ?", v.ID))
	assert.EqualValues(t, 20, e.Reload(fan).TokenBalance)
}
