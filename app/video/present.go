// Package video contains the video, like, comment and tip endpoints
package video

import (
	"context"

	"piclips/video-api/config"
	"piclips/video-api/internal"
	"piclips/video-api/internal/model"
	"piclips/video-api/internal/service"

	"go.uber.org/zap"
)

// View is a video as clients see it: owner summary, like and comment
// lists and a signed playback URL
type View struct {
	model.Video
	User        *model.UserSummary `json:"user"`
	Likes       []string           `json:"likes"`
	Comments    []string           `json:"comments"`
	IsLiked     bool               `json:"isLiked"`
	SignedURL   string             `json:"signedUrl"`
	ContentType string             `json:"contentType"`
}

// Present augments videos for viewerID. viewerID may be empty.
func Present(ctx context.Context, d *internal.Deps, viewerID string, videos []model.Video) ([]View, error) {
	ids := make([]string, len(videos))
	for i, v := range videos {
		ids[i] = v.ID
	}

	likes, err := service.LikeLists(ctx, d.DB, ids)
	if err != nil {
		return nil, err
	}

	comments, err := service.CommentLists(ctx, d.DB, ids)
	if err != nil {
		return nil, err
	}

	expiry := config.Duration("storage.presign_expiry")
	views := make([]View, len(videos))

	for i, v := range videos {
		signed, err := d.Store.PresignGet(ctx, v.ObjectKey, v.ContentType, expiry)
		if err != nil {
			// The permanent URL still works for public buckets
			zap.L().Warn("Failed to sign video URL", zap.String("videoID", v.ID), zap.Error(err))
			signed = v.URL
		}

		views[i] = View{
			Video:       v,
			User:        v.User.Summary(),
			Likes:       likes[v.ID],
			Comments:    comments[v.ID],
			SignedURL:   signed,
			ContentType: v.ContentType,
		}

		for _, u := range views[i].Likes {
			if viewerID != "" && u == viewerID {
				views[i].IsLiked = true
				break
			}
		}
	}

	return views, nil
}

func presentOne(ctx context.Context, d *internal.Deps, viewerID string, v *model.Video) (*View, error) {
	views, err := Present(ctx, d, viewerID, []model.Video{*v})
	if err != nil {
		return nil, err
	}

	return &views[0], nil
}
