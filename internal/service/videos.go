package service

import (
	"context"
	"fmt"

	"piclips/video-api/internal/model"
	"piclips/video-api/internal/storage"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// caseFloor keeps a counter column from dropping below zero
const caseFloor = "CASE WHEN %[1]s > ? THEN %[1]s - ? ELSE 0 END"

func floor(col string, n int64) clause.Expr {
	return gorm.Expr(fmt.Sprintf(caseFloor, col), n, n)
}

// visible reports whether viewerID may see v. Private videos are only
// visible to their owner, unlisted ones to anyone holding the ID.
func visible(v *model.Video, viewerID string) bool {
	return v.Privacy != model.PrivacyPrivate || v.UserID == viewerID
}

// forUpdate locks the selected rows until the transaction ends, so a
// mutation can't interleave with a delete of the same video. SQLite has no
// row locks and its dialect drops the clause.
func forUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// findVisible loads a video and checks it can be seen by viewerID
func findVisible(tx *gorm.DB, videoID, viewerID string) (*model.Video, error) {
	var v model.Video

	err := tx.
		Where("id = ?", videoID).
		First(&v).
		Error
	if err != nil {
		return nil, notFound(err, "Video not found")
	}

	if !visible(&v, viewerID) {
		return nil, Forbidden.New("This video is private")
	}

	return &v, nil
}

// GetVideo returns a video with its owner. viewerID may be empty for
// anonymous requests.
func GetVideo(ctx context.Context, db *gorm.DB, videoID, viewerID string) (*model.Video, error) {
	v, err := findVisible(db.WithContext(ctx), videoID, viewerID)
	if err != nil {
		return nil, err
	}

	var owner model.User
	if err := db.WithContext(ctx).Where("id = ?", v.UserID).First(&owner).Error; err != nil {
		return nil, notFound(err, "Video owner not found")
	}
	v.User = &owner

	return v, nil
}

// ListPublicVideos returns the feed, newest first
func ListPublicVideos(ctx context.Context, db *gorm.DB) ([]model.Video, error) {
	videos := []model.Video{}

	err := db.WithContext(ctx).
		Preload("User").
		Where("privacy = ?", model.PrivacyPublic).
		Order("created_at DESC").
		Find(&videos).
		Error

	return videos, err
}

// ListUserVideos returns every video of ownerID. Anyone but the owner
// only gets the public ones.
func ListUserVideos(ctx context.Context, db *gorm.DB, ownerID, viewerID string, limit int) ([]model.Video, error) {
	videos := []model.Video{}

	q := db.WithContext(ctx).
		Preload("User").
		Where("user_id = ?", ownerID)

	if ownerID != viewerID {
		q = q.Where("privacy = ?", model.PrivacyPublic)
	}

	if limit > 0 {
		q = q.Limit(limit)
	}

	err := q.
		Order("created_at DESC").
		Find(&videos).
		Error

	return videos, err
}

// ListLikedVideos returns the videos userID liked, most recent like first
func ListLikedVideos(ctx context.Context, db *gorm.DB, userID, viewerID string) ([]model.Video, error) {
	videos := []model.Video{}

	q := db.WithContext(ctx).
		Model(&model.Video{}).
		Select("videos.*").
		Joins("JOIN video_likes ON video_likes.video_id = videos.id AND video_likes.user_id = ?", userID).
		Preload("User")

	if userID == viewerID {
		q = q.Where("videos.privacy <> ? OR videos.user_id = ?", model.PrivacyPrivate, viewerID)
	} else {
		q = q.Where("videos.privacy = ?", model.PrivacyPublic)
	}

	err := q.
		Order("video_likes.created_at DESC").
		Find(&videos).
		Error

	return videos, err
}

// DeleteVideo removes a video owned by userID together with its likes and
// comments. The owner's counters are adjusted in the same transaction.
// The payload is removed once the transaction committed.
func DeleteVideo(ctx context.Context, db *gorm.DB, store storage.Store, videoID, userID string) error {
	var key string

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var v model.Video

		if err := forUpdate(tx).Where("id = ?", videoID).First(&v).Error; err != nil {
			return notFound(err, "Video not found")
		}

		if v.UserID != userID {
			return Forbidden.New("User not authorized")
		}

		key = v.ObjectKey

		res := tx.Where("video_id = ?", videoID).Delete(&model.VideoLike{})
		if res.Error != nil {
			return res.Error
		}
		likes := res.RowsAffected

		if err := tx.Where("video_id = ?", videoID).Delete(&model.Comment{}).Error; err != nil {
			return err
		}

		if err := tx.Delete(&v).Error; err != nil {
			return err
		}

		return tx.Model(&model.User{}).
			Where("id = ?", v.UserID).
			Updates(map[string]any{
				"likes":                 floor("likes", likes),
				"uploaded_videos_count": floor("uploaded_videos_count", 1),
			}).
			Error
	})
	if err != nil {
		return err
	}

	if key != "" {
		removeObject(ctx, db, store, key, "video deleted")
	}

	return nil
}

// RecordInteraction appends a view or share to the interaction log. Views
// also bump the video's counter. userID may be empty for anonymous viewers,
// in which case only the counter changes.
func RecordInteraction(ctx context.Context, db *gorm.DB, videoID, userID, typ string) (views int64, err error) {
	if typ != model.InteractionView && typ != model.InteractionShare {
		return 0, Validation.New("Interaction type must be view or share")
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		v, err := findVisible(forUpdate(tx), videoID, userID)
		if err != nil {
			return err
		}

		if typ == model.InteractionView {
			err := tx.Model(v).
				Update("views", gorm.Expr("views + 1")).
				Error
			if err != nil {
				return err
			}
		}

		if userID != "" {
			err := tx.Create(&model.Interaction{
				UserID:  userID,
				VideoID: videoID,
				Type:    typ,
			}).Error
			if err != nil {
				return err
			}
		}

		return tx.Model(&model.Video{}).
			Where("id = ?", videoID).
			Select("views").
			Scan(&views).
			Error
	})

	return views, err
}
