package service

import (
	"context"

	"piclips/video-api/internal/model"
	"piclips/video-api/pkg/util"

	"gorm.io/gorm"
)

// AddComment stores a comment from userID on videoID and returns it with
// its author, plus the video's new comment count. content must already be
// validated.
func AddComment(ctx context.Context, db *gorm.DB, videoID, userID, content string) (*model.Comment, int64, error) {
	id, err := util.NewID()
	if err != nil {
		return nil, 0, err
	}

	comment := &model.Comment{
		ID:      id,
		Content: content,
		UserID:  userID,
		VideoID: videoID,
		Replies: model.StringSlice{},
	}

	var count int64

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findVisible(forUpdate(tx), videoID, userID); err != nil {
			return err
		}

		if err := tx.Create(comment).Error; err != nil {
			return err
		}

		return tx.Model(&model.Comment{}).
			Where("video_id = ?", videoID).
			Count(&count).
			Error
	})
	if err != nil {
		return nil, 0, err
	}

	err = db.WithContext(ctx).
		Preload("User").
		Where("id = ?", comment.ID).
		First(comment).
		Error
	if err != nil {
		return nil, 0, err
	}

	return comment, count, nil
}

// DeleteComment removes commentID from videoID. Only its author may do that.
func DeleteComment(ctx context.Context, db *gorm.DB, videoID, commentID, userID string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c model.Comment

		err := tx.
			Where("id = ? AND video_id = ?", commentID, videoID).
			First(&c).
			Error
		if err != nil {
			return notFound(err, "Comment not found")
		}

		if c.UserID != userID {
			return Forbidden.New("User not authorized")
		}

		return tx.Delete(&c).Error
	})
}

// ListComments returns the comments of videoID newest first, authors included
func ListComments(ctx context.Context, db *gorm.DB, videoID, viewerID string) ([]model.Comment, error) {
	if _, err := findVisible(db.WithContext(ctx), videoID, viewerID); err != nil {
		return nil, err
	}

	comments := []model.Comment{}

	err := db.WithContext(ctx).
		Preload("User").
		Where("video_id = ?", videoID).
		Order("created_at DESC").
		Find(&comments).
		Error

	return comments, err
}
