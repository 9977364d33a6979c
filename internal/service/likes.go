package service

import (
	"context"

	"piclips/video-api/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ToggleLike likes videoID for userID, or takes the like back when it
// already exists. The owner's aggregate like count follows along.
func ToggleLike(ctx context.Context, db *gorm.DB, videoID, userID string) (likes int64, isLiked bool, err error) {
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		v, err := findVisible(forUpdate(tx), videoID, userID)
		if err != nil {
			return err
		}

		res := tx.
			Where("video_id = ? AND user_id = ?", videoID, userID).
			Delete(&model.VideoLike{})
		if res.Error != nil {
			return res.Error
		}

		ownerLikes := any(floor("likes", 1))

		if res.RowsAffected == 0 {
			isLiked = true

			res := tx.
				Clauses(clause.OnConflict{DoNothing: true}).
				Create(&model.VideoLike{VideoID: videoID, UserID: userID})
			if res.Error != nil {
				return res.Error
			}

			// A concurrent request already liked it for this user
			if res.RowsAffected == 0 {
				return tx.Model(&model.VideoLike{}).
					Where("video_id = ?", videoID).
					Count(&likes).
					Error
			}

			err = tx.Create(&model.Interaction{
				UserID:  userID,
				VideoID: videoID,
				Type:    model.InteractionLike,
			}).Error
			if err != nil {
				return err
			}

			ownerLikes = gorm.Expr("likes + 1")
		}

		err = tx.Model(&model.User{}).
			Where("id = ?", v.UserID).
			Update("likes", ownerLikes).
			Error
		if err != nil {
			return err
		}

		return tx.Model(&model.VideoLike{}).
			Where("video_id = ?", videoID).
			Count(&likes).
			Error
	})

	return likes, isLiked, err
}

// LikeLists returns the IDs of the users that liked each video in ids,
// oldest like first
func LikeLists(ctx context.Context, db *gorm.DB, ids []string) (map[string][]string, error) {
	lists := make(map[string][]string, len(ids))
	for _, id := range ids {
		lists[id] = []string{}
	}

	if len(ids) == 0 {
		return lists, nil
	}

	var likes []model.VideoLike

	err := db.WithContext(ctx).
		Where("video_id IN ?", ids).
		Order("created_at").
		Find(&likes).
		Error
	if err != nil {
		return nil, err
	}

	for _, l := range likes {
		lists[l.VideoID] = append(lists[l.VideoID], l.UserID)
	}

	return lists, nil
}

// CommentLists returns the comment IDs of each video in ids in the order
// they were posted
func CommentLists(ctx context.Context, db *gorm.DB, ids []string) (map[string][]string, error) {
	lists := make(map[string][]string, len(ids))
	for _, id := range ids {
		lists[id] = []string{}
	}

	if len(ids) == 0 {
		return lists, nil
	}

	var rows []struct {
		ID      string
		VideoID string
	}

	err := db.WithContext(ctx).
		Model(&model.Comment{}).
		Select("id", "video_id").
		Where("video_id IN ?", ids).
		Order("created_at").
		Scan(&rows).
		Error
	if err != nil {
		return nil, err
	}

	for _, r := range rows {
		lists[r.VideoID] = append(lists[r.VideoID], r.ID)
	}

	return lists, nil
}
