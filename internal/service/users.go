package service

import (
	"context"
	"errors"
	"strings"

	"piclips/video-api/internal/model"
	"piclips/video-api/pkg/util"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxSearchResults = 20

// Profile is a user together with the IDs on both sides of their follows
// and the videos they liked
type Profile struct {
	*model.User
	Followers   []string `json:"followers"`
	Following   []string `json:"following"`
	LikedVideos []string `json:"likedVideos"`
}

// FindOrCreateUser returns the user registered for uid, creating it on first sign in
func FindOrCreateUser(ctx context.Context, db *gorm.DB, uid, username string) (*model.User, error) {
	var user model.User

	err := db.WithContext(ctx).
		Where("uid = ?", uid).
		First(&user).
		Error
	if err == nil {
		return &user, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	id, err := util.NewID()
	if err != nil {
		return nil, err
	}

	user = model.User{
		ID:          id,
		UID:         uid,
		Username:    username,
		DisplayName: username,
		Avatar:      model.PlaceholderImage,
	}

	err = db.WithContext(ctx).Create(&user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Another request signed the same account in first
		err = db.WithContext(ctx).Where("uid = ?", uid).First(&user).Error
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func GetUser(ctx context.Context, db *gorm.DB, id string) (*model.User, error) {
	var user model.User

	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&user).
		Error
	if err != nil {
		return nil, notFound(err, "User not found")
	}

	return &user, nil
}

// GetProfile loads a user and their follow lists
func GetProfile(ctx context.Context, db *gorm.DB, id string) (*Profile, error) {
	user, err := GetUser(ctx, db, id)
	if err != nil {
		return nil, err
	}

	p := &Profile{
		User:        user,
		Followers:   []string{},
		Following:   []string{},
		LikedVideos: []string{},
	}

	err = db.WithContext(ctx).
		Model(&model.Follow{}).
		Where("followee_id = ?", id).
		Order("created_at").
		Pluck("follower_id", &p.Followers).
		Error
	if err != nil {
		return nil, err
	}

	err = db.WithContext(ctx).
		Model(&model.Follow{}).
		Where("follower_id = ?", id).
		Order("created_at").
		Pluck("followee_id", &p.Following).
		Error
	if err != nil {
		return nil, err
	}

	err = db.WithContext(ctx).
		Model(&model.VideoLike{}).
		Where("user_id = ?", id).
		Order("created_at").
		Pluck("video_id", &p.LikedVideos).
		Error
	if err != nil {
		return nil, err
	}

	return p, nil
}

// ProfileUpdate carries the fields a user can change on their profile.
// Nil fields are left alone. Values must already be validated.
type ProfileUpdate struct {
	DisplayName *string
	Username    *string
	Bio         *string
	Instagram   *string
	Youtube     *string
	Hashtags    *[]string
}

func UpdateProfile(ctx context.Context, db *gorm.DB, id string, u ProfileUpdate) (*Profile, error) {
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user model.User
		if err := tx.Select("id").Where("id = ?", id).First(&user).Error; err != nil {
			return notFound(err, "User not found")
		}

		updates := map[string]any{}

		if u.Username != nil {
			var taken int64

			err := tx.Model(&model.User{}).
				Where("username = ? AND id <> ?", *u.Username, id).
				Count(&taken).
				Error
			if err != nil {
				return err
			}

			if taken > 0 {
				return Validation.New("Username is already taken")
			}

			updates["username"] = *u.Username
		}

		if u.DisplayName != nil {
			updates["display_name"] = *u.DisplayName
		}
		if u.Bio != nil {
			updates["bio"] = *u.Bio
		}
		if u.Instagram != nil {
			updates["instagram"] = *u.Instagram
		}
		if u.Youtube != nil {
			updates["youtube"] = *u.Youtube
		}
		if u.Hashtags != nil {
			updates["hashtags"] = model.StringSlice(*u.Hashtags)
		}

		if len(updates) == 0 {
			return nil
		}

		return tx.Model(&model.User{}).
			Where("id = ?", id).
			Updates(updates).
			Error
	})
	if err != nil {
		return nil, err
	}

	return GetProfile(ctx, db, id)
}

// SetAvatar stores the new avatar path and returns the one it replaced
func SetAvatar(ctx context.Context, db *gorm.DB, id, avatar string) (old string, err error) {
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user model.User
		if err := tx.Select("id", "avatar").Where("id = ?", id).First(&user).Error; err != nil {
			return notFound(err, "User not found")
		}
		old = user.Avatar

		return tx.Model(&user).Update("avatar", avatar).Error
	})

	return old, err
}

// ToggleFollow follows followeeID, or unfollows it when already followed
func ToggleFollow(ctx context.Context, db *gorm.DB, followerID, followeeID string) (following bool, followers int64, err error) {
	if followerID == followeeID {
		return false, 0, Validation.New("You can't follow yourself")
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).Select("id").Where("id = ?", followeeID).First(&model.User{}).Error; err != nil {
			return notFound(err, "User not found")
		}

		res := tx.Where("follower_id = ? AND followee_id = ?", followerID, followeeID).Delete(&model.Follow{})
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			err := tx.
				Clauses(clause.OnConflict{DoNothing: true}).
				Create(&model.Follow{FollowerID: followerID, FolloweeID: followeeID}).
				Error
			if err != nil {
				return err
			}
			following = true
		}

		return tx.Model(&model.Follow{}).Where("followee_id = ?", followeeID).Count(&followers).Error
	})

	return following, followers, err
}

const (
	SearchByName    = "name"
	SearchByHashtag = "hashtag"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchUsers matches term as a case-insensitive substring of usernames and
// display names, or of hashtags when by is SearchByHashtag
func SearchUsers(ctx context.Context, db *gorm.DB, term, by string) ([]model.UserSummary, error) {
	term = strings.ToLower(strings.TrimSpace(term))

	q := db.WithContext(ctx).
		Model(&model.User{}).
		Select("id", "username", "display_name", "avatar")

	switch by {
	case SearchByHashtag:
		// Commas separate stored tags, a term must not span two of them
		tag := strings.ReplaceAll(strings.TrimPrefix(term, "#"), ",", "")
		q = q.Where(`LOWER(hashtags) LIKE ? ESCAPE '\'`, "%"+likeEscaper.Replace(tag)+"%")
	default:
		pattern := "%" + likeEscaper.Replace(term) + "%"
		q = q.Where(`LOWER(username) LIKE ? ESCAPE '\' OR LOWER(display_name) LIKE ? ESCAPE '\'`, pattern, pattern)
	}

	results := []model.UserSummary{}

	err := q.
		Order("username").
		Limit(maxSearchResults).
		Find(&results).
		Error
	if err != nil {
		return nil, err
	}

	return results, nil
}

func GetUserByUsername(ctx context.Context, db *gorm.DB, username string) (*model.User, error) {
	var user model.User

	err := db.WithContext(ctx).
		Where("username = ?", username).
		First(&user).
		Error
	if err != nil {
		return nil, notFound(err, "User not found")
	}

	return &user, nil
}
