// Package model defines database models
package model

import "time"

const PlaceholderImage = "/placeholder.svg"

type User struct {
	ID                  string      `gorm:"primaryKey" json:"_id"`
	UID                 string      `gorm:"uniqueIndex;not null" json:"uid"` // Identifier issued by the identity gateway
	Username            string      `gorm:"index;not null" json:"username"`
	DisplayName         string      `gorm:"not null" json:"displayName"`
	Avatar              string      `gorm:"default:'/placeholder.svg'" json:"avatar"`
	Bio                 string      `json:"bio,omitempty"`
	Instagram           string      `json:"instagram,omitempty"`
	Youtube             string      `json:"youtube,omitempty"`
	Hashtags            StringSlice `json:"hashtags"` // Searchable but nothing fills it yet
	Likes               int64       `gorm:"not null;default:0" json:"likes"`
	TokenBalance        int64       `gorm:"not null;default:0;check:token_balance >= 0" json:"tokenBalance"`
	UploadedVideosCount int         `gorm:"not null;default:0" json:"uploadedVideosCount"`
	CreatedAt           time.Time   `json:"createdAt"`
}

// UserSummary is the subset of a user embedded in videos, comments and tips
type UserSummary struct {
	ID          string `json:"_id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Avatar      string `json:"avatar"`
}

func (u *User) Summary() *UserSummary {
	if u == nil {
		return nil
	}

	return &UserSummary{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Avatar:      u.Avatar,
	}
}

type Follow struct {
	FollowerID string    `gorm:"primaryKey"`
	FolloweeID string    `gorm:"primaryKey;index"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}
