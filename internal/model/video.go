package model

import "time"

const (
	PrivacyPublic   = "public"
	PrivacyPrivate  = "private"
	PrivacyUnlisted = "unlisted"
)

type Video struct {
	ID          string    `gorm:"primaryKey" json:"_id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `json:"description"`
	URL         string    `gorm:"not null" json:"url"`
	ObjectKey   string    `gorm:"not null;uniqueIndex" json:"-"` // Key of the payload inside the bucket
	ContentType string    `json:"-"`
	Thumbnail   string    `gorm:"default:'/placeholder.svg'" json:"thumbnail"`
	UserID      string    `gorm:"index;not null" json:"user"`
	User        *User     `json:"-"`
	Privacy     string    `gorm:"index;not null;default:'public'" json:"privacy"`
	Views       int64     `gorm:"not null;default:0" json:"views"`
	CreatedAt   time.Time `gorm:"index" json:"createdAt"`
}

// VideoLike is the single record behind both a video's like-list and
// a user's liked-list
type VideoLike struct {
	VideoID   string    `gorm:"primaryKey"`
	UserID    string    `gorm:"primaryKey;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// ValidPrivacy reports whether p is one of the known privacy flags
func ValidPrivacy(p string) bool {
	switch p {
	case PrivacyPublic, PrivacyPrivate, PrivacyUnlisted:
		return true
	}

	return false
}
