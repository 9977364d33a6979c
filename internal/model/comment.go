package model

import "time"

type Comment struct {
	ID        string      `gorm:"primaryKey" json:"_id"`
	Content   string      `gorm:"not null" json:"content"`
	UserID    string      `gorm:"index;not null" json:"user"`
	User      *User       `json:"-"`
	VideoID   string      `gorm:"index;not null" json:"video"`
	Likes     int         `gorm:"not null;default:0" json:"likes"`
	Replies   StringSlice `json:"replies"` // Never filled by any handler
	CreatedAt time.Time   `gorm:"index" json:"createdAt"`
}
