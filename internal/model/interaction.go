package model

import "time"

const (
	InteractionLike  = "like"
	InteractionView  = "view"
	InteractionShare = "share"
)

// Interaction is an append-only log entry, nothing reads it back
type Interaction struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	UserID    string    `gorm:"index;not null"`
	VideoID   string    `gorm:"index;not null"`
	Type      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}
