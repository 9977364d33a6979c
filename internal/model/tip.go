package model

import "time"

type Tip struct {
	ID         string    `gorm:"primaryKey" json:"_id"`
	SenderID   string    `gorm:"index;not null" json:"sender"`
	Sender     *User     `json:"-"`
	ReceiverID string    `gorm:"index;not null" json:"receiver"`
	Receiver   *User     `json:"-"`
	VideoID    string    `gorm:"index;not null" json:"video"`
	Amount     int64     `gorm:"not null;check:amount >= 1" json:"amount"`
	CreatedAt  time.Time `json:"createdAt"`
}
