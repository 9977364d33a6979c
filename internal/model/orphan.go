package model

import "time"

// OrphanObject records an object store key whose payload should be gone
// but couldn't be deleted when its record was. The maintenance sweep
// retries them.
type OrphanObject struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	ObjectKey   string `gorm:"uniqueIndex;not null"`
	Reason      string
	Attempts    int
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	LastTriedAt *time.Time
}
