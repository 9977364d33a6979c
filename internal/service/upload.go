package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"piclips/video-api/internal/model"
	"piclips/video-api/internal/storage"
	"piclips/video-api/pkg/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxKeyNameLength = 100

// NewVideo describes an already validated upload
type NewVideo struct {
	UserID      string
	Title       string
	Description string
	Privacy     string
	Thumbnail   string
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type Uploader struct {
	DB    *gorm.DB
	Store storage.Store
}

func NewUploader(db *gorm.DB, s storage.Store) *Uploader {
	return &Uploader{
		DB:    db,
		Store: s,
	}
}

// Do stores the payload and then creates the video record and bumps the
// uploader's counter in one transaction. If the database step fails the
// payload is removed again.
func (u *Uploader) Do(ctx context.Context, n *NewVideo) (*model.Video, error) {
	key := ObjectKey(n.Filename)

	if err := u.Store.Put(ctx, key, n.Body, n.Size, n.ContentType); err != nil {
		return nil, err
	}

	id, err := util.NewID()
	if err != nil {
		removeObject(ctx, u.DB, u.Store, key, "upload aborted")
		return nil, err
	}

	privacy := n.Privacy
	if privacy == "" {
		privacy = model.PrivacyPublic
	}

	thumbnail := n.Thumbnail
	if thumbnail == "" {
		thumbnail = model.PlaceholderImage
	}

	v := &model.Video{
		ID:          id,
		Title:       n.Title,
		Description: n.Description,
		URL:         u.Store.URL(key),
		ObjectKey:   key,
		ContentType: n.ContentType,
		Thumbnail:   thumbnail,
		UserID:      n.UserID,
		Privacy:     privacy,
	}

	err = u.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.User{}).
			Where("id = ?", n.UserID).
			Update("uploaded_videos_count", gorm.Expr("uploaded_videos_count + 1"))
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			return NotFound.New("User not found")
		}

		return tx.Create(v).Error
	})
	if err != nil {
		removeObject(ctx, u.DB, u.Store, key, "upload rolled back")
		return nil, err
	}

	var owner model.User
	if err := u.DB.WithContext(ctx).Where("id = ?", n.UserID).First(&owner).Error; err != nil {
		return nil, err
	}
	v.User = &owner

	zap.L().Debug("Video uploaded", zap.String("id", v.ID), zap.String("key", key))
	return v, nil
}

// ObjectKey builds a unique bucket key that still carries the original file name
func ObjectKey(filename string) string {
	return fmt.Sprintf("videos/%s-%s", uuid.NewString(), sanitizeName(filename))
}

func sanitizeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "video"
	}

	if len(out) > maxKeyNameLength {
		out = out[len(out)-maxKeyNameLength:]
	}

	return out
}
