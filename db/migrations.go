package db

import (
	"errors"
	"fmt"

	"piclips/video-api/internal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type migration struct {
	name string
	run  func(tx *gorm.DB) error
}

// Data fixes for rows imported from the previous document store, where
// defaults were applied lazily by the application instead of the schema
var migrations = []migration{
	{
		name: "0001_placeholder_images",
		run: func(tx *gorm.DB) error {
			err := tx.Model(model.User{}).
				Where("avatar = '' OR avatar IS NULL").
				Update("avatar", model.PlaceholderImage).
				Error
			if err != nil {
				return err
			}

			return tx.Model(model.Video{}).
				Where("thumbnail = '' OR thumbnail IS NULL").
				Update("thumbnail", model.PlaceholderImage).
				Error
		},
	},
	{
		name: "0002_default_privacy",
		run: func(tx *gorm.DB) error {
			return tx.Model(model.Video{}).
				Where("privacy = '' OR privacy IS NULL").
				Update("privacy", model.PrivacyPublic).
				Error
		},
	},
}

func applyMigrations(db *gorm.DB) error {
	for _, m := range migrations {
		var applied model.Migration

		err := db.Where("name = ?", m.name).First(&applied).Error
		if err == nil {
			continue
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check migration %s, %w", m.name, err)
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := m.run(tx); err != nil {
				return err
			}

			return tx.Create(&model.Migration{Name: m.name}).Error
		})
		if err != nil {
			return fmt.Errorf("failed to apply migration %s, %w", m.name, err)
		}

		zap.L().Debug("Applied migration", zap.String("name", m.name))
	}

	return nil
}
