package service

import (
	"context"
	"time"

	"piclips/video-api/internal/model"
	"piclips/video-api/internal/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// S3 can delete at most 1000 objects in one batch, sweep the same amount
const sweepBatch = 1000

// removeObject deletes key from the store. When that fails the key is
// written to the orphan log so the sweep can retry it later.
func removeObject(ctx context.Context, db *gorm.DB, store storage.Store, key, reason string) {
	ctx = context.WithoutCancel(ctx)

	err := store.Delete(ctx, key)
	if err == nil {
		return
	}

	zap.L().Warn("Failed to delete object, recording it as orphan", zap.String("key", key), zap.Error(err))

	if err := RecordOrphan(ctx, db, key, reason); err != nil {
		zap.L().Error("Failed to record orphan object", zap.String("key", key), zap.Error(err))
	}
}

// RecordOrphan logs key for deletion. Logging the same key twice is a no-op.
func RecordOrphan(ctx context.Context, db *gorm.DB, key, reason string) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.OrphanObject{
			ObjectKey: key,
			Reason:    reason,
		}).
		Error
}

// SweepOrphans retries every logged deletion. Keys that are gone now are
// dropped from the log, the rest get their attempt counter bumped.
func SweepOrphans(ctx context.Context, db *gorm.DB, store storage.Store) (cleaned int, err error) {
	var lastID uint

	for {
		var batch []model.OrphanObject

		err := db.WithContext(ctx).
			Where("id > ?", lastID).
			Order("id").
			Limit(sweepBatch).
			Find(&batch).
			Error
		if err != nil {
			return cleaned, err
		}

		if len(batch) == 0 {
			return cleaned, nil
		}

		for _, o := range batch {
			lastID = o.ID

			if err := store.Delete(ctx, o.ObjectKey); err != nil {
				now := time.Now()

				err = db.WithContext(ctx).
					Model(&o).
					Updates(map[string]any{
						"attempts":      gorm.Expr("attempts + 1"),
						"last_tried_at": &now,
					}).
					Error
				if err != nil {
					return cleaned, err
				}

				continue
			}

			if err := db.WithContext(ctx).Delete(&o).Error; err != nil {
				return cleaned, err
			}

			cleaned++
		}

		if len(batch) < sweepBatch {
			return cleaned, nil
		}
	}
}
