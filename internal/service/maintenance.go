package service

import (
	"context"
	"time"

	"piclips/video-api/internal/model"
	"piclips/video-api/internal/storage"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maintenanceTimeout = 10 * time.Minute

// Recount recomputes every user's uploaded video and received like counters
// from the videos and video_likes tables
func Recount(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.User{}).
			Where("1 = 1").
			Updates(map[string]any{
				"uploaded_videos_count": gorm.Expr("(SELECT COUNT(*) FROM videos WHERE videos.user_id = users.id)"),
				"likes":                 gorm.Expr("(SELECT COUNT(*) FROM video_likes JOIN videos ON videos.id = video_likes.video_id WHERE videos.user_id = users.id)"),
			})
		n = res.RowsAffected

		return res.Error
	})

	return n, err
}

// Maintenance runs Recount and SweepOrphans on a cron schedule
type Maintenance struct {
	DB    *gorm.DB
	Store storage.Store

	cron *cron.Cron
}

func NewMaintenance(db *gorm.DB, s storage.Store) *Maintenance {
	return &Maintenance{DB: db, Store: s}
}

// RunOnce runs both jobs, logging failures instead of returning them
func (m *Maintenance) RunOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, maintenanceTimeout)
	defer cancel()

	n, err := Recount(ctx, m.DB)
	if err != nil {
		zap.L().Error("Failed to recount user counters", zap.Error(err))
	} else {
		zap.L().Debug("Recounted user counters", zap.Int64("users", n))
	}

	cleaned, err := SweepOrphans(ctx, m.DB, m.Store)
	if err != nil {
		zap.L().Error("Failed to sweep orphan objects", zap.Error(err))
	} else if cleaned > 0 {
		zap.L().Info("Removed orphan objects", zap.Int("count", cleaned))
	}
}

// Start schedules RunOnce. An empty schedule leaves maintenance disabled.
func (m *Maintenance) Start(schedule string) error {
	if schedule == "" {
		zap.L().Info("Maintenance schedule empty, not scheduling jobs")
		return nil
	}

	m.cron = cron.New()

	_, err := m.cron.AddFunc(schedule, func() {
		m.RunOnce(context.Background())
	})
	if err != nil {
		return err
	}

	m.cron.Start()
	zap.L().Debug("Maintenance attached", zap.String("schedule", schedule))

	return nil
}

// Stop waits for a running job to finish and stops the scheduler
func (m *Maintenance) Stop() {
	if m.cron == nil {
		return
	}

	<-m.cron.Stop().Done()
}
