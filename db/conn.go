// Package db opens the database and keeps its schema up to date
package db

import (
	"errors"
	"fmt"
	"os"

	"piclips/video-api/internal/model"
	"piclips/video-api/pkg/util"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var models = []any{
	model.User{},
	model.Follow{},
	model.Video{},
	model.VideoLike{},
	model.Comment{},
	model.Interaction{},
	model.Tip{},
	model.OrphanObject{},
	model.Migration{},
}

// New opens the database configured under db.* and migrates it
func New() (*gorm.DB, error) {
	driver := viper.GetString("db.driver")
	dsn := viper.GetString("db.dsn")

	var dialector gorm.Dialector

	switch driver {
	case "postgres":
		if u := viper.GetString("db.username"); u != "" {
			dsn = fmt.Sprintf("%s user=%s password=%s", dsn, u, viper.GetString("db.password"))
		}
		dialector = postgres.Open(dsn)
	case "sqlite":
		// If running in a docker container don't allow the sqlite file to be created.
		// The host should instead mount it using volumes
		if util.IsRunningInDocker() {
			if _, err := os.Stat(dsn); errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("SQLite database file not mounted, please use docker volumes to mount it to /app/%s", dsn)
			}
		}
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := Open(dialector)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s database, %w", driver, err)
	}

	zap.L().Info("Database ready", zap.String("driver", driver))
	return db, nil
}

// Open connects through an already built dialector, migrates the schema
// and applies pending data migrations
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(models...); err != nil {
		return nil, fmt.Errorf("failed to automigrate tables, %w", err)
	}

	if err := applyMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}
