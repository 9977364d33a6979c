package app

import (
	"context"
	"fmt"
	"path/filepath"

	"piclips/video-api/config"
	"piclips/video-api/db"
	"piclips/video-api/internal"
	"piclips/video-api/internal/identity"
	"piclips/video-api/internal/service"
	"piclips/video-api/internal/storage"
	"piclips/video-api/pkg/security"

	"github.com/spf13/viper"
)

// NewDeps connects everything the handlers need using the loaded config
func NewDeps(ctx context.Context) (*internal.Deps, error) {
	database, err := db.New()
	if err != nil {
		return nil, err
	}

	store, err := storage.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize object storage, %w", err)
	}

	avatars, err := storage.NewLocalDir(filepath.Join(viper.GetString("upload.dir"), "avatars"), "/uploads/avatars")
	if err != nil {
		return nil, err
	}

	return &internal.Deps{
		DB:       database,
		Store:    store,
		Avatars:  avatars,
		Identity: identity.NewFromConfig(),
		Sessions: security.NewSessions(viper.GetString("jwt.secret"), config.Duration("jwt.expiry")),
		Uploader: service.NewUploader(database, store),
	}, nil
}
