package internal

import (
	"piclips/video-api/internal/identity"
	"piclips/video-api/internal/service"
	"piclips/video-api/internal/storage"
	"piclips/video-api/pkg/security"

	"gorm.io/gorm"
)

// Deps is built once at startup and handed to every handler
type Deps struct {
	DB       *gorm.DB
	Store    storage.Store
	Avatars  *storage.LocalDir
	Identity identity.Verifier
	Sessions *security.Sessions
	Uploader *service.Uploader
}
