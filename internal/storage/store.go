// Package storage wraps the object stores video payloads can live in
package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/viper"
)

// Store is implemented by every object store backend
type Store interface {
	// Put uploads size bytes from body under key
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// PresignGet returns a time limited URL that plays key inline
	PresignGet(ctx context.Context, key, contentType string, expiry time.Duration) (string, error)
	// URL returns the permanent, unsigned location of key
	URL(key string) string
}

// New builds the store selected by storage.type
func New(ctx context.Context) (Store, error) {
	switch t := viper.GetString("storage.type"); t {
	case "s3":
		return NewS3(ctx)
	case "minio":
		return NewMinio(ctx)
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage type %q", t)
	}
}
