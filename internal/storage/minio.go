package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type MinioClient struct {
	C      *minio.Client
	Bucket string
	base   string
}

// NewMinio connects to a MinIO server and creates the bucket if it's missing
func NewMinio(ctx context.Context) (*MinioClient, error) {
	endpoint := viper.GetString("minio.endpoint")
	useSSL := viper.GetBool("minio.use_ssl")
	bucket := viper.GetString("minio.bucket")

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(viper.GetString("minio.access_key"), viper.GetString("minio.secret_key"), ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client, %w", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check if bucket exists, %w", err)
	}

	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket '%s', %w", bucket, err)
		}

		zap.L().Info("Created MinIO bucket", zap.String("bucket", bucket))
	}

	scheme := "http"
	if useSSL {
		scheme = "https"
	}

	return &MinioClient{
		C:      client,
		Bucket: bucket,
		base:   fmt.Sprintf("%s://%s/%s", scheme, endpoint, bucket),
	}, nil
}

func (m *MinioClient) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	_, err := m.C.PutObject(ctx, m.Bucket, key, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s to MinIO, %w", key, err)
	}

	return nil
}

func (m *MinioClient) Delete(ctx context.Context, key string) error {
	if err := m.C.RemoveObject(ctx, m.Bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete %s from MinIO, %w", key, err)
	}

	return nil
}

func (m *MinioClient) PresignGet(ctx context.Context, key, contentType string, expiry time.Duration) (string, error) {
	params := url.Values{}
	params.Set("response-content-type", contentType)
	params.Set("response-content-disposition", "inline")

	u, err := m.C.PresignedGetObject(ctx, m.Bucket, key, expiry, params)
	if err != nil {
		return "", fmt.Errorf("failed to presign %s, %w", key, err)
	}

	return u.String(), nil
}

func (m *MinioClient) URL(key string) string {
	return m.base + "/" + key
}
