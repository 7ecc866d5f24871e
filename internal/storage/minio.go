package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"webshop/internal/apperr"
	"webshop/internal/config"
	"webshop/internal/core"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// PresignedURLTTL is how long image URLs handed to clients stay valid.
const PresignedURLTTL = 15 * time.Minute

// MinIOStorage keeps product images in a single bucket.
type MinIOStorage struct {
	client *minio.Client
	bucket string
}

// NewMinIOStorage creates the client; it does not contact the server.
func NewMinIOStorage(cfg config.Config) (*MinIOStorage, error) {
	if !cfg.MinioEnabled() {
		return nil, fmt.Errorf("MinIO is not configured")
	}

	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	return &MinIOStorage{client: client, bucket: cfg.MinioBucket}, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
func (s *MinIOStorage) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	return nil
}

func (s *MinIOStorage) Upload(ctx context.Context, key, contentType string, r io.Reader, size int64) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return apperr.Wrap(apperr.KindUnavailable, "image storage is unavailable", err).WithOp("storage.upload")
	}
	return nil
}

// Download returns the object body. The caller closes it.
func (s *MinIOStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, storageError("storage.download", err)
	}
	// GetObject is lazy; Stat surfaces a missing key before the response starts.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, storageError("storage.download", err)
	}
	return obj, nil
}

func (s *MinIOStorage) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return storageError("storage.delete", err)
	}
	return nil
}

func (s *MinIOStorage) PresignedURL(ctx context.Context, key string) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, PresignedURLTTL, make(url.Values))
	if err != nil {
		return "", storageError("storage.presign", err)
	}
	return u.String(), nil
}

func storageError(op string, err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return apperr.Wrap(apperr.KindNotFound, "image content not found", err).WithOp(op)
	}
	return apperr.Wrap(apperr.KindUnavailable, "image storage is unavailable", err).WithOp(op)
}

// Disabled stands in when no object storage is configured; every call fails
// with Unavailable so image endpoints answer 503 instead of panicking.
type Disabled struct{}

var _ core.ObjectStorage = Disabled{}

func (Disabled) Upload(context.Context, string, string, io.Reader, int64) error {
	return apperr.Unavailable("image storage is not configured")
}

func (Disabled) Download(context.Context, string) (io.ReadCloser, error) {
	return nil, apperr.Unavailable("image storage is not configured")
}

func (Disabled) Delete(context.Context, string) error {
	return apperr.Unavailable("image storage is not configured")
}

// PresignedURL returns an empty URL so that listings still work without storage.
func (Disabled) PresignedURL(context.Context, string) (string, error) {
	return "", nil
}
