// Package storage handles crosshair image uploads to S3-compatible object storage.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"
	"time"

	appconfig "reticle/internal/config"
	"reticle/internal/models"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
)

const (
	// MaxImageSize is the largest accepted crosshair image upload.
	MaxImageSize = 5 * 1024 * 1024

	// MaxImageDimension caps either side of an uploaded image.
	MaxImageDimension = 4096
)

var allowedContentTypes = map[string]struct {
	ext    string
	format string
}{
	"image/png":  {ext: ".png", format: "png"},
	"image/jpeg": {ext: ".jpg", format: "jpeg"},
	"image/webp": {ext: ".webp", format: "webp"},
}

// ObjectStorage stores and removes crosshair images.
type ObjectStorage interface {
	// Upload stores the image and returns its object key and public URL.
	Upload(ctx context.Context, userID uint, contentType string, data []byte) (key string, url string, err error)
	Delete(ctx context.Context, key string) error
}

type s3Storage struct {
	client    *s3.Client
	bucket    string
	region    string
	publicURL string
}

// NewS3Storage builds an ObjectStorage backed by the configured S3 bucket.
// Returns nil when storage credentials are absent; image upload is then
// disabled and crosshairs are text-only.
func NewS3Storage(ctx context.Context, cfg *appconfig.Config) (ObjectStorage, error) {
	if !cfg.StorageConfigured() {
		return nil, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKeyID, cfg.S3SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load S3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = &cfg.S3Endpoint
		}
		// MinIO and other self-hosted endpoints need path-style addressing.
		o.UsePathStyle = cfg.S3ForcePathStyle
	})

	return &s3Storage{
		client:    client,
		bucket:    cfg.S3Bucket,
		region:    cfg.S3Region,
		publicURL: strings.TrimSuffix(cfg.S3PublicURL, "/"),
	}, nil
}

func (s *s3Storage) Upload(ctx context.Context, userID uint, contentType string, data []byte) (string, string, error) {
	if err := ValidateImage(contentType, data); err != nil {
		return "", "", err
	}

	key := ObjectKey(userID, contentType)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		Body:        bytes.NewReader(data),
		ContentType: &contentType,
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to upload image: %w", err)
	}

	return key, s.PublicURL(key), nil
}

func (s *s3Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	})
	if err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}

// PublicURL resolves the public URL for an object key, preferring the
// configured CDN/public base over the standard bucket URL.
func (s *s3Storage) PublicURL(key string) string {
	if s.publicURL != "" {
		return fmt.Sprintf("%s/%s", s.publicURL, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

// ValidateImage checks the declared type and size limits, then decodes the
// image header to confirm the bytes really are that format and the
// dimensions are sane. Only the header is parsed, not the full image.
func ValidateImage(contentType string, data []byte) error {
	allowed, ok := allowedContentTypes[contentType]
	if !ok {
		return models.NewValidationError("image must be PNG, JPEG or WebP")
	}
	if len(data) == 0 {
		return models.NewValidationError("image is empty")
	}
	if len(data) > MaxImageSize {
		return models.NewValidationError("image exceeds the 5MB size limit")
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || format != allowed.format {
		return models.NewValidationError("image data does not match its declared type")
	}
	if cfg.Width > MaxImageDimension || cfg.Height > MaxImageDimension {
		return models.NewValidationError(fmt.Sprintf("image exceeds %dpx in width or height", MaxImageDimension))
	}
	return nil
}

// ObjectKey builds the storage key for a user's image upload. Keys are
// namespaced per user and never reused, so overwrites are impossible.
func ObjectKey(userID uint, contentType string) string {
	ext := allowedContentTypes[contentType].ext
	return fmt.Sprintf("crosshairs/%d/%d-%s%s", userID, time.Now().UnixMilli(), uuid.NewString(), ext)
}
