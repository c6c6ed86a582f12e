// Package imagestore provides the external object store holding listing
// images. The catalog only ever deletes images; download and upload happen
// in a separate pipeline.
package imagestore

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Store is the image store contract consumed by the deletion coordinator.
// Delete is idempotent: removing an image that is already gone is not an error.
type Store interface {
	Delete(ctx context.Context, reference string) error
}

// Config holds object store connection settings.
type Config struct {
	// Endpoint is the S3-compatible server address (e.g. "s3.eu-north-1.amazonaws.com").
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
	// Bucket holds the listing images.
	Bucket string `mapstructure:"bucket" yaml:"bucket"`
	// AccessKey and SecretKey authenticate against the store.
	AccessKey string `mapstructure:"access_key" yaml:"access_key"`
	SecretKey string `mapstructure:"secret_key" yaml:"secret_key"`
	// UseSSL enables HTTPS connections.
	UseSSL bool `mapstructure:"use_ssl" yaml:"use_ssl"`
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return errors.New("image store endpoint must be specified")
	}
	if c.Bucket == "" {
		return errors.New("image store bucket must be specified")
	}
	return nil
}

// ObjectStore implements Store on an S3-compatible backend.
type ObjectStore struct {
	client *minio.Client
	bucket string
}

// New creates an image store client.
func New(cfg Config) (*ObjectStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create image store client: %w", err)
	}

	return &ObjectStore{client: client, bucket: cfg.Bucket}, nil
}

// Delete removes a stored image. The reference may be a bare object key or a
// full URL pointing into the bucket; non-store URLs are skipped silently.
// A missing object is treated as success.
func (s *ObjectStore) Delete(ctx context.Context, reference string) error {
	key := s.objectKey(reference)
	if key == "" {
		return nil
	}

	err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" {
			return nil
		}
		return fmt.Errorf("failed to delete image %s: %w", key, err)
	}

	return nil
}

// objectKey reduces an image reference to the object key inside the bucket.
func (s *ObjectStore) objectKey(reference string) string {
	if !strings.Contains(reference, "://") {
		return reference
	}

	parsed, err := url.Parse(reference)
	if err != nil {
		return ""
	}

	// Full URLs must point at this bucket, either via the host
	// (bucket.endpoint style) or as the leading path segment.
	key := strings.TrimPrefix(parsed.Path, "/")
	if strings.HasPrefix(parsed.Host, s.bucket+".") {
		return key
	}
	if strings.HasPrefix(key, s.bucket+"/") {
		return strings.TrimPrefix(key, s.bucket+"/")
	}

	return ""
}
