package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
)

// MinioConfig contains the settings required to talk to a MinIO/S3 endpoint.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Minio stores files as objects in a single bucket.
type Minio struct {
	client *minio.Client
	bucket string
	logger zerolog.Logger
}

// NewMinio connects to the endpoint and creates the bucket when it does not exist yet.
func NewMinio(ctx context.Context, cfg MinioConfig, logger zerolog.Logger) (*Minio, error) {
	if cfg.Endpoint == "" || cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("minio endpoint and credentials must be provided")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("minio bucket must be provided")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize minio: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
		logger.Info().Str("bucket", cfg.Bucket).Msg("created upload bucket")
	}

	return &Minio{
		client: client,
		bucket: cfg.Bucket,
		logger: logger.With().Str("component", "minio_storage").Logger(),
	}, nil
}

func (m *Minio) Save(ctx context.Context, name string, reader io.Reader, size int64, contentType string) error {
	info, err := m.client.PutObject(ctx, m.bucket, name, reader, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("failed to upload object: %w", err)
	}

	m.logger.Debug().Str("object", name).Int64("size", info.Size).Msg("object stored")
	return nil
}

func (m *Minio) Open(ctx context.Context, name string) (io.ReadCloser, ObjectInfo, error) {
	object, err := m.client.GetObject(ctx, m.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, ObjectInfo{}, m.translate(err)
	}

	stat, err := object.Stat()
	if err != nil {
		object.Close()
		return nil, ObjectInfo{}, m.translate(err)
	}

	return object, ObjectInfo{Name: name, Size: stat.Size, ContentType: stat.ContentType}, nil
}

// Remove deletes the object. Removing a missing key succeeds.
func (m *Minio) Remove(ctx context.Context, name string) error {
	err := m.client.RemoveObject(ctx, m.bucket, name, minio.RemoveObjectOptions{})
	if err == nil || errors.Is(m.translate(err), ErrObjectNotFound) {
		return nil
	}
	return fmt.Errorf("failed to remove object: %w", err)
}

func (m *Minio) translate(err error) error {
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound {
		return ErrObjectNotFound
	}
	return err
}
