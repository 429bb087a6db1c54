package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"artmarket/internal/config"
)

// Keys embed a fresh UUID, so an object never changes once written.
const immutableCacheControl = "public, max-age=31536000, immutable"

type minioStorage struct {
	client *minio.Client
	// signer presigns against the public endpoint. With a fixed region it never
	// calls out, so it works even when that host is unreachable from here.
	signer *minio.Client
	bucket string
}

// NewMinIO connects to an S3-compatible bucket, creating it when missing.
func NewMinIO(ctx context.Context, cfg config.MinIOConfig, log *zap.Logger) (Storage, error) {
	ms, err := newMinIOClients(cfg)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := ms.client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := ms.client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
		log.Info("bucket_created", zap.String("bucket", cfg.Bucket), zap.String("region", cfg.Region))
	}
	log.Info("object_storage_ready",
		zap.String("endpoint", cfg.Endpoint),
		zap.String("public_endpoint", ms.signer.EndpointURL().Host),
		zap.String("bucket", cfg.Bucket),
	)
	return ms, nil
}

func newMinIOClients(cfg config.MinIOConfig) (*minioStorage, error) {
	var missing []error
	if cfg.Endpoint == "" {
		missing = append(missing, errors.New("minio endpoint is required"))
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		missing = append(missing, errors.New("minio credentials are required"))
	}
	if cfg.Bucket == "" {
		missing = append(missing, errors.New("minio bucket is required"))
	}
	if err := errors.Join(missing...); err != nil {
		return nil, err
	}

	open := func(endpoint string) (*minio.Client, error) {
		cli, err := minio.New(endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
			Secure: cfg.UseSSL,
			Region: cfg.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("create minio client for %s: %w", endpoint, err)
		}
		return cli, nil
	}

	cli, err := open(cfg.Endpoint)
	if err != nil {
		return nil, err
	}
	ms := &minioStorage{client: cli, signer: cli, bucket: cfg.Bucket}
	if cfg.PublicEndpoint != "" && cfg.PublicEndpoint != cfg.Endpoint {
		if ms.signer, err = open(cfg.PublicEndpoint); err != nil {
			return nil, err
		}
	}
	return ms, nil
}

func (m *minioStorage) Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	info, err := m.client.PutObject(ctx, m.bucket, key, r, opt.Size, minio.PutObjectOptions{
		ContentType:        opt.ContentType,
		ContentDisposition: "inline",
		CacheControl:       immutableCacheControl,
		UserMetadata:       opt.Metadata,
	})
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("put %s: %w", key, err)
	}
	return ObjectInfo{
		Key:          key,
		Size:         info.Size,
		ETag:         info.ETag,
		ContentType:  opt.ContentType,
		LastModified: info.LastModified,
		Metadata:     opt.Metadata,
	}, nil
}

// Delete is idempotent: a key that is already gone is not an error, since
// cleanup of replaced images may race with an earlier attempt.
func (m *minioStorage) Delete(ctx context.Context, key string) error {
	err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{})
	if err != nil && minio.ToErrorResponse(err).Code != "NoSuchKey" {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (m *minioStorage) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	u, err := m.signer.PresignedGetObject(ctx, m.bucket, key, expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return u.String(), nil
}
