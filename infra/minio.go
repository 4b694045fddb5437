package infra

import (
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/tnqbao/gau-drs-provider/config"
)

// MinioClient mirrors finalized payloads into an S3-compatible bucket so
// records can expose an s3 access method. The mirror is optional: when no
// endpoint is configured InitMinioClient returns an error and the service
// runs without it.
type MinioClient struct {
	Client   *minio.Client
	Endpoint string
	Bucket   string
}

func InitMinioClient(cfg *config.EnvConfig) (*MinioClient, error) {
	if cfg.Minio.Endpoint == "" {
		return nil, fmt.Errorf("MinIO endpoint is not configured")
	}

	client, err := minio.New(cfg.Minio.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Minio.RootUser, cfg.Minio.RootPassword, ""),
		Secure: cfg.Minio.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MinIO client: %w", err)
	}

	return &MinioClient{
		Client:   client,
		Endpoint: cfg.Minio.Endpoint,
		Bucket:   cfg.Minio.MirrorBucket,
	}, nil
}

func (m *MinioClient) EnsureMirrorBucket(ctx context.Context) error {
	exists, err := m.Client.BucketExists(ctx, m.Bucket)
	if err != nil {
		return fmt.Errorf("failed to check mirror bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := m.Client.MakeBucket(ctx, m.Bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create mirror bucket: %w", err)
	}
	return nil
}

// MirrorFile uploads one payload file under {object_id}/{name} and returns
// the s3 URL of the mirrored object.
func (m *MinioClient) MirrorFile(ctx context.Context, objectID, filePath, name, contentType string) (string, error) {
	key := objectID + "/" + name
	_, err := m.Client.FPutObject(ctx, m.Bucket, key, filePath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to mirror %s: %w", key, err)
	}
	return fmt.Sprintf("s3://%s/%s", m.Bucket, key), nil
}

// RemoveMirrored deletes everything mirrored under the object's prefix.
func (m *MinioClient) RemoveMirrored(ctx context.Context, objectID string) error {
	prefix := objectID + "/"
	for obj := range m.Client.ListObjects(ctx, m.Bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return fmt.Errorf("failed to list mirrored objects for %s: %w", objectID, obj.Err)
		}
		if err := m.Client.RemoveObject(ctx, m.Bucket, obj.Key, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("failed to remove mirrored object %s: %w", obj.Key, err)
		}
	}
	return nil
}
