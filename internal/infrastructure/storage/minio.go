package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/salescribe-team/salescribe/pkg/config"
)

// AudioArchive stores inbound voice-note audio in object storage. Archival
// is best effort: callers treat failures as non-fatal.
type AudioArchive struct {
	client *minio.Client
	bucket string
}

// NewAudioArchive creates a MinIO-backed audio archive
func NewAudioArchive(cfg *config.StorageConfig) (*AudioArchive, error) {
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	archive := &AudioArchive{
		client: minioClient,
		bucket: cfg.BucketName,
	}

	ctx := context.Background()
	if err := archive.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize bucket: %w", err)
	}

	return archive, nil
}

// ensureBucket creates the bucket when it does not exist yet
func (a *AudioArchive) ensureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}
	return nil
}

// StoreVoiceNote archives audio bytes under a media-id keyed object name
// and returns the object key.
func (a *AudioArchive) StoreVoiceNote(ctx context.Context, mediaID string, audio []byte, contentType string) (string, error) {
	objectName := fmt.Sprintf("voice-notes/%s/%s", time.Now().UTC().Format("2006-01-02"), mediaID)
	_, err := a.client.PutObject(ctx, a.bucket, objectName, bytes.NewReader(audio), int64(len(audio)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload voice note: %w", err)
	}
	return objectName, nil
}

// PresignedURL returns a time-limited URL for an archived object
func (a *AudioArchive) PresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	url, err := a.client.PresignedGetObject(ctx, a.bucket, objectName, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return url.String(), nil
}
