package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/spk-college/techfest-service/internal/config"
)

// S3Uploader stores event banners and profile photos in one public bucket.
type S3Uploader struct {
	svc    *s3.S3
	bucket string
	region string
	logger *slog.Logger
}

func NewS3Uploader(cfg config.StorageConfig, logger *slog.Logger) (*S3Uploader, error) {
	if cfg.Bucket == "" || cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("S3 credentials or bucket not configured")
	}

	sess, err := session.NewSession(&aws.Config{
		Region:      aws.String(cfg.Region),
		Credentials: credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, ""),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &S3Uploader{
		svc:    s3.New(sess),
		bucket: cfg.Bucket,
		region: cfg.Region,
		logger: logger,
	}, nil
}

// Upload validates the image, streams it to S3 and returns the public URL.
func (u *S3Uploader) Upload(ctx context.Context, folder, filename, contentType string, size int64, body io.Reader) (string, error) {
	if err := ValidateImage(filename, contentType, size); err != nil {
		return "", err
	}

	buf := new(bytes.Buffer)
	n, err := io.Copy(buf, io.LimitReader(body, MaxImageSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	if n > MaxImageSize {
		return "", ErrImageTooLarge
	}

	key := ObjectKey(folder, filename)

	input := &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String(contentType),
	}

	if _, err := u.svc.PutObjectWithContext(ctx, input); err != nil {
		u.logger.Error("s3 upload failed", "key", key, "error", err)
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	url := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.bucket, u.region, key)
	u.logger.Info("file uploaded", "key", key, "size", n)
	return url, nil
}
