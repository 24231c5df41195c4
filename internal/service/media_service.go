package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	cfg "github.com/renefichtmueller/ctxpost-sub002/configs"
)

// MediaStorage stores post attachments in an S3-compatible bucket and hands
// back the public URL recorded on the media asset row.
type MediaStorage struct {
	config cfg.Config
}

func NewMediaStorage(cfg cfg.Config) *MediaStorage {
	return &MediaStorage{config: cfg}
}

func (m *MediaStorage) client(ctx context.Context) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			m.config.Storage.AccessKey, m.config.Storage.SecretKey, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", m.config.Storage.AccountID))
	}), nil
}

func (m *MediaStorage) Upload(ctx context.Context, key string, file []byte, contentType string) (string, error) {
	client, err := m.client(ctx)
	if err != nil {
		return "", err
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(m.config.Storage.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(file),
		ContentType: aws.String(contentType),
	}

	if _, err := client.PutObject(ctx, input); err != nil {
		slog.Info(err.Error())
		return "", err
	}

	return fmt.Sprintf("%s/%s", m.config.Storage.PublicURL, key), nil
}
