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

	config "github.com/socialorchestrator/api/configs"
)

// StorageService uploads media files to an S3-compatible bucket
// (Cloudflare R2) and hands back publicly reachable URLs. Providers fetch
// media by URL at publish time, so objects must be public-read.
type StorageService struct {
	config config.Config
}

func NewStorageService(cfg config.Config) *StorageService {
	return &StorageService{config: cfg}
}

func (r *StorageService) client(ctx context.Context) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			r.config.Storage.AccessKey, r.config.Storage.SecretKey, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", r.config.Storage.AccountID))
	}), nil
}

// Upload stores the file under key and returns its public URL.
func (r *StorageService) Upload(ctx context.Context, key string, file []byte, contentType string) (string, error) {
	client, err := r.client(ctx)
	if err != nil {
		return "", err
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(r.config.Storage.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(file),
		ContentType: aws.String(contentType),
	}

	if _, err := client.PutObject(ctx, input); err != nil {
		slog.Info(err.Error())
		return "", err
	}

	return fmt.Sprintf("%s/%s", r.config.Storage.PublicURL, key), nil
}
