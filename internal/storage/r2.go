package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// R2Evidence stores payment screenshots in a Cloudflare R2 (S3 compatible) bucket.
type R2Evidence struct {
	client  objectPutter
	bucket  string
	baseURL string
	prefix  string
}

func NewR2Evidence(ctx context.Context, endpoint, accessKey, secretKey, bucket, baseURL string) (*R2Evidence, error) {
	cfg, err := config.LoadDefaultConfig(
		ctx,
		config.WithRegion("auto"),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				accessKey,
				secretKey,
				"",
			),
		),
	)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return &R2Evidence{
		client:  client,
		bucket:  bucket,
		baseURL: baseURL,
		prefix:  "payments",
	}, nil
}

// Relocate uploads the artifact and deletes the temp file only after
// PutObject has been acknowledged.
func (r *R2Evidence) Relocate(ctx context.Context, a *Artifact) (string, error) {
	f, err := os.Open(a.TempPath)
	if err != nil {
		return "", fmt.Errorf("open temp evidence: %w", err)
	}

	key := fmt.Sprintf("%s/%s", r.prefix, filepath.Base(a.TempPath))
	contentType := a.MimeType

	_, err = r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        &r.bucket,
		Key:           &key,
		Body:          f,
		ContentType:   &contentType,
		ContentLength: aws.Int64(a.SizeBytes),
	})
	f.Close()
	if err != nil {
		return "", fmt.Errorf("put evidence object: %w", err)
	}

	if err := os.Remove(a.TempPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("remove temp after upload: %w", err)
	}

	if r.baseURL == "" {
		return fmt.Sprintf("r2://%s/%s", r.bucket, key), nil
	}
	return fmt.Sprintf("%s/%s", r.baseURL, key), nil
}
