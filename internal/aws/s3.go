package aws

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/USSTM/facility-portal/internal/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// AuditBucket stores audit log snapshots.
type AuditBucket struct {
	client *s3.Client
	bucket string
}

func NewAuditBucket(ctx context.Context, cfg config.AWSConfig) (*AuditBucket, error) {
	awsCfg, err := LoadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewAuditBucketFromConfig(awsCfg, cfg.EndpointURL, cfg.AuditBucket), nil
}

func NewAuditBucketFromConfig(awsCfg aws.Config, endpoint, bucket string) *AuditBucket {
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true // required for localstack
		}
	})

	return &AuditBucket{
		client: client,
		bucket: bucket,
	}
}

func (b *AuditBucket) Name() string {
	return b.bucket
}

func (b *AuditBucket) PutObject(ctx context.Context, key string, body io.Reader, contentType string) error {
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s to S3: %w", key, err)
	}
	return nil
}

func (b *AuditBucket) GetObject(ctx context.Context, key string) (io.ReadCloser, error) {
	output, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get %s from S3: %w", key, err)
	}
	return output.Body, nil
}

// PresignGet returns a time-limited download link for an exported snapshot.
func (b *AuditBucket) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	req, err := s3.NewPresignClient(b.client).PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return req.URL, nil
}

// EnsureBucket creates the bucket unless this account already owns it.
func (b *AuditBucket) EnsureBucket(ctx context.Context) error {
	_, err := b.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(b.bucket),
	})
	var owned *types.BucketAlreadyOwnedByYou
	if err != nil && !errors.As(err, &owned) {
		return fmt.Errorf("creating bucket %s: %w", b.bucket, err)
	}
	return nil
}

func (b *AuditBucket) ListSnapshots(ctx context.Context) ([]string, error) {
	output, err := b.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(b.bucket),
		Prefix: aws.String("audit/"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list objects: %w", err)
	}

	keys := make([]string, 0, len(output.Contents))
	for _, obj := range output.Contents {
		keys = append(keys, aws.ToString(obj.Key))
	}
	return keys, nil
}
