// Package blobstore wraps an S3-compatible object store for the Media
// Authorization Service, grounded on techagentng-deploy's services/mediaService.go
// S3 client construction (aws-sdk-go-v2 config/credentials/s3), restricted
// here to presigned-URL issuance only — the blob store itself is out of
// scope (§1); Pulse only signs URLs, it never stores bytes.
package blobstore

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/pulsechat/pulse/internal/config"
)

// Client issues signed upload/download URLs against one bucket.
type Client struct {
	presign *s3.PresignClient
	bucket  string
}

// New builds a presign client from static credentials the way
// techagentng-deploy's mediaService constructs its S3 client, substituting
// awsconfig.LoadDefaultConfig + a StaticCredentialsProvider for the
// ambient-credential-chain case so this works identically against AWS S3
// and any S3-compatible endpoint (e.g. for local development).
func New(ctx context.Context, cfg *config.MediaConfig) (*Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyId != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyId, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &Client{
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
	}, nil
}

// CreateSignedUploadUrl matches the blob-store contract
// `createSignedUploadUrl(path, {upsert:false})` -> `{signedUrl, path, token}`;
// the token is generated by the caller (Media Authorization Service), not
// here — this method only returns the signed URL.
func (c *Client) CreateSignedUploadUrl(ctx context.Context, path string, ttl time.Duration) (string, error) {
	req, err := c.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(path),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("presign upload: %w", err)
	}
	return req.URL, nil
}

// CreateSignedDownloadUrl matches `createSignedDownloadUrl(path, ttlSeconds)`.
func (c *Client) CreateSignedDownloadUrl(ctx context.Context, path string, ttl time.Duration) (string, error) {
	req, err := c.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(path),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("presign download: %w", err)
	}
	return req.URL, nil
}
