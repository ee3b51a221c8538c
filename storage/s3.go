package storage

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmrmediateam/eagan-luxury-sub001/config"
)

// S3MediaSigner turns mirrored media storage keys into browser URLs.
// With a public base URL the object is linked directly, otherwise a
// time-limited presigned GET is issued.
type S3MediaSigner struct {
	presign *s3.PresignClient
	cfg     config.S3Config
}

func NewS3MediaSigner(ctx context.Context, cfg config.S3Config, hc *http.Client) (*S3MediaSigner, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	if hc != nil {
		opts = append(opts, awsconfig.WithHTTPClient(hc))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	var client *s3.Client
	if cfg.Endpoint != "" {
		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	} else {
		client = s3.NewFromConfig(awsCfg)
	}

	if cfg.PresignTTL <= 0 {
		cfg.PresignTTL = time.Hour
	}

	return &S3MediaSigner{
		presign: s3.NewPresignClient(client),
		cfg:     cfg,
	}, nil
}

// SignedURL returns a URL the browser can load for key.
func (s *S3MediaSigner) SignedURL(ctx context.Context, key string) (string, error) {
	if u := s.PublicURL(key); u != "" {
		return u, nil
	}
	return s.PresignGet(ctx, key)
}

func (s *S3MediaSigner) PresignGet(ctx context.Context, key string) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.cfg.PresignTTL))
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return req.URL, nil
}

// PublicURL joins key onto the configured public base. Empty when the
// bucket is private.
func (s *S3MediaSigner) PublicURL(key string) string {
	if s.cfg.PublicBaseURL == "" {
		return ""
	}
	return strings.TrimSuffix(s.cfg.PublicBaseURL, "/") + "/" + strings.TrimPrefix(key, "/")
}
