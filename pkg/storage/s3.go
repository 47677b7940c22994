package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/vrisetechno/vrise-api/config"
	"github.com/vrisetechno/vrise-api/pkg/logger"
	"github.com/vrisetechno/vrise-api/pkg/metrics"
	"go.uber.org/zap"
)

const (
	defaultRegion = "us-east-1"
	// MaxObjectSize matches the largest request body the API accepts
	MaxObjectSize = 15 * 1024 * 1024
)

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// objectPutter is the part of the S3 API the client relies on
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Client writes objects to an S3-compatible bucket
type Client struct {
	s3Client   objectPutter
	bucketName string
	endpoint   string
}

// NewClient creates a new S3-compatible storage client.
// An empty endpoint targets AWS itself; anything else (MinIO, R2, Spaces) uses path-style addressing.
func NewClient(cfg config.ResumeStorageConfig) (*Client, error) {
	if cfg.BucketName == "" {
		return nil, fmt.Errorf("bucket name is required")
	}

	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}

	opts := s3.Options{
		Region: region,
		Credentials: credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		),
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
		opts.UsePathStyle = true
	}

	logger.Info("Object storage client initialized",
		zap.String("bucket", cfg.BucketName),
		zap.String("endpoint", cfg.Endpoint),
		zap.String("region", region),
	)

	return &Client{
		s3Client:   s3.New(opts),
		bucketName: cfg.BucketName,
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
	}, nil
}

// UploadObject stores data under key and returns the object location
func (c *Client) UploadObject(ctx context.Context, key, contentType string, data []byte) (string, error) {
	start := time.Now()
	operation := "putObject"

	if err := ValidateObjectSize(len(data)); err != nil {
		metrics.RecordStorageOperation(operation, "error", metrics.MeasureDuration(start))
		return "", err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := c.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucketName),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})

	duration := metrics.MeasureDuration(start)

	if err != nil {
		metrics.RecordStorageOperation(operation, "error", duration)
		logger.LogAPICall("object_storage", operation, "error", duration,
			zap.Error(err),
			zap.String("key", key),
		)
		return "", fmt.Errorf("failed to upload object %s: %w", key, err)
	}

	metrics.RecordStorageOperation(operation, "success", duration)
	logger.LogAPICall("object_storage", operation, "success", duration,
		zap.String("key", key),
		zap.Int("size_bytes", len(data)),
	)

	return c.location(key), nil
}

func (c *Client) location(key string) string {
	if c.endpoint == "" {
		return fmt.Sprintf("s3://%s/%s", c.bucketName, key)
	}
	return fmt.Sprintf("%s/%s/%s", c.endpoint, c.bucketName, key)
}

// ObjectKey joins path segments into a bucket key, replacing characters that
// are awkward in URLs. Empty segments are dropped.
func ObjectKey(segments ...string) string {
	cleaned := make([]string, 0, len(segments))
	for _, segment := range segments {
		segment = path.Base(strings.TrimSpace(segment))
		segment = unsafeKeyChars.ReplaceAllString(segment, "_")
		if segment == "" || segment == "." || segment == ".." {
			continue
		}
		cleaned = append(cleaned, segment)
	}
	return strings.Join(cleaned, "/")
}

// ValidateObjectSize rejects empty or oversized uploads
func ValidateObjectSize(size int) error {
	if size == 0 {
		return fmt.Errorf("object is empty")
	}
	if size > MaxObjectSize {
		return fmt.Errorf("object too large: %d bytes (max %d bytes)", size, MaxObjectSize)
	}
	return nil
}
