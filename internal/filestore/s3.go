package filestore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"protekt/pkg/platform/circuit"
	"protekt/pkg/platform/sentinel"
)

// S3Config configures the S3 backend. Endpoint is set for S3-compatible
// services (MinIO, Backblaze B2) and switches to path-style addressing.
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	BasePath        string
	AccessKeyID     string
	SecretAccessKey string
}

// S3Storage implements Storage on an S3 bucket. Repeated backend failures open
// a circuit breaker so callers fail fast instead of waiting on timeouts.
type S3Storage struct {
	client   *s3.Client
	presign  *s3.PresignClient
	bucket   string
	basePath string
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

type S3Option func(*S3Storage)

func WithLogger(logger *slog.Logger) S3Option {
	return func(s *S3Storage) {
		s.logger = logger
	}
}

func WithBreaker(b *circuit.Breaker) S3Option {
	return func(s *S3Storage) {
		s.breaker = b
	}
}

func NewS3(ctx context.Context, cfg S3Config, opts ...S3Option) (*S3Storage, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	s := &S3Storage{
		client:   client,
		presign:  s3.NewPresignClient(client),
		bucket:   cfg.Bucket,
		basePath: cfg.BasePath,
		breaker:  circuit.New("object-storage"),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *S3Storage) Upload(ctx context.Context, file Upload, folder string) (string, error) {
	key := ObjectKey(s.basePath, folder, file.Name)
	body, size, err := sizedBody(file)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", file.Name, err)
	}
	err = s.call(ctx, "upload", func() error {
		input := &s3.PutObjectInput{
			Bucket:        aws.String(s.bucket),
			Key:           aws.String(key),
			Body:          body,
			ContentLength: aws.Int64(size),
			Metadata:      map[string]string{"original-filename": file.Name},
		}
		if file.ContentType != "" {
			input.ContentType = aws.String(file.ContentType)
		}
		_, err := s.client.PutObject(ctx, input)
		return err
	})
	if err != nil {
		return "", err
	}
	return key, nil
}

func (s *S3Storage) Sign(ctx context.Context, key string, ttl time.Duration) (string, error) {
	var url string
	err := s.call(ctx, "sign", func() error {
		req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		}, s3.WithPresignExpires(ttl))
		if err != nil {
			return err
		}
		url = req.URL
		return nil
	})
	if err != nil {
		return "", err
	}
	return url, nil
}

func (s *S3Storage) Delete(ctx context.Context, key string) error {
	return s.call(ctx, "delete", func() error {
		_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		return err
	})
}

// sizedBody returns the body to send with its length. A non-positive Size is
// unknown: seekable bodies are measured, others are read into memory.
func sizedBody(file Upload) (io.Reader, int64, error) {
	switch body := file.Body.(type) {
	case nil:
		return bytes.NewReader(nil), 0, nil
	case io.ReadSeeker:
		if file.Size > 0 {
			return body, file.Size, nil
		}
		cur, err := body.Seek(0, io.SeekCurrent)
		if err != nil {
			return nil, 0, err
		}
		end, err := body.Seek(0, io.SeekEnd)
		if err != nil {
			return nil, 0, err
		}
		if _, err := body.Seek(cur, io.SeekStart); err != nil {
			return nil, 0, err
		}
		return body, end - cur, nil
	default:
		if file.Size > 0 {
			return body, file.Size, nil
		}
		data, err := io.ReadAll(body)
		if err != nil {
			return nil, 0, err
		}
		return bytes.NewReader(data), int64(len(data)), nil
	}
}

// call runs op through the breaker and maps failures onto sentinel.ErrUnavailable.
func (s *S3Storage) call(ctx context.Context, op string, fn func() error) error {
	if !s.breaker.Allow(time.Now()) {
		return fmt.Errorf("%w: object storage %s: circuit open", sentinel.ErrUnavailable, op)
	}
	if err := fn(); err != nil {
		if _, change := s.breaker.RecordFailure(); change.Opened {
			s.logger.WarnContext(ctx, "object storage circuit opened", "operation", op, "error", err)
		}
		return fmt.Errorf("%w: object storage %s: %v", sentinel.ErrUnavailable, op, err)
	}
	if _, change := s.breaker.RecordSuccess(); change.Closed {
		s.logger.InfoContext(ctx, "object storage circuit closed", "operation", op)
	}
	return nil
}
