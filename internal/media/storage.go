package media

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/BruksfildServices01/nail-scheduler/internal/config"
)

// Storage persists an object and returns the URL it can be fetched from.
type Storage interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// AvatarKey builds a fresh object key so browsers never see a stale avatar.
func AvatarKey(masterID uint) string {
	return fmt.Sprintf("avatars/%d/%s.webp", masterID, uuid.NewString())
}

type S3Storage struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

func NewS3Storage(cfg *config.Config) *S3Storage {
	opts := s3.Options{
		Region: cfg.S3Region,
	}
	if cfg.S3AccessKey != "" {
		opts.Credentials = aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		)
	}
	if cfg.S3Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.S3Endpoint)
		opts.UsePathStyle = true
	}

	publicURL := strings.TrimRight(cfg.S3PublicURL, "/")
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, cfg.S3Region)
	}

	return &S3Storage{
		client:    s3.New(opts),
		bucket:    cfg.S3Bucket,
		publicURL: publicURL,
	}
}

func (s *S3Storage) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3 put %s: %w", key, err)
	}
	return s.publicURL + "/" + key, nil
}

// LocalStorage writes under a directory that the router serves at URLPrefix.
type LocalStorage struct {
	Dir       string
	URLPrefix string
}

func NewLocalStorage(dir string) *LocalStorage {
	return &LocalStorage{Dir: dir, URLPrefix: "/media"}
}

func (s *LocalStorage) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	clean := path.Clean("/" + key)
	full := filepath.Join(s.Dir, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", err
	}
	return s.URLPrefix + clean, nil
}

// NewStorage returns S3 when a bucket is configured, local disk otherwise.
func NewStorage(cfg *config.Config) Storage {
	if cfg.S3Bucket != "" {
		return NewS3Storage(cfg)
	}
	return NewLocalStorage(cfg.MediaDir)
}
