package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	domain "github.com/bryanwahyu/glowguide/internal/domain/analysis"
)

type Options struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	// PublicURL overrides the host used in returned image URLs.
	PublicURL string
}

// Store keeps analysis photos in an S3 compatible bucket.
type Store struct {
	client     *minio.Client
	bucketName string
	region     string
	publicURL  string
}

var _ domain.ImageStore = (*Store)(nil)

// New connects to MinIO and makes sure the bucket exists.
func New(ctx context.Context, opts Options) (*Store, error) {
	cli, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, err
	}

	exists, err := cli.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %q: %w", opts.Bucket, err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{Region: opts.Region}); err != nil {
			return nil, fmt.Errorf("create bucket %q: %w", opts.Bucket, err)
		}
	}

	return &Store{
		client:     cli,
		bucketName: opts.Bucket,
		region:     opts.Region,
		publicURL:  publicBase(opts, cli.EndpointURL()),
	}, nil
}

// Upload writes the photo and returns its public URL. Objects are never
// overwritten by callers since keys embed a millisecond timestamp.
func (s *Store) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := s.client.PutObject(ctx, s.bucketName, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return s.URL(key), nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.client.RemoveObject(ctx, s.bucketName, key, minio.RemoveObjectOptions{})
}

// URL is the public address of key. The bucket must allow anonymous reads
// for it to resolve.
func (s *Store) URL(key string) string {
	return objectURL(s.publicURL, s.bucketName, key)
}

// Ping backs the storage health check.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.client.BucketExists(ctx, s.bucketName)
	return err
}

func publicBase(opts Options, endpoint *url.URL) string {
	if opts.PublicURL != "" {
		return strings.TrimRight(opts.PublicURL, "/")
	}
	scheme := "http"
	if opts.UseSSL {
		scheme = "https"
	}
	return scheme + "://" + endpoint.Host
}

func objectURL(base, bucket, key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return fmt.Sprintf("%s/%s/%s", base, bucket, strings.Join(parts, "/"))
}
