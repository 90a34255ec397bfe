package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/ironsheep/memezap/internal/blobstore"
)

// Store implements blobstore.Store on a MinIO bucket.
type Store struct {
	client *minio.Client
	bucket string
	prefix string
}

// Config holds connection settings.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	Prefix    string
}

// New connects with static credentials. The bucket must exist.
func New(cfg Config) (*Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return NewStore(client, cfg.Bucket, cfg.Prefix), nil
}

// NewStore wraps an existing client. prefix is prepended to every key.
func NewStore(client *minio.Client, bucket, prefix string) *Store {
	return &Store{client: client, bucket: bucket, prefix: prefix}
}

func (s *Store) key(name string) string {
	return path.Join(s.prefix, name)
}

func (s *Store) Get(ctx context.Context, name string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.key(name), minio.GetObjectOptions{})
	if err != nil {
		return nil, mapErr(name, err)
	}
	defer obj.Close()

	// GetObject is lazy; a missing key surfaces on the first read.
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, mapErr(name, err)
	}
	return data, nil
}

func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, s.key(name), bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/octet-stream"})
	if err != nil {
		return fmt.Errorf("minio put %s: %w", name, err)
	}
	return nil
}

func (s *Store) Describe() string {
	return "minio://" + path.Join(s.bucket, s.prefix)
}

func mapErr(name string, err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NotFound":
		return blobstore.ErrNotFound
	}
	return fmt.Errorf("minio get %s: %w", name, err)
}
