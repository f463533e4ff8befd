package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	domain "github.com/bryanwahyu/chat-pattern-explorer/internal/domain/analysis"
)

// Store keeps the saved list as a single JSON object in a MinIO/S3 bucket.
type Store struct {
	client     *minio.Client
	bucketName string
	region     string
	objectKey  string
}

// New buat koneksi MinIO dan pastikan bucket ada
func New(ctx context.Context, endpoint, region, bucket, accessKey, secretKey string, useSSL bool, prefix, key string) (*Store, error) {
	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, err
	}

	exists, err := cli.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return nil, err
		}
	}

	return &Store{client: cli, bucketName: bucket, region: region, objectKey: ObjectKey(prefix, key)}, nil
}

// ObjectKey is where the list is stored inside the bucket: <prefix>/<key>.json.
func ObjectKey(prefix, key string) string {
	if key == "" {
		key = DefaultKey
	}
	return path.Join(prefix, key+".json")
}

func (s *Store) Load(ctx context.Context) ([]domain.SavedEntry, error) {
	obj, err := s.client.GetObject(ctx, s.bucketName, s.objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	b, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return []domain.SavedEntry{}, nil
		}
		return nil, fmt.Errorf("read %s/%s: %w", s.bucketName, s.objectKey, err)
	}
	return DecodeEntries(b)
}

func (s *Store) Replace(ctx context.Context, entries []domain.SavedEntry) error {
	b, err := EncodeEntries(entries)
	if err != nil {
		return err
	}
	_, err = s.client.PutObject(ctx, s.bucketName, s.objectKey, bytes.NewReader(b), int64(len(b)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", s.bucketName, s.objectKey, err)
	}
	return nil
}

// Ping checks the bucket is still reachable.
func (s *Store) Ping(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bucket %s does not exist", s.bucketName)
	}
	return nil
}

// URL of the stored object (public buckets only; private buckets need a presigned URL).
func (s *Store) URL() string {
	return fmt.Sprintf("http://%s/%s/%s", s.client.EndpointURL().Host, s.bucketName, s.objectKey)
}
