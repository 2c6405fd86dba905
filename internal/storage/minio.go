package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioProvider stores media as objects in a MinIO (or any S3) bucket.
type MinioProvider struct {
	client *minio.Client
	bucket string
}

// NewMinioProvider connects to endpoint. The bucket is created lazily on
// first upload if it does not exist.
func NewMinioProvider(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinioProvider, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return &MinioProvider{client: client, bucket: bucket}, nil
}

func (p *MinioProvider) Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error) {
	if err := p.ensureBucket(ctx); err != nil {
		return "", err
	}

	_, err := p.client.PutObject(ctx, p.bucket, name, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	return "/" + p.bucket + "/" + name, nil
}

func (p *MinioProvider) Delete(ctx context.Context, name string) error {
	return p.client.RemoveObject(ctx, p.bucket, name, minio.RemoveObjectOptions{})
}

func (p *MinioProvider) ensureBucket(ctx context.Context) error {
	exists, err := p.client.BucketExists(ctx, p.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := p.client.MakeBucket(ctx, p.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket: %w", err)
	}
	return nil
}
