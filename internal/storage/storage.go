// Package storage stores question media on local disk or in a MinIO bucket.
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/stemsi/exbank-backend/internal/config"
)

// Provider is a blob store for uploaded media.
type Provider interface {
	// Put stores the object and returns the URL clients fetch it from.
	Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, name string) error
}

// New returns the provider selected by cfg.StorageDriver.
func New(cfg *config.Config) (Provider, error) {
	switch cfg.StorageDriver {
	case "", "local":
		return NewLocalProvider(cfg.UploadDir, "/uploads"), nil
	case "minio":
		return NewMinioProvider(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
