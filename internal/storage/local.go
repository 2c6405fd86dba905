package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
)

// LocalProvider writes media under a directory served at urlPrefix.
type LocalProvider struct {
	dir       string
	urlPrefix string
}

// NewLocalProvider creates a LocalProvider.
func NewLocalProvider(dir, urlPrefix string) *LocalProvider {
	return &LocalProvider{dir: dir, urlPrefix: urlPrefix}
}

func (p *LocalProvider) Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error) {
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	dst, err := os.Create(filepath.Join(p.dir, filepath.Base(name)))
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return path.Join(p.urlPrefix, filepath.Base(name)), nil
}

func (p *LocalProvider) Delete(ctx context.Context, name string) error {
	err := os.Remove(filepath.Join(p.dir, filepath.Base(name)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
