package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/exbank-backend/internal/model"
	"github.com/stemsi/exbank-backend/internal/storage"
)

// Sentinel errors for media uploads.
var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
	ErrTooManyFiles        = errors.New("too many files")
)

// Allowed media MIME types and the extension stored objects get.
var allowedMIMETypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"image/svg+xml":   ".svg",
	"audio/mpeg":      ".mp3",
	"audio/wav":       ".wav",
	"video/mp4":       ".mp4",
	"application/pdf": ".pdf",
}

// MediaService validates and stores question media.
type MediaService struct {
	provider storage.Provider
	maxBytes int64
	maxFiles int
	log      zerolog.Logger
}

// NewMediaService creates a new MediaService.
func NewMediaService(provider storage.Provider, maxBytes int64, maxFiles int, log zerolog.Logger) *MediaService {
	return &MediaService{
		provider: provider,
		maxBytes: maxBytes,
		maxFiles: maxFiles,
		log:      log.With().Str("component", "media_service").Logger(),
	}
}

// Validate checks count, type and size of every file without storing any.
func (s *MediaService) Validate(files []*multipart.FileHeader) error {
	if len(files) > s.maxFiles {
		return fmt.Errorf("%w: %d (max: %d)", ErrTooManyFiles, len(files), s.maxFiles)
	}
	for _, fh := range files {
		contentType := fh.Header.Get("Content-Type")
		if _, ok := allowedMIMETypes[contentType]; !ok {
			return fmt.Errorf("%w: %s (allowed: %s)",
				ErrUnsupportedFileType, contentType, strings.Join(allowedTypes(), ", "))
		}
		if fh.Size > s.maxBytes {
			return fmt.Errorf("%w: %s is %d bytes (max: %d)", ErrFileTooLarge, fh.Filename, fh.Size, s.maxBytes)
		}
	}
	return nil
}

// Store uploads every file under a fresh UUID name. On failure the files
// stored so far are removed again.
func (s *MediaService) Store(ctx context.Context, files []*multipart.FileHeader) ([]model.QuestionMedia, error) {
	if err := s.Validate(files); err != nil {
		return nil, err
	}

	media := make([]model.QuestionMedia, 0, len(files))
	for _, fh := range files {
		contentType := fh.Header.Get("Content-Type")
		name := uuid.New().String() + allowedMIMETypes[contentType]

		url, err := s.put(ctx, fh, name, contentType)
		if err != nil {
			s.Remove(ctx, media)
			return nil, err
		}
		media = append(media, model.QuestionMedia{URL: url, ContentType: contentType})
	}
	return media, nil
}

func (s *MediaService) put(ctx context.Context, fh *multipart.FileHeader, name, contentType string) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	url, err := s.provider.Put(ctx, name, f, fh.Size, contentType)
	if err != nil {
		return "", fmt.Errorf("store %s: %w", fh.Filename, err)
	}
	return url, nil
}

// Remove deletes stored media, logging failures.
func (s *MediaService) Remove(ctx context.Context, media []model.QuestionMedia) {
	for _, m := range media {
		if err := s.provider.Delete(ctx, path.Base(m.URL)); err != nil {
			s.log.Warn().Err(err).Str("url", m.URL).Msg("Failed to remove media")
		}
	}
}

func allowedTypes() []string {
	types := make([]string, 0, len(allowedMIMETypes))
	for t := range allowedMIMETypes {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}
