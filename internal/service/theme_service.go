package service

import (
	"context"
	"errors"

	"github.com/stemsi/exbank-backend/internal/model"
	"github.com/stemsi/exbank-backend/internal/repository"
)

// ThemeService handles theme business logic.
type ThemeService struct {
	themes ThemeStore
}

// NewThemeService creates a new ThemeService.
func NewThemeService(themes ThemeStore) *ThemeService {
	return &ThemeService{themes: themes}
}

// List returns every theme.
func (s *ThemeService) List(ctx context.Context) ([]model.Theme, error) {
	return s.themes.List(ctx)
}

// Create adds a theme.
func (s *ThemeService) Create(ctx context.Context, req *model.CreateThemeRequest) (*model.Theme, error) {
	theme := &model.Theme{Name: req.Name, Description: req.Description}
	if err := s.themes.Create(ctx, theme); err != nil {
		if errors.Is(err, repository.ErrDuplicateTheme) {
			return nil, ErrThemeExists
		}
		return nil, err
	}
	return theme, nil
}
