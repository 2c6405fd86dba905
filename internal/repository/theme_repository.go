package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/exbank-backend/internal/model"
)

// ThemeRepository handles theme data access.
type ThemeRepository struct {
	pool *pgxpool.Pool
}

// NewThemeRepository creates a new ThemeRepository.
func NewThemeRepository(pool *pgxpool.Pool) *ThemeRepository {
	return &ThemeRepository{pool: pool}
}

// List returns all themes ordered by name.
func (r *ThemeRepository) List(ctx context.Context) ([]model.Theme, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, description, created_at FROM themes ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	themes := []model.Theme{}
	for rows.Next() {
		var t model.Theme
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.CreatedAt); err != nil {
			return nil, err
		}
		themes = append(themes, t)
	}
	return themes, rows.Err()
}

// Create inserts a theme.
func (r *ThemeRepository) Create(ctx context.Context, t *model.Theme) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO themes (name, description) VALUES ($1, $2) RETURNING id, created_at`,
		t.Name, t.Description,
	).Scan(&t.ID, &t.CreatedAt)
	if isPgError(err, pgUniqueViolation) {
		return ErrDuplicateTheme
	}
	return err
}
