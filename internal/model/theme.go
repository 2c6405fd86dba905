package model

import "time"

// Theme is the topical category a question belongs to.
type Theme struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// ThemeRef references a theme by ID. ID is nil for questions or filters
// that carry no theme.
type ThemeRef struct {
	ID   *int64 `json:"id"`
	Name string `json:"name,omitempty"`
}

// Is reports whether r references the theme with the given ID.
func (r ThemeRef) Is(id *int64) bool {
	if r.ID == nil || id == nil {
		return false
	}
	return *r.ID == *id
}

// CreateThemeRequest is the payload for creating a theme.
type CreateThemeRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=100"`
	Description string `json:"description" binding:"omitempty,max=1000"`
}
