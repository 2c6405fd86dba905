package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/exbank-backend/internal/model"
	"github.com/stemsi/exbank-backend/internal/response"
	"github.com/stemsi/exbank-backend/internal/service"
	"github.com/stemsi/exbank-backend/internal/validator"
)

// ThemeHandler handles theme endpoints.
type ThemeHandler struct {
	themeService *service.ThemeService
}

// NewThemeHandler creates a new ThemeHandler.
func NewThemeHandler(themeService *service.ThemeService) *ThemeHandler {
	return &ThemeHandler{themeService: themeService}
}

// ListThemes godoc
// GET /api/v1/themes
func (h *ThemeHandler) ListThemes(c *gin.Context) {
	themes, err := h.themeService.List(c.Request.Context())
	if err != nil {
		internalError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"themes": themes})
}

// CreateTheme godoc
// POST /api/v1/themes
func (h *ThemeHandler) CreateTheme(c *gin.Context) {
	var req model.CreateThemeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	theme, err := h.themeService.Create(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrThemeExists) {
			response.Fail(c, http.StatusConflict, response.ErrConflict)
			return
		}
		internalError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"theme": theme})
}
