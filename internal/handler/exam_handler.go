package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stemsi/exbank-backend/internal/middleware"
	"github.com/stemsi/exbank-backend/internal/model"
	"github.com/stemsi/exbank-backend/internal/response"
	"github.com/stemsi/exbank-backend/internal/service"
	"github.com/stemsi/exbank-backend/internal/validator"
)

// ExamHandler handles exam composition and teacher-side exam endpoints.
type ExamHandler struct {
	examService *service.ExamService
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(examService *service.ExamService) *ExamHandler {
	return &ExamHandler{examService: examService}
}

// CreateExam godoc
// POST /api/v1/exam/
// Composes a new exam from theme/point filters.
func (h *ExamHandler) CreateExam(c *gin.Context) {
	var req model.CreateExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	var creatorID *int64
	if claims := middleware.GetClaims(c); claims != nil {
		creatorID = &claims.AccountID
	}

	exam, err := h.examService.CreateExam(c.Request.Context(), creatorID, &req)
	if err != nil {
		var insufficient *service.InsufficientQuestionsError
		switch {
		case errors.As(err, &insufficient):
			response.FailWithMessage(c, http.StatusBadRequest, response.ErrInsufficientQuestions,
				response.GetMessage(response.ErrInsufficientQuestions)+" "+insufficient.Error())
		case errors.Is(err, service.ErrUnauthenticated):
			response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		default:
			internalError(c, err)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

// ListExams godoc
// GET /api/v1/exam/
// Lists the exams the current teacher created.
func (h *ExamHandler) ListExams(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	exams, pagination, err := h.examService.ListExams(c.Request.Context(), claims.AccountID, page, perPage)
	if err != nil {
		internalError(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"exams": exams}, pagination)
}

// GetExam godoc
// GET /api/v1/exam/:exam_id
func (h *ExamHandler) GetExam(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	exam, err := h.examService.GetExam(c.Request.Context(), examID)
	if err != nil {
		if errors.Is(err, service.ErrExamNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		internalError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

// ListResults godoc
// GET /api/v1/exam/:exam_id/results
// Lists submissions and grades for an exam.
func (h *ExamHandler) ListResults(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	results, err := h.examService.ListResults(c.Request.Context(), examID)
	if err != nil {
		if errors.Is(err, service.ErrExamNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		internalError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"results": results})
}
