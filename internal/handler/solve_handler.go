package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stemsi/exbank-backend/internal/middleware"
	"github.com/stemsi/exbank-backend/internal/model"
	"github.com/stemsi/exbank-backend/internal/response"
	"github.com/stemsi/exbank-backend/internal/service"
	"github.com/stemsi/exbank-backend/internal/validator"
)

// SolveHandler handles the student exam-solving endpoints.
type SolveHandler struct {
	solveService *service.SolveService
}

// NewSolveHandler creates a new SolveHandler.
func NewSolveHandler(solveService *service.SolveService) *SolveHandler {
	return &SolveHandler{solveService: solveService}
}

// GetExam godoc
// GET /api/v1/solve/:exam_id
// Returns the exam without correct answers plus the answers already saved
// in this session.
func (h *SolveHandler) GetExam(c *gin.Context) {
	sess, ok := solveSession(c)
	if !ok {
		return
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	view, err := h.solveService.GetExamForSolve(c.Request.Context(), sess, examID)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, view)
}

// SaveAnswer godoc
// POST /api/v1/solve/answer
func (h *SolveHandler) SaveAnswer(c *gin.Context) {
	sess, ok := solveSession(c)
	if !ok {
		return
	}

	var req model.SaveAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.solveService.SaveAnswer(c.Request.Context(), sess, &req); err != nil {
		h.fail(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// SubmitExam godoc
// POST /api/v1/solve/submit
// Grades and stores the solution. Each student submits an exam once.
func (h *SolveHandler) SubmitExam(c *gin.Context) {
	sess, ok := solveSession(c)
	if !ok {
		return
	}

	var req model.SubmitExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	grade, err := h.solveService.SubmitExam(c.Request.Context(), sess, &req)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"grade": grade})
}

func (h *SolveHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExamNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrExamNotOpen):
		response.Fail(c, http.StatusBadRequest, response.ErrExamNotOpen)
	case errors.Is(err, service.ErrExamClosed):
		response.Fail(c, http.StatusBadRequest, response.ErrExamClosed)
	case errors.Is(err, service.ErrNoSolveSession):
		response.Fail(c, http.StatusBadRequest, response.ErrNoSolveSession)
	case errors.Is(err, service.ErrNotAStudent):
		response.Fail(c, http.StatusBadRequest, response.ErrNotAStudent)
	case errors.Is(err, service.ErrAlreadySubmitted):
		response.Fail(c, http.StatusBadRequest, response.ErrAlreadySubmitted)
	default:
		internalError(c, err)
	}
}

func solveSession(c *gin.Context) (service.SolveSession, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return service.SolveSession{}, false
	}
	return service.SolveSession{ID: claims.ID, AccountID: claims.AccountID}, true
}
