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

// QuestionHandler handles question bank endpoints.
type QuestionHandler struct {
	questionService *service.QuestionService
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(questionService *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

// ListQuestions godoc
// GET /api/v1/question/
// Lists every question in the bank.
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	questions, err := h.questionService.List(c.Request.Context())
	if err != nil {
		internalError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// GetQuestion godoc
// GET /api/v1/question/:question_id
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	id, ok := int64Param(c, "question_id")
	if !ok {
		return
	}

	question, err := h.questionService.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"question": question})
}

// CreateQuestion godoc
// POST /api/v1/question/
// Creates a question from a multipart form. Answers are repeated
// correctAnswers / incorrectAnswers fields; files go under "media".
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.FailWithMessage(c, http.StatusBadRequest, response.ErrInvalidPayload, "Expected a multipart form.")
		return
	}
	// Accept the bracketed array notation sent by browser form libraries.
	for _, key := range []string{"correctAnswers", "incorrectAnswers"} {
		if vals, ok := form.Value[key+"[]"]; ok {
			form.Value[key] = append(form.Value[key], vals...)
		}
	}

	var req model.CreateQuestionRequest
	if fields := validator.BindForm(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	question, err := h.questionService.Create(c.Request.Context(), &req, form.File["media"])
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"question": question})
}

// UpdateQuestion godoc
// PUT /api/v1/question/:question_id
// Updates a question's text and points.
func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	id, ok := int64Param(c, "question_id")
	if !ok {
		return
	}

	var req model.UpdateQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	question, err := h.questionService.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"question": question})
}

// DeleteQuestion godoc
// DELETE /api/v1/question/:question_id
// Deletes a question no exam uses.
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	id, ok := int64Param(c, "question_id")
	if !ok {
		return
	}

	if err := h.questionService.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *QuestionHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrQuestionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrQuestionInUse):
		response.Fail(c, http.StatusConflict, response.ErrDependencyExists)
	case errors.Is(err, service.ErrThemeNotFound):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{"theme": "theme does not exist"})
	case errors.Is(err, service.ErrUnsupportedFileType):
		response.FailWithMessage(c, http.StatusBadRequest, response.ErrUnsupportedFile, err.Error())
	case errors.Is(err, service.ErrFileTooLarge):
		response.FailWithMessage(c, http.StatusBadRequest, response.ErrFileTooLarge, err.Error())
	case errors.Is(err, service.ErrTooManyFiles):
		response.FailWithMessage(c, http.StatusBadRequest, response.ErrTooManyFiles, err.Error())
	default:
		internalError(c, err)
	}
}
