package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/stemsi/exbank-backend/internal/model"
	"github.com/stemsi/exbank-backend/internal/repository"
)

// QuestionService handles question bank business logic.
type QuestionService struct {
	questions QuestionStore
	media     *MediaService
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(questions QuestionStore, media *MediaService) *QuestionService {
	return &QuestionService{questions: questions, media: media}
}

// List returns every question in the bank.
func (s *QuestionService) List(ctx context.Context) ([]model.Question, error) {
	return s.questions.List(ctx)
}

// Get retrieves a question with its answers and media.
func (s *QuestionService) Get(ctx context.Context, id int64) (*model.Question, error) {
	q, err := s.questions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}
	return q, nil
}

// Create stores a question, its answers and its uploaded media. Media are
// validated before anything is written.
func (s *QuestionService) Create(ctx context.Context, req *model.CreateQuestionRequest, files []*multipart.FileHeader) (*model.Question, error) {
	q := &model.Question{
		Text:    req.Text,
		Subject: req.Subject,
		Points:  req.Points,
		Theme:   model.ThemeRef{ID: req.ThemeID},
		Answers: make([]model.Answer, 0, len(req.CorrectAnswers)+len(req.IncorrectAnswers)),
	}
	for _, text := range req.CorrectAnswers {
		q.Answers = append(q.Answers, model.Answer{Text: text, Correct: true})
	}
	for _, text := range req.IncorrectAnswers {
		q.Answers = append(q.Answers, model.Answer{Text: text})
	}

	media, err := s.media.Store(ctx, files)
	if err != nil {
		return nil, err
	}
	q.Media = media

	if err := s.questions.Create(ctx, q); err != nil {
		s.media.Remove(ctx, media)
		if errors.Is(err, repository.ErrUnknownTheme) {
			return nil, ErrThemeNotFound
		}
		return nil, fmt.Errorf("store question: %w", err)
	}
	return q, nil
}

// Update changes a question's text and points. A question some exam
// already uses cannot change.
func (s *QuestionService) Update(ctx context.Context, id int64, req *model.UpdateQuestionRequest) (*model.Question, error) {
	if err := s.questions.Update(ctx, id, req.Text, req.Points); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrQuestionNotFound
		case errors.Is(err, repository.ErrQuestionInUse):
			return nil, ErrQuestionInUse
		}
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes a question that no exam references, then its media.
func (s *QuestionService) Delete(ctx context.Context, id int64) error {
	q, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.questions.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return ErrQuestionNotFound
		case errors.Is(err, repository.ErrQuestionInUse):
			return ErrQuestionInUse
		}
		return err
	}

	s.media.Remove(ctx, q.Media)
	return nil
}
