package service

import (
	"errors"
	"fmt"
)

// Domain errors, mapped to HTTP responses by the handlers.
var (
	ErrInsufficientQuestions = errors.New("not enough questions to satisfy the filter")
	ErrUnauthenticated       = errors.New("not authenticated")
	ErrExamNotFound          = errors.New("exam not found")
	ErrQuestionNotFound      = errors.New("question not found")
	ErrExamNotOpen           = errors.New("exam has not started yet")
	ErrExamClosed            = errors.New("exam has already ended")
	ErrNotAStudent           = errors.New("account is not a student")
	ErrAlreadySubmitted      = errors.New("exam already submitted")
	ErrNoSolveSession        = errors.New("no exam is open in this session")
	ErrQuestionInUse         = errors.New("question is referenced by an exam")
	ErrThemeExists           = errors.New("theme already exists")
	ErrThemeNotFound         = errors.New("theme not found")
)

// InsufficientQuestionsError names the bucket that could not be filled.
// It matches ErrInsufficientQuestions with errors.Is.
type InsufficientQuestionsError struct {
	ThemeID   *int64
	Points    int
	Requested int
	Available int
}

func (e *InsufficientQuestionsError) Error() string {
	theme := "none"
	if e.ThemeID != nil {
		theme = fmt.Sprintf("%d", *e.ThemeID)
	}
	return fmt.Sprintf("not enough questions for theme %s worth %d points: requested %d, available %d",
		theme, e.Points, e.Requested, e.Available)
}

func (e *InsufficientQuestionsError) Unwrap() error {
	return ErrInsufficientQuestions
}
