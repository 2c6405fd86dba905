package model

import "time"

// Point values a question can be worth.
const (
	MinPoints = 1
	MaxPoints = 5
)

// Question is a single bank question (QuestionBase). Once an exam
// references it, it can no longer be deleted.
type Question struct {
	ID        int64           `json:"id"`
	Text      string          `json:"text"`
	Subject   string          `json:"subject"`
	Points    int             `json:"points"`
	Theme     ThemeRef        `json:"theme"`
	Answers   []Answer        `json:"answers"`
	Media     []QuestionMedia `json:"media"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Answer is one selectable answer of a question.
type Answer struct {
	ID         int64  `json:"id"`
	QuestionID int64  `json:"question_id"`
	Text       string `json:"text"`
	Correct    bool   `json:"correct"`
}

// QuestionMedia is an uploaded file attached to a question.
type QuestionMedia struct {
	ID          int64  `json:"id"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
}

// AnswerByID returns the answer with the given ID, or nil.
func (q *Question) AnswerByID(id int64) *Answer {
	for i := range q.Answers {
		if q.Answers[i].ID == id {
			return &q.Answers[i]
		}
	}
	return nil
}

// CreateQuestionRequest is the multipart form for creating a question.
// Media files travel in the same form under the "media" key.
type CreateQuestionRequest struct {
	Text             string   `form:"text" binding:"required,min=1,max=4000"`
	Subject          string   `form:"subject" binding:"omitempty,max=255"`
	ThemeID          *int64   `form:"theme" binding:"omitempty,min=0"`
	Points           int      `form:"points" binding:"required,min=1,max=5"`
	CorrectAnswers   []string `form:"correctAnswers" binding:"required,min=1,dive,required,max=1000"`
	IncorrectAnswers []string `form:"incorrectAnswers" binding:"omitempty,dive,required,max=1000"`
}

// UpdateQuestionRequest is the payload for editing a question's text and points.
type UpdateQuestionRequest struct {
	Text   string `json:"text" binding:"required,min=1,max=4000"`
	Points int    `json:"points" binding:"required,min=1,max=5"`
}
