package model

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// AnsweredQuestion is one answer a student picked while solving.
type AnsweredQuestion struct {
	QuestionID int64 `json:"question_id" binding:"required"`
	AnswerID   int64 `json:"answer_id" binding:"required"`
}

// SolveState is the in-progress exam state of one authenticated session.
// Answered is append-only until the exam is submitted.
type SolveState struct {
	ExamID   uuid.UUID          `json:"exam_id"`
	Answered []AnsweredQuestion `json:"answered"`
}

// SolveView is what a student receives when opening an exam.
type SolveView struct {
	Exam     *StrippedExam      `json:"exam"`
	Answered []AnsweredQuestion `json:"answered"`
}

// SaveAnswerRequest is the payload for saving one in-progress answer.
type SaveAnswerRequest struct {
	QuestionID int64 `json:"question_id" binding:"required"`
	AnswerID   int64 `json:"answer_id" binding:"required"`
}

// SubmitExamRequest is the payload for finalizing an exam.
type SubmitExamRequest struct {
	ExamID   uuid.UUID          `json:"exam_id" binding:"required"`
	Solution []AnsweredQuestion `json:"solution" binding:"dive"`
}

// StudentSolution is a student's final answer sheet, consumed by grading.
type StudentSolution struct {
	Student  Student
	ExamID   uuid.UUID
	Solution []AnsweredQuestion
}

// Grade is the result of grading a solution.
type Grade struct {
	Points     int     `json:"points"`
	MaxPoints  int     `json:"max_points"`
	Percentage float64 `json:"percentage"`
	Correct    int     `json:"correct"`
	Total      int     `json:"total"`
}

// StudentExam is the persisted result of a submission. There is at most
// one per (exam, student).
type StudentExam struct {
	ID          int64               `json:"id"`
	ExamID      uuid.UUID           `json:"exam_id"`
	StudentID   int64               `json:"student_id"`
	StudentName string              `json:"student_name,omitempty"`
	Grade       Grade               `json:"grade"`
	SubmittedAt time.Time           `json:"submitted_at"`
	Answers     []StudentExamAnswer `json:"answers,omitempty"`
}

// StudentExamAnswer records how one exam question was answered.
// AnswerID is nil when the question was left blank.
type StudentExamAnswer struct {
	QuestionID int64  `json:"question_id"`
	AnswerID   *int64 `json:"answer_id"`
	Correct    bool   `json:"correct"`
}

// Percentage returns points as a share of maxPoints, rounded to two decimals.
func Percentage(points, maxPoints int) float64 {
	if maxPoints == 0 {
		return 0
	}
	return math.Round(float64(points)*10000/float64(maxPoints)) / 100
}

// AnswerLogEntry is one saved answer queued for the audit log.
type AnswerLogEntry struct {
	SessionID  string    `json:"session_id"`
	AccountID  int64     `json:"account_id"`
	ExamID     uuid.UUID `json:"exam_id"`
	QuestionID int64     `json:"question_id"`
	AnswerID   int64     `json:"answer_id"`
	SavedAt    time.Time `json:"saved_at"`
}
