package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/stemsi/exbank-backend/internal/model"
)

// The interfaces below are the slices of the repositories each service
// needs. The repository package provides the Postgres and Redis
// implementations.

// QuestionStore reads and writes bank questions.
type QuestionStore interface {
	List(ctx context.Context) ([]model.Question, error)
	ListByTheme(ctx context.Context, themeID int64) ([]model.Question, error)
	GetByID(ctx context.Context, id int64) (*model.Question, error)
	Create(ctx context.Context, q *model.Question) error
	Update(ctx context.Context, id int64, text string, points int) error
	Delete(ctx context.Context, id int64) error
}

// ThemeStore reads and writes themes.
type ThemeStore interface {
	List(ctx context.Context) ([]model.Theme, error)
	Create(ctx context.Context, t *model.Theme) error
}

// ExamStore persists composed exams.
type ExamStore interface {
	Create(ctx context.Context, e *model.Exam) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error)
	ListByCreatorPaginated(ctx context.Context, creatorID int64, limit, offset int) ([]model.ExamSummary, int, error)
}

// AccountStore resolves accounts and their student records.
type AccountStore interface {
	GetByEmail(ctx context.Context, email string) (*model.Account, error)
	GetByID(ctx context.Context, id int64) (*model.Account, error)
	GetStudentByAccountID(ctx context.Context, accountID int64) (*model.Student, error)
	Create(ctx context.Context, a *model.Account) error
}

// SubmissionStore persists graded submissions.
type SubmissionStore interface {
	HasSubmitted(ctx context.Context, examID uuid.UUID, studentID int64) (bool, error)
	Create(ctx context.Context, se *model.StudentExam) error
	ListByExam(ctx context.Context, examID uuid.UUID) ([]model.StudentExam, error)
}

// SolveStateStore keeps the per-session in-progress exam state.
type SolveStateStore interface {
	Get(ctx context.Context, sessionID string) (*model.SolveState, error)
	Start(ctx context.Context, sessionID string, examID uuid.UUID) error
	Append(ctx context.Context, sessionID string, answer model.AnsweredQuestion) error
	Clear(ctx context.Context, sessionID string) error
}

// AnswerLogPublisher queues saved answers for the audit log.
type AnswerLogPublisher interface {
	Publish(ctx context.Context, entry model.AnswerLogEntry) error
}
