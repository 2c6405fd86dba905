package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/exbank-backend/internal/model"
)

// AnswerLogRepository appends to the solve_answer_log audit table.
type AnswerLogRepository struct {
	pool *pgxpool.Pool
}

// NewAnswerLogRepository creates a new AnswerLogRepository.
func NewAnswerLogRepository(pool *pgxpool.Pool) *AnswerLogRepository {
	return &AnswerLogRepository{pool: pool}
}

// Insert stores one saved answer.
func (r *AnswerLogRepository) Insert(ctx context.Context, e *model.AnswerLogEntry) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO solve_answer_log (session_id, account_id, exam_id, question_id, answer_id, saved_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		e.SessionID, e.AccountID, e.ExamID, e.QuestionID, e.AnswerID, e.SavedAt,
	)
	return err
}
