package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/exbank-backend/internal/model"
)

// ExamRepository handles exam data access.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

// Create inserts an exam and its ordered question membership in one
// transaction, so a failed write leaves nothing behind.
func (r *ExamRepository) Create(ctx context.Context, e *model.Exam) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO exams (name, start_date, end_date, time_to_solve_minutes, creator_id)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id, created_at`,
			e.Name, e.StartDate, e.EndDate, e.TimeToSolve.TotalMinutes(), e.CreatorID,
		).Scan(&e.ID, &e.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert exam: %w", err)
		}

		if len(e.Questions) == 0 {
			return nil
		}

		questionIDs := make([]int64, len(e.Questions))
		positions := make([]int32, len(e.Questions))
		for i, q := range e.Questions {
			questionIDs[i] = q.ID
			positions[i] = int32(i)
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO exam_questions (exam_id, question_id, position)
			 SELECT $1, u.question_id, u.position
			 FROM UNNEST($2::bigint[], $3::int[]) AS u (question_id, position)`,
			e.ID, questionIDs, positions)
		if err != nil {
			return fmt.Errorf("insert exam questions: %w", err)
		}
		return nil
	})
}

// GetByID retrieves an exam with its questions in exam order, answers
// included.
func (r *ExamRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	e := &model.Exam{}
	var minutes int
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, start_date, end_date, time_to_solve_minutes, creator_id, created_at
		 FROM exams WHERE id = $1`, id,
	).Scan(&e.ID, &e.Name, &e.StartDate, &e.EndDate, &minutes, &e.CreatorID, &e.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	e.TimeToSolve = model.TimeToSolveFromMinutes(minutes)

	rows, err := r.pool.Query(ctx,
		`SELECT `+questionColumns+`
		 FROM exam_questions eq
		 JOIN questions q ON q.id = eq.question_id
		 LEFT JOIN themes t ON t.id = q.theme_id
		 WHERE eq.exam_id = $1
		 ORDER BY eq.position`, id)
	if err != nil {
		return nil, fmt.Errorf("load exam questions: %w", err)
	}
	defer rows.Close()

	e.Questions = []model.Question{}
	for rows.Next() {
		var q model.Question
		if err := scanQuestion(rows, &q); err != nil {
			return nil, err
		}
		e.Questions = append(e.Questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := attachDetails(ctx, r.pool, e.Questions); err != nil {
		return nil, err
	}
	return e, nil
}

// ListByCreatorPaginated retrieves a teacher's exams, newest first.
func (r *ExamRepository) ListByCreatorPaginated(ctx context.Context, creatorID int64, limit, offset int) ([]model.ExamSummary, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM exams WHERE creator_id = $1`, creatorID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT e.id, e.name, e.start_date, e.end_date, e.time_to_solve_minutes, e.created_at,
		        (SELECT COUNT(*) FROM exam_questions eq WHERE eq.exam_id = e.id)
		 FROM exams e
		 WHERE e.creator_id = $1
		 ORDER BY e.created_at DESC
		 LIMIT $2 OFFSET $3`, creatorID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	exams := []model.ExamSummary{}
	for rows.Next() {
		var e model.ExamSummary
		var minutes int
		if err := rows.Scan(&e.ID, &e.Name, &e.StartDate, &e.EndDate, &minutes, &e.CreatedAt, &e.QuestionCount); err != nil {
			return nil, 0, err
		}
		e.TimeToSolve = model.TimeToSolveFromMinutes(minutes)
		exams = append(exams, e)
	}
	return exams, total, rows.Err()
}
