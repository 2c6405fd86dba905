package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/exbank-backend/internal/model"
)

// SubmissionRepository persists graded exam submissions (StudentExam).
type SubmissionRepository struct {
	pool *pgxpool.Pool
}

// NewSubmissionRepository creates a new SubmissionRepository.
func NewSubmissionRepository(pool *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{pool: pool}
}

// HasSubmitted reports whether the student already submitted the exam.
func (r *SubmissionRepository) HasSubmitted(ctx context.Context, examID uuid.UUID, studentID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM student_exams WHERE exam_id = $1 AND student_id = $2)`,
		examID, studentID,
	).Scan(&exists)
	return exists, err
}

// Create stores a graded submission with its per-question answers.
// The (exam_id, student_id) unique index turns a concurrent second
// submission into ErrDuplicateSubmission.
func (r *SubmissionRepository) Create(ctx context.Context, se *model.StudentExam) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO student_exams (exam_id, student_id, points, max_points, correct_count, question_count)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING id, submitted_at`,
			se.ExamID, se.StudentID, se.Grade.Points, se.Grade.MaxPoints, se.Grade.Correct, se.Grade.Total,
		).Scan(&se.ID, &se.SubmittedAt)
		if err != nil {
			if isPgError(err, pgUniqueViolation) {
				return ErrDuplicateSubmission
			}
			return fmt.Errorf("insert student exam: %w", err)
		}

		if len(se.Answers) == 0 {
			return nil
		}

		positions := make([]int32, len(se.Answers))
		questionIDs := make([]int64, len(se.Answers))
		answerIDs := make([]*int64, len(se.Answers))
		correct := make([]bool, len(se.Answers))
		for i, a := range se.Answers {
			positions[i] = int32(i)
			questionIDs[i] = a.QuestionID
			answerIDs[i] = a.AnswerID
			correct[i] = a.Correct
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO student_exam_answers (student_exam_id, position, question_id, answer_id, correct)
			 SELECT $1, u.position, u.question_id, u.answer_id, u.correct
			 FROM UNNEST($2::int[], $3::bigint[], $4::bigint[], $5::bool[])
			      AS u (position, question_id, answer_id, correct)`,
			se.ID, positions, questionIDs, answerIDs, correct)
		if err != nil {
			return fmt.Errorf("insert student exam answers: %w", err)
		}
		return nil
	})
}

// ListByExam returns all submissions of an exam, best grade first.
func (r *SubmissionRepository) ListByExam(ctx context.Context, examID uuid.UUID) ([]model.StudentExam, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT se.id, se.exam_id, se.student_id, a.name,
		        se.points, se.max_points, se.correct_count, se.question_count, se.submitted_at
		 FROM student_exams se
		 JOIN students s ON s.id = se.student_id
		 JOIN accounts a ON a.id = s.account_id
		 WHERE se.exam_id = $1
		 ORDER BY se.points DESC, se.submitted_at`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []model.StudentExam{}
	for rows.Next() {
		var se model.StudentExam
		if err := rows.Scan(&se.ID, &se.ExamID, &se.StudentID, &se.StudentName,
			&se.Grade.Points, &se.Grade.MaxPoints, &se.Grade.Correct, &se.Grade.Total, &se.SubmittedAt); err != nil {
			return nil, err
		}
		se.Grade.Percentage = model.Percentage(se.Grade.Points, se.Grade.MaxPoints)
		results = append(results, se)
	}
	return results, rows.Err()
}
