package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/exbank-backend/internal/model"
)

const questionColumns = `q.id, q.text, q.subject, q.points, q.theme_id, t.name, q.created_at, q.updated_at`

// QuestionRepository handles question data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// List retrieves every question with its answers and media.
func (r *QuestionRepository) List(ctx context.Context) ([]model.Question, error) {
	return r.query(ctx,
		`SELECT `+questionColumns+`
		 FROM questions q LEFT JOIN themes t ON t.id = q.theme_id
		 ORDER BY q.id`)
}

// ListByTheme retrieves all questions of a theme.
func (r *QuestionRepository) ListByTheme(ctx context.Context, themeID int64) ([]model.Question, error) {
	return r.query(ctx,
		`SELECT `+questionColumns+`
		 FROM questions q LEFT JOIN themes t ON t.id = q.theme_id
		 WHERE q.theme_id = $1
		 ORDER BY q.id`, themeID)
}

// GetByID retrieves a question by ID.
func (r *QuestionRepository) GetByID(ctx context.Context, id int64) (*model.Question, error) {
	q := model.Question{}
	row := r.pool.QueryRow(ctx,
		`SELECT `+questionColumns+`
		 FROM questions q LEFT JOIN themes t ON t.id = q.theme_id
		 WHERE q.id = $1`, id)
	if err := scanQuestion(row, &q); err != nil {
		return nil, notFound(err)
	}

	questions := []model.Question{q}
	if err := attachDetails(ctx, r.pool, questions); err != nil {
		return nil, err
	}
	return &questions[0], nil
}

// Create inserts a question together with its answers and media.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO questions (text, subject, points, theme_id)
			 VALUES ($1, $2, $3, $4)
			 RETURNING id, created_at, updated_at`,
			q.Text, q.Subject, q.Points, q.Theme.ID,
		).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
		if err != nil {
			if isPgError(err, pgForeignKeyViolation) {
				return ErrUnknownTheme
			}
			return fmt.Errorf("insert question: %w", err)
		}

		for i := range q.Answers {
			a := &q.Answers[i]
			a.QuestionID = q.ID
			if err := tx.QueryRow(ctx,
				`INSERT INTO answers (question_id, text, correct) VALUES ($1, $2, $3) RETURNING id`,
				q.ID, a.Text, a.Correct,
			).Scan(&a.ID); err != nil {
				return fmt.Errorf("insert answer: %w", err)
			}
		}

		for i := range q.Media {
			m := &q.Media[i]
			if err := tx.QueryRow(ctx,
				`INSERT INTO question_media (question_id, url, content_type) VALUES ($1, $2, $3) RETURNING id`,
				q.ID, m.URL, m.ContentType,
			).Scan(&m.ID); err != nil {
				return fmt.Errorf("insert media: %w", err)
			}
		}
		return nil
	})
}

// Update changes a question's text and points. Questions referenced by an
// exam are left untouched and ErrQuestionInUse is returned; ErrNotFound
// means no question has the given ID.
func (r *QuestionRepository) Update(ctx context.Context, id int64, text string, points int) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE questions SET text = $1, points = $2, updated_at = NOW()
		 WHERE id = $3
		   AND NOT EXISTS (SELECT 1 FROM exam_questions WHERE question_id = $3)`,
		text, points, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM questions WHERE id = $1)`, id,
	).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return ErrQuestionInUse
	}
	return ErrNotFound
}

// Delete removes a question. Questions referenced by an exam are kept and
// ErrQuestionInUse is returned.
func (r *QuestionRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		if isPgError(err, pgForeignKeyViolation) {
			return ErrQuestionInUse
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *QuestionRepository) query(ctx context.Context, sql string, args ...any) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := []model.Question{}
	for rows.Next() {
		var q model.Question
		if err := scanQuestion(rows, &q); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := attachDetails(ctx, r.pool, questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func scanQuestion(row pgx.Row, q *model.Question) error {
	var themeName *string
	if err := row.Scan(&q.ID, &q.Text, &q.Subject, &q.Points, &q.Theme.ID, &themeName, &q.CreatedAt, &q.UpdatedAt); err != nil {
		return err
	}
	if themeName != nil {
		q.Theme.Name = *themeName
	}
	return nil
}

// attachDetails loads answers and media for questions in two round trips.
// The same question may appear more than once in an exam, so every
// position gets its own copy.
func attachDetails(ctx context.Context, db querier, questions []model.Question) error {
	if len(questions) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(questions))
	index := make(map[int64][]int, len(questions))
	for i := range questions {
		questions[i].Answers = []model.Answer{}
		questions[i].Media = []model.QuestionMedia{}
		if _, seen := index[questions[i].ID]; !seen {
			ids = append(ids, questions[i].ID)
		}
		index[questions[i].ID] = append(index[questions[i].ID], i)
	}

	rows, err := db.Query(ctx,
		`SELECT id, question_id, text, correct FROM answers
		 WHERE question_id = ANY($1) ORDER BY question_id, id`, ids)
	if err != nil {
		return fmt.Errorf("load answers: %w", err)
	}
	for rows.Next() {
		var a model.Answer
		if err := rows.Scan(&a.ID, &a.QuestionID, &a.Text, &a.Correct); err != nil {
			rows.Close()
			return err
		}
		for _, i := range index[a.QuestionID] {
			questions[i].Answers = append(questions[i].Answers, a)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = db.Query(ctx,
		`SELECT id, question_id, url, content_type FROM question_media
		 WHERE question_id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return fmt.Errorf("load media: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var m model.QuestionMedia
		var questionID int64
		if err := rows.Scan(&m.ID, &questionID, &m.URL, &m.ContentType); err != nil {
			return err
		}
		for _, i := range index[questionID] {
			questions[i].Media = append(questions[i].Media, m)
		}
	}
	return rows.Err()
}
