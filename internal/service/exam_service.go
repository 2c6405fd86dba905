package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/exbank-backend/internal/metrics"
	"github.com/stemsi/exbank-backend/internal/model"
	"github.com/stemsi/exbank-backend/internal/repository"
	"github.com/stemsi/exbank-backend/internal/response"
	"github.com/stemsi/exbank-backend/internal/shuffle"
	"golang.org/x/sync/errgroup"
)

// ExamService composes exams from the question bank and serves them to
// teachers.
type ExamService struct {
	exams       ExamStore
	questions   QuestionStore
	submissions SubmissionStore
	fetchLimit  int
	rng         shuffle.Source
	log         zerolog.Logger
}

// NewExamService creates a new ExamService. fetchLimit bounds the number
// of concurrent per-theme question fetches during composition.
func NewExamService(
	exams ExamStore,
	questions QuestionStore,
	submissions SubmissionStore,
	fetchLimit int,
	log zerolog.Logger,
) *ExamService {
	if fetchLimit < 1 {
		fetchLimit = 1
	}
	return &ExamService{
		exams:       exams,
		questions:   questions,
		submissions: submissions,
		fetchLimit:  fetchLimit,
		rng:         shuffle.Global,
		log:         log.With().Str("component", "exam_service").Logger(),
	}
}

// CreateExam composes and stores a new exam.
//
// Every theme referenced by the filters is fetched once, concurrently.
// Then, for each filter, each theme filter and each point value with a
// non-zero quota, the matching candidates are shuffled and the first
// quota of them taken. A bucket with fewer candidates than its quota
// aborts the whole composition before anything is written.
//
// creatorID is nil when the request is not authenticated; the exam is
// composed first so that insufficient filters are reported either way.
func (s *ExamService) CreateExam(ctx context.Context, creatorID *int64, req *model.CreateExamRequest) (*model.Exam, error) {
	candidates, err := s.fetchCandidates(ctx, req.Filters)
	if err != nil {
		metrics.ExamsComposed.WithLabelValues("error").Inc()
		return nil, err
	}

	selected, err := s.selectQuestions(candidates, req.Filters)
	if err != nil {
		metrics.ExamsComposed.WithLabelValues("insufficient").Inc()
		return nil, err
	}

	if creatorID == nil {
		metrics.ExamsComposed.WithLabelValues("unauthenticated").Inc()
		return nil, ErrUnauthenticated
	}

	exam := &model.Exam{
		Name:        req.Name,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		TimeToSolve: req.TimeToSolve,
		Questions:   selected,
		CreatorID:   *creatorID,
	}
	if err := s.exams.Create(ctx, exam); err != nil {
		metrics.ExamsComposed.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("store exam: %w", err)
	}

	metrics.ExamsComposed.WithLabelValues("created").Inc()
	s.log.Info().
		Str("exam_id", exam.ID.String()).
		Int64("creator_id", exam.CreatorID).
		Int("questions", len(exam.Questions)).
		Msg("Exam composed")
	return exam, nil
}

// fetchCandidates loads the questions of every distinct theme named by the
// filters and flattens them into one pool.
func (s *ExamService) fetchCandidates(ctx context.Context, filters []model.ExamCreationFilter) ([]model.Question, error) {
	themeIDs := distinctThemeIDs(filters)
	if len(themeIDs) == 0 {
		return nil, nil
	}

	results := make([][]model.Question, len(themeIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.fetchLimit)
	for i, id := range themeIDs {
		g.Go(func() error {
			questions, err := s.questions.ListByTheme(gctx, id)
			if err != nil {
				return fmt.Errorf("fetch questions for theme %d: %w", id, err)
			}
			results[i] = questions
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return slices.Concat(results...), nil
}

func (s *ExamService) selectQuestions(candidates []model.Question, filters []model.ExamCreationFilter) ([]model.Question, error) {
	selected := []model.Question{}
	for _, filter := range filters {
		for _, tf := range filter.ThemeFilters {
			for points := model.MinPoints; points <= model.MaxPoints; points++ {
				quota := tf.Quotas.Quota(points)
				if quota <= 0 {
					continue
				}

				var bucket []model.Question
				for _, q := range candidates {
					if q.Points == points && q.Theme.Is(tf.Theme.ID) {
						bucket = append(bucket, q)
					}
				}

				if len(bucket) < quota {
					return nil, &InsufficientQuestionsError{
						ThemeID:   tf.Theme.ID,
						Points:    points,
						Requested: quota,
						Available: len(bucket),
					}
				}

				selected = append(selected, shuffle.Shuffle(bucket, s.rng)[:quota]...)
			}
		}
	}
	return selected, nil
}

// distinctThemeIDs returns the theme ids referenced by the filters in
// first-seen order, skipping theme filters without a theme.
func distinctThemeIDs(filters []model.ExamCreationFilter) []int64 {
	seen := make(map[int64]struct{})
	var ids []int64
	for _, f := range filters {
		for _, tf := range f.ThemeFilters {
			if tf.Theme.ID == nil {
				continue
			}
			id := *tf.Theme.ID
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}

// GetExam retrieves a full exam, answers included.
func (s *ExamService) GetExam(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	exam, err := s.exams.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("get exam: %w", err)
	}
	return exam, nil
}

// ListExams retrieves the exams a teacher created, newest first.
func (s *ExamService) ListExams(ctx context.Context, creatorID int64, page, perPage int) ([]model.ExamSummary, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}

	exams, total, err := s.exams.ListByCreatorPaginated(ctx, creatorID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	if exams == nil {
		exams = []model.ExamSummary{}
	}

	return exams, response.NewPagination(page, perPage, total), nil
}

// ListResults returns the graded submissions of an exam.
func (s *ExamService) ListResults(ctx context.Context, examID uuid.UUID) ([]model.StudentExam, error) {
	if _, err := s.GetExam(ctx, examID); err != nil {
		return nil, err
	}
	return s.submissions.ListByExam(ctx, examID)
}
