package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/exbank-backend/internal/model"
)

func bankQuestion(id int64, themeID *int64, points int) model.Question {
	return model.Question{
		ID:     id,
		Text:   "question",
		Points: points,
		Theme:  model.ThemeRef{ID: themeID},
		Answers: []model.Answer{
			{ID: id*10 + 1, QuestionID: id, Text: "right", Correct: true},
			{ID: id*10 + 2, QuestionID: id, Text: "wrong"},
		},
	}
}

// seedBank adds count questions of the given theme and points, starting at id.
func seedBank(store *fakeQuestionStore, startID int64, themeID *int64, points, count int) {
	for i := 0; i < count; i++ {
		store.questions = append(store.questions, bankQuestion(startID+int64(i), themeID, points))
	}
}

func themeFilter(themeID *int64, quotas ...int) model.ThemeFilter {
	var q model.PointQuotas
	for i, n := range quotas {
		q.Set(i+1, n)
	}
	return model.ThemeFilter{Theme: model.ThemeRef{ID: themeID}, Quotas: q}
}

func examRequest(filters ...model.ExamCreationFilter) *model.CreateExamRequest {
	return &model.CreateExamRequest{
		Name:        "Midterm",
		TimeToSolve: model.TimeToSolve{Hours: 1, Minutes: 30},
		Filters:     filters,
	}
}

func newTestExamService(questions *fakeQuestionStore, exams *fakeExamStore) *ExamService {
	svc := NewExamService(exams, questions, &fakeSubmissionStore{}, 4, zerolog.Nop())
	svc.rng = rand.New(rand.NewPCG(1, 2))
	return svc
}

func countBy(questions []model.Question, themeID int64, points int) int {
	n := 0
	for _, q := range questions {
		if q.Points == points && q.Theme.ID != nil && *q.Theme.ID == themeID {
			n++
		}
	}
	return n
}

func TestCreateExamSelectsExactQuotas(t *testing.T) {
	theme := int64Ptr(1)
	questions := newFakeQuestionStore()
	seedBank(questions, 1, theme, 1, 5)
	seedBank(questions, 100, theme, 5, 2)
	exams := newFakeExamStore()
	svc := newTestExamService(questions, exams)

	req := examRequest(model.ExamCreationFilter{ThemeFilters: []model.ThemeFilter{themeFilter(theme, 2, 0, 0, 0, 1)}})
	exam, err := svc.CreateExam(context.Background(), int64Ptr(9), req)
	if err != nil {
		t.Fatalf("create exam: %v", err)
	}

	if len(exam.Questions) != 3 {
		t.Fatalf("got %d questions, want 3", len(exam.Questions))
	}
	if countBy(exam.Questions, 1, 1) != 2 || countBy(exam.Questions, 1, 5) != 1 {
		t.Fatalf("unexpected selection: %+v", exam.Questions)
	}
	if exam.Questions[0].Points != 1 || exam.Questions[2].Points != 5 {
		t.Errorf("selection not ordered by point value")
	}
	if exam.Questions[0].ID == exam.Questions[1].ID {
		t.Errorf("bucket selection contains a duplicate")
	}
	if exam.CreatorID != 9 || exams.creates != 1 {
		t.Errorf("creator = %d, creates = %d", exam.CreatorID, exams.creates)
	}
	if exam.TimeToSolve.TotalMinutes() != 90 {
		t.Errorf("time to solve = %+v", exam.TimeToSolve)
	}
}

func TestCreateExamQuotaExactlyMet(t *testing.T) {
	theme := int64Ptr(1)
	questions := newFakeQuestionStore()
	seedBank(questions, 1, theme, 1, 5)
	seedBank(questions, 100, theme, 5, 1)
	svc := newTestExamService(questions, newFakeExamStore())

	req := examRequest(model.ExamCreationFilter{ThemeFilters: []model.ThemeFilter{themeFilter(theme, 2, 0, 0, 0, 1)}})
	exam, err := svc.CreateExam(context.Background(), int64Ptr(9), req)
	if err != nil {
		t.Fatalf("create exam: %v", err)
	}
	if countBy(exam.Questions, 1, 5) != 1 || exam.Questions[2].ID != 100 {
		t.Fatalf("expected the only 5-point question, got %+v", exam.Questions)
	}
}

func TestCreateExamInsufficientQuestionsWritesNothing(t *testing.T) {
	theme := int64Ptr(1)
	questions := newFakeQuestionStore()
	seedBank(questions, 1, theme, 1, 5)
	exams := newFakeExamStore()
	svc := newTestExamService(questions, exams)

	req := examRequest(model.ExamCreationFilter{ThemeFilters: []model.ThemeFilter{themeFilter(theme, 2, 0, 0, 0, 1)}})
	_, err := svc.CreateExam(context.Background(), int64Ptr(9), req)
	if !errors.Is(err, ErrInsufficientQuestions) {
		t.Fatalf("expected ErrInsufficientQuestions, got %v", err)
	}

	var detail *InsufficientQuestionsError
	if !errors.As(err, &detail) {
		t.Fatalf("expected *InsufficientQuestionsError, got %T", err)
	}
	if detail.Points != 5 || detail.Requested != 1 || detail.Available != 0 || *detail.ThemeID != 1 {
		t.Errorf("unexpected detail: %+v", detail)
	}
	if exams.creates != 0 {
		t.Fatalf("store received %d writes, want 0", exams.creates)
	}
}

func TestCreateExamHugeQuotaIsInsufficient(t *testing.T) {
	theme := int64Ptr(1)
	questions := newFakeQuestionStore()
	seedBank(questions, 1, theme, 1, 5)
	exams := newFakeExamStore()
	svc := newTestExamService(questions, exams)

	req := examRequest(model.ExamCreationFilter{ThemeFilters: []model.ThemeFilter{themeFilter(theme, 1<<44)}})
	_, err := svc.CreateExam(context.Background(), int64Ptr(9), req)

	var detail *InsufficientQuestionsError
	if !errors.As(err, &detail) {
		t.Fatalf("expected *InsufficientQuestionsError, got %v", err)
	}
	if detail.Requested != 1<<44 || detail.Available != 5 {
		t.Errorf("unexpected detail: %+v", detail)
	}
	if exams.creates != 0 {
		t.Fatalf("store received %d writes, want 0", exams.creates)
	}
}

func TestCreateExamAllZeroQuotas(t *testing.T) {
	theme := int64Ptr(1)
	questions := newFakeQuestionStore()
	seedBank(questions, 1, theme, 1, 3)
	svc := newTestExamService(questions, newFakeExamStore())

	req := examRequest(model.ExamCreationFilter{ThemeFilters: []model.ThemeFilter{themeFilter(theme, 0, 0, 0, 0, 0)}})
	exam, err := svc.CreateExam(context.Background(), int64Ptr(9), req)
	if err != nil {
		t.Fatalf("create exam: %v", err)
	}
	if len(exam.Questions) != 0 {
		t.Fatalf("expected empty exam, got %d questions", len(exam.Questions))
	}
}

func TestCreateExamNoFilters(t *testing.T) {
	questions := newFakeQuestionStore()
	svc := newTestExamService(questions, newFakeExamStore())

	exam, err := svc.CreateExam(context.Background(), int64Ptr(9), examRequest())
	if err != nil {
		t.Fatalf("create exam: %v", err)
	}
	if exam.Questions == nil || len(exam.Questions) != 0 {
		t.Fatalf("expected an empty, non-nil question list")
	}
	if len(questions.themeCalls) != 0 {
		t.Errorf("no theme should be fetched")
	}
}

func TestCreateExamNullThemeWithQuotaFails(t *testing.T) {
	questions := newFakeQuestionStore()
	seedBank(questions, 1, nil, 1, 5)
	exams := newFakeExamStore()
	svc := newTestExamService(questions, exams)

	req := examRequest(model.ExamCreationFilter{ThemeFilters: []model.ThemeFilter{themeFilter(nil, 1)}})
	_, err := svc.CreateExam(context.Background(), int64Ptr(9), req)
	if !errors.Is(err, ErrInsufficientQuestions) {
		t.Fatalf("expected ErrInsufficientQuestions, got %v", err)
	}
	if len(questions.themeCalls) != 0 {
		t.Errorf("null theme must not be fetched: %v", questions.themeCalls)
	}
	if exams.creates != 0 {
		t.Errorf("store received writes")
	}
}

func TestCreateExamFetchesEachThemeOnce(t *testing.T) {
	t1, t2 := int64Ptr(1), int64Ptr(2)
	questions := newFakeQuestionStore()
	seedBank(questions, 1, t1, 2, 4)
	seedBank(questions, 100, t2, 3, 4)
	svc := newTestExamService(questions, newFakeExamStore())

	req := examRequest(
		model.ExamCreationFilter{ThemeFilters: []model.ThemeFilter{themeFilter(t1, 0, 1), themeFilter(t2, 0, 0, 1)}},
		model.ExamCreationFilter{ThemeFilters: []model.ThemeFilter{themeFilter(t1, 0, 2)}},
	)
	exam, err := svc.CreateExam(context.Background(), int64Ptr(9), req)
	if err != nil {
		t.Fatalf("create exam: %v", err)
	}

	if questions.themeCalls[1] != 1 || questions.themeCalls[2] != 1 {
		t.Fatalf("theme fetches = %v, want one per theme", questions.themeCalls)
	}
	if len(exam.Questions) != 4 {
		t.Fatalf("got %d questions, want 4", len(exam.Questions))
	}
	if countBy(exam.Questions, 1, 2) != 3 || countBy(exam.Questions, 2, 3) != 1 {
		t.Fatalf("unexpected selection: %+v", exam.Questions)
	}
	// Filter order: theme 1, theme 2, then the second filter's theme 1.
	if exam.Questions[1].Theme.ID == nil || *exam.Questions[1].Theme.ID != 2 {
		t.Errorf("selection does not follow filter order")
	}
}

func TestCreateExamDuplicateFiltersSampleIndependently(t *testing.T) {
	theme := int64Ptr(1)
	questions := newFakeQuestionStore()
	seedBank(questions, 1, theme, 1, 2)
	svc := newTestExamService(questions, newFakeExamStore())

	// Each filter alone fits in the bucket; together they exceed it.
	filter := model.ExamCreationFilter{ThemeFilters: []model.ThemeFilter{themeFilter(theme, 2)}}
	exam, err := svc.CreateExam(context.Background(), int64Ptr(9), examRequest(filter, filter))
	if err != nil {
		t.Fatalf("create exam: %v", err)
	}
	if len(exam.Questions) != 4 {
		t.Fatalf("got %d questions, want 4", len(exam.Questions))
	}
}

func TestCreateExamUnauthenticated(t *testing.T) {
	theme := int64Ptr(1)
	questions := newFakeQuestionStore()
	seedBank(questions, 1, theme, 1, 2)
	exams := newFakeExamStore()
	svc := newTestExamService(questions, exams)

	req := examRequest(model.ExamCreationFilter{ThemeFilters: []model.ThemeFilter{themeFilter(theme, 1)}})
	_, err := svc.CreateExam(context.Background(), nil, req)
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if exams.creates != 0 {
		t.Errorf("store received writes")
	}
}

func TestCreateExamFetchFailure(t *testing.T) {
	questions := newFakeQuestionStore()
	questions.fetchErr = errStoreDown
	exams := newFakeExamStore()
	svc := newTestExamService(questions, exams)

	req := examRequest(model.ExamCreationFilter{ThemeFilters: []model.ThemeFilter{themeFilter(int64Ptr(1), 1)}})
	_, err := svc.CreateExam(context.Background(), int64Ptr(9), req)
	if !errors.Is(err, errStoreDown) {
		t.Fatalf("expected store failure, got %v", err)
	}
	if exams.creates != 0 {
		t.Errorf("store received writes")
	}
}

func TestCreateExamSelectsOnlyFromBucket(t *testing.T) {
	t1, t2 := int64Ptr(1), int64Ptr(2)
	questions := newFakeQuestionStore()
	seedBank(questions, 1, t1, 3, 10)
	seedBank(questions, 100, t1, 4, 10)
	seedBank(questions, 200, t2, 3, 10)
	svc := newTestExamService(questions, newFakeExamStore())

	for i := 0; i < 20; i++ {
		req := examRequest(model.ExamCreationFilter{ThemeFilters: []model.ThemeFilter{themeFilter(t1, 0, 0, 4)}})
		exam, err := svc.CreateExam(context.Background(), int64Ptr(9), req)
		if err != nil {
			t.Fatalf("create exam: %v", err)
		}
		seen := map[int64]bool{}
		for _, q := range exam.Questions {
			if q.ID < 1 || q.ID > 10 {
				t.Fatalf("question %d drawn from outside the bucket", q.ID)
			}
			if seen[q.ID] {
				t.Fatalf("question %d selected twice", q.ID)
			}
			seen[q.ID] = true
		}
	}
}

func TestGetExamNotFound(t *testing.T) {
	svc := newTestExamService(newFakeQuestionStore(), newFakeExamStore())
	if _, err := svc.GetExam(context.Background(), uuid.New()); !errors.Is(err, ErrExamNotFound) {
		t.Fatalf("expected ErrExamNotFound, got %v", err)
	}
}

func TestListExamsClampsPagination(t *testing.T) {
	exams := newFakeExamStore(
		&model.Exam{ID: uuid.New(), Name: "a", CreatorID: 1},
		&model.Exam{ID: uuid.New(), Name: "b", CreatorID: 1},
		&model.Exam{ID: uuid.New(), Name: "c", CreatorID: 2},
	)
	svc := newTestExamService(newFakeQuestionStore(), exams)

	list, p, err := svc.ListExams(context.Background(), 1, 0, 500)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || p.Page != 1 || p.PerPage != 100 || p.TotalItems != 2 || p.TotalPages != 1 {
		t.Fatalf("unexpected result: %d items, %+v", len(list), p)
	}
}
