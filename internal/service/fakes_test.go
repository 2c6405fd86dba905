package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/exbank-backend/internal/model"
	"github.com/stemsi/exbank-backend/internal/repository"
)

func int64Ptr(v int64) *int64 { return &v }

// ─── Questions ──────────────────────────────────────────────────────────────

type fakeQuestionStore struct {
	mu          sync.Mutex
	questions   []model.Question
	themeCalls  map[int64]int
	fetchErr    error
	inUse       map[int64]bool
	nextID      int64
	createCalls int
}

func newFakeQuestionStore(questions ...model.Question) *fakeQuestionStore {
	return &fakeQuestionStore{
		questions:  questions,
		themeCalls: map[int64]int{},
		inUse:      map[int64]bool{},
		nextID:     1000,
	}
}

func (f *fakeQuestionStore) List(context.Context) ([]model.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Question{}, f.questions...), nil
}

func (f *fakeQuestionStore) ListByTheme(_ context.Context, themeID int64) ([]model.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.themeCalls[themeID]++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	var out []model.Question
	for _, q := range f.questions {
		if q.Theme.ID != nil && *q.Theme.ID == themeID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeQuestionStore) GetByID(_ context.Context, id int64) (*model.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.questions {
		if f.questions[i].ID == id {
			q := f.questions[i]
			return &q, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeQuestionStore) Create(_ context.Context, q *model.Question) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	f.nextID++
	q.ID = f.nextID
	for i := range q.Answers {
		f.nextID++
		q.Answers[i].ID = f.nextID
		q.Answers[i].QuestionID = q.ID
	}
	f.questions = append(f.questions, *q)
	return nil
}

func (f *fakeQuestionStore) Update(_ context.Context, id int64, text string, points int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.inUse[id] {
		return repository.ErrQuestionInUse
	}
	for i := range f.questions {
		if f.questions[i].ID == id {
			f.questions[i].Text = text
			f.questions[i].Points = points
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeQuestionStore) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.inUse[id] {
		return repository.ErrQuestionInUse
	}
	for i := range f.questions {
		if f.questions[i].ID == id {
			f.questions = append(f.questions[:i], f.questions[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

// ─── Exams ──────────────────────────────────────────────────────────────────

type fakeExamStore struct {
	mu        sync.Mutex
	exams     map[uuid.UUID]*model.Exam
	creates   int
	createErr error
}

func newFakeExamStore(exams ...*model.Exam) *fakeExamStore {
	f := &fakeExamStore{exams: map[uuid.UUID]*model.Exam{}}
	for _, e := range exams {
		f.exams[e.ID] = e
	}
	return f
}

func (f *fakeExamStore) Create(_ context.Context, e *model.Exam) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.createErr != nil {
		return f.createErr
	}
	e.ID = uuid.New()
	e.CreatedAt = time.Now()
	f.exams[e.ID] = e
	return nil
}

func (f *fakeExamStore) GetByID(_ context.Context, id uuid.UUID) (*model.Exam, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.exams[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return e, nil
}

func (f *fakeExamStore) ListByCreatorPaginated(_ context.Context, creatorID int64, limit, offset int) ([]model.ExamSummary, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []model.ExamSummary
	for _, e := range f.exams {
		if e.CreatorID == creatorID {
			all = append(all, model.ExamSummary{ID: e.ID, Name: e.Name, QuestionCount: len(e.Questions)})
		}
	}
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := min(offset+limit, total)
	return all[offset:end], total, nil
}

// ─── Accounts ───────────────────────────────────────────────────────────────

type fakeAccountStore struct {
	mu       sync.Mutex
	accounts map[int64]*model.Account
	students map[int64]*model.Student
	nextID   int64
}

func newFakeAccountStore() *fakeAccountStore {
	return &fakeAccountStore{
		accounts: map[int64]*model.Account{},
		students: map[int64]*model.Student{},
	}
}

func (f *fakeAccountStore) GetByEmail(_ context.Context, email string) (*model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeAccountStore) GetByID(_ context.Context, id int64) (*model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return a, nil
}

func (f *fakeAccountStore) GetStudentByAccountID(_ context.Context, accountID int64) (*model.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.students[accountID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s, nil
}

func (f *fakeAccountStore) Create(_ context.Context, a *model.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.accounts {
		if existing.Email == a.Email {
			return repository.ErrDuplicateEmail
		}
	}
	f.nextID++
	a.ID = f.nextID
	f.accounts[a.ID] = a
	if a.Role == model.RoleStudent {
		f.students[a.ID] = &model.Student{ID: a.ID + 500, AccountID: a.ID, Name: a.Name}
	}
	return nil
}

// ─── Submissions ────────────────────────────────────────────────────────────

type fakeSubmissionStore struct {
	mu        sync.Mutex
	results   []model.StudentExam
	createErr error
}

func (f *fakeSubmissionStore) HasSubmitted(_ context.Context, examID uuid.UUID, studentID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.results {
		if r.ExamID == examID && r.StudentID == studentID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSubmissionStore) Create(_ context.Context, se *model.StudentExam) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	se.ID = int64(len(f.results) + 1)
	se.SubmittedAt = time.Now()
	f.results = append(f.results, *se)
	return nil
}

func (f *fakeSubmissionStore) ListByExam(_ context.Context, examID uuid.UUID) ([]model.StudentExam, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.StudentExam{}
	for _, r := range f.results {
		if r.ExamID == examID {
			out = append(out, r)
		}
	}
	return out, nil
}

// ─── Solve state ────────────────────────────────────────────────────────────

type fakeSolveState struct {
	mu     sync.Mutex
	states map[string]*model.SolveState
	starts int
}

func newFakeSolveState() *fakeSolveState {
	return &fakeSolveState{states: map[string]*model.SolveState{}}
}

func (f *fakeSolveState) Get(_ context.Context, sessionID string) (*model.SolveState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.states[sessionID]
	if !ok {
		return nil, repository.ErrNoSolveState
	}
	cp := *s
	cp.Answered = append([]model.AnsweredQuestion{}, s.Answered...)
	return &cp, nil
}

func (f *fakeSolveState) Start(_ context.Context, sessionID string, examID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts++
	f.states[sessionID] = &model.SolveState{ExamID: examID, Answered: []model.AnsweredQuestion{}}
	return nil
}

func (f *fakeSolveState) Append(_ context.Context, sessionID string, a model.AnsweredQuestion) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.states[sessionID]
	if !ok {
		return repository.ErrNoSolveState
	}
	s.Answered = append(s.Answered, a)
	return nil
}

func (f *fakeSolveState) Clear(_ context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.states, sessionID)
	return nil
}

// ─── Answer log ─────────────────────────────────────────────────────────────

type fakeAnswerLog struct {
	mu      sync.Mutex
	entries []model.AnswerLogEntry
	err     error
}

func (f *fakeAnswerLog) Publish(_ context.Context, e model.AnswerLogEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, e)
	return nil
}

var errStoreDown = errors.New("store unavailable")
