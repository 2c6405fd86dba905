package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/exbank-backend/internal/metrics"
	"github.com/stemsi/exbank-backend/internal/model"
	"github.com/stemsi/exbank-backend/internal/repository"
)

// SolveSession identifies the login session a student is solving in.
type SolveSession struct {
	ID        string
	AccountID int64
}

// SolveService runs the student side of an exam: opening it, saving
// answers while solving, and submitting for a grade.
type SolveService struct {
	exams          ExamStore
	accounts       AccountStore
	submissions    SubmissionStore
	state          SolveStateStore
	answerLog      AnswerLogPublisher
	enforceEndDate bool
	now            func() time.Time
	log            zerolog.Logger
}

// NewSolveService creates a new SolveService. answerLog may be nil.
func NewSolveService(
	exams ExamStore,
	accounts AccountStore,
	submissions SubmissionStore,
	state SolveStateStore,
	answerLog AnswerLogPublisher,
	enforceEndDate bool,
	log zerolog.Logger,
) *SolveService {
	return &SolveService{
		exams:          exams,
		accounts:       accounts,
		submissions:    submissions,
		state:          state,
		answerLog:      answerLog,
		enforceEndDate: enforceEndDate,
		now:            time.Now,
		log:            log.With().Str("component", "solve_service").Logger(),
	}
}

// GetExamForSolve returns the stripped exam together with the answers the
// session already saved for it. The session's exam state is (re)started
// when it has none or it belongs to another exam.
func (s *SolveService) GetExamForSolve(ctx context.Context, sess SolveSession, examID uuid.UUID) (*model.SolveView, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("get exam: %w", err)
	}

	stripped := exam.Strip()

	now := s.now()
	if now.Before(exam.StartDate) {
		return nil, ErrExamNotOpen
	}
	if s.enforceEndDate && now.After(exam.EndDate) {
		return nil, ErrExamClosed
	}

	state, err := s.state.Get(ctx, sess.ID)
	if err != nil && !errors.Is(err, repository.ErrNoSolveState) {
		return nil, fmt.Errorf("get solve state: %w", err)
	}

	answered := []model.AnsweredQuestion{}
	if state != nil && state.ExamID == examID {
		answered = state.Answered
	} else {
		if err := s.state.Start(ctx, sess.ID, examID); err != nil {
			return nil, fmt.Errorf("start solve state: %w", err)
		}
		s.log.Debug().
			Str("session_id", sess.ID).
			Str("exam_id", examID.String()).
			Msg("Solve state started")
	}

	return &model.SolveView{Exam: stripped, Answered: answered}, nil
}

// SaveAnswer appends an answer to the session's exam state. Answers are
// not checked against the exam and repeated saves are all kept.
func (s *SolveService) SaveAnswer(ctx context.Context, sess SolveSession, req *model.SaveAnswerRequest) error {
	answer := model.AnsweredQuestion{QuestionID: req.QuestionID, AnswerID: req.AnswerID}
	if err := s.state.Append(ctx, sess.ID, answer); err != nil {
		if errors.Is(err, repository.ErrNoSolveState) {
			return ErrNoSolveSession
		}
		return fmt.Errorf("save answer: %w", err)
	}
	metrics.AnswersSaved.Inc()

	if s.answerLog != nil {
		s.publishAnswerLog(ctx, sess, answer)
	}
	return nil
}

func (s *SolveService) publishAnswerLog(ctx context.Context, sess SolveSession, answer model.AnsweredQuestion) {
	state, err := s.state.Get(ctx, sess.ID)
	if err != nil {
		s.log.Warn().Err(err).Str("session_id", sess.ID).Msg("Answer log skipped")
		return
	}

	entry := model.AnswerLogEntry{
		SessionID:  sess.ID,
		AccountID:  sess.AccountID,
		ExamID:     state.ExamID,
		QuestionID: answer.QuestionID,
		AnswerID:   answer.AnswerID,
		SavedAt:    s.now(),
	}
	if err := s.answerLog.Publish(ctx, entry); err != nil {
		metrics.AnswerLogQueueErrors.Inc()
		s.log.Warn().Err(err).Str("session_id", sess.ID).Msg("Failed to queue answer log")
	}
}

// SubmitExam grades and stores a student's solution. A student submits an
// exam at most once. When the request carries no solution, the answers
// saved in the session for that exam are graded instead.
func (s *SolveService) SubmitExam(ctx context.Context, sess SolveSession, req *model.SubmitExamRequest) (*model.Grade, error) {
	student, err := s.accounts.GetStudentByAccountID(ctx, sess.AccountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotAStudent
		}
		return nil, fmt.Errorf("resolve student: %w", err)
	}

	submitted, err := s.submissions.HasSubmitted(ctx, req.ExamID, student.ID)
	if err != nil {
		return nil, fmt.Errorf("check submission: %w", err)
	}
	if submitted {
		return nil, ErrAlreadySubmitted
	}

	exam, err := s.exams.GetByID(ctx, req.ExamID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("get exam: %w", err)
	}

	// The session may be solving a different exam; that state is not ours.
	state := s.examState(ctx, sess, exam.ID)
	solution := model.StudentSolution{Student: *student, ExamID: exam.ID, Solution: req.Solution}
	if len(solution.Solution) == 0 && state != nil {
		solution.Solution = state.Answered
	}

	grade, answers := Grade(exam, solution.Solution)
	result := &model.StudentExam{
		ExamID:    exam.ID,
		StudentID: student.ID,
		Grade:     grade,
		Answers:   answers,
	}
	if err := s.submissions.Create(ctx, result); err != nil {
		if errors.Is(err, repository.ErrDuplicateSubmission) {
			return nil, ErrAlreadySubmitted
		}
		return nil, fmt.Errorf("store submission: %w", err)
	}

	if state != nil {
		if err := s.state.Clear(ctx, sess.ID); err != nil {
			s.log.Warn().Err(err).Str("session_id", sess.ID).Msg("Failed to clear solve state")
		}
	}

	metrics.Submissions.Inc()
	metrics.GradePercentage.Observe(grade.Percentage)
	s.log.Info().
		Str("exam_id", exam.ID.String()).
		Int64("student_id", student.ID).
		Int("points", grade.Points).
		Int("max_points", grade.MaxPoints).
		Msg("Exam submitted")

	return &grade, nil
}

// examState returns the session's solve state when it belongs to examID.
func (s *SolveService) examState(ctx context.Context, sess SolveSession, examID uuid.UUID) *model.SolveState {
	state, err := s.state.Get(ctx, sess.ID)
	if err != nil {
		if !errors.Is(err, repository.ErrNoSolveState) {
			s.log.Warn().Err(err).Str("session_id", sess.ID).Msg("Failed to load solve state")
		}
		return nil
	}
	if state.ExamID != examID {
		return nil
	}
	return state
}
