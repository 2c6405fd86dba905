package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stemsi/exbank-backend/internal/config"
	"github.com/stemsi/exbank-backend/internal/model"
)

// ErrNoSolveState is returned when a session has not opened an exam yet.
var ErrNoSolveState = errors.New("no exam state for this session")

// SolveSessionRepository keeps the in-progress exam state of each login
// session in Redis. The exam id lives in a string key and the answers in a
// list, so concurrent saves are plain RPUSH appends.
type SolveSessionRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSolveSessionRepository creates a SolveSessionRepository whose keys
// expire after ttl of inactivity.
func NewSolveSessionRepository(rdb *redis.Client, ttl time.Duration) *SolveSessionRepository {
	return &SolveSessionRepository{rdb: rdb, ttl: ttl}
}

// Get returns the state of a session, or ErrNoSolveState.
func (r *SolveSessionRepository) Get(ctx context.Context, sessionID string) (*model.SolveState, error) {
	raw, err := r.rdb.Get(ctx, config.CacheKey.SolveExamKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoSolveState
		}
		return nil, fmt.Errorf("get solve exam: %w", err)
	}

	examID, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse solve exam: %w", err)
	}

	entries, err := r.rdb.LRange(ctx, config.CacheKey.SolveAnsweredKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("get solve answers: %w", err)
	}

	state := &model.SolveState{ExamID: examID, Answered: make([]model.AnsweredQuestion, 0, len(entries))}
	for _, entry := range entries {
		var a model.AnsweredQuestion
		if err := json.Unmarshal([]byte(entry), &a); err != nil {
			return nil, fmt.Errorf("unmarshal solve answer: %w", err)
		}
		state.Answered = append(state.Answered, a)
	}
	return state, nil
}

// Start binds the session to examID with an empty answer list, replacing
// any previous state.
func (r *SolveSessionRepository) Start(ctx context.Context, sessionID string, examID uuid.UUID) error {
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, config.CacheKey.SolveExamKey(sessionID), examID.String(), r.ttl)
		pipe.Del(ctx, config.CacheKey.SolveAnsweredKey(sessionID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("start solve state: %w", err)
	}
	return nil
}

// Append adds an answer to the session's list. Answers are neither
// deduplicated nor checked against the exam.
func (r *SolveSessionRepository) Append(ctx context.Context, sessionID string, answer model.AnsweredQuestion) error {
	examKey := config.CacheKey.SolveExamKey(sessionID)
	n, err := r.rdb.Exists(ctx, examKey).Result()
	if err != nil {
		return fmt.Errorf("check solve state: %w", err)
	}
	if n == 0 {
		return ErrNoSolveState
	}

	data, err := json.Marshal(answer)
	if err != nil {
		return fmt.Errorf("marshal solve answer: %w", err)
	}

	answeredKey := config.CacheKey.SolveAnsweredKey(sessionID)
	_, err = r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, answeredKey, data)
		pipe.Expire(ctx, answeredKey, r.ttl)
		pipe.Expire(ctx, examKey, r.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("append solve answer: %w", err)
	}
	return nil
}

// Clear retires the session's exam state.
func (r *SolveSessionRepository) Clear(ctx context.Context, sessionID string) error {
	return r.rdb.Del(ctx,
		config.CacheKey.SolveExamKey(sessionID),
		config.CacheKey.SolveAnsweredKey(sessionID),
	).Err()
}
