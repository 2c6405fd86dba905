package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/exbank-backend/internal/config"
	"github.com/stemsi/exbank-backend/internal/metrics"
	"github.com/stemsi/exbank-backend/internal/model"
)

// AnswerLogQueue pushes saved answers onto the Redis queue drained by
// AnswerLogWorker.
type AnswerLogQueue struct {
	rdb *redis.Client
}

// NewAnswerLogQueue creates a new AnswerLogQueue.
func NewAnswerLogQueue(rdb *redis.Client) *AnswerLogQueue {
	return &AnswerLogQueue{rdb: rdb}
}

// Publish enqueues one entry.
func (q *AnswerLogQueue) Publish(ctx context.Context, entry model.AnswerLogEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal answer log: %w", err)
	}
	return q.rdb.RPush(ctx, config.WorkerKey.PersistSolveAnswersQueue, data).Err()
}

// AnswerLogWriter persists answer log entries.
type AnswerLogWriter interface {
	Insert(ctx context.Context, e *model.AnswerLogEntry) error
}

// AnswerLogWorker consumes persist_solve_answers_queue and appends every
// entry to the solve_answer_log table.
type AnswerLogWorker struct {
	rdb        *redis.Client
	writer     AnswerLogWriter
	log        zerolog.Logger
	pollWait   time.Duration
	retryDelay time.Duration
}

// NewAnswerLogWorker creates a new AnswerLogWorker.
func NewAnswerLogWorker(rdb *redis.Client, writer AnswerLogWriter, log zerolog.Logger) *AnswerLogWorker {
	return &AnswerLogWorker{
		rdb:        rdb,
		writer:     writer,
		log:        log.With().Str("component", "answer_log_worker").Logger(),
		pollWait:   time.Second,
		retryDelay: 5 * time.Second,
	}
}

// Start runs the worker loop until ctx is cancelled, then drains what is
// left in the queue. Call in a goroutine.
func (w *AnswerLogWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			w.drain(context.Background())
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *AnswerLogWorker) processNext(ctx context.Context) {
	queue := config.WorkerKey.PersistSolveAnswersQueue

	result, err := w.rdb.BLPop(ctx, w.pollWait, queue).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
		}
		return
	}
	if len(result) < 2 {
		return
	}

	entry, err := decodeAnswerLog(result[1])
	if err != nil {
		metrics.AnswerLogQueueErrors.Inc()
		w.log.Error().Err(err).Msg("Dropping malformed entry")
		return
	}

	if err := w.writer.Insert(ctx, entry); err != nil {
		metrics.AnswerLogQueueErrors.Inc()
		w.log.Error().Err(err).
			Str("session_id", entry.SessionID).
			Str("exam_id", entry.ExamID.String()).
			Msg("Persist error, retrying")
		w.rdb.RPush(context.Background(), queue, result[1])

		select {
		case <-ctx.Done():
		case <-time.After(w.retryDelay):
		}
	}
}

// drain processes all remaining items in the queue before shutdown.
func (w *AnswerLogWorker) drain(ctx context.Context) {
	queue := config.WorkerKey.PersistSolveAnswersQueue

	drained := 0
	for {
		raw, err := w.rdb.LPop(ctx, queue).Result()
		if err != nil {
			break
		}

		entry, err := decodeAnswerLog(raw)
		if err != nil {
			w.log.Error().Err(err).Msg("Drain unmarshal error")
			continue
		}

		if err := w.writer.Insert(ctx, entry); err != nil {
			w.log.Error().Err(err).Msg("Drain persist error")
			w.rdb.RPush(ctx, queue, raw)
			break
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining items")
	}
}

func decodeAnswerLog(raw string) (*model.AnswerLogEntry, error) {
	var entry model.AnswerLogEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}
