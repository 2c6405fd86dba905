package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/exbank-backend/internal/config"
	"github.com/stemsi/exbank-backend/internal/model"
)

type memoryWriter struct {
	mu      sync.Mutex
	entries []model.AnswerLogEntry
	fail    bool
}

func (m *memoryWriter) Insert(_ context.Context, e *model.AnswerLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("database unavailable")
	}
	m.entries = append(m.entries, *e)
	return nil
}

func (m *memoryWriter) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func newTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb, mr
}

func TestAnswerLogWorkerPersistsQueuedEntries(t *testing.T) {
	rdb, _ := newTestRedis(t)
	writer := &memoryWriter{}
	w := NewAnswerLogWorker(rdb, writer, zerolog.Nop())
	w.pollWait = 50 * time.Millisecond

	queue := NewAnswerLogQueue(rdb)
	examID := uuid.New()
	for i := int64(1); i <= 3; i++ {
		err := queue.Publish(context.Background(), model.AnswerLogEntry{
			SessionID: "sid", AccountID: 7, ExamID: examID, QuestionID: i, AnswerID: i * 10,
		})
		if err != nil {
			t.Fatalf("publish: %v", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for writer.count() < 3 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	<-done

	if writer.count() != 3 {
		t.Fatalf("persisted %d entries, want 3", writer.count())
	}
	if writer.entries[0].ExamID != examID || writer.entries[2].QuestionID != 3 {
		t.Errorf("unexpected entries: %+v", writer.entries)
	}
}

func TestAnswerLogWorkerDrainKeepsEntryOnFailure(t *testing.T) {
	rdb, mr := newTestRedis(t)
	writer := &memoryWriter{fail: true}
	w := NewAnswerLogWorker(rdb, writer, zerolog.Nop())

	_ = NewAnswerLogQueue(rdb).Publish(context.Background(), model.AnswerLogEntry{SessionID: "sid"})

	w.drain(context.Background())

	items, err := mr.List(config.WorkerKey.PersistSolveAnswersQueue)
	if err != nil {
		t.Fatalf("list queue: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("queue length = %d, want entry pushed back", len(items))
	}
}

func TestAnswerLogWorkerDropsMalformedEntries(t *testing.T) {
	rdb, mr := newTestRedis(t)
	writer := &memoryWriter{}
	w := NewAnswerLogWorker(rdb, writer, zerolog.Nop())

	mr.RPush(config.WorkerKey.PersistSolveAnswersQueue, "{not json")
	w.drain(context.Background())

	if writer.count() != 0 {
		t.Fatalf("malformed entry was persisted")
	}
	if mr.Exists(config.WorkerKey.PersistSolveAnswersQueue) {
		t.Fatalf("malformed entry should be consumed")
	}
}
