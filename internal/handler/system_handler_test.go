package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/exbank-backend/internal/config"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func healthStatus(t *testing.T, db Pinger, rdb *redis.Client) int {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health", NewSystemHandler(db, rdb, zerolog.Nop()).Health)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	return w.Code
}

func TestHealthReportsQueueDepth(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	mr.RPush(config.WorkerKey.PersistSolveAnswersQueue, "{}")

	if code := healthStatus(t, stubPinger{}, rdb); code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
}

func TestHealthDegraded(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	if code := healthStatus(t, stubPinger{err: errors.New("connection refused")}, rdb); code != http.StatusServiceUnavailable {
		t.Fatalf("postgres down: status = %d, want 503", code)
	}

	mr.Close()
	if code := healthStatus(t, stubPinger{}, rdb); code != http.StatusServiceUnavailable {
		t.Fatalf("redis down: status = %d, want 503", code)
	}
}
