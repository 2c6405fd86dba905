package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/exbank-backend/internal/config"
	"github.com/stemsi/exbank-backend/internal/response"
)

const healthCheckTimeout = 2 * time.Second

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SystemHandler reports process and dependency health.
type SystemHandler struct {
	db        Pinger
	rdb       *redis.Client
	startTime time.Time
	log       zerolog.Logger
}

func NewSystemHandler(db Pinger, rdb *redis.Client, log zerolog.Logger) *SystemHandler {
	return &SystemHandler{
		db:        db,
		rdb:       rdb,
		startTime: time.Now(),
		log:       log.With().Str("component", "system_handler").Logger(),
	}
}

type systemStatus struct {
	Status     string            `json:"status"`
	Uptime     string            `json:"uptime"`
	Goroutines int               `json:"goroutines"`
	HeapAlloc  uint64            `json:"heap_alloc"`
	Checks     map[string]string `json:"checks"`
	// Entries waiting in the answer log queue; -1 when Redis is down.
	QueueAnswerLog int64 `json:"queue_answer_log"`
}

// Health godoc
// GET /health
// Returns 200 when Postgres and Redis answer, 503 otherwise.
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	status := systemStatus{
		Status:         "ok",
		Uptime:         time.Since(h.startTime).Round(time.Second).String(),
		Goroutines:     runtime.NumGoroutine(),
		HeapAlloc:      mem.HeapAlloc,
		Checks:         map[string]string{},
		QueueAnswerLog: -1,
	}

	if err := h.db.Ping(ctx); err != nil {
		h.log.Warn().Err(err).Msg("Postgres health check failed")
		status.Checks["postgres"] = err.Error()
		status.Status = "degraded"
	} else {
		status.Checks["postgres"] = "ok"
	}

	if n, err := h.rdb.LLen(ctx, config.WorkerKey.PersistSolveAnswersQueue).Result(); err != nil {
		h.log.Warn().Err(err).Msg("Redis health check failed")
		status.Checks["redis"] = err.Error()
		status.Status = "degraded"
	} else {
		status.Checks["redis"] = "ok"
		status.QueueAnswerLog = n
	}

	code := http.StatusOK
	if status.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	response.Success(c, code, status)
}
