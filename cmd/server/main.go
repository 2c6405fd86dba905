package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stemsi/exbank-backend/internal/config"
	"github.com/stemsi/exbank-backend/internal/database"
	"github.com/stemsi/exbank-backend/internal/handler"
	"github.com/stemsi/exbank-backend/internal/logger"
	"github.com/stemsi/exbank-backend/internal/metrics"
	"github.com/stemsi/exbank-backend/internal/middleware"
	"github.com/stemsi/exbank-backend/internal/repository"
	"github.com/stemsi/exbank-backend/internal/router"
	"github.com/stemsi/exbank-backend/internal/service"
	"github.com/stemsi/exbank-backend/internal/storage"
	"github.com/stemsi/exbank-backend/internal/validator"
	"github.com/stemsi/exbank-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Str("storage", cfg.StorageDriver).
		Msg("Starting ExBank Backend")

	// ─── Initialize Validator & Metrics ────────────────────────────────
	validator.Setup()
	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		log.Fatal().Err(err).Msg("Failed to register metrics")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Media Storage ─────────────────────────────────────────────────
	provider, err := storage.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize media storage")
	}

	// ─── Initialize Repositories ───────────────────────────────────────
	questionRepo := repository.NewQuestionRepository(pool)
	themeRepo := repository.NewThemeRepository(pool)
	examRepo := repository.NewExamRepository(pool)
	accountRepo := repository.NewAccountRepository(pool)
	submissionRepo := repository.NewSubmissionRepository(pool)
	answerLogRepo := repository.NewAnswerLogRepository(pool)
	// Solve state lives as long as the login session it belongs to.
	solveStateRepo := repository.NewSolveSessionRepository(rdb, cfg.JWTExpiry)

	answerLogQueue := worker.NewAnswerLogQueue(rdb)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, rdb, accountRepo)
	mediaService := service.NewMediaService(provider, cfg.MaxUploadBytes, cfg.MaxMediaFiles, log)
	themeService := service.NewThemeService(themeRepo)
	questionService := service.NewQuestionService(questionRepo, mediaService)
	examService := service.NewExamService(examRepo, questionRepo, submissionRepo, cfg.ComposeFetchConcurrency, log)
	solveService := service.NewSolveService(
		examRepo, accountRepo, submissionRepo, solveStateRepo, answerLogQueue, cfg.SolveEnforceEndDate, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Theme:    handler.NewThemeHandler(themeService),
		Question: handler.NewQuestionHandler(questionService),
		Exam:     handler.NewExamHandler(examService),
		Solve:    handler.NewSolveHandler(solveService),
		System:   handler.NewSystemHandler(pool, rdb, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	workerDone := make(chan struct{})

	answerLogWorker := worker.NewAnswerLogWorker(rdb, answerLogRepo, log)
	go func() {
		defer close(workerDone)
		answerLogWorker.Start(workerCtx)
	}()

	// ─── Setup Router ──────────────────────────────────────────────────
	limiterStop := make(chan struct{})
	loginLimiter := middleware.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginRateWindow, limiterStop)
	r := router.SetupRouter(authService, handlers, loginLimiter, cfg, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}
	close(limiterStop)

	// 2. Stop the answer log worker and let it drain its queue.
	workerCancel()
	select {
	case <-workerDone:
	case <-time.After(10 * time.Second):
		log.Warn().Msg("Answer log worker did not finish draining")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
