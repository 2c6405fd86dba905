package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/exbank-backend/internal/config"
	"github.com/stemsi/exbank-backend/internal/handler"
	"github.com/stemsi/exbank-backend/internal/metrics"
	"github.com/stemsi/exbank-backend/internal/middleware"
	"github.com/stemsi/exbank-backend/internal/model"
	"github.com/stemsi/exbank-backend/internal/response"
	"github.com/stemsi/exbank-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth     *handler.AuthHandler
	Theme    *handler.ThemeHandler
	Question *handler.QuestionHandler
	Exam     *handler.ExamHandler
	Solve    *handler.SolveHandler
	System   *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// loginLimiter may be nil to disable login rate limiting.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	loginLimiter *middleware.RateLimiter,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", response.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{response.RequestIDHeader}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(log))
	router.Use(metrics.Middleware())
	router.Use(middleware.Brotli())

	// Locally stored question media.
	if cfg.StorageDriver == "" || cfg.StorageDriver == "local" {
		uploads := router.Group("/uploads")
		uploads.Use(middleware.CacheControl(31536000))
		uploads.Static("/", cfg.UploadDir)
	}

	router.GET("/health", handlers.System.Health)
	router.GET("/metrics", metrics.Handler())

	api := router.Group("/api/v1")
	requireAuth := middleware.RequireAuth(authService)
	teacherOnly := middleware.RequireRole(model.RoleTeacher)
	studentOnly := middleware.RequireRole(model.RoleStudent)

	// ─── 1. Auth ───────────────────────────────────────────────────────
	auth := api.Group("/auth")
	{
		login := []gin.HandlerFunc{handlers.Auth.Login}
		if loginLimiter != nil {
			login = append([]gin.HandlerFunc{loginLimiter.Middleware()}, login...)
		}
		auth.POST("/login", login...)
		auth.GET("/me", requireAuth, handlers.Auth.Me)
		auth.POST("/logout", requireAuth, handlers.Auth.Logout)
	}

	// ─── 2. Themes ─────────────────────────────────────────────────────
	themes := api.Group("/themes", requireAuth)
	{
		themes.GET("", handlers.Theme.ListThemes)
		themes.POST("", teacherOnly, handlers.Theme.CreateTheme)
	}

	// ─── 3. Question bank (teacher) ────────────────────────────────────
	question := api.Group("/question", requireAuth, teacherOnly)
	{
		question.GET("/", handlers.Question.ListQuestions)
		question.POST("/", handlers.Question.CreateQuestion)
		question.GET("/:question_id", handlers.Question.GetQuestion)
		question.PUT("/:question_id", handlers.Question.UpdateQuestion)
		question.DELETE("/:question_id", handlers.Question.DeleteQuestion)
	}

	// ─── 4. Exams (teacher) ────────────────────────────────────────────
	exam := api.Group("/exam", requireAuth, teacherOnly)
	{
		exam.GET("/", handlers.Exam.ListExams)
		exam.POST("/", handlers.Exam.CreateExam)
		exam.GET("/:exam_id", handlers.Exam.GetExam)
		exam.GET("/:exam_id/results", handlers.Exam.ListResults)
	}

	// ─── 5. Solving (student) ──────────────────────────────────────────
	solve := api.Group("/solve", requireAuth, studentOnly, middleware.NoStore())
	{
		solve.POST("/answer", handlers.Solve.SaveAnswer)
		solve.POST("/submit", handlers.Solve.SubmitExam)
		solve.GET("/:exam_id", handlers.Solve.GetExam)
	}

	return router
}
