// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exbank_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "exbank_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// ExamsComposed counts composition attempts by outcome
	// (created, insufficient, unauthenticated, error).
	ExamsComposed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exbank_exams_composed_total",
			Help: "Exam composition attempts by outcome",
		},
		[]string{"outcome"},
	)

	AnswersSaved = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "exbank_solve_answers_saved_total",
		Help: "In-progress answers saved by students",
	})

	Submissions = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "exbank_submissions_total",
		Help: "Graded exam submissions",
	})

	GradePercentage = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "exbank_grade_percentage",
		Help:    "Distribution of submission grades in percent",
		Buckets: prometheus.LinearBuckets(0, 10, 11),
	})

	AnswerLogQueueErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "exbank_answer_log_errors_total",
		Help: "Answer log entries that could not be queued or persisted",
	})
)

// Register adds every collector to reg.
func Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		RequestCounter,
		RequestDuration,
		ExamsComposed,
		AnswersSaved,
		Submissions,
		GradePercentage,
		AnswerLogQueueErrors,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Middleware records request counts and latencies per route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		RequestCounter.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(c.Writer.Status()),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			endpoint,
		).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the default Prometheus registry.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
