package observability

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"route", "method"},
	)

	AIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_requests_total",
			Help: "Total number of AI requests by backend and operation",
		},
		[]string{"backend", "operation"},
	)
	AIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_request_duration_seconds",
			Help:    "AI request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"backend", "operation"},
	)
	AIFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_fallbacks_total",
			Help: "Total number of invocations served by a fallback tier",
		},
		[]string{"tier"},
	)

	SessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "assessment_sessions_active",
			Help: "Number of sessions currently in progress",
		},
	)
	SessionsCompletedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assessment_sessions_completed_total",
			Help: "Total number of sessions reaching a terminal decision",
		},
		[]string{"decision"},
	)
	AnswersScoredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assessment_answers_scored_total",
			Help: "Total number of answers scored, by evaluation path",
		},
		[]string{"path"},
	)

	// Score distribution of individual answers (normalized fraction [0,1]).
	AnswerScoreHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "assessment_answer_score",
			Help:    "Distribution of per-answer scores (normalized fraction [0,1])",
			Buckets: []float64{0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
		},
	)
)

// InitMetrics registers all Prometheus collectors once per process.
func InitMetrics() {
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(AIRequestsTotal)
	prometheus.MustRegister(AIRequestDuration)
	prometheus.MustRegister(AIFallbacksTotal)
	prometheus.MustRegister(SessionsActive)
	prometheus.MustRegister(SessionsCompletedTotal)
	prometheus.MustRegister(AnswersScoredTotal)
	prometheus.MustRegister(AnswerScoreHistogram)
}

// HTTPMetricsMiddleware records Prometheus metrics for each request.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		dur := time.Since(start).Seconds()
		// Route pattern may be unavailable outside chi router; guard nil
		var route string
		if rc := chi.RouteContext(r.Context()); rc != nil {
			route = rc.RoutePattern()
		}
		if route == "" {
			route = r.URL.Path
		}
		method := r.Method
		status := ww.Status()
		HTTPRequestsTotal.WithLabelValues(route, method, http.StatusText(status)).Inc()
		HTTPRequestDuration.WithLabelValues(route, method).Observe(dur)
	})
}

// ObserveAnswerScore records a per-answer score from the evaluator.
func ObserveAnswerScore(score float64, path string) {
	if score >= 0 && score <= 1 {
		AnswerScoreHistogram.Observe(score)
	}
	AnswersScoredTotal.WithLabelValues(path).Inc()
}

// SessionCompleted records a terminal decision and frees the active gauge.
func SessionCompleted(decision string) {
	SessionsActive.Dec()
	SessionsCompletedTotal.WithLabelValues(decision).Inc()
}
