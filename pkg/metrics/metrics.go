package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	AdvisorCallLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "advisor_call_latency_ms",
			Help:    "AI advisor call latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(100, 2, 10), // 100ms to ~100s
		},
		[]string{"operation", "status"},
	)

	ProjectsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "projects_completed_total",
			Help: "Total number of projects completed",
		},
	)

	CoinsAwarded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "coins_awarded_total",
			Help: "Total coins credited through project completion",
		},
	)

	CoinsSpent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "coins_spent_total",
			Help: "Total coins spent on item draws",
		},
	)

	SubTasksGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subtasks_generated_total",
			Help: "Total number of subtasks created",
		},
		[]string{"source"}, // source: manual, advisor
	)
)

// RecordHTTPRequestDuration records one handled request.
func RecordHTTPRequestDuration(method, path, status string, d time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(d.Seconds())
}

// RecordAdvisorCall records one round trip to the language model.
func RecordAdvisorCall(operation, status string, d time.Duration) {
	AdvisorCallLatency.WithLabelValues(operation, status).Observe(float64(d.Milliseconds()))
}

// RecordCompletion records a finished project and its payout.
func RecordCompletion(coin int) {
	ProjectsCompleted.Inc()
	CoinsAwarded.Add(float64(coin))
}

// RecordDraw records a coin spend on the item draw.
func RecordDraw(cost int) {
	CoinsSpent.Add(float64(cost))
}

// RecordSubTasksCreated counts created subtasks by origin.
func RecordSubTasksCreated(source string, n int) {
	SubTasksGenerated.WithLabelValues(source).Add(float64(n))
}
