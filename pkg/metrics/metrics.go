package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP Metrics
	HTTPRequestsTotal *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
	HTTPResponseSize  *prometheus.HistogramVec

	// Schedule Run Metrics
	ScheduleRunsTotal   *prometheus.CounterVec
	ScheduleRunDuration prometheus.Histogram
	BudgetDenialsTotal  *prometheus.CounterVec
	GenerationCostUSD   prometheus.Counter

	// Publication Metrics
	PublicationsTotal *prometheus.CounterVec

	// AI Metrics
	AIRequestsTotal   *prometheus.CounterVec
	AIRequestDuration *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPResponseSize: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 8),
			},
			[]string{"method", "path", "status"},
		),

		ScheduleRunsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "schedule_runs_total",
				Help: "Total number of schedule runs by outcome",
			},
			[]string{"disposition"},
		),
		ScheduleRunDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "schedule_run_duration_seconds",
				Help:    "End-to-end schedule run duration in seconds",
				Buckets: prometheus.ExponentialBuckets(0.5, 2, 10), // 0.5s to ~256s
			},
		),
		BudgetDenialsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budget_denials_total",
				Help: "Total number of runs denied by budget caps",
			},
			[]string{"reason"},
		),
		GenerationCostUSD: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "generation_cost_usd_total",
				Help: "Cumulative AI generation spend in USD",
			},
		),

		PublicationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "publications_total",
				Help: "Total number of publication attempts by outcome",
			},
			[]string{"outcome"},
		),

		AIRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ai_requests_total",
				Help: "Total number of AI provider requests",
			},
			[]string{"provider", "status"},
		),
		AIRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ai_request_duration_seconds",
				Help:    "AI provider request latency in seconds",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 0.1s to ~102s
			},
			[]string{"provider"},
		),
	}
}
