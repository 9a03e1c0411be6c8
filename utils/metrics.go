package utils

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ReqCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "app_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ReqDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "app_request_duration_seconds",
			Help: "Request duration seconds",
		},
		[]string{"method", "path"},
	)

	ScoreComputations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "app_score_computations_total",
			Help: "Weekly score computations by cache outcome",
		},
		[]string{"source"}, // cache | engine
	)

	ErrorCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "app_errors_total",
			Help: "Total app errors",
		},
		[]string{"handler", "type"},
	)
)

func InitMetrics() {
	prometheus.MustRegister(ReqCount, ReqDuration, ScoreComputations, ErrorCount)
}
