package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Package-level Prometheus metrics, auto-registered with the default registry.
var (
	// ChatRequestsTotal counts orchestrated requests.
	//
	// Labels:
	//   - intent: classified intent tag, "unknown" when rejected before classification
	//   - outcome: "success" or the public error kind
	ChatRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salaatflow",
			Subsystem: "assistant",
			Name:      "chat_requests_total",
			Help:      "Total chat requests by intent and outcome.",
		},
		[]string{"intent", "outcome"},
	)

	ChatRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "salaatflow",
			Subsystem: "assistant",
			Name:      "chat_request_duration_seconds",
			Help:      "Chat request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"path"},
	)

	ToolExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salaatflow",
			Subsystem: "tools",
			Name:      "executions_total",
			Help:      "Tool executions by tool and outcome.",
		},
		[]string{"tool", "outcome"},
	)

	// GenerationAttemptsTotal counts individual provider attempts, retries included.
	GenerationAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salaatflow",
			Subsystem: "generation",
			Name:      "attempts_total",
			Help:      "Generation provider attempts by outcome.",
		},
		[]string{"outcome"},
	)

	LogLinesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "salaatflow",
			Subsystem: "logging",
			Name:      "lines_dropped_total",
			Help:      "Log lines dropped because a stream buffer was full.",
		},
	)
)
