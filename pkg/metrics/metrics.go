package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AccessDecisions counts access-control evaluations and their outcome (allow|deny|error).
	AccessDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cgdb_access_decisions_total",
			Help: "Total number of access decisions",
		},
		[]string{"permission", "result"},
	)

	// CreatorGrantTasks counts processed creator-grant outbox tasks by result (done|error).
	CreatorGrantTasks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cgdb_creator_grant_tasks_total",
			Help: "Total number of creator grant outbox tasks processed",
		},
		[]string{"result"},
	)

	// AuthAttempts records login attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cgdb_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cgdb_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
