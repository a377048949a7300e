package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// ConflictChecks counts availability checks by outcome ("clear" or
	// "conflict").
	ConflictChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "equiprent",
			Name:      "conflict_checks_total",
			Help:      "Availability conflict checks by outcome.",
		},
		[]string{"outcome"},
	)

	// ChargeLinesBuilt counts charge lines emitted by billing runs.
	ChargeLinesBuilt = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "equiprent",
			Name:      "charge_lines_built_total",
			Help:      "Charge lines produced by billing builds.",
		},
	)

	// JobDuration observes scheduled job run time by job name.
	JobDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "equiprent",
			Name:      "job_duration_seconds",
			Help:      "Scheduled job duration.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"job"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(ConflictChecks, ChargeLinesBuilt, JobDuration)
	})
}
