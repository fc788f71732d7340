package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SettlementsTotal counts gateway decisions by outcome
	// (settled, rejected, timeout, not_found, duplicate).
	SettlementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "paylink_settlements_total",
		Help: "Inbound proof decisions by outcome.",
	}, []string{"outcome"})

	VerifyDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "paylink_verify_duration_seconds",
		Help:    "Wall-clock duration of verify/settle round trips.",
		Buckets: prometheus.DefBuckets,
	})

	// SchedulerItems counts per-cycle item outcomes
	// (cycle: activation|outgoing|refund; result: processed|failed).
	SchedulerItems = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "paylink_scheduler_items_total",
		Help: "Scheduler cycle items by result.",
	}, []string{"cycle", "result"})

	SchedulerRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "paylink_scheduler_runs_total",
		Help: "Scheduler cycle executions.",
	}, []string{"cycle"})
)
