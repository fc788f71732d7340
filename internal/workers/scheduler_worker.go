package workers

import (
	"context"
	"time"

	"paylink_backend/internal/logger"
	"paylink_backend/internal/metrics"
	"paylink_backend/internal/services"
)

// SchedulerWorker drives the three periodic lifecycle cycles:
// request activation, outgoing payment execution, and refund scheduling.
// Each cycle is idempotent and isolates per-item failures, so one bad record
// never halts a batch.
type SchedulerWorker struct {
	requests services.PaymentRequestService
	outgoing services.OutgoingPaymentService

	activationInterval time.Duration
	outgoingInterval   time.Duration
	refundInterval     time.Duration
}

func NewSchedulerWorker(
	requests services.PaymentRequestService,
	outgoing services.OutgoingPaymentService,
	activationInterval, outgoingInterval, refundInterval time.Duration,
) *SchedulerWorker {
	return &SchedulerWorker{
		requests:           requests,
		outgoing:           outgoing,
		activationInterval: activationInterval,
		outgoingInterval:   outgoingInterval,
		refundInterval:     refundInterval,
	}
}

// Start launches the three cycles on independent timers.
func (w *SchedulerWorker) Start(ctx context.Context) {
	go w.runCycle(ctx, "activation", w.activationInterval, w.requests.ProcessDueActivations)
	go w.runCycle(ctx, "outgoing", w.outgoingInterval, w.outgoing.ProcessDue)
	go w.runCycle(ctx, "refund", w.refundInterval, w.requests.ProcessDueRefunds)
}

func (w *SchedulerWorker) runCycle(ctx context.Context, name string, interval time.Duration, run func(context.Context) services.CycleStats) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("scheduler cycle stopped", "cycle", name)
			return
		case <-ticker.C:
			metrics.SchedulerRuns.WithLabelValues(name).Inc()
			stats := run(ctx)
			if stats.Found > 0 {
				logger.Info("scheduler cycle run",
					"cycle", name,
					"found", stats.Found,
					"processed", stats.Processed,
					"failed", stats.Failed,
				)
			}
		}
	}
}
