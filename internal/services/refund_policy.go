package services

import (
	"time"

	"paylink_backend/internal/models"
)

// RefundWindow is how long after payment an ask_and_refund request must be
// refunded.
const RefundWindow = 30 * 24 * time.Hour

// ComputeRefundDueTime returns when a completed request must be refunded,
// or nil when its kind carries no refund obligation. Pure, no side effects.
func ComputeRefundDueTime(paidAt time.Time, kind models.TransactionKind) *time.Time {
	if !kind.Refundable() {
		return nil
	}
	due := paidAt.Add(RefundWindow)
	return &due
}
