package services

import (
	"context"
	"errors"
	"time"

	"paylink_backend/internal/appErrors"
	"paylink_backend/internal/logger"
	"paylink_backend/internal/metrics"
	"paylink_backend/internal/models"
	"paylink_backend/internal/repositories"
	"paylink_backend/internal/verifier"
)

type ScheduleOutgoingInput struct {
	Amount           string
	Currency         string
	Network          string
	RecipientAddress string
	ScheduledAt      *time.Time
}

// refundCompleter closes the loop on a refund once its outgoing payment
// settles.
type refundCompleter interface {
	MarkRefunded(ctx context.Context, id, txHash string) error
}

// OutgoingPaymentService owns scheduled unilateral sends, including refund
// obligations created by the refund cycle.
type OutgoingPaymentService interface {
	Schedule(ctx context.Context, userID string, in *ScheduleOutgoingInput) (*models.OutgoingPayment, error)
	List(ctx context.Context, userID string) ([]models.OutgoingPayment, error)

	// ProcessDue is the scheduler's outgoing payment cycle. Each item is
	// claimed with a scheduled->processing CAS, executed, then completed or
	// failed. Failed sends are terminal; they require operator intervention
	// and are never retried automatically (double-send risk).
	ProcessDue(ctx context.Context) CycleStats
}

type outgoingPaymentService struct {
	outgoingRepo repositories.OutgoingPaymentRepository
	ledgerRepo   repositories.LedgerRepository
	verifier     verifier.Verifier
	requests     refundCompleter
	sendTimeout  time.Duration
}

func NewOutgoingPaymentService(
	outgoingRepo repositories.OutgoingPaymentRepository,
	ledgerRepo repositories.LedgerRepository,
	v verifier.Verifier,
	requests refundCompleter,
	sendTimeout time.Duration,
) OutgoingPaymentService {
	if sendTimeout <= 0 {
		sendTimeout = 30 * time.Second
	}
	return &outgoingPaymentService{
		outgoingRepo: outgoingRepo,
		ledgerRepo:   ledgerRepo,
		verifier:     v,
		requests:     requests,
		sendTimeout:  sendTimeout,
	}
}

func (s *outgoingPaymentService) Schedule(ctx context.Context, userID string, in *ScheduleOutgoingInput) (*models.OutgoingPayment, error) {
	scheduledAt := time.Now().UTC()
	if in.ScheduledAt != nil {
		scheduledAt = in.ScheduledAt.UTC()
	}

	payment := &models.OutgoingPayment{
		UserID:           userID,
		Amount:           in.Amount,
		Currency:         in.Currency,
		Network:          in.Network,
		RecipientAddress: in.RecipientAddress,
		ScheduledAt:      scheduledAt,
		Status:           models.OutgoingStatusScheduled,
	}
	payment.ID = newID()

	if err := s.outgoingRepo.Create(payment); err != nil {
		return nil, appErrors.DatabaseError(err)
	}

	logger.CtxInfo(ctx, "outgoing payment scheduled",
		"payment_id", payment.ID, "amount", payment.Amount, "scheduled_at", scheduledAt)
	return payment, nil
}

func (s *outgoingPaymentService) List(ctx context.Context, userID string) ([]models.OutgoingPayment, error) {
	payments, err := s.outgoingRepo.FindByUser(userID)
	if err != nil {
		return nil, appErrors.DatabaseError(err)
	}
	return payments, nil
}

func (s *outgoingPaymentService) ProcessDue(ctx context.Context) CycleStats {
	var stats CycleStats

	due, err := s.outgoingRepo.FindDue(time.Now().UTC())
	if err != nil {
		logger.CtxWithError(ctx, "outgoing cycle query failed", err)
		return stats
	}
	stats.Found = len(due)

	for _, payment := range due {
		if err := s.executeOne(ctx, &payment); err != nil {
			stats.Failed++
			metrics.SchedulerItems.WithLabelValues("outgoing", "failed").Inc()
			// Fatal for the item, never for the batch.
			logger.CtxWithError(ctx, "outgoing payment failed", err, "payment_id", payment.ID)
			continue
		}
		stats.Processed++
		metrics.SchedulerItems.WithLabelValues("outgoing", "processed").Inc()
	}
	return stats
}

func (s *outgoingPaymentService) executeOne(ctx context.Context, payment *models.OutgoingPayment) error {
	claimed, err := s.outgoingRepo.ClaimForProcessing(payment.ID)
	if err != nil {
		return appErrors.DatabaseError(err)
	}
	if !claimed {
		// Another cycle instance already owns this row.
		return nil
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()

	result, err := s.verifier.Transfer(sendCtx, verifier.TransferRequest{
		UserID:           payment.UserID,
		Network:          payment.Network,
		Amount:           payment.Amount,
		Currency:         payment.Currency,
		RecipientAddress: payment.RecipientAddress,
		Reference:        payment.ID,
	})
	if err != nil || !result.Success {
		reason := "transfer call failed"
		if err != nil {
			reason = err.Error()
		} else if result.ErrorReason != "" {
			reason = result.ErrorReason
		}
		if _, ferr := s.outgoingRepo.MarkFailed(payment.ID, reason); ferr != nil {
			logger.CtxWithError(ctx, "could not mark outgoing payment failed", ferr, "payment_id", payment.ID)
		}
		return errors.New(reason)
	}

	executedAt := time.Now().UTC()
	if _, err := s.outgoingRepo.MarkCompleted(payment.ID, result.TxHash, executedAt); err != nil {
		return appErrors.DatabaseError(err)
	}

	direction := models.LedgerOutgoing
	if payment.RequestID != nil {
		direction = models.LedgerRefund
	}
	entry := &models.LedgerEntry{
		UserID:       payment.UserID,
		Direction:    direction,
		Amount:       payment.Amount,
		Currency:     payment.Currency,
		Network:      payment.Network,
		Counterparty: payment.RecipientAddress,
		ProofRef:     result.TxHash,
		RequestID:    payment.RequestID,
		PaymentID:    &payment.ID,
		CompletedAt:  &executedAt,
	}
	entry.ID = newID()
	if err := s.ledgerRepo.Create(entry); err != nil {
		logger.CtxWithError(ctx, "ledger entry creation failed for outgoing payment", err, "payment_id", payment.ID)
	}

	if payment.RequestID != nil {
		if err := s.requests.MarkRefunded(ctx, *payment.RequestID, result.TxHash); err != nil {
			logger.CtxWithError(ctx, "refund completion failed", err,
				"payment_id", payment.ID, "request_id", *payment.RequestID)
		}
	}

	logger.CtxInfo(ctx, "outgoing payment completed",
		"payment_id", payment.ID, "tx_hash", result.TxHash)
	return nil
}
