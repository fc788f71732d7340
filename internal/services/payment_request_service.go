package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"paylink_backend/internal/appErrors"
	"paylink_backend/internal/email"
	"paylink_backend/internal/logger"
	"paylink_backend/internal/metrics"
	"paylink_backend/internal/models"
	"paylink_backend/internal/payroute"
	"paylink_backend/internal/repositories"
	"paylink_backend/internal/workspace"
)

type CreateRequestInput struct {
	Amount         string
	Currency       string
	Network        string
	RecipientEmail string
	RecipientName  string
	Description    string
	Kind           models.TransactionKind
	ScheduleKind   models.ScheduleKind
	ScheduledAt    *time.Time
}

// PaymentRequestService owns the payment request lifecycle. All transitions
// go through guarded conditional updates on the status column, so two
// concurrent attempts on the same request cannot both succeed.
type PaymentRequestService interface {
	Create(ctx context.Context, userID string, in *CreateRequestInput) (*models.PaymentRequest, error)
	Get(ctx context.Context, userID, id string) (*models.PaymentRequest, error)
	List(ctx context.Context, userID string) ([]models.PaymentRequest, error)

	Activate(ctx context.Context, id string) error
	// MarkPaid settles the request exactly once. A repeated call for an
	// already settled request reports duplicate=true and performs no side
	// effects; the caller treats that as success.
	MarkPaid(ctx context.Context, id, proofRef, payerAddress string) (req *models.PaymentRequest, duplicate bool, err error)
	Cancel(ctx context.Context, userID, id string) error
	MarkRefunded(ctx context.Context, id, txHash string) error

	// Scheduler cycles.
	ProcessDueActivations(ctx context.Context) CycleStats
	ProcessDueRefunds(ctx context.Context) CycleStats
}

type paymentRequestService struct {
	requestRepo  repositories.PaymentRequestRepository
	outgoingRepo repositories.OutgoingPaymentRepository
	ledgerRepo   repositories.LedgerRepository
	registry     *payroute.Registry
	notifier     email.Provider
	mirror       workspace.Mirror
	baseURL      string
}

func NewPaymentRequestService(
	requestRepo repositories.PaymentRequestRepository,
	outgoingRepo repositories.OutgoingPaymentRepository,
	ledgerRepo repositories.LedgerRepository,
	registry *payroute.Registry,
	notifier email.Provider,
	mirror workspace.Mirror,
	baseURL string,
) PaymentRequestService {
	return &paymentRequestService{
		requestRepo:  requestRepo,
		outgoingRepo: outgoingRepo,
		ledgerRepo:   ledgerRepo,
		registry:     registry,
		notifier:     notifier,
		mirror:       mirror,
		baseURL:      baseURL,
	}
}

func (s *paymentRequestService) Create(ctx context.Context, userID string, in *CreateRequestInput) (*models.PaymentRequest, error) {
	if !in.Kind.Valid() {
		return nil, appErrors.NewBadRequestError("Unknown transaction kind: " + string(in.Kind))
	}

	now := time.Now().UTC()

	req := &models.PaymentRequest{
		UserID:         userID,
		Amount:         in.Amount,
		Currency:       in.Currency,
		Network:        in.Network,
		RecipientEmail: in.RecipientEmail,
		RecipientName:  in.RecipientName,
		Description:    in.Description,
		Kind:           in.Kind,
		ScheduleKind:   in.ScheduleKind,
		ScheduledAt:    in.ScheduledAt,
	}
	req.ID = newID()

	// A scheduled request whose activation time already passed is activated
	// immediately rather than left dangling.
	if in.ScheduleKind == models.ScheduleScheduled && in.ScheduledAt != nil && in.ScheduledAt.After(now) {
		req.Status = models.RequestStatusScheduled
	} else {
		req.Status = models.RequestStatusProcessing
	}

	if err := s.requestRepo.Create(req); err != nil {
		return nil, appErrors.DatabaseError(err)
	}

	if req.Status == models.RequestStatusProcessing {
		s.registry.Register(req.ID, routeInfoOf(req))
		s.notifyRequestCreated(ctx, req)
	}
	s.mirrorUpsert(ctx, req)

	logger.CtxInfo(ctx, "payment request created",
		"request_id", req.ID, "status", req.Status, "kind", req.Kind, "amount", req.Amount, "currency", req.Currency)
	return req, nil
}

func (s *paymentRequestService) Get(ctx context.Context, userID, id string) (*models.PaymentRequest, error) {
	req, err := s.findRequest(id)
	if err != nil {
		return nil, err
	}
	if req.UserID != userID {
		return nil, appErrors.ErrForbidden
	}
	return req, nil
}

func (s *paymentRequestService) List(ctx context.Context, userID string) ([]models.PaymentRequest, error) {
	reqs, err := s.requestRepo.FindByUser(userID)
	if err != nil {
		return nil, appErrors.DatabaseError(err)
	}
	return reqs, nil
}

// Activate moves a scheduled request into processing and publishes its
// route. Until this point a scheduled request has no live payment link.
func (s *paymentRequestService) Activate(ctx context.Context, id string) error {
	req, err := s.findRequest(id)
	if err != nil {
		return err
	}

	applied, err := s.requestRepo.TransitionStatus(id,
		[]models.RequestStatus{models.RequestStatusScheduled}, models.RequestStatusProcessing)
	if err != nil {
		return appErrors.DatabaseError(err)
	}
	if !applied {
		// Already activated or cancelled in the meantime; nothing to do.
		return nil
	}

	req.Status = models.RequestStatusProcessing
	s.registry.Register(id, routeInfoOf(req))
	s.notifyRequestCreated(ctx, req)
	s.mirrorUpsert(ctx, req)

	logger.CtxInfo(ctx, "payment request activated", "request_id", id)
	return nil
}

func (s *paymentRequestService) MarkPaid(ctx context.Context, id, proofRef, payerAddress string) (*models.PaymentRequest, bool, error) {
	req, err := s.findRequest(id)
	if err != nil {
		return nil, false, err
	}

	if req.Status == models.RequestStatusPaymentReceived || req.Status == models.RequestStatusRefunded {
		// Duplicate delivery of the same settlement: success no-op.
		metrics.SettlementsTotal.WithLabelValues("duplicate").Inc()
		return req, true, nil
	}

	paidAt := time.Now().UTC()
	refundDueAt := ComputeRefundDueTime(paidAt, req.Kind)

	applied, err := s.requestRepo.MarkPaid(id, proofRef, payerAddress, paidAt, refundDueAt)
	if err != nil {
		return nil, false, appErrors.DatabaseError(err)
	}
	if !applied {
		// Lost the settlement race, or the request is not awaiting payment.
		fresh, ferr := s.findRequest(id)
		if ferr != nil {
			return nil, false, ferr
		}
		if fresh.Status == models.RequestStatusPaymentReceived {
			metrics.SettlementsTotal.WithLabelValues("duplicate").Inc()
			return fresh, true, nil
		}
		return nil, false, appErrors.ErrInvalidTransition
	}

	req.Status = models.RequestStatusPaymentReceived
	req.ProofRef = &proofRef
	req.PaidAt = &paidAt
	req.RefundDueAt = refundDueAt
	if payerAddress != "" {
		req.PayerAddress = &payerAddress
	}

	entry := &models.LedgerEntry{
		UserID:       req.UserID,
		Direction:    models.LedgerIncoming,
		Amount:       req.Amount,
		Currency:     req.Currency,
		Network:      req.Network,
		Counterparty: payerAddress,
		ProofRef:     proofRef,
		RequestID:    &req.ID,
		CompletedAt:  &paidAt,
	}
	entry.ID = newID()
	if err := s.ledgerRepo.Create(entry); err != nil {
		// The transition is already durable; a missing ledger row is a
		// reconciliation problem, not a reason to fail the settlement.
		logger.CtxWithError(ctx, "ledger entry creation failed after settlement", err, "request_id", id)
	}

	s.registry.Deregister(id)
	s.notifyPaymentReceived(ctx, req)
	s.mirrorUpsert(ctx, req)

	metrics.SettlementsTotal.WithLabelValues("settled").Inc()
	logger.CtxInfo(ctx, "payment received", "request_id", id, "proof_ref", proofRef, "payer", payerAddress)
	return req, false, nil
}

func (s *paymentRequestService) Cancel(ctx context.Context, userID, id string) error {
	req, err := s.findRequest(id)
	if err != nil {
		return err
	}
	if req.UserID != userID {
		return appErrors.ErrForbidden
	}

	// Money has moved; it cannot be silently un-received.
	if req.Status == models.RequestStatusPaymentReceived {
		return appErrors.ErrCancelAfterPaid
	}
	if req.Status.IsTerminal() {
		return appErrors.ErrInvalidTransition
	}

	applied, err := s.requestRepo.TransitionStatus(id,
		[]models.RequestStatus{models.RequestStatusDraft, models.RequestStatusScheduled, models.RequestStatusProcessing},
		models.RequestStatusCancelled)
	if err != nil {
		return appErrors.DatabaseError(err)
	}
	if !applied {
		// Raced with a settlement or another cancel.
		fresh, ferr := s.findRequest(id)
		if ferr != nil {
			return ferr
		}
		if fresh.Status == models.RequestStatusPaymentReceived {
			return appErrors.ErrCancelAfterPaid
		}
		return appErrors.ErrInvalidTransition
	}

	s.registry.Deregister(id)
	req.Status = models.RequestStatusCancelled
	s.mirrorUpsert(ctx, req)

	logger.CtxInfo(ctx, "payment request cancelled", "request_id", id)
	return nil
}

func (s *paymentRequestService) MarkRefunded(ctx context.Context, id, txHash string) error {
	applied, err := s.requestRepo.TransitionStatus(id,
		[]models.RequestStatus{models.RequestStatusPaymentReceived}, models.RequestStatusRefunded)
	if err != nil {
		return appErrors.DatabaseError(err)
	}
	if !applied {
		return appErrors.ErrInvalidTransition
	}

	req, err := s.findRequest(id)
	if err == nil {
		s.mirrorUpsert(ctx, req)
	}

	logger.CtxInfo(ctx, "payment request refunded", "request_id", id, "tx_hash", txHash)
	return nil
}

// ProcessDueActivations is the scheduler's request activation cycle.
func (s *paymentRequestService) ProcessDueActivations(ctx context.Context) CycleStats {
	var stats CycleStats

	due, err := s.requestRepo.FindDueScheduled(time.Now().UTC())
	if err != nil {
		logger.CtxWithError(ctx, "activation cycle query failed", err)
		return stats
	}
	stats.Found = len(due)

	for _, req := range due {
		if err := s.Activate(ctx, req.ID); err != nil {
			stats.Failed++
			metrics.SchedulerItems.WithLabelValues("activation", "failed").Inc()
			logger.CtxWithError(ctx, "activation failed", err, "request_id", req.ID)
			continue
		}
		stats.Processed++
		metrics.SchedulerItems.WithLabelValues("activation", "processed").Inc()
	}
	return stats
}

// ProcessDueRefunds creates the refund obligation (an outgoing payment back
// to the original payer) for every paid ask_and_refund request whose refund
// window elapsed. Idempotent: a request with an existing outgoing payment is
// skipped.
func (s *paymentRequestService) ProcessDueRefunds(ctx context.Context) CycleStats {
	var stats CycleStats

	due, err := s.requestRepo.FindDueRefunds(time.Now().UTC())
	if err != nil {
		logger.CtxWithError(ctx, "refund cycle query failed", err)
		return stats
	}
	stats.Found = len(due)

	for _, req := range due {
		exists, err := s.outgoingRepo.ExistsForRequest(req.ID)
		if err != nil {
			stats.Failed++
			metrics.SchedulerItems.WithLabelValues("refund", "failed").Inc()
			logger.CtxWithError(ctx, "refund existence check failed", err, "request_id", req.ID)
			continue
		}
		if exists {
			stats.Processed++
			continue
		}

		if req.PayerAddress == nil || *req.PayerAddress == "" {
			stats.Failed++
			metrics.SchedulerItems.WithLabelValues("refund", "failed").Inc()
			logger.CtxError(ctx, "refund due but payer address unknown", "request_id", req.ID)
			continue
		}

		payment := &models.OutgoingPayment{
			UserID:           req.UserID,
			Amount:           req.Amount,
			Currency:         req.Currency,
			Network:          req.Network,
			RecipientAddress: *req.PayerAddress,
			ScheduledAt:      time.Now().UTC(),
			Status:           models.OutgoingStatusScheduled,
			RequestID:        &req.ID,
		}
		payment.ID = newID()

		if err := s.outgoingRepo.Create(payment); err != nil {
			stats.Failed++
			metrics.SchedulerItems.WithLabelValues("refund", "failed").Inc()
			logger.CtxWithError(ctx, "refund obligation creation failed", err, "request_id", req.ID)
			continue
		}
		stats.Processed++
		metrics.SchedulerItems.WithLabelValues("refund", "processed").Inc()
		logger.CtxInfo(ctx, "refund obligation scheduled", "request_id", req.ID, "payment_id", payment.ID)
	}
	return stats
}

func (s *paymentRequestService) findRequest(id string) (*models.PaymentRequest, error) {
	req, err := s.requestRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrPaymentRequestNotFound) {
			return nil, appErrors.ErrRequestNotFound
		}
		return nil, appErrors.DatabaseError(err)
	}
	return req, nil
}

func routeInfoOf(req *models.PaymentRequest) payroute.RouteInfo {
	return payroute.RouteInfo{
		UserID:      req.UserID,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Network:     req.Network,
		Description: req.Description,
	}
}

// notifyRequestCreated emails the payment link to the payer. Best effort:
// notification failures never affect the state transition.
func (s *paymentRequestService) notifyRequestCreated(ctx context.Context, req *models.PaymentRequest) {
	if req.RecipientEmail == "" {
		return
	}
	subject, body := email.PaymentRequestBody(
		req.RecipientName, req.Amount, req.Currency, req.Description,
		req.PaymentLink(s.baseURL), req.Kind.Refundable())
	if err := s.notifier.Send(req.RecipientEmail, subject, body); err != nil {
		logger.CtxWithError(ctx, "payment request email failed", err, "request_id", req.ID)
	}
}

func (s *paymentRequestService) notifyPaymentReceived(ctx context.Context, req *models.PaymentRequest) {
	if req.RecipientEmail == "" {
		return
	}
	subject := "Payment received: " + req.Amount + " " + req.Currency
	body := "<html><body><p>Your payment of <b>" + req.Amount + " " + req.Currency +
		"</b> was received. Thank you!</p></body></html>"
	if err := s.notifier.Send(req.RecipientEmail, subject, body); err != nil {
		logger.CtxWithError(ctx, "payment confirmation email failed", err, "request_id", req.ID)
	}
}

// mirrorUpsert pushes the request snapshot to the external workspace and
// records the pushed fields on the row. Best effort, re-entrant.
func (s *paymentRequestService) mirrorUpsert(ctx context.Context, req *models.PaymentRequest) {
	fields := workspace.RecordFields{
		RequestID:     req.ID,
		Status:        string(req.Status),
		Amount:        req.Amount,
		Currency:      req.Currency,
		Network:       req.Network,
		RecipientName: req.RecipientName,
		Description:   req.Description,
	}
	if req.PaidAt != nil {
		fields.PaidAt = req.PaidAt.Format(time.RFC3339)
	}
	if req.RefundDueAt != nil {
		fields.RefundDueAt = req.RefundDueAt.Format(time.RFC3339)
	}

	if err := s.mirror.UpsertRecord(ctx, req.ID, fields); err != nil {
		logger.CtxWithError(ctx, "workspace mirror upsert failed", err, "request_id", req.ID)
		return
	}

	if snapshot, err := json.Marshal(fields); err == nil {
		if err := s.requestRepo.UpdateMirrorFields(req.ID, snapshot); err != nil {
			logger.CtxWithError(ctx, "mirror snapshot persist failed", err, "request_id", req.ID)
		}
	}
}
