package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"paylink_backend/internal/appErrors"
	"paylink_backend/internal/logger"
	"paylink_backend/internal/metrics"
	"paylink_backend/internal/payroute"
	"paylink_backend/internal/verifier"
)

type OutcomeKind string

const (
	OutcomeSettled  OutcomeKind = "settled"
	OutcomeRejected OutcomeKind = "rejected"
	OutcomeTimedOut OutcomeKind = "timed_out"
	OutcomeNotFound OutcomeKind = "not_found"
)

// SettlementOutcome is the single structured result of an inbound proof.
type SettlementOutcome struct {
	Kind          OutcomeKind `json:"kind"`
	Reason        string      `json:"reason,omitempty"`
	SettlementRef string      `json:"settlementRef,omitempty"`
	// Duplicate marks a repeated delivery of an already accepted proof;
	// reported as success to the caller.
	Duplicate bool `json:"duplicate,omitempty"`
}

// VerificationPolicy captures the timeout behavior of the gateway.
type VerificationPolicy struct {
	VerifyTimeout time.Duration
	// OptimisticTimeoutAccept: when the verifier does not answer in time and
	// a proof was present, settle anyway and rely on reconciliation to
	// correct a false positive. Deliberate payer-experience tradeoff.
	OptimisticTimeoutAccept bool
}

// VerificationService is the gateway between inbound payment proofs and the
// state machine. It enforces at-most-once settlement per link.
type VerificationService interface {
	// HandleInboundProof decides accept/reject for a proof submitted to a
	// payment link.
	HandleInboundProof(ctx context.Context, paymentID, proof string) (*SettlementOutcome, error)

	// RequirementsFor exposes the verification requirements for a live link,
	// used for the 402 response shown to payers before they submit a proof.
	RequirementsFor(ctx context.Context, paymentID string) (*verifier.VerificationRequirements, error)
}

type verificationService struct {
	registry *payroute.Registry
	wallets  WalletDirectory
	verifier verifier.Verifier
	requests PaymentRequestService
	policy   VerificationPolicy
}

func NewVerificationService(
	registry *payroute.Registry,
	wallets WalletDirectory,
	v verifier.Verifier,
	requests PaymentRequestService,
	policy VerificationPolicy,
) VerificationService {
	if policy.VerifyTimeout <= 0 {
		policy.VerifyTimeout = 5 * time.Second
	}
	return &verificationService{
		registry: registry,
		wallets:  wallets,
		verifier: v,
		requests: requests,
		policy:   policy,
	}
}

func (s *verificationService) RequirementsFor(ctx context.Context, paymentID string) (*verifier.VerificationRequirements, error) {
	route, ok := s.registry.Lookup(paymentID)
	if !ok {
		return nil, appErrors.ErrRouteNotFound
	}

	address, err := s.wallets.ResolveReceivingAddress(ctx, route.UserID, route.Network)
	if err != nil {
		return nil, err
	}

	reqs := s.buildRequirements(route, address)
	return &reqs, nil
}

func (s *verificationService) HandleInboundProof(ctx context.Context, paymentID, proof string) (*SettlementOutcome, error) {
	route, ok := s.registry.Lookup(paymentID)
	if !ok {
		metrics.SettlementsTotal.WithLabelValues("not_found").Inc()
		return &SettlementOutcome{Kind: OutcomeNotFound}, appErrors.ErrRouteNotFound
	}

	address, err := s.wallets.ResolveReceivingAddress(ctx, route.UserID, route.Network)
	if err != nil {
		if appErrors.Is(err, appErrors.ErrNoWallet) {
			metrics.SettlementsTotal.WithLabelValues("rejected").Inc()
			return &SettlementOutcome{Kind: OutcomeRejected, Reason: "no_wallet"}, appErrors.ErrNoWallet
		}
		return nil, err
	}

	reqs := s.buildRequirements(route, address)

	verifyCtx, cancel := context.WithTimeout(ctx, s.policy.VerifyTimeout)
	defer cancel()

	start := time.Now()
	result, verr := s.verifier.Settle(verifyCtx, proof, reqs)
	metrics.VerifyDuration.Observe(time.Since(start).Seconds())

	if verr != nil {
		if errors.Is(verr, context.DeadlineExceeded) || verifyCtx.Err() != nil {
			return s.handleTimeout(ctx, paymentID, proof)
		}
		// Verifier errors are rejections, never crashes; the route stays
		// live so the payer can retry.
		metrics.SettlementsTotal.WithLabelValues("rejected").Inc()
		logger.CtxWithError(ctx, "verifier call failed", verr, "request_id", paymentID)
		return &SettlementOutcome{Kind: OutcomeRejected, Reason: "verifier_error"}, appErrors.ErrVerificationRejected
	}

	if !result.Success {
		metrics.SettlementsTotal.WithLabelValues("rejected").Inc()
		reason := result.ErrorReason
		if reason == "" {
			reason = "proof_invalid"
		}
		return &SettlementOutcome{Kind: OutcomeRejected, Reason: reason},
			appErrors.ErrVerificationRejected.WithDetails(reason)
	}

	// Single irrevocable settlement event. MarkPaid is the idempotency
	// barrier; the route is removed only once the state machine accepts.
	_, duplicate, err := s.requests.MarkPaid(ctx, paymentID, result.SettlementRef, result.PayerAddress)
	if err != nil {
		return nil, err
	}

	return &SettlementOutcome{
		Kind:          OutcomeSettled,
		SettlementRef: result.SettlementRef,
		Duplicate:     duplicate,
	}, nil
}

func (s *verificationService) handleTimeout(ctx context.Context, paymentID, proof string) (*SettlementOutcome, error) {
	if !s.policy.OptimisticTimeoutAccept || proof == "" {
		metrics.SettlementsTotal.WithLabelValues("timeout").Inc()
		return &SettlementOutcome{Kind: OutcomeTimedOut, Reason: "verifier_timeout"}, appErrors.ErrVerificationTimeout
	}

	// Optimistic acceptance: the proof was present but the verifier did not
	// answer in time. Settle now; reconciliation corrects false positives.
	proofRef := optimisticProofRef(proof)
	logger.CtxWarn(ctx, "verification timed out, settling optimistically",
		"request_id", paymentID, "proof_ref", proofRef)

	_, duplicate, err := s.requests.MarkPaid(ctx, paymentID, proofRef, "")
	if err != nil {
		return nil, err
	}

	metrics.SettlementsTotal.WithLabelValues("timeout_optimistic").Inc()
	return &SettlementOutcome{
		Kind:          OutcomeSettled,
		Reason:        "timeout_optimistic",
		SettlementRef: proofRef,
		Duplicate:     duplicate,
	}, nil
}

func (s *verificationService) buildRequirements(route payroute.RouteInfo, payTo string) verifier.VerificationRequirements {
	return verifier.VerificationRequirements{
		Network:           route.Network,
		Amount:            route.Amount,
		Currency:          route.Currency,
		PayTo:             payTo,
		Description:       route.Description,
		MaxTimeoutSeconds: int(s.policy.VerifyTimeout / time.Second),
	}
}

// optimisticProofRef derives a stable settlement reference from the raw
// proof, so a retried optimistic settlement stays idempotent.
func optimisticProofRef(proof string) string {
	sum := sha256.Sum256([]byte(proof))
	return "optimistic:" + hex.EncodeToString(sum[:8])
}
