package services

import (
	"context"
	"sync"
	"time"

	"paylink_backend/internal/appErrors"
	"paylink_backend/internal/models"
	"paylink_backend/internal/repositories"
	"paylink_backend/internal/verifier"
	"paylink_backend/internal/workspace"
)

// In-memory fakes implementing the repository and collaborator interfaces.

type fakeRequestRepo struct {
	mu       sync.Mutex
	requests map[string]*models.PaymentRequest
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: make(map[string]*models.PaymentRequest)}
}

func (r *fakeRequestRepo) Create(req *models.PaymentRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *req
	r.requests[req.ID] = &clone
	return nil
}

func (r *fakeRequestRepo) FindByID(id string) (*models.PaymentRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, repositories.ErrPaymentRequestNotFound
	}
	clone := *req
	return &clone, nil
}

func (r *fakeRequestRepo) FindByUser(userID string) ([]models.PaymentRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.PaymentRequest
	for _, req := range r.requests {
		if req.UserID == userID {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (r *fakeRequestRepo) FindByStatus(status models.RequestStatus) ([]models.PaymentRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.PaymentRequest
	for _, req := range r.requests {
		if req.Status == status {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (r *fakeRequestRepo) FindDueScheduled(now time.Time) ([]models.PaymentRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.PaymentRequest
	for _, req := range r.requests {
		if req.Status == models.RequestStatusScheduled && req.ScheduledAt != nil && !req.ScheduledAt.After(now) {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (r *fakeRequestRepo) FindDueRefunds(now time.Time) ([]models.PaymentRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.PaymentRequest
	for _, req := range r.requests {
		if req.Status == models.RequestStatusPaymentReceived &&
			req.Kind == models.KindAskAndRefund &&
			req.RefundDueAt != nil && !req.RefundDueAt.After(now) {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (r *fakeRequestRepo) TransitionStatus(id string, from []models.RequestStatus, to models.RequestStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return false, nil
	}
	for _, f := range from {
		if req.Status == f {
			req.Status = to
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRequestRepo) MarkPaid(id string, proofRef, payerAddress string, paidAt time.Time, refundDueAt *time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok || req.Status != models.RequestStatusProcessing {
		return false, nil
	}
	req.Status = models.RequestStatusPaymentReceived
	req.ProofRef = &proofRef
	req.PaidAt = &paidAt
	req.RefundDueAt = refundDueAt
	if payerAddress != "" {
		req.PayerAddress = &payerAddress
	}
	return true, nil
}

func (r *fakeRequestRepo) UpdateMirrorFields(id string, fields []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if req, ok := r.requests[id]; ok {
		req.MirrorFields = fields
	}
	return nil
}

// setScheduledAt rewrites the activation time, simulating elapsed time.
func (r *fakeRequestRepo) setScheduledAt(id string, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if req, ok := r.requests[id]; ok {
		req.ScheduledAt = &at
	}
}

// setRefundDueAt rewrites the refund due time, simulating elapsed time.
func (r *fakeRequestRepo) setRefundDueAt(id string, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if req, ok := r.requests[id]; ok {
		req.RefundDueAt = &at
	}
}

type fakeOutgoingRepo struct {
	mu       sync.Mutex
	payments map[string]*models.OutgoingPayment
}

func newFakeOutgoingRepo() *fakeOutgoingRepo {
	return &fakeOutgoingRepo{payments: make(map[string]*models.OutgoingPayment)}
}

func (r *fakeOutgoingRepo) Create(payment *models.OutgoingPayment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *payment
	r.payments[payment.ID] = &clone
	return nil
}

func (r *fakeOutgoingRepo) FindByID(id string) (*models.OutgoingPayment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	payment, ok := r.payments[id]
	if !ok {
		return nil, repositories.ErrOutgoingPaymentNotFound
	}
	clone := *payment
	return &clone, nil
}

func (r *fakeOutgoingRepo) FindByUser(userID string) ([]models.OutgoingPayment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.OutgoingPayment
	for _, p := range r.payments {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeOutgoingRepo) FindDue(now time.Time) ([]models.OutgoingPayment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.OutgoingPayment
	for _, p := range r.payments {
		if p.Status == models.OutgoingStatusScheduled && !p.ScheduledAt.After(now) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeOutgoingRepo) ExistsForRequest(requestID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payments {
		if p.RequestID != nil && *p.RequestID == requestID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeOutgoingRepo) ClaimForProcessing(id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok || p.Status != models.OutgoingStatusScheduled {
		return false, nil
	}
	p.Status = models.OutgoingStatusProcessing
	return true, nil
}

func (r *fakeOutgoingRepo) MarkCompleted(id string, txHash string, executedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok || p.Status != models.OutgoingStatusProcessing {
		return false, nil
	}
	p.Status = models.OutgoingStatusCompleted
	p.TxHash = &txHash
	p.ExecutedAt = &executedAt
	return true, nil
}

func (r *fakeOutgoingRepo) MarkFailed(id string, errorMessage string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return false, nil
	}
	if p.Status != models.OutgoingStatusScheduled && p.Status != models.OutgoingStatusProcessing {
		return false, nil
	}
	p.Status = models.OutgoingStatusFailed
	p.ErrorMessage = errorMessage
	return true, nil
}

type fakeLedgerRepo struct {
	mu      sync.Mutex
	entries []models.LedgerEntry
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{}
}

func (r *fakeLedgerRepo) Create(entry *models.LedgerEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeLedgerRepo) FindByUser(userID string) ([]models.LedgerEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.LedgerEntry
	for _, e := range r.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeLedgerRepo) CountByRequest(requestID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, e := range r.entries {
		if e.RequestID != nil && *e.RequestID == requestID {
			count++
		}
	}
	return count, nil
}

func (r *fakeLedgerRepo) AttachCompletedAt(id string, completedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.entries {
		if r.entries[i].ID == id && r.entries[i].CompletedAt == nil {
			r.entries[i].CompletedAt = &completedAt
		}
	}
	return nil
}

type fakeNotifier struct {
	mu    sync.Mutex
	sends []string // subjects
}

func (n *fakeNotifier) Send(to, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sends = append(n.sends, subject)
	return nil
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sends)
}

type fakeMirror struct {
	mu      sync.Mutex
	upserts []workspace.RecordFields
}

func (m *fakeMirror) UpsertRecord(ctx context.Context, requestID string, fields workspace.RecordFields) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts = append(m.upserts, fields)
	return nil
}

type fakeWalletDirectory struct {
	addresses map[string]string // userID -> address
}

func (d *fakeWalletDirectory) ResolveReceivingAddress(ctx context.Context, userID, network string) (string, error) {
	if addr, ok := d.addresses[userID]; ok {
		return addr, nil
	}
	return "", appErrors.ErrNoWallet
}

func (d *fakeWalletDirectory) SetAddress(ctx context.Context, userID, network, address string) (*models.Wallet, error) {
	d.addresses[userID] = address
	return &models.Wallet{UserID: userID, Network: network, Address: address}, nil
}

func (d *fakeWalletDirectory) List(ctx context.Context, userID string) ([]models.Wallet, error) {
	return nil, nil
}

// fakeVerifier replays scripted settle/transfer results. A nil settleResult
// with settleErr set simulates a transport failure; blockSettle simulates a
// verifier slower than the gateway's deadline.
type fakeVerifier struct {
	settleResult   *verifier.SettleResult
	settleErr      error
	blockSettle    bool
	transferResult *verifier.TransferResult
	transferErr    error
	settleCalls    int
}

func (v *fakeVerifier) Verify(ctx context.Context, proof string, reqs verifier.VerificationRequirements) (*verifier.VerifyResult, error) {
	return &verifier.VerifyResult{Valid: true}, nil
}

func (v *fakeVerifier) Settle(ctx context.Context, proof string, reqs verifier.VerificationRequirements) (*verifier.SettleResult, error) {
	v.settleCalls++
	if v.blockSettle {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if v.settleErr != nil {
		return nil, v.settleErr
	}
	return v.settleResult, nil
}

func (v *fakeVerifier) Transfer(ctx context.Context, req verifier.TransferRequest) (*verifier.TransferResult, error) {
	if v.transferErr != nil {
		return nil, v.transferErr
	}
	return v.transferResult, nil
}

