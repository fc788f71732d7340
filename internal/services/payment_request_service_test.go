package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paylink_backend/internal/appErrors"
	"paylink_backend/internal/models"
	"paylink_backend/internal/payroute"
)

type requestFixture struct {
	svc      PaymentRequestService
	repo     *fakeRequestRepo
	outgoing *fakeOutgoingRepo
	ledger   *fakeLedgerRepo
	registry *payroute.Registry
	notifier *fakeNotifier
	mirror   *fakeMirror
}

func newRequestFixture() *requestFixture {
	f := &requestFixture{
		repo:     newFakeRequestRepo(),
		outgoing: newFakeOutgoingRepo(),
		ledger:   newFakeLedgerRepo(),
		registry: payroute.NewRegistry(),
		notifier: &fakeNotifier{},
		mirror:   &fakeMirror{},
	}
	f.svc = NewPaymentRequestService(
		f.repo, f.outgoing, f.ledger, f.registry, f.notifier, f.mirror, "http://localhost:4000")
	return f
}

func immediateInput(kind models.TransactionKind) *CreateRequestInput {
	return &CreateRequestInput{
		Amount:         "100",
		Currency:       "USDC",
		Network:        "base",
		RecipientEmail: "payer@example.com",
		RecipientName:  "Payer",
		Description:    "consulting",
		Kind:           kind,
		ScheduleKind:   models.ScheduleImmediate,
	}
}

func TestCreate_ImmediateIsProcessingWithLiveRoute(t *testing.T) {
	f := newRequestFixture()

	req, err := f.svc.Create(context.Background(), "u1", immediateInput(models.KindAskPayment))
	require.NoError(t, err)

	assert.Equal(t, models.RequestStatusProcessing, req.Status)
	route, ok := f.registry.Lookup(req.ID)
	require.True(t, ok)
	assert.Equal(t, "100", route.Amount)
	assert.Equal(t, "USDC", route.Currency)
}

func TestCreate_ScheduledHasNoRouteUntilActivation(t *testing.T) {
	f := newRequestFixture()

	in := immediateInput(models.KindAskPayment)
	in.ScheduleKind = models.ScheduleScheduled
	at := time.Now().UTC().Add(time.Hour)
	in.ScheduledAt = &at

	req, err := f.svc.Create(context.Background(), "u1", in)
	require.NoError(t, err)

	assert.Equal(t, models.RequestStatusScheduled, req.Status)
	_, ok := f.registry.Lookup(req.ID)
	assert.False(t, ok)

	// Activation time elapses; the activation cycle picks it up.
	f.repo.setScheduledAt(req.ID, time.Now().UTC().Add(-time.Minute))
	stats := f.svc.ProcessDueActivations(context.Background())

	assert.Equal(t, 1, stats.Found)
	assert.Equal(t, 1, stats.Processed)
	assert.Equal(t, 0, stats.Failed)

	fresh, err := f.repo.FindByID(req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusProcessing, fresh.Status)
	_, ok = f.registry.Lookup(req.ID)
	assert.True(t, ok)
}

func TestCreate_ScheduledInPastActivatesImmediately(t *testing.T) {
	f := newRequestFixture()

	in := immediateInput(models.KindAskPayment)
	in.ScheduleKind = models.ScheduleScheduled
	at := time.Now().UTC().Add(-time.Hour)
	in.ScheduledAt = &at

	req, err := f.svc.Create(context.Background(), "u1", in)
	require.NoError(t, err)

	assert.Equal(t, models.RequestStatusProcessing, req.Status)
	_, ok := f.registry.Lookup(req.ID)
	assert.True(t, ok)
}

func TestMarkPaid_IsIdempotent(t *testing.T) {
	f := newRequestFixture()

	req, err := f.svc.Create(context.Background(), "u1", immediateInput(models.KindAskPayment))
	require.NoError(t, err)
	sendsAfterCreate := f.notifier.count()

	paid, duplicate, err := f.svc.MarkPaid(context.Background(), req.ID, "tx-abc", "0xpayer")
	require.NoError(t, err)
	assert.False(t, duplicate)
	assert.Equal(t, models.RequestStatusPaymentReceived, paid.Status)
	require.NotNil(t, paid.ProofRef)
	assert.Equal(t, "tx-abc", *paid.ProofRef)

	// Route removed the instant the proof is accepted.
	_, ok := f.registry.Lookup(req.ID)
	assert.False(t, ok)

	count, _ := f.ledger.CountByRequest(req.ID)
	assert.EqualValues(t, 1, count)
	assert.Equal(t, sendsAfterCreate+1, f.notifier.count())

	// Duplicate delivery: same outcome, no second ledger entry, no second
	// notification.
	again, duplicate, err := f.svc.MarkPaid(context.Background(), req.ID, "tx-abc", "0xpayer")
	require.NoError(t, err)
	assert.True(t, duplicate)
	assert.Equal(t, models.RequestStatusPaymentReceived, again.Status)

	count, _ = f.ledger.CountByRequest(req.ID)
	assert.EqualValues(t, 1, count)
	assert.Equal(t, sendsAfterCreate+1, f.notifier.count())
}

func TestMarkPaid_SetsRefundDueOnlyForAskAndRefund(t *testing.T) {
	f := newRequestFixture()

	refundable, err := f.svc.Create(context.Background(), "u1", immediateInput(models.KindAskAndRefund))
	require.NoError(t, err)
	plain, err := f.svc.Create(context.Background(), "u1", immediateInput(models.KindAskPayment))
	require.NoError(t, err)

	paidRefundable, _, err := f.svc.MarkPaid(context.Background(), refundable.ID, "tx-1", "0xpayer")
	require.NoError(t, err)
	paidPlain, _, err := f.svc.MarkPaid(context.Background(), plain.ID, "tx-2", "0xpayer")
	require.NoError(t, err)

	require.NotNil(t, paidRefundable.RefundDueAt)
	require.NotNil(t, paidRefundable.PaidAt)
	assert.Equal(t, paidRefundable.PaidAt.Add(30*24*time.Hour), *paidRefundable.RefundDueAt)

	assert.Nil(t, paidPlain.RefundDueAt)
}

func TestMarkPaid_UnknownRequest(t *testing.T) {
	f := newRequestFixture()

	_, _, err := f.svc.MarkPaid(context.Background(), "missing", "tx", "")
	assert.True(t, appErrors.Is(err, appErrors.ErrRequestNotFound))
}

func TestCancel_RemovesRoute(t *testing.T) {
	f := newRequestFixture()

	req, err := f.svc.Create(context.Background(), "u1", immediateInput(models.KindAskPayment))
	require.NoError(t, err)

	require.NoError(t, f.svc.Cancel(context.Background(), "u1", req.ID))

	fresh, err := f.repo.FindByID(req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusCancelled, fresh.Status)
	_, ok := f.registry.Lookup(req.ID)
	assert.False(t, ok)
}

func TestCancel_AfterPaymentReceivedIsRejected(t *testing.T) {
	f := newRequestFixture()

	req, err := f.svc.Create(context.Background(), "u1", immediateInput(models.KindAskPayment))
	require.NoError(t, err)
	_, _, err = f.svc.MarkPaid(context.Background(), req.ID, "tx-abc", "0xpayer")
	require.NoError(t, err)

	err = f.svc.Cancel(context.Background(), "u1", req.ID)
	assert.True(t, appErrors.Is(err, appErrors.ErrCancelAfterPaid))

	fresh, ferr := f.repo.FindByID(req.ID)
	require.NoError(t, ferr)
	assert.Equal(t, models.RequestStatusPaymentReceived, fresh.Status)
}

func TestCancel_ForeignRequestIsForbidden(t *testing.T) {
	f := newRequestFixture()

	req, err := f.svc.Create(context.Background(), "u1", immediateInput(models.KindAskPayment))
	require.NoError(t, err)

	err = f.svc.Cancel(context.Background(), "intruder", req.ID)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
}

func TestProcessDueRefunds_CreatesObligationOnce(t *testing.T) {
	f := newRequestFixture()

	req, err := f.svc.Create(context.Background(), "u1", immediateInput(models.KindAskAndRefund))
	require.NoError(t, err)
	_, _, err = f.svc.MarkPaid(context.Background(), req.ID, "tx-abc", "0xpayer")
	require.NoError(t, err)

	// Not yet due: nothing happens.
	stats := f.svc.ProcessDueRefunds(context.Background())
	assert.Equal(t, 0, stats.Found)

	// The refund window elapses.
	f.repo.setRefundDueAt(req.ID, time.Now().UTC().Add(-time.Minute))

	stats = f.svc.ProcessDueRefunds(context.Background())
	assert.Equal(t, 1, stats.Found)
	assert.Equal(t, 1, stats.Processed)

	exists, _ := f.outgoing.ExistsForRequest(req.ID)
	assert.True(t, exists)

	// Second run is idempotent: no duplicate obligation.
	stats = f.svc.ProcessDueRefunds(context.Background())
	assert.Equal(t, 1, stats.Found)
	assert.Equal(t, 1, stats.Processed)

	payments, _ := f.outgoing.FindByUser("u1")
	require.Len(t, payments, 1)
	assert.Equal(t, "0xpayer", payments[0].RecipientAddress)
	assert.Equal(t, models.OutgoingStatusScheduled, payments[0].Status)
}

func TestMarkRefunded_ClosesLifecycle(t *testing.T) {
	f := newRequestFixture()

	req, err := f.svc.Create(context.Background(), "u1", immediateInput(models.KindAskAndRefund))
	require.NoError(t, err)
	_, _, err = f.svc.MarkPaid(context.Background(), req.ID, "tx-abc", "0xpayer")
	require.NoError(t, err)

	require.NoError(t, f.svc.MarkRefunded(context.Background(), req.ID, "tx-refund"))

	fresh, err := f.repo.FindByID(req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusRefunded, fresh.Status)

	// Refunding twice is an invalid transition.
	err = f.svc.MarkRefunded(context.Background(), req.ID, "tx-refund")
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidTransition))
}

func TestCreate_UnknownKindRejected(t *testing.T) {
	f := newRequestFixture()

	in := immediateInput("ask_politely")
	_, err := f.svc.Create(context.Background(), "u1", in)
	require.Error(t, err)

	var appErr *appErrors.AppError
	require.True(t, appErrors.As(err, &appErr))
	assert.Equal(t, appErrors.CodeValidationFailed, appErr.Code)
}
