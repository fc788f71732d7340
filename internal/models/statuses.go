package models

type RequestStatus string
type OutgoingStatus string
type TransactionKind string
type ScheduleKind string
type LedgerDirection string

const (
	// Payment request lifecycle. Transitions are monotonic:
	// draft -> scheduled -> processing -> payment_received -> refunded,
	// with cancelled/failed reachable from any non-terminal state.
	RequestStatusDraft           RequestStatus = "draft"
	RequestStatusScheduled       RequestStatus = "scheduled"
	RequestStatusProcessing      RequestStatus = "processing"
	RequestStatusPaymentReceived RequestStatus = "payment_received"
	RequestStatusRefunded        RequestStatus = "refunded"
	RequestStatusCancelled       RequestStatus = "cancelled"
	RequestStatusFailed          RequestStatus = "failed"

	OutgoingStatusScheduled  OutgoingStatus = "scheduled"
	OutgoingStatusProcessing OutgoingStatus = "processing"
	OutgoingStatusCompleted  OutgoingStatus = "completed"
	OutgoingStatusFailed     OutgoingStatus = "failed"

	KindAskPayment   TransactionKind = "ask_payment"
	KindAskAndRefund TransactionKind = "ask_and_refund"
	KindSubscription TransactionKind = "subscription"

	ScheduleImmediate ScheduleKind = "immediate"
	ScheduleScheduled ScheduleKind = "scheduled"

	LedgerIncoming LedgerDirection = "incoming"
	LedgerOutgoing LedgerDirection = "outgoing"
	LedgerRefund   LedgerDirection = "refund"
)

// IsTerminal reports whether no further transition is allowed.
func (s RequestStatus) IsTerminal() bool {
	switch s {
	case RequestStatusRefunded, RequestStatusCancelled, RequestStatusFailed:
		return true
	}
	return false
}

// AwaitsPayment reports whether the request has (or will have) a live route.
func (s RequestStatus) AwaitsPayment() bool {
	return s == RequestStatusProcessing || s == RequestStatusScheduled
}

func (k TransactionKind) Valid() bool {
	switch k {
	case KindAskPayment, KindAskAndRefund, KindSubscription:
		return true
	}
	return false
}

// Refundable reports whether the kind carries a refund obligation once paid.
func (k TransactionKind) Refundable() bool {
	return k == KindAskAndRefund
}
