package verifier

import "context"

// VerificationRequirements describes what payment is required to settle a
// request: the typed replacement for the ad hoc JSON the facilitator expects.
type VerificationRequirements struct {
	Network           string            `json:"network"`
	Amount            string            `json:"amount"` // atomic units
	Currency          string            `json:"currency"`
	PayTo             string            `json:"payTo"`
	Description       string            `json:"description,omitempty"`
	MaxTimeoutSeconds int               `json:"maxTimeoutSeconds,omitempty"`
	Extra             map[string]string `json:"extra,omitempty"`
}

// VerifyResult is the facilitator's answer to a dry-run validation.
type VerifyResult struct {
	Valid        bool   `json:"valid"`
	Reason       string `json:"reason,omitempty"`
	PayerAddress string `json:"payerAddress,omitempty"`
}

// SettleResult is the facilitator's answer to an on-chain settlement.
type SettleResult struct {
	Success       bool   `json:"success"`
	SettlementRef string `json:"settlementRef,omitempty"`
	PayerAddress  string `json:"payerAddress,omitempty"`
	ErrorReason   string `json:"errorReason,omitempty"`
}

// TransferRequest asks the facilitator to execute a unilateral send from the
// user's funds (used for scheduled payments and refunds).
type TransferRequest struct {
	UserID           string `json:"userId"`
	Network          string `json:"network"`
	Amount           string `json:"amount"`
	Currency         string `json:"currency"`
	RecipientAddress string `json:"recipientAddress"`
	Reference        string `json:"reference,omitempty"`
}

type TransferResult struct {
	Success     bool   `json:"success"`
	TxHash      string `json:"txHash,omitempty"`
	ErrorReason string `json:"errorReason,omitempty"`
}

// Verifier is the external payment verification collaborator. Calls are
// possibly slow and possibly flaky; callers bound them with a context
// deadline and map failures to rejections, never crashes.
type Verifier interface {
	Verify(ctx context.Context, proof string, reqs VerificationRequirements) (*VerifyResult, error)
	Settle(ctx context.Context, proof string, reqs VerificationRequirements) (*SettleResult, error)
	Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error)
}
