package models

import (
	"time"

	"gorm.io/datatypes"
)

// PaymentRequest is an inbound payment the system expects to receive.
// The ID doubles as the public link token. Rows are never deleted; terminal
// states are retained for audit.
type PaymentRequest struct {
	BaseModel
	UserID         string          `gorm:"not null;index" json:"userId"`
	Amount         string          `gorm:"type:decimal(36,18);not null" json:"amount"` // atomic units
	Currency       string          `gorm:"type:varchar(16);not null" json:"currency"`
	Network        string          `gorm:"type:varchar(64);not null" json:"network"`
	RecipientEmail string          `gorm:"type:varchar(255)" json:"recipientEmail"`
	RecipientName  string          `gorm:"type:varchar(255)" json:"recipientName"`
	Description    string          `gorm:"type:text" json:"description"`
	Kind           TransactionKind `gorm:"type:varchar(32);not null;index" json:"kind"`
	ScheduleKind   ScheduleKind    `gorm:"type:varchar(16);not null" json:"scheduleKind"`
	ScheduledAt    *time.Time      `gorm:"index" json:"scheduledAt,omitempty"`
	Status         RequestStatus   `gorm:"type:varchar(32);not null;index" json:"status"`
	ProofRef       *string         `gorm:"type:text" json:"proofRef,omitempty"`
	// PayerAddress is captured at settlement; refunds are sent back to it.
	PayerAddress *string    `gorm:"type:varchar(255)" json:"payerAddress,omitempty"`
	PaidAt       *time.Time `json:"paidAt,omitempty"`
	// RefundDueAt is set iff Kind is ask_and_refund and the request reached
	// payment_received.
	RefundDueAt  *time.Time     `gorm:"index" json:"refundDueAt,omitempty"`
	MirrorFields datatypes.JSON `gorm:"type:jsonb" json:"-"`
}

// PaymentLink builds the public payer-facing URL for this request.
func (p *PaymentRequest) PaymentLink(baseURL string) string {
	return baseURL + "/pay/" + p.ID
}
