package models

import "time"

// LedgerEntry is an append-only record of a completed money movement.
// Created exactly once per settled movement; only CompletedAt may be
// attached after creation.
type LedgerEntry struct {
	BaseModel
	UserID       string          `gorm:"not null;index" json:"userId"`
	Direction    LedgerDirection `gorm:"type:varchar(16);not null;index" json:"direction"`
	Amount       string          `gorm:"type:decimal(36,18);not null" json:"amount"`
	Currency     string          `gorm:"type:varchar(16);not null" json:"currency"`
	Network      string          `gorm:"type:varchar(64);not null" json:"network"`
	Counterparty string          `gorm:"type:varchar(255)" json:"counterparty"`
	ProofRef     string          `gorm:"type:text" json:"proofRef"`
	RequestID    *string         `gorm:"type:uuid;index" json:"requestId,omitempty"`
	PaymentID    *string         `gorm:"type:uuid;index" json:"paymentId,omitempty"`
	CompletedAt  *time.Time      `json:"completedAt,omitempty"`
}
