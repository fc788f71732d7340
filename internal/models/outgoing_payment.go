package models

import "time"

// OutgoingPayment is a scheduled unilateral send from a user's funds,
// including refunds (linked back via RequestID).
type OutgoingPayment struct {
	BaseModel
	UserID           string         `gorm:"not null;index" json:"userId"`
	Amount           string         `gorm:"type:decimal(36,18);not null" json:"amount"`
	Currency         string         `gorm:"type:varchar(16);not null" json:"currency"`
	Network          string         `gorm:"type:varchar(64);not null" json:"network"`
	RecipientAddress string         `gorm:"type:varchar(255);not null" json:"recipientAddress"`
	ScheduledAt      time.Time      `gorm:"not null;index" json:"scheduledAt"`
	Status           OutgoingStatus `gorm:"type:varchar(32);not null;index" json:"status"`
	TxHash           *string        `gorm:"type:varchar(255)" json:"txHash,omitempty"`
	// RequestID links a refund back to the originating payment request.
	RequestID    *string    `gorm:"type:uuid;index" json:"requestId,omitempty"`
	ExecutedAt   *time.Time `json:"executedAt,omitempty"`
	ErrorMessage string     `gorm:"type:text" json:"errorMessage,omitempty"`
}
