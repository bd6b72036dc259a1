package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	PaymentTypeInitial = "initial"
	PaymentTypeMonthly = "monthly"

	PaymentStatusConfirmed = "confirmed"
)

// Payment is the append-only record of a verified on-chain subscription
// payment. TxSignature is unique and is the idempotency key.
type Payment struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	TxSignature string     `json:"tx_signature"`
	Amount      float64    `json:"amount"`
	Type        string     `json:"payment_type"`
	Status      string     `json:"status"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// SubscriptionStatus is the lazily reconciled premium view of a user.
type SubscriptionStatus struct {
	IsPremium     bool       `json:"isPremium"`
	PremiumUntil  *time.Time `json:"premiumUntil,omitempty"`
	DaysRemaining int        `json:"daysRemaining"`
}
