package entity

import (
	"time"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// ProcessedViaITN marks records finalized by the webhook pipeline.
const ProcessedViaITN = "itn_webhook"

// Payment is created by the client booking flow before the gateway
// notification arrives, and transitions from pending to exactly one
// terminal state here. The ID is the merchant-assigned m_payment_id,
// minted by the client, not a server UUID.
type Payment struct {
	ID          string        `db:"id"`
	UserID      string        `db:"user_id"`
	Amount      float64       `db:"amount"`
	Currency    string        `db:"currency"`
	BookingData string        `db:"booking_data"`
	Status      PaymentStatus `db:"status"`

	// Gateway metadata, populated when the payment reaches a terminal state.
	PFPaymentID   *string    `db:"pf_payment_id"`
	AmountGross   *float64   `db:"amount_gross"`
	AmountFee     *float64   `db:"amount_fee"`
	AmountNet     *float64   `db:"amount_net"`
	GatewayStatus *string    `db:"gateway_status"`
	ItemName      *string    `db:"item_name"`
	PaymentDate   *time.Time `db:"payment_date"`
	FailureReason *string    `db:"failure_reason"`
	ProcessedVia  *string    `db:"processed_via"`

	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
	CompletedAt *time.Time `db:"completed_at"`
	FailedAt    *time.Time `db:"failed_at"`
}

// PaymentCompletion carries the gateway metadata written when a pending
// payment is marked completed.
type PaymentCompletion struct {
	PFPaymentID   string
	AmountGross   float64
	AmountFee     float64
	AmountNet     float64
	GatewayStatus string
	ItemName      string
	PaymentDate   time.Time
	CompletedAt   time.Time
}

// PaymentFailure carries the gateway metadata written when a pending
// payment is marked failed.
type PaymentFailure struct {
	PFPaymentID   string
	GatewayStatus string
	FailureReason string
	AmountGross   float64
	FailedAt      time.Time
}
