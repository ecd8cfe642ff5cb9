package entity

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
)

// BookingPaymentStatusPaid is the payment linkage state of a booking
// materialized from a completed payment.
const BookingPaymentStatusPaid = "paid"

// Booking is derived from a completed payment's stored request payload.
// Details holds the client-submitted booking request (cleaning type,
// schedule, extras) as an opaque JSON object.
type Booking struct {
	BaseSimple
	UserID        string         `db:"user_id"`
	LocationID    uuid.UUID      `db:"location_id"`
	PaymentID     string         `db:"payment_id"`
	PFPaymentID   string         `db:"pf_payment_id"`
	Status        BookingStatus  `db:"status"`
	PaymentStatus string         `db:"payment_status"`
	TotalAmount   float64        `db:"total_amount"`
	Currency      string         `db:"currency"`
	Details       map[string]any `db:"details"`
	ConfirmedAt   time.Time      `db:"confirmed_at"`
	PaidAt        time.Time      `db:"paid_at"`
}
