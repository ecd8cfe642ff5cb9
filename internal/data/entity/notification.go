package entity

import (
	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationTypePaymentSuccess NotificationType = "payment_success"
)

// Notification is a user-facing message created alongside a successful
// booking. The mobile client polls these; read is flipped client-side.
type Notification struct {
	BaseSimple
	UserID    string           `db:"user_id"`
	Type      NotificationType `db:"type"`
	Title     string           `db:"title"`
	Message   string           `db:"message"`
	PaymentID string           `db:"payment_id"`
	BookingID uuid.UUID        `db:"booking_id"`
	Read      bool             `db:"read"`
}
