package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cleaning-booking/internal/data/entity"
	"cleaning-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// ReconcileRepository commits the terminal-state writes for a payment.
// Both operations are conditional on the payment still being pending, so a
// replayed or racing notification affects zero rows and reports
// applied=false instead of double-writing.
type ReconcileRepository interface {
	// CompleteBooking atomically marks the payment completed and creates
	// the booking plus its notification, resolving (or auto-creating) the
	// user's location inside the same transaction.
	CompleteBooking(ctx context.Context, payment *entity.Payment, completion *entity.PaymentCompletion, booking *entity.Booking, note *entity.Notification) (bool, error)

	// FailPayment marks the payment failed with the gateway's reason.
	FailPayment(ctx context.Context, paymentID string, failure *entity.PaymentFailure) (bool, error)
}

type reconcileRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewReconcileRepository(db database.PgxIface, log *zap.Logger) ReconcileRepository {
	return &reconcileRepository{
		db:  db,
		log: log.With(zap.String("repository", "reconcile")),
	}
}

func (r *reconcileRepository) CompleteBooking(ctx context.Context, payment *entity.Payment, completion *entity.PaymentCompletion, booking *entity.Booking, note *entity.Notification) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin reconcile transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	completeQuery := `
		UPDATE payments
		SET status = $2, pf_payment_id = $3, amount_gross = $4, amount_fee = $5,
		    amount_net = $6, gateway_status = $7, item_name = $8, payment_date = $9,
		    processed_via = $10, completed_at = $11, updated_at = $11
		WHERE id = $1 AND status = $12
	`

	tag, err := tx.Exec(ctx, completeQuery,
		payment.ID,
		entity.PaymentStatusCompleted,
		completion.PFPaymentID,
		completion.AmountGross,
		completion.AmountFee,
		completion.AmountNet,
		completion.GatewayStatus,
		completion.ItemName,
		completion.PaymentDate,
		entity.ProcessedViaITN,
		completion.CompletedAt,
		entity.PaymentStatusPending,
	)
	if err != nil {
		r.log.Error("Failed to mark payment completed",
			zap.Error(err),
			zap.String("payment_id", payment.ID),
		)
		return false, fmt.Errorf("mark payment %s completed: %w", payment.ID, err)
	}

	// Zero rows means the pending precondition no longer holds: another
	// notification for the same payment won the race. Nothing to do.
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	locationID, err := r.getOrCreateLocation(ctx, tx, payment.UserID, booking.CreatedAt)
	if err != nil {
		return false, err
	}
	booking.LocationID = locationID

	details, err := json.Marshal(booking.Details)
	if err != nil {
		return false, fmt.Errorf("marshal booking details for payment %s: %w", payment.ID, err)
	}

	bookingQuery := `
		INSERT INTO bookings (id, user_id, location_id, payment_id, pf_payment_id,
		                      status, payment_status, total_amount, currency, details,
		                      created_at, confirmed_at, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err = tx.Exec(ctx, bookingQuery,
		booking.ID,
		booking.UserID,
		booking.LocationID,
		booking.PaymentID,
		booking.PFPaymentID,
		booking.Status,
		booking.PaymentStatus,
		booking.TotalAmount,
		booking.Currency,
		details,
		booking.CreatedAt,
		booking.ConfirmedAt,
		booking.PaidAt,
	)
	if err != nil {
		r.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("payment_id", payment.ID),
			zap.String("booking_id", booking.ID.String()),
		)
		return false, fmt.Errorf("create booking for payment %s: %w", payment.ID, err)
	}

	noteQuery := `
		INSERT INTO notifications (id, user_id, type, title, message, payment_id, booking_id, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = tx.Exec(ctx, noteQuery,
		note.ID,
		note.UserID,
		note.Type,
		note.Title,
		note.Message,
		note.PaymentID,
		note.BookingID,
		note.Read,
		note.CreatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create notification",
			zap.Error(err),
			zap.String("payment_id", payment.ID),
		)
		return false, fmt.Errorf("create notification for payment %s: %w", payment.ID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit reconcile transaction for payment %s: %w", payment.ID, err)
	}

	r.log.Info("Payment completed and booking materialized",
		zap.String("payment_id", payment.ID),
		zap.String("user_id", payment.UserID),
		zap.String("location_id", booking.LocationID.String()),
		zap.String("booking_id", booking.ID.String()),
	)

	return true, nil
}

func (r *reconcileRepository) FailPayment(ctx context.Context, paymentID string, failure *entity.PaymentFailure) (bool, error) {
	query := `
		UPDATE payments
		SET status = $2, pf_payment_id = $3, gateway_status = $4, failure_reason = $5,
		    amount_gross = $6, processed_via = $7, failed_at = $8, updated_at = $8
		WHERE id = $1 AND status = $9
	`

	tag, err := r.db.Exec(ctx, query,
		paymentID,
		entity.PaymentStatusFailed,
		failure.PFPaymentID,
		failure.GatewayStatus,
		failure.FailureReason,
		failure.AmountGross,
		entity.ProcessedViaITN,
		failure.FailedAt,
		entity.PaymentStatusPending,
	)
	if err != nil {
		r.log.Error("Failed to mark payment failed",
			zap.Error(err),
			zap.String("payment_id", paymentID),
		)
		return false, fmt.Errorf("mark payment %s failed: %w", paymentID, err)
	}

	if tag.RowsAffected() == 0 {
		return false, nil
	}

	r.log.Info("Payment marked as failed",
		zap.String("payment_id", paymentID),
		zap.String("gateway_status", failure.GatewayStatus),
		zap.String("failure_reason", failure.FailureReason),
	)

	return true, nil
}

// getOrCreateLocation returns the user's first location, creating the
// default one when the user has none on file yet.
func (r *reconcileRepository) getOrCreateLocation(ctx context.Context, tx pgx.Tx, userID string, now time.Time) (uuid.UUID, error) {
	findQuery := `
		SELECT id FROM locations
		WHERE user_id = $1
		ORDER BY created_at
		LIMIT 1
	`

	var locationID uuid.UUID
	err := tx.QueryRow(ctx, findQuery, userID).Scan(&locationID)
	if err == nil {
		return locationID, nil
	}
	if err != pgx.ErrNoRows {
		r.log.Error("Failed to find location",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		return uuid.Nil, fmt.Errorf("find location for user %s: %w", userID, err)
	}

	location := &entity.Location{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: now,
		},
		UserID:      userID,
		Lat:         entity.DefaultLocationLat,
		Lng:         entity.DefaultLocationLng,
		Address:     entity.DefaultLocationAddress,
		AutoCreated: true,
	}

	createQuery := `
		INSERT INTO locations (id, user_id, lat, lng, address, auto_created, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = tx.Exec(ctx, createQuery,
		location.ID,
		location.UserID,
		location.Lat,
		location.Lng,
		location.Address,
		location.AutoCreated,
		location.CreatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create default location",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		return uuid.Nil, fmt.Errorf("create default location for user %s: %w", userID, err)
	}

	r.log.Info("Default location created",
		zap.String("user_id", userID),
		zap.String("location_id", location.ID.String()),
	)

	return location.ID, nil
}
