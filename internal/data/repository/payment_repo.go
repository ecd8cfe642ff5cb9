package repository

import (
	"context"
	"fmt"

	"cleaning-booking/internal/data/entity"
	"cleaning-booking/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	FindByID(ctx context.Context, id string) (*entity.Payment, error)
}

type paymentRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewPaymentRepository(db database.PgxIface, log *zap.Logger) PaymentRepository {
	return &paymentRepository{
		db:  db,
		log: log.With(zap.String("repository", "payment")),
	}
}

func (r *paymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	query := `
		INSERT INTO payments (id, user_id, amount, currency, booking_data, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(ctx, query,
		payment.ID,
		payment.UserID,
		payment.Amount,
		payment.Currency,
		payment.BookingData,
		payment.Status,
		payment.CreatedAt,
		payment.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create payment",
			zap.Error(err),
			zap.String("payment_id", payment.ID),
			zap.String("user_id", payment.UserID),
		)
		return fmt.Errorf("create payment %s: %w", payment.ID, err)
	}

	return nil
}

func (r *paymentRepository) FindByID(ctx context.Context, id string) (*entity.Payment, error) {
	query := `
		SELECT id, user_id, amount, currency, booking_data, status,
		       pf_payment_id, amount_gross, amount_fee, amount_net,
		       gateway_status, item_name, payment_date, failure_reason, processed_via,
		       created_at, updated_at, completed_at, failed_at
		FROM payments
		WHERE id = $1
	`

	var payment entity.Payment
	err := r.db.QueryRow(ctx, query, id).Scan(
		&payment.ID,
		&payment.UserID,
		&payment.Amount,
		&payment.Currency,
		&payment.BookingData,
		&payment.Status,
		&payment.PFPaymentID,
		&payment.AmountGross,
		&payment.AmountFee,
		&payment.AmountNet,
		&payment.GatewayStatus,
		&payment.ItemName,
		&payment.PaymentDate,
		&payment.FailureReason,
		&payment.ProcessedVia,
		&payment.CreatedAt,
		&payment.UpdatedAt,
		&payment.CompletedAt,
		&payment.FailedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find payment by ID",
			zap.Error(err),
			zap.String("payment_id", id),
		)
		return nil, fmt.Errorf("find payment by ID %s: %w", id, err)
	}

	return &payment, nil
}
