package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"cleaning-booking/internal/data/entity"
	"cleaning-booking/internal/data/repository"
	"cleaning-booking/internal/payfast"
	"cleaning-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// amountTolerance absorbs currency rounding between the stored amount and
// the gateway-reported gross.
const amountTolerance = 0.01

const paymentDateLayout = "2006-01-02 15:04:05"

// GatewayValidator is the server-to-server anti-spoofing double-check.
// Implemented by payfast.Client.
type GatewayValidator interface {
	Validate(ctx context.Context, n payfast.Notification) error
}

type ITNService interface {
	// VerifyNotification runs the pre-acknowledgment checks: structure
	// then signature. Failures are audited and map to HTTP 400.
	VerifyNotification(ctx context.Context, n payfast.Notification) error

	// ProcessNotification runs the post-acknowledgment phase: gateway
	// re-validation (policy-dependent) followed by reconciliation. PayFast
	// already received its 200, so failures are only audited.
	ProcessNotification(ctx context.Context, n payfast.Notification) error

	// ReconcilePayment cross-checks the notification against the stored
	// payment and dispatches to success or failure handling.
	ReconcilePayment(ctx context.Context, n payfast.Notification) error

	// SimulateNotification replays a synthetic notification for a stored
	// payment. Sandbox tooling only.
	SimulateNotification(ctx context.Context, paymentID, status string) error
}

type itnService struct {
	repo    *repository.Repository
	gateway GatewayValidator
	config  *utils.Config
	log     *zap.Logger
}

func NewITNService(repo *repository.Repository, gateway GatewayValidator, config *utils.Config, log *zap.Logger) ITNService {
	return &itnService{
		repo:    repo,
		gateway: gateway,
		config:  config,
		log:     log.With(zap.String("service", "itn")),
	}
}

func (s *itnService) VerifyNotification(ctx context.Context, n payfast.Notification) error {
	if err := payfast.ValidateStructure(n, payfast.RequiredFields); err != nil {
		s.log.Warn("ITN structure validation failed",
			zap.Error(err),
			zap.String("payment_id", n.MPaymentID()),
		)
		s.repo.Audit.LogError(ctx, "ITN_STRUCTURE_INVALID", map[string]any{
			"itnData": n,
			"error":   err.Error(),
		})
		return err
	}

	if err := payfast.VerifySignature(n, s.config.PayFast.Passphrase); err != nil {
		s.log.Warn("ITN signature verification failed",
			zap.Error(err),
			zap.String("payment_id", n.MPaymentID()),
		)
		s.repo.Audit.LogError(ctx, "SIGNATURE_MISMATCH", map[string]any{
			"itnData": n,
		})
		return err
	}

	return nil
}

func (s *itnService) ProcessNotification(ctx context.Context, n payfast.Notification) error {
	if err := s.gateway.Validate(ctx, n); err != nil {
		if s.config.PayFast.StrictValidation {
			s.log.Error("PayFast re-validation failed, aborting",
				zap.Error(err),
				zap.String("payment_id", n.MPaymentID()),
			)
			s.repo.Audit.LogError(ctx, "GATEWAY_VALIDATION_FAILED", map[string]any{
				"itnData": n,
				"error":   err.Error(),
			})
			return fmt.Errorf("payfast re-validation failed: %w", err)
		}

		s.log.Warn("PayFast re-validation failed, continuing anyway",
			zap.Error(err),
			zap.String("payment_id", n.MPaymentID()),
		)
	}

	if err := s.ReconcilePayment(ctx, n); err != nil {
		s.repo.Audit.LogError(ctx, "PAYMENT_PROCESSING_ERROR", map[string]any{
			"paymentId": n.MPaymentID(),
			"error":     err.Error(),
			"itnData":   n,
		})
		return err
	}

	return nil
}

func (s *itnService) ReconcilePayment(ctx context.Context, n payfast.Notification) error {
	paymentID := n.MPaymentID()

	payment, err := s.repo.Payment.FindByID(ctx, paymentID)
	if err != nil {
		return err
	}
	if payment == nil {
		return fmt.Errorf("payment %s not found", paymentID)
	}

	// Idempotency guard: a second notification for a finalized record is
	// a no-op, not an error.
	if payment.Status == entity.PaymentStatusCompleted {
		s.log.Info("Payment already processed, skipping",
			zap.String("payment_id", paymentID),
		)
		return nil
	}

	reported, ok := utils.ParseFloat(n.AmountGross())
	if !ok {
		return fmt.Errorf("invalid amount values: reported gross %q is not a number", n.AmountGross())
	}

	if math.Abs(payment.Amount-reported) > amountTolerance {
		return fmt.Errorf("amount mismatch: expected %.2f, received %.2f", payment.Amount, reported)
	}

	if n.PaymentStatus() == payfast.StatusComplete {
		return s.completePayment(ctx, payment, n)
	}

	return s.failPayment(ctx, payment, n)
}

func (s *itnService) completePayment(ctx context.Context, payment *entity.Payment, n payfast.Notification) error {
	if payment.UserID == "" {
		return fmt.Errorf("payment %s has no userId", payment.ID)
	}
	if payment.BookingData == "" {
		return fmt.Errorf("payment %s has no bookingData", payment.ID)
	}

	var details map[string]any
	if err := json.Unmarshal([]byte(payment.BookingData), &details); err != nil {
		return fmt.Errorf("parse booking data for payment %s: %w", payment.ID, err)
	}

	now := time.Now()

	completion := &entity.PaymentCompletion{
		PFPaymentID:   n.PFPaymentID(),
		AmountGross:   utils.ParseFloatOrZero(n.AmountGross()),
		AmountFee:     utils.ParseFloatOrZero(n.AmountFee()),
		AmountNet:     utils.ParseFloatOrZero(n.AmountNet()),
		GatewayStatus: n.PaymentStatus(),
		ItemName:      n.ItemName(),
		PaymentDate:   parsePaymentDate(n.PaymentDate(), now),
		CompletedAt:   now,
	}

	currency := payment.Currency
	if currency == "" {
		currency = "ZAR"
	}

	booking := &entity.Booking{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: now,
		},
		UserID:        payment.UserID,
		PaymentID:     payment.ID,
		PFPaymentID:   n.PFPaymentID(),
		Status:        entity.BookingStatusConfirmed,
		PaymentStatus: entity.BookingPaymentStatusPaid,
		TotalAmount:   payment.Amount,
		Currency:      currency,
		Details:       details,
		ConfirmedAt:   now,
		PaidAt:        now,
	}

	note := &entity.Notification{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: now,
		},
		UserID:    payment.UserID,
		Type:      entity.NotificationTypePaymentSuccess,
		Title:     "Payment Successful!",
		Message:   fmt.Sprintf("Your booking for %s has been confirmed.", serviceName(details)),
		PaymentID: payment.ID,
		BookingID: booking.ID,
		Read:      false,
	}

	applied, err := s.repo.Reconcile.CompleteBooking(ctx, payment, completion, booking, note)
	if err != nil {
		s.log.Error("Failed to complete payment",
			zap.Error(err),
			zap.String("payment_id", payment.ID),
		)
		return err
	}

	if !applied {
		// A concurrent notification finalized the payment first.
		s.log.Info("Payment no longer pending, skipping",
			zap.String("payment_id", payment.ID),
		)
		return nil
	}

	s.repo.Audit.LogSuccess(ctx, "PAYMENT_COMPLETED", map[string]any{
		"paymentId": payment.ID,
		"userId":    payment.UserID,
		"bookingId": booking.ID.String(),
		"amount":    payment.Amount,
	})

	return nil
}

func (s *itnService) failPayment(ctx context.Context, payment *entity.Payment, n payfast.Notification) error {
	status := n.PaymentStatus()
	now := time.Now()

	failure := &entity.PaymentFailure{
		PFPaymentID:   n.PFPaymentID(),
		GatewayStatus: status,
		FailureReason: failureReason(status),
		AmountGross:   utils.ParseFloatOrZero(n.AmountGross()),
		FailedAt:      now,
	}

	applied, err := s.repo.Reconcile.FailPayment(ctx, payment.ID, failure)
	if err != nil {
		return err
	}

	if !applied {
		s.log.Info("Payment no longer pending, skipping",
			zap.String("payment_id", payment.ID),
		)
		return nil
	}

	s.log.Info("Payment failed",
		zap.String("payment_id", payment.ID),
		zap.String("gateway_status", status),
		zap.String("failure_reason", failure.FailureReason),
	)

	return nil
}

func (s *itnService) SimulateNotification(ctx context.Context, paymentID, status string) error {
	if status == "" {
		status = payfast.StatusComplete
	}

	payment, err := s.repo.Payment.FindByID(ctx, paymentID)
	if err != nil {
		return err
	}
	if payment == nil {
		return fmt.Errorf("payment %s not found", paymentID)
	}

	amount := strconv.FormatFloat(payment.Amount, 'f', 2, 64)

	n := payfast.Notification{
		payfast.FieldMPaymentID:    paymentID,
		payfast.FieldPFPaymentID:   fmt.Sprintf("PF_%d", time.Now().UnixMilli()),
		payfast.FieldPaymentStatus: status,
		payfast.FieldItemName:      "Test Payment",
		payfast.FieldAmountGross:   amount,
		payfast.FieldAmountFee:     "0.00",
		payfast.FieldAmountNet:     amount,
	}

	s.log.Info("Simulating ITN",
		zap.String("payment_id", paymentID),
		zap.String("status", status),
	)

	return s.ReconcilePayment(ctx, n)
}

// failureReason maps a gateway status code to the operator-facing reason
// stored on the payment.
func failureReason(status string) string {
	switch status {
	case payfast.StatusCancelled:
		return "Payment was cancelled by user"
	case payfast.StatusFailed:
		return "Payment failed - insufficient funds or card declined"
	case payfast.StatusPending:
		return "Payment is still being processed"
	case payfast.StatusExpired:
		return "Payment session expired"
	default:
		return fmt.Sprintf("Payment failed with status: %s", status)
	}
}

func parsePaymentDate(value string, fallback time.Time) time.Time {
	if value == "" {
		return fallback
	}

	parsed, err := time.Parse(paymentDateLayout, value)
	if err != nil {
		return fallback
	}
	return parsed
}

func serviceName(details map[string]any) string {
	if cleaningType, ok := details["cleaningType"].(string); ok && cleaningType != "" {
		return cleaningType
	}
	return "cleaning service"
}
