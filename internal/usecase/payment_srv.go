package usecase

import (
	"context"
	"fmt"

	"cleaning-booking/internal/data/repository"
	"cleaning-booking/internal/dto/response"

	"go.uber.org/zap"
)

type PaymentService interface {
	// VerifyPayment returns the stored status of a payment for the mobile
	// client, which polls this after handing off to the gateway.
	VerifyPayment(ctx context.Context, paymentID string) (*response.PaymentStatusResponse, error)
}

type paymentService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewPaymentService(repo *repository.Repository, log *zap.Logger) PaymentService {
	return &paymentService{
		repo: repo,
		log:  log.With(zap.String("service", "payment")),
	}
}

func (s *paymentService) VerifyPayment(ctx context.Context, paymentID string) (*response.PaymentStatusResponse, error) {
	payment, err := s.repo.Payment.FindByID(ctx, paymentID)
	if err != nil {
		s.log.Error("Failed to look up payment",
			zap.Error(err),
			zap.String("payment_id", paymentID),
		)
		return nil, fmt.Errorf("verify payment %s: %w", paymentID, err)
	}
	if payment == nil {
		return nil, fmt.Errorf("payment %s not found", paymentID)
	}

	s.log.Info("Payment verification requested",
		zap.String("payment_id", paymentID),
		zap.String("status", string(payment.Status)),
	)

	return &response.PaymentStatusResponse{
		PaymentID:    payment.ID,
		Status:       string(payment.Status),
		Amount:       payment.Amount,
		CreatedAt:    payment.CreatedAt,
		CompletedAt:  payment.CompletedAt,
		ProcessedVia: payment.ProcessedVia,
	}, nil
}
