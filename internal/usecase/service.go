package usecase

import (
	"cleaning-booking/internal/data/repository"
	"cleaning-booking/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	ITN     ITNService
	Payment PaymentService
}

func NewService(repo *repository.Repository, gateway GatewayValidator, config *utils.Config, logger *zap.Logger) *Service {
	return &Service{
		ITN:     NewITNService(repo, gateway, config, logger),
		Payment: NewPaymentService(repo, logger),
	}
}
