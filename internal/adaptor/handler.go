package adaptor

import (
	"cleaning-booking/internal/usecase"
	"cleaning-booking/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	ITN     *ITNHandler
	Payment *PaymentHandler
}

func NewHandler(service *usecase.Service, config *utils.Config, log *zap.Logger) *Handler {
	return &Handler{
		ITN:     NewITNHandler(service.ITN, config, log),
		Payment: NewPaymentHandler(service.Payment, config, log),
	}
}
