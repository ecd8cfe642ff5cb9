package adaptor

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"cleaning-booking/internal/dto/request"
	"cleaning-booking/internal/dto/response"
	"cleaning-booking/internal/usecase"
	"cleaning-booking/pkg/utils"

	"go.uber.org/zap"
)

type PaymentHandler struct {
	service usecase.PaymentService
	config  *utils.Config
	log     *zap.Logger
}

func NewPaymentHandler(service usecase.PaymentService, config *utils.Config, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		config:  config,
		log:     log.With(zap.String("handler", "payment")),
	}
}

// HealthCheck handles GET /payfastHealthCheck (no side effects)
func (h *PaymentHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := response.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Config: response.HealthConfig{
			Sandbox:    h.config.PayFast.Sandbox,
			MerchantID: h.config.PayFast.MerchantID,
			Host:       h.config.PayFast.Host,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(health)
}

// VerifyPayment handles POST /verifyPayment - the mobile client polls this
// for the payment's terminal status; it never sees webhook-level errors.
func (h *PaymentHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	var req request.VerifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Payment ID is required", validationErrors)
		return
	}

	status, err := h.service.VerifyPayment(r.Context(), req.PaymentID)
	if err != nil {
		h.handleServiceError(w, err, "verify payment")
		return
	}

	utils.ResponseSuccess(w, "success", status)
}

func (h *PaymentHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	errMsg := err.Error()

	switch {
	case strings.Contains(errMsg, "not found"):
		h.log.Warn(operation+" failed - not found",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseNotFound(w, errMsg)

	default:
		h.log.Error("Failed to "+operation,
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
