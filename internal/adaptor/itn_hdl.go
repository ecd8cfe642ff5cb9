package adaptor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cleaning-booking/internal/payfast"
	"cleaning-booking/internal/usecase"
	"cleaning-booking/pkg/utils"

	"go.uber.org/zap"
)

// processTimeout bounds the post-acknowledgment work: the gateway
// re-validation call plus the reconciliation writes.
const processTimeout = 60 * time.Second

type ITNHandler struct {
	service usecase.ITNService
	config  *utils.Config
	log     *zap.Logger
}

func NewITNHandler(service usecase.ITNService, config *utils.Config, log *zap.Logger) *ITNHandler {
	return &ITNHandler{
		service: service,
		config:  config,
		log:     log.With(zap.String("handler", "itn")),
	}
}

// HandleNotification handles POST /payfastITN. PayFast retries on any
// non-200 or timeout, so the 200 "OK" goes out as soon as structure and
// signature check out; everything after that is asynchronous and only
// surfaces through the audit collections.
func (h *ITNHandler) HandleNotification(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.log.Warn("Failed to read ITN body", zap.Error(err))
		http.Error(w, "No ITN data received", http.StatusBadRequest)
		return
	}

	notification := decodeNotification(r.Header.Get("Content-Type"), body)
	if len(notification) == 0 {
		h.log.Warn("Empty ITN payload", zap.Int("body_bytes", len(body)))
		http.Error(w, "No ITN data received", http.StatusBadRequest)
		return
	}

	h.log.Info("ITN received",
		zap.String("payment_id", notification.MPaymentID()),
		zap.String("pf_payment_id", notification.PFPaymentID()),
		zap.String("payment_status", notification.PaymentStatus()),
		zap.Int("fields", len(notification)),
	)

	if err := h.service.VerifyNotification(r.Context(), notification); err != nil {
		if strings.Contains(err.Error(), "signature") {
			http.Error(w, "Invalid signature", http.StatusBadRequest)
		} else {
			http.Error(w, "Invalid ITN data structure", http.StatusBadRequest)
		}
		return
	}

	// Acknowledge before the heavy work.
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				h.log.Error("PANIC during ITN processing",
					zap.Any("error", rec),
					zap.String("payment_id", notification.MPaymentID()),
					zap.Stack("stack"),
				)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), processTimeout)
		defer cancel()

		if err := h.service.ProcessNotification(ctx, notification); err != nil {
			h.log.Error("ITN processing failed after acknowledgment",
				zap.Error(err),
				zap.String("payment_id", notification.MPaymentID()),
			)
		}
	}()
}

// SimulateNotification handles GET /simulateITN (sandbox only). It feeds a
// synthetic notification straight into the reconciler, skipping signature
// and gateway checks.
func (h *ITNHandler) SimulateNotification(w http.ResponseWriter, r *http.Request) {
	if !h.config.PayFast.Sandbox {
		utils.ResponseForbidden(w, "Only available in sandbox mode")
		return
	}

	query := r.URL.Query()
	paymentID := query.Get("paymentId")
	if paymentID == "" {
		utils.ResponseBadRequest(w, "paymentId query parameter required", nil)
		return
	}

	if err := h.service.SimulateNotification(r.Context(), paymentID, query.Get("status")); err != nil {
		h.handleServiceError(w, err, "simulate ITN")
		return
	}

	utils.ResponseSuccess(w, fmt.Sprintf("ITN simulated for %s", paymentID), nil)
}

func (h *ITNHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	errMsg := err.Error()

	switch {
	case strings.Contains(errMsg, "not found"):
		h.log.Warn(operation+" failed - not found",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseNotFound(w, errMsg)

	case strings.Contains(errMsg, "invalid"), strings.Contains(errMsg, "mismatch"):
		h.log.Warn(operation+" failed - invalid input",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseBadRequest(w, errMsg, nil)

	default:
		h.log.Error("Failed to "+operation,
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}

// decodeNotification accepts either a JSON object or a raw form-encoded
// body, the two shapes PayFast (and its sandbox tooling) post.
func decodeNotification(contentType string, body []byte) payfast.Notification {
	notification := payfast.Notification{}

	if strings.Contains(contentType, "application/json") {
		var fields map[string]any
		if err := json.Unmarshal(body, &fields); err == nil {
			for key, value := range fields {
				notification[key] = fmt.Sprintf("%v", value)
			}
		}
	}

	if len(notification) == 0 {
		values, err := url.ParseQuery(string(body))
		if err == nil {
			for key := range values {
				notification[key] = values.Get(key)
			}
		}
	}

	return notification
}
