package wire

import (
	"cleaning-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wirePayfast(r chi.Router, handler *adaptor.Handler) {
	// POST /payfastITN - gateway webhook (POST only; chi answers 405 otherwise)
	r.Post("/payfastITN", handler.ITN.HandleNotification)

	// GET /payfastHealthCheck - static status, no side effects
	r.Get("/payfastHealthCheck", handler.Payment.HealthCheck)

	// POST /verifyPayment - payment status query for the mobile client
	r.Post("/verifyPayment", handler.Payment.VerifyPayment)

	// GET /simulateITN - sandbox-only ITN replay tooling
	r.Get("/simulateITN", handler.ITN.SimulateNotification)
}
