package request

type VerifyPaymentRequest struct {
	PaymentID string `json:"paymentId" validate:"required"`
}
