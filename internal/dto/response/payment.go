package response

import (
	"time"
)

type PaymentStatusResponse struct {
	PaymentID    string     `json:"paymentId"`
	Status       string     `json:"status"`
	Amount       float64    `json:"amount"`
	CreatedAt    time.Time  `json:"createdAt"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
	ProcessedVia *string    `json:"processedVia,omitempty"`
}

type HealthResponse struct {
	Status    string       `json:"status"`
	Timestamp string       `json:"timestamp"`
	Config    HealthConfig `json:"config"`
}

type HealthConfig struct {
	Sandbox    bool   `json:"sandbox"`
	MerchantID string `json:"merchant_id"`
	Host       string `json:"host"`
}
