package adaptor_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cleaning-booking/internal/adaptor"
	"cleaning-booking/internal/dto/response"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type mockPaymentService struct{ mock.Mock }

func (m *mockPaymentService) VerifyPayment(ctx context.Context, paymentID string) (*response.PaymentStatusResponse, error) {
	args := m.Called(ctx, paymentID)
	var resp *response.PaymentStatusResponse
	if v := args.Get(0); v != nil {
		resp = v.(*response.PaymentStatusResponse)
	}
	return resp, args.Error(1)
}

func paymentRouter(service *mockPaymentService) *chi.Mux {
	handler := adaptor.NewPaymentHandler(service, testConfig(true), zap.NewNop())
	r := chi.NewRouter()
	r.Get("/payfastHealthCheck", handler.HealthCheck)
	r.Post("/verifyPayment", handler.VerifyPayment)
	return r
}

func TestHealthCheck(t *testing.T) {
	router := paymentRouter(&mockPaymentService{})

	req := httptest.NewRequest(http.MethodGet, "/payfastHealthCheck", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var health response.HealthResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health.Status)
	assert.True(t, health.Config.Sandbox)
	assert.Equal(t, "10041473", health.Config.MerchantID)
	assert.Equal(t, "sandbox.payfast.co.za", health.Config.Host)
	assert.NotEmpty(t, health.Timestamp)
}

func TestVerifyPayment_Success(t *testing.T) {
	service := &mockPaymentService{}
	completedAt := time.Now()
	processedVia := "itn_webhook"
	service.On("VerifyPayment", mock.Anything, "P1").Return(&response.PaymentStatusResponse{
		PaymentID:    "P1",
		Status:       "completed",
		Amount:       200.00,
		CreatedAt:    completedAt.Add(-time.Hour),
		CompletedAt:  &completedAt,
		ProcessedVia: &processedVia,
	}, nil)

	router := paymentRouter(service)

	req := httptest.NewRequest(http.MethodPost, "/verifyPayment", strings.NewReader(`{"paymentId":"P1"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"paymentId":"P1"`)
	assert.Contains(t, rec.Body.String(), `"status":"completed"`)
	assert.Contains(t, rec.Body.String(), `"processedVia":"itn_webhook"`)
}

func TestVerifyPayment_MissingPaymentID(t *testing.T) {
	service := &mockPaymentService{}
	router := paymentRouter(service)

	req := httptest.NewRequest(http.MethodPost, "/verifyPayment", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Payment ID is required")
	service.AssertNotCalled(t, "VerifyPayment", mock.Anything, mock.Anything)
}

func TestVerifyPayment_NotFound(t *testing.T) {
	service := &mockPaymentService{}
	service.On("VerifyPayment", mock.Anything, "GHOST").
		Return(nil, fmt.Errorf("payment GHOST not found"))

	router := paymentRouter(service)

	req := httptest.NewRequest(http.MethodPost, "/verifyPayment", strings.NewReader(`{"paymentId":"GHOST"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVerifyPayment_InvalidBody(t *testing.T) {
	router := paymentRouter(&mockPaymentService{})

	req := httptest.NewRequest(http.MethodPost, "/verifyPayment", strings.NewReader("not json"))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
