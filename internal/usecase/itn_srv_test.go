package usecase_test

import (
	"context"
	"errors"
	"testing"

	"cleaning-booking/internal/data/entity"
	"cleaning-booking/internal/data/repository"
	"cleaning-booking/internal/payfast"
	"cleaning-booking/internal/usecase"
	"cleaning-booking/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// ---------- mocks ----------

type mockPaymentRepo struct{ mock.Mock }

func (m *mockPaymentRepo) Create(ctx context.Context, payment *entity.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *mockPaymentRepo) FindByID(ctx context.Context, id string) (*entity.Payment, error) {
	args := m.Called(ctx, id)
	var payment *entity.Payment
	if v := args.Get(0); v != nil {
		payment = v.(*entity.Payment)
	}
	return payment, args.Error(1)
}

type mockReconcileRepo struct{ mock.Mock }

func (m *mockReconcileRepo) CompleteBooking(ctx context.Context, payment *entity.Payment, completion *entity.PaymentCompletion, booking *entity.Booking, note *entity.Notification) (bool, error) {
	args := m.Called(ctx, payment, completion, booking, note)
	return args.Bool(0), args.Error(1)
}

func (m *mockReconcileRepo) FailPayment(ctx context.Context, paymentID string, failure *entity.PaymentFailure) (bool, error) {
	args := m.Called(ctx, paymentID, failure)
	return args.Bool(0), args.Error(1)
}

type mockAuditRepo struct{ mock.Mock }

func (m *mockAuditRepo) LogError(ctx context.Context, eventType string, data map[string]any) {
	m.Called(ctx, eventType, data)
}

func (m *mockAuditRepo) LogSuccess(ctx context.Context, eventType string, data map[string]any) {
	m.Called(ctx, eventType, data)
}

type mockGateway struct{ mock.Mock }

func (m *mockGateway) Validate(ctx context.Context, n payfast.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

type fixture struct {
	payments  *mockPaymentRepo
	reconcile *mockReconcileRepo
	audit     *mockAuditRepo
	gateway   *mockGateway
	service   usecase.ITNService
}

func newFixture(config *utils.Config) *fixture {
	f := &fixture{
		payments:  &mockPaymentRepo{},
		reconcile: &mockReconcileRepo{},
		audit:     &mockAuditRepo{},
		gateway:   &mockGateway{},
	}

	repo := &repository.Repository{
		Payment:   f.payments,
		Reconcile: f.reconcile,
		Audit:     f.audit,
	}

	f.service = usecase.NewITNService(repo, f.gateway, config, zap.NewNop())
	return f
}

func defaultConfig() *utils.Config {
	return &utils.Config{
		PayFast: utils.PayFastConfig{
			Sandbox:          true,
			Host:             "sandbox.payfast.co.za",
			StrictValidation: false,
		},
	}
}

func pendingPayment() *entity.Payment {
	return &entity.Payment{
		ID:          "P1",
		UserID:      "U1",
		Amount:      200.00,
		Currency:    "ZAR",
		BookingData: `{"cleaningType":"deep-clean"}`,
		Status:      entity.PaymentStatusPending,
	}
}

func completeITN(paymentID, status, gross string) payfast.Notification {
	return payfast.Notification{
		payfast.FieldMPaymentID:    paymentID,
		payfast.FieldPFPaymentID:   "PF123",
		payfast.FieldPaymentStatus: status,
		payfast.FieldItemName:      "Deep Clean",
		payfast.FieldAmountGross:   gross,
		payfast.FieldAmountFee:     "4.60",
		payfast.FieldAmountNet:     "195.40",
	}
}

// ---------- verification ----------

func TestVerifyNotification_StructureFailureIsAudited(t *testing.T) {
	f := newFixture(defaultConfig())
	ctx := context.Background()

	n := completeITN("P1", "COMPLETE", "200.00")
	delete(n, payfast.FieldAmountNet)

	f.audit.On("LogError", ctx, "ITN_STRUCTURE_INVALID", mock.Anything).Return()

	err := f.service.VerifyNotification(ctx, n)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "amount_net")
	f.audit.AssertExpectations(t)
	f.payments.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestVerifyNotification_SignatureMismatchIsAudited(t *testing.T) {
	f := newFixture(defaultConfig())
	ctx := context.Background()

	n := completeITN("P1", "COMPLETE", "200.00")
	n[payfast.FieldSignature] = "0123456789abcdef0123456789abcdef"

	f.audit.On("LogError", ctx, "SIGNATURE_MISMATCH", mock.Anything).Return()

	err := f.service.VerifyNotification(ctx, n)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "signature")
	f.audit.AssertExpectations(t)
	f.payments.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestVerifyNotification_WellSignedPasses(t *testing.T) {
	config := defaultConfig()
	config.PayFast.Passphrase = "secret word"
	f := newFixture(config)

	n := completeITN("P1", "COMPLETE", "200.00")
	n[payfast.FieldSignature] = payfast.Sign(n, "secret word")

	assert.NoError(t, f.service.VerifyNotification(context.Background(), n))
}

// ---------- reconciliation ----------

func TestReconcilePayment_CompleteCreatesBookingAndNotification(t *testing.T) {
	f := newFixture(defaultConfig())
	ctx := context.Background()

	f.payments.On("FindByID", ctx, "P1").Return(pendingPayment(), nil)
	f.reconcile.On("CompleteBooking", ctx, mock.Anything,
		mock.MatchedBy(func(c *entity.PaymentCompletion) bool {
			return c.PFPaymentID == "PF123" && c.AmountGross == 200.00
		}),
		mock.MatchedBy(func(b *entity.Booking) bool {
			return b.UserID == "U1" &&
				b.PaymentID == "P1" &&
				b.Status == entity.BookingStatusConfirmed &&
				b.PaymentStatus == entity.BookingPaymentStatusPaid &&
				b.Details["cleaningType"] == "deep-clean"
		}),
		mock.MatchedBy(func(n *entity.Notification) bool {
			return n.Type == entity.NotificationTypePaymentSuccess &&
				n.UserID == "U1" &&
				!n.Read
		}),
	).Return(true, nil)
	f.audit.On("LogSuccess", ctx, "PAYMENT_COMPLETED", mock.Anything).Return()

	err := f.service.ReconcilePayment(ctx, completeITN("P1", "COMPLETE", "200.00"))

	assert.NoError(t, err)
	f.reconcile.AssertExpectations(t)
	f.audit.AssertExpectations(t)
}

func TestReconcilePayment_AlreadyCompletedIsNoOp(t *testing.T) {
	f := newFixture(defaultConfig())
	ctx := context.Background()

	payment := pendingPayment()
	payment.Status = entity.PaymentStatusCompleted
	f.payments.On("FindByID", ctx, "P1").Return(payment, nil)

	err := f.service.ReconcilePayment(ctx, completeITN("P1", "COMPLETE", "200.00"))

	assert.NoError(t, err)
	f.reconcile.AssertNotCalled(t, "CompleteBooking", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.reconcile.AssertNotCalled(t, "FailPayment", mock.Anything, mock.Anything, mock.Anything)
}

func TestReconcilePayment_ConcurrentReplayIsNoOp(t *testing.T) {
	f := newFixture(defaultConfig())
	ctx := context.Background()

	f.payments.On("FindByID", ctx, "P1").Return(pendingPayment(), nil)
	f.reconcile.On("CompleteBooking", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(false, nil)

	err := f.service.ReconcilePayment(ctx, completeITN("P1", "COMPLETE", "200.00"))

	assert.NoError(t, err)
	f.audit.AssertNotCalled(t, "LogSuccess", mock.Anything, mock.Anything, mock.Anything)
}

func TestReconcilePayment_AmountWithinTolerance(t *testing.T) {
	f := newFixture(defaultConfig())
	ctx := context.Background()

	payment := pendingPayment()
	payment.Amount = 150.00
	f.payments.On("FindByID", ctx, "P1").Return(payment, nil)
	f.reconcile.On("CompleteBooking", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(true, nil)
	f.audit.On("LogSuccess", ctx, "PAYMENT_COMPLETED", mock.Anything).Return()

	err := f.service.ReconcilePayment(ctx, completeITN("P1", "COMPLETE", "150.01"))

	assert.NoError(t, err)
	f.reconcile.AssertExpectations(t)
}

func TestReconcilePayment_AmountMismatch(t *testing.T) {
	f := newFixture(defaultConfig())
	ctx := context.Background()

	payment := pendingPayment()
	payment.Amount = 150.00
	f.payments.On("FindByID", ctx, "P1").Return(payment, nil)

	err := f.service.ReconcilePayment(ctx, completeITN("P1", "COMPLETE", "150.02"))

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "amount mismatch")
	f.reconcile.AssertNotCalled(t, "CompleteBooking", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReconcilePayment_NonNumericAmount(t *testing.T) {
	f := newFixture(defaultConfig())
	ctx := context.Background()

	f.payments.On("FindByID", ctx, "P1").Return(pendingPayment(), nil)

	err := f.service.ReconcilePayment(ctx, completeITN("P1", "COMPLETE", "not-a-number"))

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid amount")
}

func TestReconcilePayment_CancelledMarksFailed(t *testing.T) {
	f := newFixture(defaultConfig())
	ctx := context.Background()

	f.payments.On("FindByID", ctx, "P1").Return(pendingPayment(), nil)
	f.reconcile.On("FailPayment", ctx, "P1",
		mock.MatchedBy(func(failure *entity.PaymentFailure) bool {
			return failure.GatewayStatus == "CANCELLED" &&
				failure.FailureReason == "Payment was cancelled by user"
		}),
	).Return(true, nil)

	err := f.service.ReconcilePayment(ctx, completeITN("P1", "CANCELLED", "200.00"))

	assert.NoError(t, err)
	f.reconcile.AssertExpectations(t)
	f.reconcile.AssertNotCalled(t, "CompleteBooking", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReconcilePayment_StatusDispatchIsCaseInsensitive(t *testing.T) {
	f := newFixture(defaultConfig())
	ctx := context.Background()

	f.payments.On("FindByID", ctx, "P1").Return(pendingPayment(), nil)
	f.reconcile.On("CompleteBooking", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(true, nil)
	f.audit.On("LogSuccess", ctx, "PAYMENT_COMPLETED", mock.Anything).Return()

	err := f.service.ReconcilePayment(ctx, completeITN("P1", "complete", "200.00"))

	assert.NoError(t, err)
	f.reconcile.AssertExpectations(t)
}

func TestReconcilePayment_PaymentNotFound(t *testing.T) {
	f := newFixture(defaultConfig())
	ctx := context.Background()

	f.payments.On("FindByID", ctx, "GHOST").Return(nil, nil)

	err := f.service.ReconcilePayment(ctx, completeITN("GHOST", "COMPLETE", "200.00"))

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestReconcilePayment_MalformedBookingData(t *testing.T) {
	f := newFixture(defaultConfig())
	ctx := context.Background()

	payment := pendingPayment()
	payment.BookingData = "{not json"
	f.payments.On("FindByID", ctx, "P1").Return(payment, nil)

	err := f.service.ReconcilePayment(ctx, completeITN("P1", "COMPLETE", "200.00"))

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "booking data")
}

// ---------- gateway re-validation policy ----------

func TestProcessNotification_LenientContinuesOnGatewayFailure(t *testing.T) {
	f := newFixture(defaultConfig())
	ctx := context.Background()

	n := completeITN("P1", "COMPLETE", "200.00")

	f.gateway.On("Validate", ctx, n).Return(errors.New("payfast validation answered \"INVALID\""))

	payment := pendingPayment()
	payment.Status = entity.PaymentStatusCompleted
	f.payments.On("FindByID", ctx, "P1").Return(payment, nil)

	err := f.service.ProcessNotification(ctx, n)

	assert.NoError(t, err)
	f.payments.AssertExpectations(t)
}

func TestProcessNotification_StrictAbortsOnGatewayFailure(t *testing.T) {
	config := defaultConfig()
	config.PayFast.StrictValidation = true
	f := newFixture(config)
	ctx := context.Background()

	n := completeITN("P1", "COMPLETE", "200.00")

	f.gateway.On("Validate", ctx, n).Return(errors.New("payfast validation answered \"INVALID\""))
	f.audit.On("LogError", ctx, "GATEWAY_VALIDATION_FAILED", mock.Anything).Return()

	err := f.service.ProcessNotification(ctx, n)

	assert.Error(t, err)
	f.payments.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	f.audit.AssertExpectations(t)
}

func TestProcessNotification_ReconcileErrorIsAudited(t *testing.T) {
	f := newFixture(defaultConfig())
	ctx := context.Background()

	n := completeITN("GHOST", "COMPLETE", "200.00")

	f.gateway.On("Validate", ctx, n).Return(nil)
	f.payments.On("FindByID", ctx, "GHOST").Return(nil, nil)
	f.audit.On("LogError", ctx, "PAYMENT_PROCESSING_ERROR", mock.Anything).Return()

	err := f.service.ProcessNotification(ctx, n)

	assert.Error(t, err)
	f.audit.AssertExpectations(t)
}

// ---------- simulation ----------

func TestSimulateNotification_RunsReconciler(t *testing.T) {
	f := newFixture(defaultConfig())
	ctx := context.Background()

	f.payments.On("FindByID", ctx, "P1").Return(pendingPayment(), nil).Twice()
	f.reconcile.On("CompleteBooking", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(true, nil)
	f.audit.On("LogSuccess", ctx, "PAYMENT_COMPLETED", mock.Anything).Return()

	err := f.service.SimulateNotification(ctx, "P1", "")

	assert.NoError(t, err)
	f.reconcile.AssertExpectations(t)
}

func TestSimulateNotification_UnknownPayment(t *testing.T) {
	f := newFixture(defaultConfig())
	ctx := context.Background()

	f.payments.On("FindByID", ctx, "GHOST").Return(nil, nil)

	err := f.service.SimulateNotification(ctx, "GHOST", "COMPLETE")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
