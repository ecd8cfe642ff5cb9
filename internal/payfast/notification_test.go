package payfast_test

import (
	"testing"

	"cleaning-booking/internal/payfast"

	"github.com/stretchr/testify/assert"
)

func completeNotification() payfast.Notification {
	return payfast.Notification{
		"m_payment_id":   "P1",
		"pf_payment_id":  "PF123",
		"payment_status": "COMPLETE",
		"item_name":      "Deep Clean",
		"amount_gross":   "200.00",
		"amount_fee":     "4.60",
		"amount_net":     "195.40",
	}
}

func TestValidateStructure_Passes(t *testing.T) {
	err := payfast.ValidateStructure(completeNotification(), payfast.RequiredFields)
	assert.NoError(t, err)
}

func TestValidateStructure_MissingField(t *testing.T) {
	for _, field := range payfast.RequiredFields {
		n := completeNotification()
		delete(n, field)

		err := payfast.ValidateStructure(n, payfast.RequiredFields)
		assert.Error(t, err, "expected rejection when %s is absent", field)
		assert.Contains(t, err.Error(), field)
	}
}

func TestValidateStructure_EmptyValue(t *testing.T) {
	n := completeNotification()
	n["payment_status"] = ""

	err := payfast.ValidateStructure(n, payfast.RequiredFields)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "payment_status")
}

func TestPaymentStatus_Uppercased(t *testing.T) {
	n := payfast.Notification{"payment_status": "complete"}
	assert.Equal(t, payfast.StatusComplete, n.PaymentStatus())
}
