package payfast

import (
	"fmt"
	"strings"
)

// Field names of the ITN payload as PayFast posts them.
const (
	FieldMPaymentID    = "m_payment_id"
	FieldPFPaymentID   = "pf_payment_id"
	FieldPaymentStatus = "payment_status"
	FieldItemName      = "item_name"
	FieldAmountGross   = "amount_gross"
	FieldAmountFee     = "amount_fee"
	FieldAmountNet     = "amount_net"
	FieldPaymentDate   = "payment_date"
	FieldSignature     = "signature"
)

// Gateway payment statuses reported in payment_status.
const (
	StatusComplete  = "COMPLETE"
	StatusCancelled = "CANCELLED"
	StatusFailed    = "FAILED"
	StatusPending   = "PENDING"
	StatusExpired   = "EXPIRED"
)

// Notification is the untrusted ITN payload, a flat string-to-string
// mapping. None of the fields may be trusted before VerifySignature.
type Notification map[string]string

func (n Notification) MPaymentID() string  { return n[FieldMPaymentID] }
func (n Notification) PFPaymentID() string { return n[FieldPFPaymentID] }
func (n Notification) ItemName() string    { return n[FieldItemName] }
func (n Notification) AmountGross() string { return n[FieldAmountGross] }
func (n Notification) AmountFee() string   { return n[FieldAmountFee] }
func (n Notification) AmountNet() string   { return n[FieldAmountNet] }
func (n Notification) PaymentDate() string { return n[FieldPaymentDate] }
func (n Notification) Signature() string   { return n[FieldSignature] }

// PaymentStatus returns the gateway status uppercased for dispatching.
func (n Notification) PaymentStatus() string {
	return strings.ToUpper(n[FieldPaymentStatus])
}

// RequiredFields is the authoritative required-field set for structural
// validation. PayFast omits fee/net in some modes but the strict superset
// is enforced here.
var RequiredFields = []string{
	FieldMPaymentID,
	FieldPFPaymentID,
	FieldPaymentStatus,
	FieldItemName,
	FieldAmountGross,
	FieldAmountFee,
	FieldAmountNet,
}

// ValidateStructure checks that every required field is present and
// non-empty. It runs before any database access.
func ValidateStructure(n Notification, required []string) error {
	var missing []string
	for _, field := range required {
		if value, ok := n[field]; !ok || value == "" {
			missing = append(missing, field)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("invalid ITN data structure: missing required fields: %s", strings.Join(missing, ", "))
	}

	return nil
}
