package models

import "time"

// Reconciliation case kinds.
const (
	ReconHoldExpiredAfterPayment = "hold_expired_after_payment"
	ReconSkippedOccurrences      = "skipped_occurrences_refund"
	ReconAmountMismatch          = "amount_mismatch"
)

// ReconciliationCase flags a payment that succeeded but could not be (fully)
// converted into appointments. Worked off manually by an operator; the end
// user is never shown a payment failure for these.
type ReconciliationCase struct {
	ID         string    `bson:"id" json:"id"`
	Kind       string    `bson:"kind" json:"kind"`
	PaymentRef string    `bson:"payment_ref" json:"paymentRef"`
	HoldID     string    `bson:"hold_id,omitempty" json:"holdId,omitempty"`
	Details    string    `bson:"details,omitempty" json:"details,omitempty"`
	Resolved   bool      `bson:"resolved" json:"resolved"`
	CreatedAt  time.Time `bson:"created_at" json:"createdAt"`
}
