package finalize

import "errors"

var (
	// ErrPaymentWithoutSlot means payment was verified but the hold had
	// already expired or been released, so no appointment could be created.
	// A reconciliation case is flagged before this is returned; the client
	// response still reads as a successful payment pending follow-up.
	ErrPaymentWithoutSlot = errors.New("payment received but the held slot is no longer available")
	// ErrAmountMismatch means the verified payment amount does not equal
	// the hold's quoted price.
	ErrAmountMismatch = errors.New("paid amount does not match the quoted price")
)
