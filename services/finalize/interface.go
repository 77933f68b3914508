package finalize

import (
	"context"
	"time"

	identityRepo "tutorbook/database/repository/identity"
	ledgerRepo "tutorbook/database/repository/ledger"
	"tutorbook/models"
)

// FinalizeRequest carries the verified payment evidence for a hold. PaymentRef
// is the external payment reference and doubles as the idempotency key: every
// retry with the same reference yields the same confirmation.
type FinalizeRequest struct {
	HoldID         string                   `json:"holdId" binding:"required"`
	PaymentRef     string                   `json:"paymentRef" binding:"required"`
	PaidMinorUnits int64                    `json:"paidMinorUnits"`
	Currency       string                   `json:"currency"`
	Guest          *models.GuestContactInfo `json:"guest,omitempty"`
}

// FinalizeService converts a paid hold into durable appointments and an order.
type FinalizeService interface {
	Finalize(ctx context.Context, req FinalizeRequest) (*models.BookingConfirmation, error)
}

// DefaultFinalizeService implements FinalizeService.
type DefaultFinalizeService struct {
	Ledger     ledgerRepo.LedgerRepository
	Identities identityRepo.IdentityRepository

	// Clock overrides time.Now in tests.
	Clock func() time.Time
}

func (svc *DefaultFinalizeService) now() time.Time {
	if svc.Clock != nil {
		return svc.Clock()
	}
	return time.Now()
}
