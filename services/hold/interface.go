package hold

import (
	"context"
	"time"

	availabilityRepo "tutorbook/database/repository/availability"
	identityRepo "tutorbook/database/repository/identity"
	ledgerRepo "tutorbook/database/repository/ledger"
	"tutorbook/models"
)

// CreateHoldRequest describes the slot a claimant wants reserved. When
// ClaimantID is empty a guest placeholder identity is synthesized and the
// hold is attributed to it.
type CreateHoldRequest struct {
	TutorID         string                   `json:"tutorId" binding:"required"`
	CourseID        string                   `json:"courseId" binding:"required"`
	Start           time.Time                `json:"start" binding:"required"`
	DurationMinutes int                      `json:"durationMinutes" binding:"required"`
	ClaimantID      string                   `json:"-"`
	Contact         *models.GuestContactInfo `json:"contact,omitempty"`
	Recurrence      *models.RecurrencePlan   `json:"recurrence,omitempty"`
}

// HoldService manages the short-lived exclusive claims that bridge slot
// selection and payment.
type HoldService interface {
	// CreateHold atomically purges expired holds, checks the window for
	// conflicts, and inserts the new hold. A conflict returns ErrSlotTaken.
	CreateHold(ctx context.Context, req CreateHoldRequest) (*models.HoldView, error)
	// GetHold returns ErrHoldExpired for a hold past its TTL and
	// ErrHoldNotFound for one that never existed or was released.
	GetHold(ctx context.Context, holdID string) (*models.HoldView, error)
	// UpdateHold attaches checkout details to an unexpired hold.
	UpdateHold(ctx context.Context, holdID string, details models.CheckoutDetails) (*models.HoldView, error)
	// ReleaseHold frees the slot. Releasing an unknown or already-released
	// hold is a no-op.
	ReleaseHold(ctx context.Context, holdID string) error
	// SweepExpired removes expired holds and reaps guest identities left
	// with no remaining holds or appointments. Returns the purge count.
	SweepExpired(ctx context.Context) (int, error)
}

// DefaultHoldService implements HoldService.
type DefaultHoldService struct {
	Ledger       ledgerRepo.LedgerRepository
	Identities   identityRepo.IdentityRepository
	Rules        availabilityRepo.AvailabilityRuleRepository
	TTL          time.Duration
	GridStepMins int

	// Clock overrides time.Now in tests.
	Clock func() time.Time
}

func (svc *DefaultHoldService) now() time.Time {
	if svc.Clock != nil {
		return svc.Clock()
	}
	return time.Now()
}

func (svc *DefaultHoldService) ttl() time.Duration {
	if svc.TTL <= 0 {
		return 15 * time.Minute
	}
	return svc.TTL
}

func (svc *DefaultHoldService) gridStep() int {
	if svc.GridStepMins <= 0 {
		return 30
	}
	return svc.GridStepMins
}
