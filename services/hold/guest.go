package hold

import (
	"context"
	"fmt"
	"time"

	"tutorbook/models"
	"tutorbook/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// resolveClaimant returns the identity a new hold is attributed to. An
// authenticated claimant is used as-is; otherwise a guest placeholder is
// synthesized so the hold still points at a real identity row.
func (svc *DefaultHoldService) resolveClaimant(ctx context.Context, req CreateHoldRequest) (string, bool, error) {
	if req.ClaimantID != "" {
		return req.ClaimantID, false, nil
	}
	guest := &models.Identity{
		ID:        uuid.NewString(),
		Guest:     true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if req.Contact != nil {
		guest.Name = req.Contact.Name
		guest.Email = req.Contact.Email
		guest.Phone = req.Contact.Phone
	}
	if err := svc.Identities.CreateGuest(ctx, guest); err != nil {
		return "", false, fmt.Errorf("failed to create guest identity: %w", err)
	}
	return guest.ID, true, nil
}

// reapGuestsOf deletes guest identities from the given holds that have no
// remaining holds or appointments. Best-effort: a failed reap only logs, the
// sweep will retry on its next pass.
func (svc *DefaultHoldService) reapGuestsOf(ctx context.Context, holds []models.Hold) {
	now := svc.now()
	seen := make(map[string]bool)
	for _, h := range holds {
		if !h.GuestClaimant || seen[h.ClaimantID] {
			continue
		}
		seen[h.ClaimantID] = true

		active, err := svc.Ledger.CountActiveHoldsForClaimant(ctx, h.ClaimantID, now)
		if err != nil {
			utils.GetLogger().Warn("guest reap skipped: hold count failed",
				zap.String("claimantID", h.ClaimantID), zap.Error(err))
			continue
		}
		booked, err := svc.Ledger.CountAppointmentsForUser(ctx, h.ClaimantID)
		if err != nil {
			utils.GetLogger().Warn("guest reap skipped: appointment count failed",
				zap.String("claimantID", h.ClaimantID), zap.Error(err))
			continue
		}
		if active > 0 || booked > 0 {
			continue
		}
		if err := svc.Identities.DeleteGuest(ctx, h.ClaimantID); err != nil {
			utils.GetLogger().Warn("guest reap failed",
				zap.String("claimantID", h.ClaimantID), zap.Error(err))
		}
	}
}
