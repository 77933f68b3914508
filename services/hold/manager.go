package hold

import (
	"context"
	"errors"
	"fmt"
	"time"

	ledgerRepo "tutorbook/database/repository/ledger"
	"tutorbook/models"
	"tutorbook/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateHold reserves a tutor window for the duration of checkout. The purge,
// the conflict checks, and the insert run in one transaction so two concurrent
// requests for the same window cannot both succeed; the loser sees
// ErrSlotTaken.
func (svc *DefaultHoldService) CreateHold(ctx context.Context, req CreateHoldRequest) (*models.HoldView, error) {
	dur, err := models.ParseSessionDuration(req.DurationMinutes)
	if err != nil {
		return nil, err
	}
	now := svc.now()
	if !req.Start.After(now) {
		return nil, fmt.Errorf("hold start %s is in the past", req.Start)
	}
	if req.Recurrence != nil {
		if err := req.Recurrence.Validate(); err != nil {
			return nil, err
		}
	}
	if err := svc.validateAgainstRules(ctx, req.TutorID, req.Start, dur); err != nil {
		return nil, err
	}

	rate, err := svc.Rules.GetTutorRate(ctx, req.TutorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rate for tutor %s: %w", req.TutorID, err)
	}

	claimantID, guest, err := svc.resolveClaimant(ctx, req)
	if err != nil {
		return nil, err
	}

	occurrences := 1
	if req.Recurrence != nil {
		occurrences = req.Recurrence.Occurrences
	}
	newHold := &models.Hold{
		ID:               uuid.NewString(),
		TutorID:          req.TutorID,
		CourseID:         req.CourseID,
		Start:            req.Start,
		End:              req.Start.Add(time.Duration(dur.Minutes()) * time.Minute),
		DurationMinutes:  dur.Minutes(),
		QuotedMinorUnits: dur.PriceMinorUnits(rate.BaseRateMinorUnits) * int64(occurrences),
		Currency:         rate.Currency,
		ClaimantID:       claimantID,
		GuestClaimant:    guest,
		Recurrence:       req.Recurrence,
		CreatedAt:        now,
		ExpiresAt:        now.Add(svc.ttl()),
	}
	if req.Recurrence != nil {
		newHold.RecurringGroupID = uuid.NewString()
	}

	txErr := svc.Ledger.WithTransaction(ctx, func(txCtx context.Context) error {
		purged, err := svc.Ledger.PurgeExpiredHolds(txCtx, now)
		if err != nil {
			return err
		}
		svc.reapGuestsOf(txCtx, purged)

		if _, err := svc.Ledger.FindOverlappingHold(txCtx, req.TutorID, newHold.Start, newHold.End, now); err == nil {
			return ErrSlotTaken
		} else if !errors.Is(err, ledgerRepo.ErrNotFound) {
			return err
		}
		if _, err := svc.Ledger.FindOverlappingAppointment(txCtx, req.TutorID, newHold.Start, newHold.End); err == nil {
			return ErrSlotTaken
		} else if !errors.Is(err, ledgerRepo.ErrNotFound) {
			return err
		}

		if err := svc.Ledger.InsertHold(txCtx, newHold); err != nil {
			// The unique (tutor_id, start) index is the backstop for two
			// inserts racing past the overlap check.
			if errors.Is(err, ledgerRepo.ErrDuplicateHold) {
				return ErrSlotTaken
			}
			return err
		}
		return nil
	})
	if txErr != nil {
		// Roll back the guest placeholder we synthesized for this attempt.
		if guest {
			if err := svc.Identities.DeleteGuest(ctx, claimantID); err != nil {
				utils.GetLogger().Warn("failed to remove guest after hold failure",
					zap.String("claimantID", claimantID), zap.Error(err))
			}
		}
		return nil, txErr
	}

	utils.GetLogger().Info("hold created",
		zap.String("holdID", newHold.ID),
		zap.String("tutorID", newHold.TutorID),
		zap.Time("start", newHold.Start),
		zap.Int("durationMinutes", newHold.DurationMinutes))
	view := newHold.View()
	return &view, nil
}

// GetHold distinguishes a hold past its TTL from one that never existed.
func (svc *DefaultHoldService) GetHold(ctx context.Context, holdID string) (*models.HoldView, error) {
	h, err := svc.Ledger.GetHold(ctx, holdID)
	if err != nil {
		if errors.Is(err, ledgerRepo.ErrNotFound) {
			return nil, ErrHoldNotFound
		}
		return nil, err
	}
	if h.Expired(svc.now()) {
		return nil, ErrHoldExpired
	}
	view := h.View()
	return &view, nil
}

// UpdateHold attaches checkout details. Expired holds reject the update so a
// client filling a stale form learns the slot is gone before paying.
func (svc *DefaultHoldService) UpdateHold(ctx context.Context, holdID string, details models.CheckoutDetails) (*models.HoldView, error) {
	h, err := svc.Ledger.GetHold(ctx, holdID)
	if err != nil {
		if errors.Is(err, ledgerRepo.ErrNotFound) {
			return nil, ErrHoldNotFound
		}
		return nil, err
	}
	if h.Expired(svc.now()) {
		return nil, ErrHoldExpired
	}
	if err := svc.Ledger.UpdateHoldCheckout(ctx, holdID, details); err != nil {
		if errors.Is(err, ledgerRepo.ErrNotFound) {
			return nil, ErrHoldNotFound
		}
		return nil, err
	}
	h.Checkout = &details
	view := h.View()
	return &view, nil
}

// ReleaseHold frees the slot immediately. It is idempotent: releasing a hold
// that was already released, finalized, or swept succeeds silently.
func (svc *DefaultHoldService) ReleaseHold(ctx context.Context, holdID string) error {
	h, err := svc.Ledger.GetHold(ctx, holdID)
	if err != nil {
		if errors.Is(err, ledgerRepo.ErrNotFound) {
			return nil
		}
		return err
	}
	if err := svc.Ledger.DeleteHold(ctx, holdID); err != nil && !errors.Is(err, ledgerRepo.ErrNotFound) {
		return err
	}
	if h.GuestClaimant {
		svc.reapGuestsOf(ctx, []models.Hold{*h})
	}
	utils.GetLogger().Info("hold released", zap.String("holdID", holdID))
	return nil
}

func (svc *DefaultHoldService) validateAgainstRules(ctx context.Context, tutorID string, start time.Time, dur models.SessionDuration) error {
	rules, err := svc.Rules.GetRulesForTutor(ctx, tutorID)
	if err != nil {
		return fmt.Errorf("failed to load rules for tutor %s: %w", tutorID, err)
	}
	midnight := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	startMin := int(start.Sub(midnight) / time.Minute)
	for _, rule := range rules {
		if rule.Weekday != start.Weekday() {
			continue
		}
		if startMin < rule.StartMinute || startMin+dur.Minutes() > rule.EndMinute {
			continue
		}
		if (startMin-rule.StartMinute)%svc.gridStep() != 0 {
			continue
		}
		return nil
	}
	return ErrOutsideAvailability
}
