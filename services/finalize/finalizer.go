package finalize

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
	"golang.org/x/crypto/bcrypt"
)

// errConcurrentFinalize aborts the transaction when a concurrent finalize for
// the same payment reference committed first.
var errConcurrentFinalize = errors.New("payment reference already finalized concurrently")

// errHoldLost aborts the transaction when the hold vanished after payment.
var errHoldLost = errors.New("hold missing or expired at finalization")

// Finalize converts a paid hold into scheduled appointments plus an order,
// atomically. It is idempotent on PaymentRef: the first call creates the
// records, every later call (or a lost-response retry) returns the same
// confirmation with AlreadyFinalized set.
func (svc *DefaultFinalizeService) Finalize(ctx context.Context, req FinalizeRequest) (*models.BookingConfirmation, error) {
	if existing, err := svc.Ledger.GetOrderByPaymentRef(ctx, req.PaymentRef); err == nil {
		return confirmationFromOrder(existing, true), nil
	} else if !errors.Is(err, ledgerRepo.ErrNotFound) {
		return nil, err
	}

	now := svc.now()
	var (
		order   *models.Order
		skipped []time.Time
		holdRef *models.Hold
	)
	txErr := svc.Ledger.WithTransaction(ctx, func(txCtx context.Context) error {
		h, err := svc.Ledger.GetHold(txCtx, req.HoldID)
		if err != nil {
			if errors.Is(err, ledgerRepo.ErrNotFound) {
				return errHoldLost
			}
			return err
		}
		holdRef = h
		if h.Expired(now) {
			return errHoldLost
		}
		if req.PaidMinorUnits != h.QuotedMinorUnits {
			return fmt.Errorf("%w: paid %d, quoted %d", ErrAmountMismatch, req.PaidMinorUnits, h.QuotedMinorUnits)
		}

		if h.GuestClaimant && req.Guest != nil {
			if err := svc.promoteGuest(txCtx, h.ClaimantID, *req.Guest); err != nil {
				return err
			}
		}

		order, skipped, err = svc.materialize(txCtx, h, req.PaymentRef, now)
		if err != nil {
			return err
		}
		return svc.Ledger.DeleteHold(txCtx, h.ID)
	})

	switch {
	case txErr == nil:
		if len(skipped) > 0 {
			utils.GetLogger().Warn("recurring occurrences skipped at finalization",
				zap.String("paymentRef", req.PaymentRef), zap.Int("skipped", len(skipped)))
		}
		conf := confirmationFromOrder(order, false)
		conf.SkippedOccurrences = skipped
		return conf, nil

	case errors.Is(txErr, errConcurrentFinalize):
		existing, err := svc.Ledger.GetOrderByPaymentRef(ctx, req.PaymentRef)
		if err != nil {
			return nil, err
		}
		return confirmationFromOrder(existing, true), nil

	case errors.Is(txErr, errHoldLost):
		// A rival finalize for the same reference can consume the hold
		// between our pre-check and the transaction. That is a duplicate,
		// not a lost slot: return the rival's confirmation.
		if existing, err := svc.Ledger.GetOrderByPaymentRef(ctx, req.PaymentRef); err == nil {
			return confirmationFromOrder(existing, true), nil
		} else if !errors.Is(err, ledgerRepo.ErrNotFound) {
			return nil, err
		}
		svc.flagHoldLost(ctx, req, holdRef, now)
		return nil, ErrPaymentWithoutSlot

	case errors.Is(txErr, ErrAmountMismatch):
		svc.flagAmountMismatch(ctx, req, holdRef, now)
		return nil, txErr

	default:
		return nil, txErr
	}
}

// materialize creates the appointments and the order for every occurrence the
// hold covers. The held occurrence is booked unconditionally; later recurring
// occurrences are best-effort and get skipped when the slot has since been
// claimed.
func (svc *DefaultFinalizeService) materialize(ctx context.Context, h *models.Hold, paymentRef string, now time.Time) (*models.Order, []time.Time, error) {
	occurrences := 1
	if h.Recurrence != nil {
		occurrences = h.Recurrence.Occurrences
	}
	perOccurrence := h.QuotedMinorUnits / int64(occurrences)
	sessionLen := time.Duration(h.DurationMinutes) * time.Minute

	var (
		lines   []models.OrderLine
		skipped []time.Time
	)
	for i := 0; i < occurrences; i++ {
		start := h.Start
		if i > 0 {
			start = h.Start.Add(time.Duration(i) * h.Recurrence.Interval())
		}
		end := start.Add(sessionLen)

		// The first occurrence is exactly the held interval; it cannot
		// conflict while the hold is alive. Later occurrences were never
		// held, so re-check them.
		if i > 0 {
			taken, err := svc.occurrenceTaken(ctx, h.TutorID, start, end, now)
			if err != nil {
				return nil, nil, err
			}
			if taken {
				skipped = append(skipped, start)
				continue
			}
		}

		appt := &models.Appointment{
			ID:               uuid.NewString(),
			UserID:           h.ClaimantID,
			TutorID:          h.TutorID,
			CourseID:         h.CourseID,
			Start:            start,
			End:              end,
			Status:           models.AppointmentScheduled,
			RecurringGroupID: h.RecurringGroupID,
			CreatedAt:        now,
		}
		line := models.OrderLine{
			ID:              uuid.NewString(),
			AppointmentID:   appt.ID,
			TutorID:         h.TutorID,
			CourseID:        h.CourseID,
			Start:           start,
			DurationMinutes: h.DurationMinutes,
			PriceMinorUnits: perOccurrence,
		}
		appt.OrderLineID = line.ID
		if err := svc.Ledger.InsertAppointment(ctx, appt); err != nil {
			return nil, nil, err
		}
		lines = append(lines, line)
	}

	order := &models.Order{
		ID:              uuid.NewString(),
		UserID:          h.ClaimantID,
		PaymentRef:      paymentRef,
		Status:          "paid",
		TotalMinorUnits: h.QuotedMinorUnits,
		Currency:        h.Currency,
		Lines:           lines,
		CreatedAt:       now,
	}
	if err := svc.Ledger.InsertOrder(ctx, order); err != nil {
		if errors.Is(err, ledgerRepo.ErrDuplicateOrder) {
			return nil, nil, errConcurrentFinalize
		}
		return nil, nil, err
	}

	// The buyer paid for every occurrence; skipped ones owe a partial refund.
	if len(skipped) > 0 {
		rc := &models.ReconciliationCase{
			ID:         uuid.NewString(),
			Kind:       models.ReconSkippedOccurrences,
			PaymentRef: paymentRef,
			HoldID:     h.ID,
			Details:    fmt.Sprintf("%d of %d occurrences skipped, refund %d minor units", len(skipped), occurrences, perOccurrence*int64(len(skipped))),
			CreatedAt:  now,
		}
		if err := svc.Ledger.FlagReconciliation(ctx, rc); err != nil {
			return nil, nil, err
		}
	}
	return order, skipped, nil
}

func (svc *DefaultFinalizeService) occurrenceTaken(ctx context.Context, tutorID string, start, end time.Time, now time.Time) (bool, error) {
	if _, err := svc.Ledger.FindOverlappingHold(ctx, tutorID, start, end, now); err == nil {
		return true, nil
	} else if !errors.Is(err, ledgerRepo.ErrNotFound) {
		return false, err
	}
	if _, err := svc.Ledger.FindOverlappingAppointment(ctx, tutorID, start, end); err == nil {
		return true, nil
	} else if !errors.Is(err, ledgerRepo.ErrNotFound) {
		return false, err
	}
	return false, nil
}

func (svc *DefaultFinalizeService) promoteGuest(ctx context.Context, claimantID string, info models.GuestContactInfo) error {
	var passwordHash string
	if info.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(info.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash guest password: %w", err)
		}
		passwordHash = string(hashed)
	}
	if err := svc.Identities.PromoteGuest(ctx, claimantID, info, passwordHash); err != nil {
		return fmt.Errorf("failed to promote guest %s: %w", claimantID, err)
	}
	return nil
}

// flagHoldLost records a hold-expired-after-payment case. The flag is written
// outside the aborted transaction so it survives the rollback.
func (svc *DefaultFinalizeService) flagHoldLost(ctx context.Context, req FinalizeRequest, h *models.Hold, now time.Time) {
	details := "hold not found at finalization"
	if h != nil {
		details = fmt.Sprintf("hold expired at %s, payment verified after", h.ExpiresAt.Format(time.RFC3339))
	}
	rc := &models.ReconciliationCase{
		ID:         uuid.NewString(),
		Kind:       models.ReconHoldExpiredAfterPayment,
		PaymentRef: req.PaymentRef,
		HoldID:     req.HoldID,
		Details:    details,
		CreatedAt:  now,
	}
	if err := svc.Ledger.FlagReconciliation(ctx, rc); err != nil {
		utils.GetLogger().Error("failed to flag reconciliation case",
			zap.String("paymentRef", req.PaymentRef), zap.Error(err))
	}
}

// flagAmountMismatch records a captured payment whose amount does not match
// the quote. The charge exists either way, so the case must outlive the
// aborted transaction and reach an operator.
func (svc *DefaultFinalizeService) flagAmountMismatch(ctx context.Context, req FinalizeRequest, h *models.Hold, now time.Time) {
	details := fmt.Sprintf("paid %d minor units", req.PaidMinorUnits)
	if h != nil {
		details = fmt.Sprintf("paid %d minor units, quoted %d", req.PaidMinorUnits, h.QuotedMinorUnits)
	}
	rc := &models.ReconciliationCase{
		ID:         uuid.NewString(),
		Kind:       models.ReconAmountMismatch,
		PaymentRef: req.PaymentRef,
		HoldID:     req.HoldID,
		Details:    details,
		CreatedAt:  now,
	}
	if err := svc.Ledger.FlagReconciliation(ctx, rc); err != nil {
		utils.GetLogger().Error("failed to flag reconciliation case",
			zap.String("paymentRef", req.PaymentRef), zap.Error(err))
	}
}

func confirmationFromOrder(order *models.Order, already bool) *models.BookingConfirmation {
	conf := &models.BookingConfirmation{
		OrderID:          order.ID,
		UserID:           order.UserID,
		AlreadyFinalized: already,
	}
	for _, line := range order.Lines {
		conf.AppointmentIDs = append(conf.AppointmentIDs, line.AppointmentID)
	}
	if len(conf.AppointmentIDs) > 0 {
		conf.AppointmentID = conf.AppointmentIDs[0]
	}
	return conf
}
