package finalize

import (
	"context"
	"sync"
	"testing"
	"time"

	identityRepo "tutorbook/database/repository/identity"
	ledgerRepo "tutorbook/database/repository/ledger"
	"tutorbook/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2030-01-07 is a Monday.
var monday = time.Date(2030, 1, 7, 0, 0, 0, 0, time.UTC)

type fixture struct {
	svc        *DefaultFinalizeService
	ledger     *ledgerRepo.MemoryLedgerRepo
	identities *identityRepo.MemoryIdentityRepo
	now        time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		ledger:     ledgerRepo.NewMemoryLedgerRepo(),
		identities: identityRepo.NewMemoryIdentityRepo(),
		now:        monday.Add(-24 * time.Hour),
	}
	f.svc = &DefaultFinalizeService{
		Ledger:     f.ledger,
		Identities: f.identities,
		Clock:      func() time.Time { return f.now },
	}
	return f
}

// seedHold inserts a live hold for Monday 10:00-11:00 quoted at 5000.
func (f *fixture) seedHold(t *testing.T, mutate func(*models.Hold)) *models.Hold {
	t.Helper()
	h := &models.Hold{
		ID:               "hold-1",
		TutorID:          "tutor-1",
		CourseID:         "course-1",
		Start:            monday.Add(10 * time.Hour),
		End:              monday.Add(11 * time.Hour),
		DurationMinutes:  60,
		QuotedMinorUnits: 5000,
		Currency:         "USD",
		ClaimantID:       "user-1",
		CreatedAt:        f.now,
		ExpiresAt:        f.now.Add(15 * time.Minute),
	}
	if mutate != nil {
		mutate(h)
	}
	require.NoError(t, f.ledger.InsertHold(context.Background(), h))
	return h
}

func baseRequest(h *models.Hold) FinalizeRequest {
	return FinalizeRequest{
		HoldID:         h.ID,
		PaymentRef:     "pi_123",
		PaidMinorUnits: h.QuotedMinorUnits,
		Currency:       h.Currency,
	}
}

func TestFinalizeBooksHeldSlot(t *testing.T) {
	f := newFixture(t)
	h := f.seedHold(t, nil)

	conf, err := f.svc.Finalize(context.Background(), baseRequest(h))
	require.NoError(t, err)

	assert.False(t, conf.AlreadyFinalized)
	assert.Equal(t, "user-1", conf.UserID)
	require.Len(t, conf.AppointmentIDs, 1)
	assert.Equal(t, conf.AppointmentID, conf.AppointmentIDs[0])

	appt, err := f.ledger.GetAppointment(context.Background(), conf.AppointmentID)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentScheduled, appt.Status)
	assert.Equal(t, h.Start, appt.Start)
	assert.Equal(t, h.End, appt.End)

	order, err := f.ledger.GetOrderByPaymentRef(context.Background(), "pi_123")
	require.NoError(t, err)
	assert.Equal(t, int64(5000), order.TotalMinorUnits)
	assert.Equal(t, "paid", order.Status)

	// The hold is consumed.
	_, err = f.ledger.GetHold(context.Background(), h.ID)
	assert.ErrorIs(t, err, ledgerRepo.ErrNotFound)
}

func TestFinalizeIsIdempotentOnPaymentRef(t *testing.T) {
	f := newFixture(t)
	h := f.seedHold(t, nil)
	req := baseRequest(h)

	first, err := f.svc.Finalize(context.Background(), req)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		again, err := f.svc.Finalize(context.Background(), req)
		require.NoError(t, err)
		assert.True(t, again.AlreadyFinalized)
		assert.Equal(t, first.OrderID, again.OrderID)
		assert.Equal(t, first.AppointmentIDs, again.AppointmentIDs)
	}
}

func TestFinalizeExpiredHoldFlagsReconciliation(t *testing.T) {
	f := newFixture(t)
	h := f.seedHold(t, func(h *models.Hold) {
		h.ExpiresAt = f.now.Add(-time.Minute)
	})

	_, err := f.svc.Finalize(context.Background(), baseRequest(h))
	assert.ErrorIs(t, err, ErrPaymentWithoutSlot)

	cases := f.ledger.ReconciliationCases()
	require.Len(t, cases, 1)
	assert.Equal(t, models.ReconHoldExpiredAfterPayment, cases[0].Kind)
	assert.Equal(t, "pi_123", cases[0].PaymentRef)

	// No appointment or order must exist for the failed finalization.
	_, err = f.ledger.GetOrderByPaymentRef(context.Background(), "pi_123")
	assert.ErrorIs(t, err, ledgerRepo.ErrNotFound)
}

func TestFinalizeMissingHoldFlagsReconciliation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Finalize(context.Background(), FinalizeRequest{
		HoldID:         "vanished",
		PaymentRef:     "pi_gone",
		PaidMinorUnits: 5000,
	})
	assert.ErrorIs(t, err, ErrPaymentWithoutSlot)

	cases := f.ledger.ReconciliationCases()
	require.Len(t, cases, 1)
	assert.Equal(t, models.ReconHoldExpiredAfterPayment, cases[0].Kind)
}

func TestFinalizeRejectsAmountMismatch(t *testing.T) {
	f := newFixture(t)
	h := f.seedHold(t, nil)

	req := baseRequest(h)
	req.PaidMinorUnits = 4000
	_, err := f.svc.Finalize(context.Background(), req)
	assert.ErrorIs(t, err, ErrAmountMismatch)

	// The hold survives a rejected finalization.
	_, err = f.ledger.GetHold(context.Background(), h.ID)
	assert.NoError(t, err)

	// The charge is real even though the booking is not; an operator case
	// must exist once the error is returned.
	cases := f.ledger.ReconciliationCases()
	require.Len(t, cases, 1)
	assert.Equal(t, models.ReconAmountMismatch, cases[0].Kind)
	assert.Equal(t, "pi_123", cases[0].PaymentRef)
}

// stalePrecheckLedger simulates a rival finalize committing between this
// service's payment-ref pre-check and its transaction: the first order lookup
// reports nothing, every later one sees the committed order.
type stalePrecheckLedger struct {
	*ledgerRepo.MemoryLedgerRepo
	mu         sync.Mutex
	prechecked bool
}

func (l *stalePrecheckLedger) GetOrderByPaymentRef(ctx context.Context, paymentRef string) (*models.Order, error) {
	l.mu.Lock()
	first := !l.prechecked
	l.prechecked = true
	l.mu.Unlock()
	if first {
		return nil, ledgerRepo.ErrNotFound
	}
	return l.MemoryLedgerRepo.GetOrderByPaymentRef(ctx, paymentRef)
}

func TestFinalizeDuplicateAfterRivalConsumedHold(t *testing.T) {
	f := newFixture(t)
	ledger := &stalePrecheckLedger{MemoryLedgerRepo: f.ledger}
	f.svc.Ledger = ledger

	// The rival already finalized: the order exists and the hold is gone.
	require.NoError(t, f.ledger.InsertOrder(context.Background(), &models.Order{
		ID:         "order-rival",
		UserID:     "user-1",
		PaymentRef: "pi_dup",
		Status:     "paid",
		Lines:      []models.OrderLine{{ID: "line-1", AppointmentID: "appt-rival"}},
	}))

	conf, err := f.svc.Finalize(context.Background(), FinalizeRequest{
		HoldID:         "hold-1",
		PaymentRef:     "pi_dup",
		PaidMinorUnits: 5000,
	})
	require.NoError(t, err, "duplicate finalize must return the original confirmation")
	assert.True(t, conf.AlreadyFinalized)
	assert.Equal(t, "order-rival", conf.OrderID)
	assert.Equal(t, []string{"appt-rival"}, conf.AppointmentIDs)

	// The missing hold was consumed, not lost; no operator case may appear.
	assert.Empty(t, f.ledger.ReconciliationCases())
}

func TestFinalizePromotesGuestClaimant(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.identities.CreateGuest(context.Background(), &models.Identity{
		ID:    "guest-1",
		Guest: true,
	}))
	h := f.seedHold(t, func(h *models.Hold) {
		h.ClaimantID = "guest-1"
		h.GuestClaimant = true
	})

	req := baseRequest(h)
	req.Guest = &models.GuestContactInfo{
		Name:     "Gus",
		Email:    "gus@example.com",
		Password: "hunter22",
	}
	conf, err := f.svc.Finalize(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "guest-1", conf.UserID)

	promoted, err := f.identities.GetByID(context.Background(), "guest-1")
	require.NoError(t, err)
	assert.False(t, promoted.Guest)
	assert.Equal(t, "gus@example.com", promoted.Email)
	assert.NotEmpty(t, promoted.PasswordHash)
	assert.NotEqual(t, "hunter22", promoted.PasswordHash)
}

func TestFinalizeMaterializesRecurringSeries(t *testing.T) {
	f := newFixture(t)
	h := f.seedHold(t, func(h *models.Hold) {
		h.Recurrence = &models.RecurrencePlan{Cadence: models.CadenceWeekly, Occurrences: 3}
		h.RecurringGroupID = "series-1"
		h.QuotedMinorUnits = 15000
	})

	conf, err := f.svc.Finalize(context.Background(), baseRequest(h))
	require.NoError(t, err)

	require.Len(t, conf.AppointmentIDs, 3)
	assert.Empty(t, conf.SkippedOccurrences)

	for i, id := range conf.AppointmentIDs {
		appt, err := f.ledger.GetAppointment(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, h.Start.AddDate(0, 0, 7*i), appt.Start)
		assert.Equal(t, "series-1", appt.RecurringGroupID)
	}

	order, err := f.ledger.GetOrderByPaymentRef(context.Background(), "pi_123")
	require.NoError(t, err)
	require.Len(t, order.Lines, 3)
	assert.Equal(t, int64(5000), order.Lines[0].PriceMinorUnits)
}

func TestFinalizeSkipsConflictingOccurrences(t *testing.T) {
	f := newFixture(t)
	h := f.seedHold(t, func(h *models.Hold) {
		h.Recurrence = &models.RecurrencePlan{Cadence: models.CadenceWeekly, Occurrences: 3}
		h.RecurringGroupID = "series-1"
		h.QuotedMinorUnits = 15000
	})
	// Someone else booked the second occurrence's window.
	secondStart := h.Start.AddDate(0, 0, 7)
	require.NoError(t, f.ledger.InsertAppointment(context.Background(), &models.Appointment{
		ID:      "appt-other",
		TutorID: "tutor-1",
		UserID:  "user-2",
		Start:   secondStart,
		End:     secondStart.Add(time.Hour),
		Status:  models.AppointmentScheduled,
	}))

	conf, err := f.svc.Finalize(context.Background(), baseRequest(h))
	require.NoError(t, err)

	assert.Len(t, conf.AppointmentIDs, 2)
	require.Len(t, conf.SkippedOccurrences, 1)
	assert.True(t, conf.SkippedOccurrences[0].Equal(secondStart))

	// The skipped occurrence owes a refund and is flagged for follow-up.
	cases := f.ledger.ReconciliationCases()
	require.Len(t, cases, 1)
	assert.Equal(t, models.ReconSkippedOccurrences, cases[0].Kind)

	// The paid total is unchanged; the refund happens out of band.
	order, err := f.ledger.GetOrderByPaymentRef(context.Background(), "pi_123")
	require.NoError(t, err)
	assert.Equal(t, int64(15000), order.TotalMinorUnits)
	assert.Len(t, order.Lines, 2)
}
