package hold

import (
	"context"
	"sync"
	"testing"
	"time"

	availabilityRepo "tutorbook/database/repository/availability"
	identityRepo "tutorbook/database/repository/identity"
	ledgerRepo "tutorbook/database/repository/ledger"
	"tutorbook/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2030-01-07 is a Monday; the tutor teaches Mondays 09:00-12:00.
var monday = time.Date(2030, 1, 7, 0, 0, 0, 0, time.UTC)

type fixture struct {
	svc        *DefaultHoldService
	ledger     *ledgerRepo.MemoryLedgerRepo
	identities *identityRepo.MemoryIdentityRepo
	now        time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	rules := availabilityRepo.NewMemoryAvailabilityRepo()
	rules.AddRule(models.AvailabilityRule{
		ID:          "rule-1",
		TutorID:     "tutor-1",
		Weekday:     time.Monday,
		StartMinute: 9 * 60,
		EndMinute:   12 * 60,
	})
	rules.SetRate(models.TutorRate{TutorID: "tutor-1", BaseRateMinorUnits: 5000, Currency: "USD"})

	f := &fixture{
		ledger:     ledgerRepo.NewMemoryLedgerRepo(),
		identities: identityRepo.NewMemoryIdentityRepo(),
		now:        monday.Add(-24 * time.Hour),
	}
	f.svc = &DefaultHoldService{
		Ledger:     f.ledger,
		Identities: f.identities,
		Rules:      rules,
		TTL:        15 * time.Minute,
		Clock:      func() time.Time { return f.now },
	}
	return f
}

func baseRequest() CreateHoldRequest {
	return CreateHoldRequest{
		TutorID:         "tutor-1",
		CourseID:        "course-1",
		Start:           monday.Add(10 * time.Hour),
		DurationMinutes: 60,
		ClaimantID:      "user-1",
	}
}

func TestCreateHoldQuotesAndExpires(t *testing.T) {
	f := newFixture(t)
	view, err := f.svc.CreateHold(context.Background(), baseRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, view.ID)
	assert.Equal(t, int64(5000), view.QuotedMinorUnits)
	assert.Equal(t, "USD", view.Currency)
	assert.Equal(t, f.now.Add(15*time.Minute), view.ExpiresAt)
}

func TestCreateHoldRejectsConflicts(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateHold(context.Background(), baseRequest())
	require.NoError(t, err)

	// Same window.
	_, err = f.svc.CreateHold(context.Background(), baseRequest())
	assert.ErrorIs(t, err, ErrSlotTaken)

	// Different start, overlapping interval: 09:30 + 90min runs into 10:00.
	req := baseRequest()
	req.Start = monday.Add(9*time.Hour + 30*time.Minute)
	req.DurationMinutes = 90
	_, err = f.svc.CreateHold(context.Background(), req)
	assert.ErrorIs(t, err, ErrSlotTaken)

	// Adjacent window is fine.
	req = baseRequest()
	req.Start = monday.Add(11 * time.Hour)
	_, err = f.svc.CreateHold(context.Background(), req)
	assert.NoError(t, err)
}

func TestCreateHoldValidation(t *testing.T) {
	f := newFixture(t)

	req := baseRequest()
	req.DurationMinutes = 45
	_, err := f.svc.CreateHold(context.Background(), req)
	assert.Error(t, err)

	// Tuesday has no rule.
	req = baseRequest()
	req.Start = monday.AddDate(0, 0, 1).Add(10 * time.Hour)
	_, err = f.svc.CreateHold(context.Background(), req)
	assert.ErrorIs(t, err, ErrOutsideAvailability)

	// Off the 30-minute grid.
	req = baseRequest()
	req.Start = monday.Add(10*time.Hour + 15*time.Minute)
	_, err = f.svc.CreateHold(context.Background(), req)
	assert.ErrorIs(t, err, ErrOutsideAvailability)

	// Session would run past the rule's end.
	req = baseRequest()
	req.Start = monday.Add(11 * time.Hour)
	req.DurationMinutes = 120
	_, err = f.svc.CreateHold(context.Background(), req)
	assert.ErrorIs(t, err, ErrOutsideAvailability)

	// Past start.
	f.now = monday.Add(10*time.Hour + 30*time.Minute)
	_, err = f.svc.CreateHold(context.Background(), baseRequest())
	assert.Error(t, err)
}

func TestGetHoldDistinguishesExpiredFromMissing(t *testing.T) {
	f := newFixture(t)
	view, err := f.svc.CreateHold(context.Background(), baseRequest())
	require.NoError(t, err)

	got, err := f.svc.GetHold(context.Background(), view.ID)
	require.NoError(t, err)
	assert.Equal(t, view.ID, got.ID)

	_, err = f.svc.GetHold(context.Background(), "no-such-hold")
	assert.ErrorIs(t, err, ErrHoldNotFound)

	f.now = f.now.Add(16 * time.Minute)
	_, err = f.svc.GetHold(context.Background(), view.ID)
	assert.ErrorIs(t, err, ErrHoldExpired)
}

func TestUpdateHoldRejectsExpired(t *testing.T) {
	f := newFixture(t)
	view, err := f.svc.CreateHold(context.Background(), baseRequest())
	require.NoError(t, err)

	details := models.CheckoutDetails{Name: "Ada", Email: "ada@example.com"}
	updated, err := f.svc.UpdateHold(context.Background(), view.ID, details)
	require.NoError(t, err)
	assert.Equal(t, view.ID, updated.ID)

	f.now = f.now.Add(16 * time.Minute)
	_, err = f.svc.UpdateHold(context.Background(), view.ID, details)
	assert.ErrorIs(t, err, ErrHoldExpired)
}

func TestReleaseHoldIsIdempotentAndFreesSlot(t *testing.T) {
	f := newFixture(t)
	view, err := f.svc.CreateHold(context.Background(), baseRequest())
	require.NoError(t, err)

	require.NoError(t, f.svc.ReleaseHold(context.Background(), view.ID))
	require.NoError(t, f.svc.ReleaseHold(context.Background(), view.ID))
	require.NoError(t, f.svc.ReleaseHold(context.Background(), "never-existed"))

	_, err = f.svc.CreateHold(context.Background(), baseRequest())
	assert.NoError(t, err, "released slot must be claimable again")
}

func TestExpiredHoldFreesSlotForNewClaim(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateHold(context.Background(), baseRequest())
	require.NoError(t, err)

	f.now = f.now.Add(16 * time.Minute)
	req := baseRequest()
	req.ClaimantID = "user-2"
	_, err = f.svc.CreateHold(context.Background(), req)
	assert.NoError(t, err, "expired hold must not block the slot")
}

func TestGuestClaimantLifecycle(t *testing.T) {
	f := newFixture(t)
	req := baseRequest()
	req.ClaimantID = ""
	req.Contact = &models.GuestContactInfo{Name: "Gus", Email: "gus@example.com"}

	view, err := f.svc.CreateHold(context.Background(), req)
	require.NoError(t, err)

	guest, err := f.identities.FindByEmail(context.Background(), "gus@example.com")
	require.NoError(t, err)
	assert.True(t, guest.Guest)

	// Releasing the only hold reaps the orphaned guest.
	require.NoError(t, f.svc.ReleaseHold(context.Background(), view.ID))
	_, err = f.identities.FindByEmail(context.Background(), "gus@example.com")
	assert.ErrorIs(t, err, identityRepo.ErrNotFound)
}

func TestRecurringHoldQuotesAllOccurrences(t *testing.T) {
	f := newFixture(t)
	req := baseRequest()
	req.Recurrence = &models.RecurrencePlan{Cadence: models.CadenceWeekly, Occurrences: 4}

	view, err := f.svc.CreateHold(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(20000), view.QuotedMinorUnits)

	stored, err := f.ledger.GetHold(context.Background(), view.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.RecurringGroupID)
}

func TestSweepPurgesExpiredHolds(t *testing.T) {
	f := newFixture(t)
	view, err := f.svc.CreateHold(context.Background(), baseRequest())
	require.NoError(t, err)

	purged, err := f.svc.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Zero(t, purged, "live hold must survive the sweep")

	f.now = f.now.Add(16 * time.Minute)
	purged, err = f.svc.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, purged)

	_, err = f.ledger.GetHold(context.Background(), view.ID)
	assert.ErrorIs(t, err, ledgerRepo.ErrNotFound)
}

func TestConcurrentClaimsAdmitExactlyOne(t *testing.T) {
	f := newFixture(t)
	const claimants = 16

	var wg sync.WaitGroup
	errs := make([]error, claimants)
	for i := 0; i < claimants; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.CreateHold(context.Background(), baseRequest())
		}(i)
	}
	wg.Wait()

	var won, lost int
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case assert.ErrorIs(t, err, ErrSlotTaken):
			lost++
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, claimants-1, lost)
}
