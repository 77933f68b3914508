package availability

import (
	"context"
	"testing"
	"time"

	availabilityRepo "tutorbook/database/repository/availability"
	ledgerRepo "tutorbook/database/repository/ledger"
	"tutorbook/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2030-01-07 is a Monday.
var (
	monday     = time.Date(2030, 1, 7, 0, 0, 0, 0, time.UTC)
	tuesday    = monday.AddDate(0, 0, 1)
	testClock  = monday.Add(-12 * time.Hour)
	mondayRule = models.AvailabilityRule{
		ID:          "rule-1",
		TutorID:     "tutor-1",
		Weekday:     time.Monday,
		StartMinute: 9 * 60,  // 09:00
		EndMinute:   12 * 60, // 12:00
	}
)

func newTestService(t *testing.T) (*DefaultAvailabilityService, *ledgerRepo.MemoryLedgerRepo) {
	t.Helper()
	rules := availabilityRepo.NewMemoryAvailabilityRepo()
	rules.AddRule(mondayRule)
	rules.SetRate(models.TutorRate{TutorID: "tutor-1", BaseRateMinorUnits: 5000, Currency: "USD"})

	ledger := ledgerRepo.NewMemoryLedgerRepo()
	svc := &DefaultAvailabilityService{
		Rules:  rules,
		Ledger: ledger,
		Clock:  func() time.Time { return testClock },
	}
	return svc, ledger
}

func listWindows(t *testing.T, svc *DefaultAvailabilityService) []models.BookableWindow {
	t.Helper()
	windows, err := svc.ListBookableWindows(context.Background(), WindowsRequest{
		TutorIDs: []string{"tutor-1"},
		From:     monday,
		To:       tuesday,
	})
	require.NoError(t, err)
	return windows
}

func findWindow(windows []models.BookableWindow, start time.Time) *models.BookableWindow {
	for i := range windows {
		if windows[i].Start.Equal(start) {
			return &windows[i]
		}
	}
	return nil
}

func offeredMinutes(w *models.BookableWindow) []int {
	if w == nil {
		return nil
	}
	var mins []int
	for _, o := range w.Offers {
		mins = append(mins, o.Minutes)
	}
	return mins
}

func TestEmptyScheduleOffersFullGrid(t *testing.T) {
	svc, _ := newTestService(t)
	windows := listWindows(t, svc)

	// 09:00 through 11:00 on a 30-minute grid; 11:30 cannot fit even 60 min.
	require.Len(t, windows, 5)

	nine := findWindow(windows, monday.Add(9*time.Hour))
	require.NotNil(t, nine)
	assert.Equal(t, []int{60, 90, 120}, offeredMinutes(nine))
	assert.Equal(t, "USD", nine.Currency)
	assert.Equal(t, int64(5000), nine.Offers[0].PriceMinorUnits)
	assert.Equal(t, int64(7500), nine.Offers[1].PriceMinorUnits)
	assert.Equal(t, int64(10000), nine.Offers[2].PriceMinorUnits)

	// 10:30 can fit 60 and 90 but a 120-minute session would run past 12:00.
	halfTen := findWindow(windows, monday.Add(10*time.Hour+30*time.Minute))
	require.NotNil(t, halfTen)
	assert.Equal(t, []int{60, 90}, offeredMinutes(halfTen))

	// 11:00 only fits the 60-minute session.
	eleven := findWindow(windows, monday.Add(11*time.Hour))
	require.NotNil(t, eleven)
	assert.Equal(t, []int{60}, offeredMinutes(eleven))
}

func TestAppointmentBlocksOverlappingDurations(t *testing.T) {
	svc, ledger := newTestService(t)
	require.NoError(t, ledger.InsertAppointment(context.Background(), &models.Appointment{
		ID:      "appt-1",
		TutorID: "tutor-1",
		UserID:  "user-1",
		Start:   monday.Add(10 * time.Hour),
		End:     monday.Add(11 * time.Hour),
		Status:  models.AppointmentScheduled,
	}))

	windows := listWindows(t, svc)

	// Only 09:00 and 11:00 survive; every other start would intersect 10-11.
	require.Len(t, windows, 2)

	nine := findWindow(windows, monday.Add(9*time.Hour))
	require.NotNil(t, nine)
	// 90 and 120 minutes from 09:00 would run into the appointment.
	assert.Equal(t, []int{60}, offeredMinutes(nine))

	eleven := findWindow(windows, monday.Add(11*time.Hour))
	require.NotNil(t, eleven)
	assert.Equal(t, []int{60}, offeredMinutes(eleven))
}

func TestHoldBlocksWindowUntilReleased(t *testing.T) {
	svc, ledger := newTestService(t)
	held := &models.Hold{
		ID:        "hold-1",
		TutorID:   "tutor-1",
		Start:     monday.Add(9 * time.Hour),
		End:       monday.Add(10 * time.Hour),
		ExpiresAt: testClock.Add(15 * time.Minute),
	}
	require.NoError(t, ledger.InsertHold(context.Background(), held))

	windows := listWindows(t, svc)
	assert.Nil(t, findWindow(windows, held.Start))

	require.NoError(t, ledger.DeleteHold(context.Background(), held.ID))
	windows = listWindows(t, svc)
	assert.NotNil(t, findWindow(windows, held.Start))
}

func TestExpiredHoldDoesNotBlock(t *testing.T) {
	svc, ledger := newTestService(t)
	require.NoError(t, ledger.InsertHold(context.Background(), &models.Hold{
		ID:        "hold-stale",
		TutorID:   "tutor-1",
		Start:     monday.Add(9 * time.Hour),
		End:       monday.Add(10 * time.Hour),
		ExpiresAt: testClock.Add(-time.Minute),
	}))

	windows := listWindows(t, svc)
	assert.NotNil(t, findWindow(windows, monday.Add(9*time.Hour)))
}

func TestOverlappingRulesDedupeByStart(t *testing.T) {
	svc, _ := newTestService(t)
	// A second rule covering a subset of the first must not duplicate starts.
	rules := svc.Rules.(*availabilityRepo.MemoryAvailabilityRepo)
	rules.AddRule(models.AvailabilityRule{
		ID:          "rule-2",
		TutorID:     "tutor-1",
		Weekday:     time.Monday,
		StartMinute: 10 * 60,
		EndMinute:   12 * 60,
	})

	windows := listWindows(t, svc)
	seen := make(map[time.Time]int)
	for _, w := range windows {
		seen[w.Start]++
	}
	for start, n := range seen {
		assert.Equal(t, 1, n, "start %s appeared %d times", start, n)
	}
}

func TestNoRulesMeansNoWindows(t *testing.T) {
	svc, _ := newTestService(t)
	windows, err := svc.ListBookableWindows(context.Background(), WindowsRequest{
		TutorIDs: []string{"tutor-without-rules"},
		From:     monday,
		To:       tuesday,
	})
	require.NoError(t, err)
	assert.Empty(t, windows)
}

func TestRequestValidation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.ListBookableWindows(context.Background(), WindowsRequest{From: monday, To: tuesday})
	assert.Error(t, err, "missing tutor and course must be rejected")

	_, err = svc.ListBookableWindows(context.Background(), WindowsRequest{
		TutorIDs: []string{"tutor-1"},
		From:     tuesday,
		To:       monday,
	})
	assert.Error(t, err, "inverted range must be rejected")
}

func TestCourseExpandsToTutors(t *testing.T) {
	svc, _ := newTestService(t)
	rules := svc.Rules.(*availabilityRepo.MemoryAvailabilityRepo)
	rules.SetCourseTutors("course-1", []string{"tutor-1"})

	windows, err := svc.ListBookableWindows(context.Background(), WindowsRequest{
		CourseID: "course-1",
		From:     monday,
		To:       tuesday,
	})
	require.NoError(t, err)
	assert.Len(t, windows, 5)
}
