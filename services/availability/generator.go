package availability

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"tutorbook/models"
	"tutorbook/utils"

	"go.uber.org/zap"
)

// ListBookableWindows projects each tutor's weekly rules onto [req.From,
// req.To), subtracts committed time (unexpired holds + scheduled
// appointments), and returns start instants with the durations that
// individually survived conflict checking.
func (svc *DefaultAvailabilityService) ListBookableWindows(ctx context.Context, req WindowsRequest) ([]models.BookableWindow, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	tutorIDs := req.TutorIDs
	if len(tutorIDs) == 0 {
		ids, err := svc.Rules.ListTutorsForCourse(ctx, req.CourseID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve tutors for course %s: %w", req.CourseID, err)
		}
		tutorIDs = ids
	}

	var windows []models.BookableWindow
	for _, tutorID := range tutorIDs {
		tutorWindows, err := svc.windowsForTutor(ctx, tutorID, req.From, req.To)
		if err != nil {
			return nil, err
		}
		windows = append(windows, tutorWindows...)
	}

	sort.Slice(windows, func(i, j int) bool {
		if windows[i].Start.Equal(windows[j].Start) {
			return windows[i].TutorID < windows[j].TutorID
		}
		return windows[i].Start.Before(windows[j].Start)
	})
	return windows, nil
}

func validateRequest(req WindowsRequest) error {
	if len(req.TutorIDs) == 0 && req.CourseID == "" {
		return fmt.Errorf("either tutorIds or courseId is required")
	}
	if !req.To.After(req.From) {
		return fmt.Errorf("malformed date range: to (%s) must be after from (%s)", req.To, req.From)
	}
	return nil
}

func (svc *DefaultAvailabilityService) windowsForTutor(ctx context.Context, tutorID string, from, to time.Time) ([]models.BookableWindow, error) {
	if cached, ok := svc.cachedWindows(ctx, tutorID, from, to); ok {
		return cached, nil
	}

	rules, err := svc.Rules.GetRulesForTutor(ctx, tutorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules for tutor %s: %w", tutorID, err)
	}
	if len(rules) == 0 {
		return nil, nil
	}

	rate, err := svc.Rules.GetTutorRate(ctx, tutorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rate for tutor %s: %w", tutorID, err)
	}

	now := svc.now()
	// The longest offerable session starting just before `to` can run past it.
	maxDur := models.AllDurations()[len(models.AllDurations())-1]
	queryEnd := to.Add(time.Duration(maxDur.Minutes()) * time.Minute)

	holds, err := svc.Ledger.ListActiveHolds(ctx, tutorID, from, queryEnd, now)
	if err != nil {
		return nil, fmt.Errorf("failed to load holds for tutor %s: %w", tutorID, err)
	}
	appts, err := svc.Ledger.ListScheduledAppointments(ctx, tutorID, from, queryEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to load appointments for tutor %s: %w", tutorID, err)
	}

	busy := make([]interval, 0, len(holds)+len(appts))
	for _, h := range holds {
		busy = append(busy, interval{start: h.Start, end: h.End})
	}
	for _, a := range appts {
		busy = append(busy, interval{start: a.Start, end: a.End})
	}

	// Overlapping rules may emit the same instant twice; the map dedupes by
	// start so each instant is offered at most once.
	offersByStart := make(map[time.Time]map[int]models.DurationOffer)
	for _, rule := range rules {
		for _, start := range gridStarts(rule, from, to, svc.gridStep()) {
			if start.Before(now) {
				continue
			}
			for _, dur := range models.AllDurations() {
				if !fitsRule(rule, start, dur) {
					continue
				}
				end := start.Add(time.Duration(dur.Minutes()) * time.Minute)
				if overlapsAny(busy, start, end) {
					continue
				}
				if offersByStart[start] == nil {
					offersByStart[start] = make(map[int]models.DurationOffer)
				}
				offersByStart[start][dur.Minutes()] = models.DurationOffer{
					Minutes:         dur.Minutes(),
					PriceMinorUnits: dur.PriceMinorUnits(rate.BaseRateMinorUnits),
				}
			}
		}
	}

	windows := make([]models.BookableWindow, 0, len(offersByStart))
	for start, offers := range offersByStart {
		w := models.BookableWindow{TutorID: tutorID, Start: start, Currency: rate.Currency}
		for _, mins := range []int{60, 90, 120} {
			if offer, ok := offers[mins]; ok {
				w.Offers = append(w.Offers, offer)
			}
		}
		windows = append(windows, w)
	}
	sort.Slice(windows, func(i, j int) bool { return windows[i].Start.Before(windows[j].Start) })

	svc.storeWindows(ctx, tutorID, from, to, windows)
	return windows, nil
}

func (svc *DefaultAvailabilityService) cacheKey(tutorID string, from, to time.Time) string {
	return fmt.Sprintf("windows:%s:%d:%d", tutorID, from.Unix(), to.Unix())
}

func (svc *DefaultAvailabilityService) cachedWindows(ctx context.Context, tutorID string, from, to time.Time) ([]models.BookableWindow, bool) {
	if svc.Cache == nil {
		return nil, false
	}
	data, err := svc.Cache.Get(ctx, svc.cacheKey(tutorID, from, to)).Result()
	if err != nil {
		return nil, false
	}
	var windows []models.BookableWindow
	if err := json.Unmarshal([]byte(data), &windows); err != nil {
		return nil, false
	}
	return windows, true
}

func (svc *DefaultAvailabilityService) storeWindows(ctx context.Context, tutorID string, from, to time.Time, windows []models.BookableWindow) {
	if svc.Cache == nil || svc.CacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(windows)
	if err != nil {
		return
	}
	if err := svc.Cache.Set(ctx, svc.cacheKey(tutorID, from, to), data, svc.CacheTTL).Err(); err != nil {
		utils.GetLogger().Warn("failed to cache bookable windows",
			zap.String("tutorID", tutorID), zap.Error(err))
	}
}
