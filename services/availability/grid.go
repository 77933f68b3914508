package availability

import (
	"time"

	"tutorbook/models"
)

type interval struct {
	start time.Time
	end   time.Time
}

func overlapsAny(busy []interval, start, end time.Time) bool {
	for _, iv := range busy {
		if models.Overlaps(start, end, iv.start, iv.end) {
			return true
		}
	}
	return false
}

// gridStarts enumerates the rule's candidate start instants inside [from, to)
// on the discretization grid. Starts are anchored to the rule's own start
// minute, so a rule opening at 09:00 with a 30-minute step yields 09:00,
// 09:30, 10:00 and so on.
func gridStarts(rule models.AvailabilityRule, from, to time.Time, stepMins int) []time.Time {
	var starts []time.Time
	day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	for ; day.Before(to); day = day.AddDate(0, 0, 1) {
		if day.Weekday() != rule.Weekday {
			continue
		}
		for m := rule.StartMinute; m < rule.EndMinute; m += stepMins {
			start := day.Add(time.Duration(m) * time.Minute)
			if start.Before(from) || !start.Before(to) {
				continue
			}
			starts = append(starts, start)
		}
	}
	return starts
}

// fitsRule reports whether a session of the given duration starting at start
// ends at or before the rule's closing minute. Sessions never span two rule
// windows even when the windows are adjacent.
func fitsRule(rule models.AvailabilityRule, start time.Time, dur models.SessionDuration) bool {
	midnight := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	startMin := int(start.Sub(midnight) / time.Minute)
	return startMin >= rule.StartMinute && startMin+dur.Minutes() <= rule.EndMinute
}
