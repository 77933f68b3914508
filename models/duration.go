package models

import (
	"fmt"
	"math"
)

// SessionDuration is the closed set of bookable session lengths, in minutes.
// All duration validation and pricing goes through this type.
type SessionDuration int

const (
	Duration60  SessionDuration = 60
	Duration90  SessionDuration = 90
	Duration120 SessionDuration = 120
)

// priceMultipliers maps each duration to its multiplier over the tutor's base
// session rate (the 60-minute rate).
var priceMultipliers = map[SessionDuration]float64{
	Duration60:  1.0,
	Duration90:  1.5,
	Duration120: 2.0,
}

// AllDurations returns the offerable durations in ascending order.
func AllDurations() []SessionDuration {
	return []SessionDuration{Duration60, Duration90, Duration120}
}

func (d SessionDuration) Valid() bool {
	_, ok := priceMultipliers[d]
	return ok
}

func (d SessionDuration) Minutes() int {
	return int(d)
}

// PriceMinorUnits derives the session price from the tutor's base rate
// (minor currency units per 60-minute session).
func (d SessionDuration) PriceMinorUnits(baseRate int64) int64 {
	return int64(math.Round(float64(baseRate) * priceMultipliers[d]))
}

// ParseSessionDuration validates a raw minutes value against the closed set.
func ParseSessionDuration(mins int) (SessionDuration, error) {
	d := SessionDuration(mins)
	if !d.Valid() {
		return 0, fmt.Errorf("unsupported session duration: %d minutes", mins)
	}
	return d, nil
}
