package models

import "time"

// AvailabilityRule is a tutor's recurring weekly availability window.
// Times are wall-clock minutes from midnight, no date attached. Owned by
// tutor management; read-only inside the reservation core.
type AvailabilityRule struct {
	ID          string       `bson:"id" json:"id"`
	TutorID     string       `bson:"tutor_id" json:"tutorId"`
	Weekday     time.Weekday `bson:"weekday" json:"weekday"`          // 0 = Sunday
	StartMinute int          `bson:"start_minute" json:"startMinute"` // e.g. 540 for 09:00
	EndMinute   int          `bson:"end_minute" json:"endMinute"`     // e.g. 720 for 12:00
}

// TutorRate carries the pricing inputs the availability projection needs.
type TutorRate struct {
	TutorID            string `bson:"tutor_id" json:"tutorId"`
	BaseRateMinorUnits int64  `bson:"base_rate_minor_units" json:"baseRateMinorUnits"` // per 60-minute session
	Currency           string `bson:"currency" json:"currency"`
}
