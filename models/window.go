package models

import "time"

// DurationOffer is one offerable duration at a bookable start instant.
type DurationOffer struct {
	Minutes         int   `json:"minutes"`
	PriceMinorUnits int64 `json:"priceMinorUnits"`
}

// BookableWindow is a free start instant with the durations that individually
// survived conflict checking.
type BookableWindow struct {
	TutorID  string          `json:"tutorId"`
	Start    time.Time       `json:"start"`
	Currency string          `json:"currency"`
	Offers   []DurationOffer `json:"offers"`
}
