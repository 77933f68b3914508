package models

import "time"

// OrderLine records one booked occurrence within an order.
type OrderLine struct {
	ID              string    `bson:"id" json:"id"`
	AppointmentID   string    `bson:"appointment_id" json:"appointmentId"`
	TutorID         string    `bson:"tutor_id" json:"tutorId"`
	CourseID        string    `bson:"course_id" json:"courseId"`
	Start           time.Time `bson:"start" json:"start"`
	DurationMinutes int       `bson:"duration_minutes" json:"durationMinutes"`
	PriceMinorUnits int64     `bson:"price_minor_units" json:"priceMinorUnits"`
}

// Order is the financial record created 1:1 with finalization. Exactly one
// order may exist per payment reference; that uniqueness is the idempotency
// key for the whole finalize operation.
type Order struct {
	ID              string      `bson:"id" json:"id"`
	UserID          string      `bson:"user_id" json:"userId"`
	PaymentRef      string      `bson:"payment_ref" json:"paymentRef"`
	Status          string      `bson:"status" json:"status"` // "paid"
	TotalMinorUnits int64       `bson:"total_minor_units" json:"totalMinorUnits"`
	Currency        string      `bson:"currency" json:"currency"`
	Lines           []OrderLine `bson:"lines" json:"lines"`
	CreatedAt       time.Time   `bson:"created_at" json:"createdAt"`
}

// BookingConfirmation is returned from finalization, identical on every
// retry for the same payment reference.
type BookingConfirmation struct {
	OrderID            string      `json:"orderId"`
	AppointmentID      string      `json:"appointmentId"` // first occurrence
	AppointmentIDs     []string    `json:"appointmentIds"`
	UserID             string      `json:"userId"`
	AlreadyFinalized   bool        `json:"alreadyFinalized,omitempty"`
	SkippedOccurrences []time.Time `json:"skippedOccurrences,omitempty"`
}
