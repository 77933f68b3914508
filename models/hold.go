package models

import (
	"fmt"
	"time"
)

// RecurrenceCadence is how often a recurring series repeats.
type RecurrenceCadence string

const (
	CadenceWeekly   RecurrenceCadence = "weekly"
	CadenceBiweekly RecurrenceCadence = "biweekly"
)

// RecurrencePlan describes a recurring series riding on a hold. Only the first
// occurrence is held; the rest are materialized at finalization.
type RecurrencePlan struct {
	Cadence     RecurrenceCadence `bson:"cadence" json:"cadence"`
	Occurrences int               `bson:"occurrences" json:"occurrences"` // total, including the held one
}

// Interval returns the gap between consecutive occurrences.
func (p RecurrencePlan) Interval() time.Duration {
	if p.Cadence == CadenceBiweekly {
		return 14 * 24 * time.Hour
	}
	return 7 * 24 * time.Hour
}

func (p RecurrencePlan) Validate() error {
	if p.Cadence != CadenceWeekly && p.Cadence != CadenceBiweekly {
		return fmt.Errorf("unsupported recurrence cadence: %q", p.Cadence)
	}
	if p.Occurrences < 2 {
		return fmt.Errorf("recurring series needs at least 2 occurrences, got %d", p.Occurrences)
	}
	return nil
}

// CheckoutDetails is billing/contact data attached to a hold before payment.
type CheckoutDetails struct {
	Name           string `bson:"name,omitempty" json:"name,omitempty"`
	Email          string `bson:"email,omitempty" json:"email,omitempty"`
	Phone          string `bson:"phone,omitempty" json:"phone,omitempty"`
	BillingAddress string `bson:"billing_address,omitempty" json:"billingAddress,omitempty"`
}

// Hold is a short-lived exclusive claim on a tutor time-slot. At most one
// unexpired hold may exist per (tutor_id, start); the ledger enforces it.
type Hold struct {
	ID               string           `bson:"id" json:"id"`
	TutorID          string           `bson:"tutor_id" json:"tutorId"`
	CourseID         string           `bson:"course_id" json:"courseId"`
	Start            time.Time        `bson:"start" json:"start"`
	End              time.Time        `bson:"end" json:"end"`
	DurationMinutes  int              `bson:"duration_minutes" json:"durationMinutes"`
	QuotedMinorUnits int64            `bson:"quoted_minor_units" json:"quotedMinorUnits"`
	Currency         string           `bson:"currency" json:"currency"`
	ClaimantID       string           `bson:"claimant_id" json:"claimantId"`
	GuestClaimant    bool             `bson:"guest_claimant" json:"guestClaimant"`
	Checkout         *CheckoutDetails `bson:"checkout,omitempty" json:"checkout,omitempty"`
	Recurrence       *RecurrencePlan  `bson:"recurrence,omitempty" json:"recurrence,omitempty"`
	RecurringGroupID string           `bson:"recurring_group_id,omitempty" json:"recurringGroupId,omitempty"`
	CreatedAt        time.Time        `bson:"created_at" json:"createdAt"`
	ExpiresAt        time.Time        `bson:"expires_at" json:"expiresAt"`
}

// Expired reports whether the hold's TTL has passed at the given instant.
func (h *Hold) Expired(now time.Time) bool {
	return now.After(h.ExpiresAt)
}

// HoldView is the client-facing shape of a hold.
type HoldView struct {
	ID               string    `json:"id"`
	TutorID          string    `json:"tutorId"`
	CourseID         string    `json:"courseId"`
	Start            time.Time `json:"start"`
	DurationMinutes  int       `json:"durationMinutes"`
	QuotedMinorUnits int64     `json:"quotedMinorUnits"`
	Currency         string    `json:"currency"`
	ExpiresAt        time.Time `json:"expiresAt"`
}

// View projects the hold into its client-facing shape.
func (h *Hold) View() HoldView {
	return HoldView{
		ID:               h.ID,
		TutorID:          h.TutorID,
		CourseID:         h.CourseID,
		Start:            h.Start,
		DurationMinutes:  h.DurationMinutes,
		QuotedMinorUnits: h.QuotedMinorUnits,
		Currency:         h.Currency,
		ExpiresAt:        h.ExpiresAt,
	}
}
