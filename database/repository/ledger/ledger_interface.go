package ledgerRepo

import (
	"context"
	"errors"
	"time"

	"tutorbook/models"
)

// Sentinel errors shared by all implementations.
var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateHold  = errors.New("hold already exists for this tutor and start time")
	ErrDuplicateOrder = errors.New("order already exists for this payment reference")
)

// LedgerRepository is the commitment ledger: the combined set of scheduled
// appointments and unexpired holds per tutor, plus the order records that make
// finalization idempotent. All cross-request mutual exclusion lives here,
// conflict reads and the writes they gate must share one transaction.
type LedgerRepository interface {
	// WithTransaction runs fn as one atomic unit. Repository calls made with
	// the ctx passed to fn participate in the same transaction.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	InsertHold(ctx context.Context, hold *models.Hold) error
	GetHold(ctx context.Context, holdID string) (*models.Hold, error)
	UpdateHoldCheckout(ctx context.Context, holdID string, details models.CheckoutDetails) error
	DeleteHold(ctx context.Context, holdID string) error
	// PurgeExpiredHolds deletes holds with expires_at < now and returns the
	// purged records so callers can garbage-collect guest identities.
	PurgeExpiredHolds(ctx context.Context, now time.Time) ([]models.Hold, error)
	FindOverlappingHold(ctx context.Context, tutorID string, start, end, now time.Time) (*models.Hold, error)
	ListActiveHolds(ctx context.Context, tutorID string, from, to, now time.Time) ([]models.Hold, error)
	CountActiveHoldsForClaimant(ctx context.Context, claimantID string, now time.Time) (int64, error)

	InsertAppointment(ctx context.Context, appt *models.Appointment) error
	GetAppointment(ctx context.Context, apptID string) (*models.Appointment, error)
	FindOverlappingAppointment(ctx context.Context, tutorID string, start, end time.Time) (*models.Appointment, error)
	ListScheduledAppointments(ctx context.Context, tutorID string, from, to time.Time) ([]models.Appointment, error)
	CountAppointmentsForUser(ctx context.Context, userID string) (int64, error)

	InsertOrder(ctx context.Context, order *models.Order) error
	GetOrderByPaymentRef(ctx context.Context, paymentRef string) (*models.Order, error)

	FlagReconciliation(ctx context.Context, rc *models.ReconciliationCase) error
}
