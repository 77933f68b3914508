package hold

import "errors"

var (
	// ErrSlotTaken means the requested window conflicts with an unexpired
	// hold or a scheduled appointment.
	ErrSlotTaken = errors.New("slot is already held or booked")
	// ErrHoldNotFound means no hold with that ID was ever seen (or it was
	// released or already swept).
	ErrHoldNotFound = errors.New("hold not found")
	// ErrHoldExpired means the hold exists but its TTL has passed. Clients
	// get a distinct signal so they can restart checkout instead of
	// retrying blindly.
	ErrHoldExpired = errors.New("hold has expired")
	// ErrOutsideAvailability means the requested window does not line up
	// with any of the tutor's recurring availability rules.
	ErrOutsideAvailability = errors.New("requested window is outside the tutor's availability")
)
