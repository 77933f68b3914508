package availability

import (
	"context"
	"time"

	availabilityRepo "tutorbook/database/repository/availability"
	ledgerRepo "tutorbook/database/repository/ledger"
	"tutorbook/models"

	"github.com/go-redis/redis/v8"
)

// WindowsRequest scopes a bookable-windows projection. Either TutorIDs or
// CourseID must be set; CourseID expands to every tutor teaching the course.
type WindowsRequest struct {
	TutorIDs []string  `json:"tutorIds,omitempty"`
	CourseID string    `json:"courseId,omitempty"`
	From     time.Time `json:"from"`
	To       time.Time `json:"to"`
}

// AvailabilityService projects recurring rules minus committed time into
// bookable windows. Pure read path: it never mutates state and may be called
// repeatedly with no side effects.
type AvailabilityService interface {
	ListBookableWindows(ctx context.Context, req WindowsRequest) ([]models.BookableWindow, error)
}

// DefaultAvailabilityService implements AvailabilityService.
type DefaultAvailabilityService struct {
	Rules        availabilityRepo.AvailabilityRuleRepository
	Ledger       ledgerRepo.LedgerRepository
	Cache        *redis.Client // optional short-TTL projection cache
	CacheTTL     time.Duration
	GridStepMins int

	// Clock overrides time.Now in tests.
	Clock func() time.Time
}

func (svc *DefaultAvailabilityService) now() time.Time {
	if svc.Clock != nil {
		return svc.Clock()
	}
	return time.Now()
}

func (svc *DefaultAvailabilityService) gridStep() int {
	if svc.GridStepMins <= 0 {
		return 30
	}
	return svc.GridStepMins
}
