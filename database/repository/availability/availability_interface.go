package availabilityRepo

import (
	"context"

	"tutorbook/models"
)

// AvailabilityRuleRepository reads tutors' recurring weekly availability and
// the pricing inputs derived from it. Rules are owned by tutor management;
// this repository is strictly read-only.
type AvailabilityRuleRepository interface {
	GetRulesForTutor(ctx context.Context, tutorID string) ([]models.AvailabilityRule, error)
	GetTutorRate(ctx context.Context, tutorID string) (*models.TutorRate, error)
	ListTutorsForCourse(ctx context.Context, courseID string) ([]string, error)
}
