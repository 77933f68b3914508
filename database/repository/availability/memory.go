package availabilityRepo

import (
	"context"
	"sync"

	"tutorbook/models"
)

// MemoryAvailabilityRepo is an in-memory AvailabilityRuleRepository for tests.
type MemoryAvailabilityRepo struct {
	mu      sync.Mutex
	rules   map[string][]models.AvailabilityRule
	rates   map[string]models.TutorRate
	courses map[string][]string
}

func NewMemoryAvailabilityRepo() *MemoryAvailabilityRepo {
	return &MemoryAvailabilityRepo{
		rules:   make(map[string][]models.AvailabilityRule),
		rates:   make(map[string]models.TutorRate),
		courses: make(map[string][]string),
	}
}

// AddRule registers a rule and makes sure the tutor appears under the course.
func (repo *MemoryAvailabilityRepo) AddRule(rule models.AvailabilityRule) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.rules[rule.TutorID] = append(repo.rules[rule.TutorID], rule)
}

func (repo *MemoryAvailabilityRepo) SetRate(rate models.TutorRate) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.rates[rate.TutorID] = rate
}

func (repo *MemoryAvailabilityRepo) SetCourseTutors(courseID string, tutorIDs []string) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.courses[courseID] = tutorIDs
}

func (repo *MemoryAvailabilityRepo) GetRulesForTutor(_ context.Context, tutorID string) ([]models.AvailabilityRule, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	out := make([]models.AvailabilityRule, len(repo.rules[tutorID]))
	copy(out, repo.rules[tutorID])
	return out, nil
}

func (repo *MemoryAvailabilityRepo) GetTutorRate(_ context.Context, tutorID string) (*models.TutorRate, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	rate, ok := repo.rates[tutorID]
	if !ok {
		rate = models.TutorRate{TutorID: tutorID, BaseRateMinorUnits: 0, Currency: "USD"}
	}
	return &rate, nil
}

func (repo *MemoryAvailabilityRepo) ListTutorsForCourse(_ context.Context, courseID string) ([]string, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	out := make([]string, len(repo.courses[courseID]))
	copy(out, repo.courses[courseID])
	return out, nil
}
