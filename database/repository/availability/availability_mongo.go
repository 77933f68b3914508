package availabilityRepo

import (
	"context"
	"fmt"

	"tutorbook/config"
	"tutorbook/database"
	"tutorbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoAvailabilityRepo implements AvailabilityRuleRepository using MongoDB.
type MongoAvailabilityRepo struct {
	ruleColl  *mongo.Collection
	tutorColl *mongo.Collection
}

// NewMongoAvailabilityRepo constructs a new instance of MongoAvailabilityRepo.
func NewMongoAvailabilityRepo() *MongoAvailabilityRepo {
	db := database.MongoClient.Database(config.AppConfig.DatabaseName)
	return &MongoAvailabilityRepo{
		ruleColl:  db.Collection("availability_rules"),
		tutorColl: db.Collection("tutors"),
	}
}

// GetRulesForTutor returns all weekly rules for a tutor. A tutor with no
// rules yields an empty slice, not an error.
func (repo *MongoAvailabilityRepo) GetRulesForTutor(ctx context.Context, tutorID string) ([]models.AvailabilityRule, error) {
	cursor, err := repo.ruleColl.Find(ctx, bson.M{"tutor_id": tutorID})
	if err != nil {
		return nil, fmt.Errorf("error fetching rules for tutor %s: %w", tutorID, err)
	}
	var rules []models.AvailabilityRule
	if err := cursor.All(ctx, &rules); err != nil {
		return nil, fmt.Errorf("error decoding rules for tutor %s: %w", tutorID, err)
	}
	return rules, nil
}

// GetTutorRate returns the tutor's base session rate and currency.
func (repo *MongoAvailabilityRepo) GetTutorRate(ctx context.Context, tutorID string) (*models.TutorRate, error) {
	var rate models.TutorRate
	if err := repo.tutorColl.FindOne(ctx, bson.M{"tutor_id": tutorID}).Decode(&rate); err != nil {
		return nil, fmt.Errorf("error fetching rate for tutor %s: %w", tutorID, err)
	}
	return &rate, nil
}

// ListTutorsForCourse returns the IDs of tutors teaching a course.
func (repo *MongoAvailabilityRepo) ListTutorsForCourse(ctx context.Context, courseID string) ([]string, error) {
	cursor, err := repo.tutorColl.Find(ctx, bson.M{"course_ids": courseID})
	if err != nil {
		return nil, fmt.Errorf("error fetching tutors for course %s: %w", courseID, err)
	}
	var docs []struct {
		TutorID string `bson:"tutor_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("error decoding tutors for course %s: %w", courseID, err)
	}
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.TutorID)
	}
	return ids, nil
}
