package ledgerRepo

import (
	"context"
	"fmt"
	"time"

	"tutorbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// InsertAppointment inserts a new appointment document.
func (repo *MongoLedgerRepo) InsertAppointment(ctx context.Context, appt *models.Appointment) error {
	if _, err := repo.apptColl.InsertOne(ctx, appt); err != nil {
		return fmt.Errorf("error inserting appointment: %w", err)
	}
	return nil
}

// GetAppointment fetches an appointment by ID.
func (repo *MongoLedgerRepo) GetAppointment(ctx context.Context, apptID string) (*models.Appointment, error) {
	var appt models.Appointment
	if err := repo.apptColl.FindOne(ctx, bson.M{"id": apptID}).Decode(&appt); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching appointment %s: %w", apptID, err)
	}
	return &appt, nil
}

// FindOverlappingAppointment returns a scheduled appointment for the tutor
// whose window intersects [start, end), or ErrNotFound.
func (repo *MongoLedgerRepo) FindOverlappingAppointment(ctx context.Context, tutorID string, start, end time.Time) (*models.Appointment, error) {
	filter := bson.M{
		"tutor_id": tutorID,
		"status":   models.AppointmentScheduled,
		"start":    bson.M{"$lt": end},
		"end":      bson.M{"$gt": start},
	}
	var appt models.Appointment
	if err := repo.apptColl.FindOne(ctx, filter).Decode(&appt); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error finding overlapping appointment: %w", err)
	}
	return &appt, nil
}

// ListScheduledAppointments returns scheduled appointments for the tutor
// intersecting [from, to).
func (repo *MongoLedgerRepo) ListScheduledAppointments(ctx context.Context, tutorID string, from, to time.Time) ([]models.Appointment, error) {
	filter := bson.M{
		"tutor_id": tutorID,
		"status":   models.AppointmentScheduled,
		"start":    bson.M{"$lt": to},
		"end":      bson.M{"$gt": from},
	}
	cursor, err := repo.apptColl.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing scheduled appointments: %w", err)
	}
	var appts []models.Appointment
	if err := cursor.All(ctx, &appts); err != nil {
		return nil, fmt.Errorf("error decoding scheduled appointments: %w", err)
	}
	return appts, nil
}

// CountAppointmentsForUser counts appointments belonging to a user, any status.
func (repo *MongoLedgerRepo) CountAppointmentsForUser(ctx context.Context, userID string) (int64, error) {
	n, err := repo.apptColl.CountDocuments(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("error counting appointments for user %s: %w", userID, err)
	}
	return n, nil
}
