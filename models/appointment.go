package models

import "time"

// Appointment statuses. Only "scheduled" appointments count as committed time.
const (
	AppointmentScheduled = "scheduled"
	AppointmentCompleted = "completed"
	AppointmentCancelled = "cancelled"
)

// Appointment is the durable commitment created at finalization. For a given
// tutor, no two scheduled appointments may have overlapping [start, end).
type Appointment struct {
	ID               string    `bson:"id" json:"id"`
	UserID           string    `bson:"user_id" json:"userId"`
	TutorID          string    `bson:"tutor_id" json:"tutorId"`
	CourseID         string    `bson:"course_id" json:"courseId"`
	Start            time.Time `bson:"start" json:"start"`
	End              time.Time `bson:"end" json:"end"`
	Status           string    `bson:"status" json:"status"`
	OrderLineID      string    `bson:"order_line_id" json:"orderLineId"`
	RecurringGroupID string    `bson:"recurring_group_id,omitempty" json:"recurringGroupId,omitempty"`
	CreatedAt        time.Time `bson:"created_at" json:"createdAt"`
}

// Overlaps is the shared interval test used for every conflict check:
// [aStart, aEnd) and [bStart, bEnd) intersect.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}
