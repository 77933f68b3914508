package ledgerRepo

import (
	"context"
	"fmt"
	"time"

	"tutorbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// InsertHold inserts a new hold. The unique index on (tutor_id, start) turns
// a losing concurrent insert into ErrDuplicateHold instead of a silent win.
func (repo *MongoLedgerRepo) InsertHold(ctx context.Context, hold *models.Hold) error {
	if _, err := repo.holdColl.InsertOne(ctx, hold); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateHold
		}
		return fmt.Errorf("error inserting hold: %w", err)
	}
	return nil
}

// GetHold fetches a hold by ID. Expiry is the caller's concern; an expired
// hold is still returned so callers can distinguish Expired from NotFound.
func (repo *MongoLedgerRepo) GetHold(ctx context.Context, holdID string) (*models.Hold, error) {
	var hold models.Hold
	filter := bson.M{"id": holdID}
	if err := repo.holdColl.FindOne(ctx, filter).Decode(&hold); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching hold %s: %w", holdID, err)
	}
	return &hold, nil
}

// UpdateHoldCheckout attaches checkout details collected before payment.
func (repo *MongoLedgerRepo) UpdateHoldCheckout(ctx context.Context, holdID string, details models.CheckoutDetails) error {
	filter := bson.M{"id": holdID}
	update := bson.M{"$set": bson.M{"checkout": details}}
	res, err := repo.holdColl.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("error updating hold %s: %w", holdID, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteHold removes a hold. Deleting a nonexistent hold is not an error.
func (repo *MongoLedgerRepo) DeleteHold(ctx context.Context, holdID string) error {
	if _, err := repo.holdColl.DeleteOne(ctx, bson.M{"id": holdID}); err != nil {
		return fmt.Errorf("error deleting hold %s: %w", holdID, err)
	}
	return nil
}

// PurgeExpiredHolds removes every hold past its TTL. The delete is scoped by
// expires_at < now so a concurrent transaction's live hold is never touched.
func (repo *MongoLedgerRepo) PurgeExpiredHolds(ctx context.Context, now time.Time) ([]models.Hold, error) {
	filter := bson.M{"expires_at": bson.M{"$lt": now}}

	cursor, err := repo.holdColl.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error finding expired holds: %w", err)
	}
	var expired []models.Hold
	if err := cursor.All(ctx, &expired); err != nil {
		return nil, fmt.Errorf("error decoding expired holds: %w", err)
	}
	if len(expired) == 0 {
		return nil, nil
	}

	if _, err := repo.holdColl.DeleteMany(ctx, filter); err != nil {
		return nil, fmt.Errorf("error purging expired holds: %w", err)
	}
	return expired, nil
}

// FindOverlappingHold returns an unexpired hold for the tutor whose window
// intersects [start, end), or ErrNotFound.
func (repo *MongoLedgerRepo) FindOverlappingHold(ctx context.Context, tutorID string, start, end, now time.Time) (*models.Hold, error) {
	filter := bson.M{
		"tutor_id":   tutorID,
		"start":      bson.M{"$lt": end},
		"end":        bson.M{"$gt": start},
		"expires_at": bson.M{"$gte": now},
	}
	var hold models.Hold
	if err := repo.holdColl.FindOne(ctx, filter).Decode(&hold); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error finding overlapping hold: %w", err)
	}
	return &hold, nil
}

// ListActiveHolds returns unexpired holds for the tutor intersecting [from, to).
func (repo *MongoLedgerRepo) ListActiveHolds(ctx context.Context, tutorID string, from, to, now time.Time) ([]models.Hold, error) {
	filter := bson.M{
		"tutor_id":   tutorID,
		"start":      bson.M{"$lt": to},
		"end":        bson.M{"$gt": from},
		"expires_at": bson.M{"$gte": now},
	}
	cursor, err := repo.holdColl.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing active holds: %w", err)
	}
	var holds []models.Hold
	if err := cursor.All(ctx, &holds); err != nil {
		return nil, fmt.Errorf("error decoding active holds: %w", err)
	}
	return holds, nil
}

// CountActiveHoldsForClaimant counts unexpired holds referencing a claimant.
// Used to decide whether an ephemeral guest identity is still needed.
func (repo *MongoLedgerRepo) CountActiveHoldsForClaimant(ctx context.Context, claimantID string, now time.Time) (int64, error) {
	filter := bson.M{
		"claimant_id": claimantID,
		"expires_at":  bson.M{"$gte": now},
	}
	n, err := repo.holdColl.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("error counting holds for claimant %s: %w", claimantID, err)
	}
	return n, nil
}
