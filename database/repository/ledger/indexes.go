// FILE: database/repository/ledger/indexes.go
package ledgerRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the necessary indexes on the ledger collections.
// The unique (tutor_id, start) index on holds is load-bearing: expired holds
// are always deleted rather than retained, so uniqueness among stored holds
// is uniqueness among unexpired ones.
func (repo *MongoLedgerRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	holdIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		{
			Keys:    bson.D{{Key: "tutor_id", Value: 1}, {Key: "start", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_tutor_start"),
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetName("expires_at_idx"),
		},
		{
			Keys:    bson.D{{Key: "claimant_id", Value: 1}},
			Options: options.Index().SetName("claimant_idx"),
		},
	}
	if _, err := repo.holdColl.Indexes().CreateMany(ctx, holdIndexes); err != nil {
		return fmt.Errorf("failed to create hold indexes: %w", err)
	}

	apptIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		{
			Keys:    bson.D{{Key: "tutor_id", Value: 1}, {Key: "status", Value: 1}, {Key: "start", Value: 1}, {Key: "end", Value: 1}},
			Options: options.Index().SetName("tutor_status_start_end_idx"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("user_idx"),
		},
	}
	if _, err := repo.apptColl.Indexes().CreateMany(ctx, apptIndexes); err != nil {
		return fmt.Errorf("failed to create appointment indexes: %w", err)
	}

	orderIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		{
			Keys:    bson.D{{Key: "payment_ref", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_payment_ref"),
		},
	}
	if _, err := repo.orderColl.Indexes().CreateMany(ctx, orderIndexes); err != nil {
		return fmt.Errorf("failed to create order indexes: %w", err)
	}

	return nil
}
