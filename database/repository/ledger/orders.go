package ledgerRepo

import (
	"context"
	"fmt"

	"tutorbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// InsertOrder inserts a new order. The unique index on payment_ref makes a
// concurrent duplicate finalize fail fast with ErrDuplicateOrder.
func (repo *MongoLedgerRepo) InsertOrder(ctx context.Context, order *models.Order) error {
	if _, err := repo.orderColl.InsertOne(ctx, order); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateOrder
		}
		return fmt.Errorf("error inserting order: %w", err)
	}
	return nil
}

// GetOrderByPaymentRef fetches the order for an external payment reference.
func (repo *MongoLedgerRepo) GetOrderByPaymentRef(ctx context.Context, paymentRef string) (*models.Order, error) {
	var order models.Order
	if err := repo.orderColl.FindOne(ctx, bson.M{"payment_ref": paymentRef}).Decode(&order); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching order for payment %s: %w", paymentRef, err)
	}
	return &order, nil
}

// FlagReconciliation records a case for manual operator follow-up.
func (repo *MongoLedgerRepo) FlagReconciliation(ctx context.Context, rc *models.ReconciliationCase) error {
	if _, err := repo.reconColl.InsertOne(ctx, rc); err != nil {
		return fmt.Errorf("error flagging reconciliation case: %w", err)
	}
	return nil
}
