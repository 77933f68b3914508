package ledgerRepo

import (
	"tutorbook/config"
	"tutorbook/database"

	"go.mongodb.org/mongo-driver/mongo"
)

// MongoLedgerRepo implements LedgerRepository using MongoDB.
type MongoLedgerRepo struct {
	holdColl  *mongo.Collection
	apptColl  *mongo.Collection
	orderColl *mongo.Collection
	reconColl *mongo.Collection
}

// NewMongoLedgerRepo constructs a new instance of MongoLedgerRepo.
func NewMongoLedgerRepo() *MongoLedgerRepo {
	db := database.MongoClient.Database(config.AppConfig.DatabaseName)
	return &MongoLedgerRepo{
		holdColl:  db.Collection("holds"),
		apptColl:  db.Collection("appointments"),
		orderColl: db.Collection("orders"),
		reconColl: db.Collection("reconciliations"),
	}
}
