package identityRepo

import (
	"context"
	"fmt"
	"time"

	"tutorbook/config"
	"tutorbook/database"
	"tutorbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoIdentityRepo implements IdentityRepository using MongoDB.
type MongoIdentityRepo struct {
	coll *mongo.Collection
}

// NewMongoIdentityRepo constructs a new instance of MongoIdentityRepo.
func NewMongoIdentityRepo() *MongoIdentityRepo {
	db := database.MongoClient.Database(config.AppConfig.DatabaseName)
	return &MongoIdentityRepo{coll: db.Collection("identities")}
}

func (repo *MongoIdentityRepo) CreateGuest(ctx context.Context, identity *models.Identity) error {
	if _, err := repo.coll.InsertOne(ctx, identity); err != nil {
		return fmt.Errorf("error creating guest identity: %w", err)
	}
	return nil
}

func (repo *MongoIdentityRepo) GetByID(ctx context.Context, id string) (*models.Identity, error) {
	var identity models.Identity
	if err := repo.coll.FindOne(ctx, bson.M{"id": id}).Decode(&identity); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching identity %s: %w", id, err)
	}
	return &identity, nil
}

func (repo *MongoIdentityRepo) FindByEmail(ctx context.Context, email string) (*models.Identity, error) {
	var identity models.Identity
	if err := repo.coll.FindOne(ctx, bson.M{"email": email}).Decode(&identity); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching identity by email: %w", err)
	}
	return &identity, nil
}

func (repo *MongoIdentityRepo) PromoteGuest(ctx context.Context, id string, info models.GuestContactInfo, passwordHash string) error {
	set := bson.M{
		"guest":      false,
		"name":       info.Name,
		"email":      info.Email,
		"phone":      info.Phone,
		"updated_at": time.Now(),
	}
	if passwordHash != "" {
		set["password_hash"] = passwordHash
	}
	res, err := repo.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("error promoting guest %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteGuest removes a guest placeholder. Permanent identities are never
// deleted through this path.
func (repo *MongoIdentityRepo) DeleteGuest(ctx context.Context, id string) error {
	if _, err := repo.coll.DeleteOne(ctx, bson.M{"id": id, "guest": true}); err != nil {
		return fmt.Errorf("error deleting guest identity %s: %w", id, err)
	}
	return nil
}
