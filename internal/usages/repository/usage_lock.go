package repository

import (
	"context"
	"time"

	"assetbook/pkg/config"
	"assetbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const LockCollectionName = "Usage_locks"

// UsageLockRepository provides the advisory lock serializing writes to one
// asset's calendar.
type UsageLockRepository interface {
	Create(ctx context.Context, lock *model.UsageLock) (*model.UsageLock, error)
	Delete(ctx context.Context, lockID string) error
	EnsureIndexes(ctx context.Context) error
}

type mongoUsageLockRepository struct {
	collection *mongo.Collection
}

func NewUsageLockRepository(cfg *config.Config) UsageLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoUsageLockRepository{
		collection: db.Collection(LockCollectionName),
	}
}

// Create inserts the lock document. A duplicate key error means another
// request holds the asset's calendar.
func (r *mongoUsageLockRepository) Create(ctx context.Context, lock *model.UsageLock) (*model.UsageLock, error) {
	lock.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, lock)
	if err != nil {
		return nil, err
	}

	return lock, nil
}

func (r *mongoUsageLockRepository) Delete(ctx context.Context, lockID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID})
	return err
}

// EnsureIndexes creates the TTL index that reaps locks leaked by crashed
// requests once expires_at passes.
func (r *mongoUsageLockRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	return err
}
