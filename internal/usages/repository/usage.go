package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"assetbook/pkg/config"
	mongotx "assetbook/pkg/db/mongo"
	"assetbook/pkg/model"

	usageerrors "assetbook/internal/usages/errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Usages"
)

type UsageRepository interface {
	Create(ctx context.Context, usage *model.Usage) error
	FindByID(ctx context.Context, id string) (*model.Usage, error)
	Find(ctx context.Context, filter *model.UsageFilter) ([]*model.Usage, error)
	Count(ctx context.Context, filter *model.UsageFilter) (int64, error)
	Update(ctx context.Context, id string, usage *model.Usage) error
	Delete(ctx context.Context, id string) error
	FindCandidates(ctx context.Context, assetID string, start, end time.Time) ([]*model.Usage, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoUsageRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoUsageRepository(cfg *config.Config) UsageRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoUsageRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout unless we are inside a
// transaction: a SessionContext cannot be wrapped without breaking
// transaction semantics, so it is returned unchanged with a no-op cancel.
func (r *mongoUsageRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if mongotx.InTransaction(ctx) {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoUsageRepository) Create(ctx context.Context, usage *model.Usage) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	usage.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, usage)
	if err != nil {
		return fmt.Errorf("failed to create usage: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		usage.ID = oid.Hex()
	}
	return nil
}

func (r *mongoUsageRepository) FindByID(ctx context.Context, id string) (*model.Usage, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", usageerrors.ErrInvalidID, id)
	}

	var usage model.Usage
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&usage)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, usageerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find usage: %w", err)
	}

	return &usage, nil
}

func (r *mongoUsageRepository) Find(ctx context.Context, filter *model.UsageFilter) ([]*model.Usage, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "start_time", Value: 1}}).
		SetLimit(int64(filter.Limit)).
		SetSkip(filter.Offset)

	cursor, err := r.collection.Find(ctx, buildListFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find usages: %w", err)
	}
	defer cursor.Close(ctx)

	var usages []*model.Usage
	if err = cursor.All(ctx, &usages); err != nil {
		return nil, fmt.Errorf("failed to decode usages: %w", err)
	}

	return usages, nil
}

func (r *mongoUsageRepository) Count(ctx context.Context, filter *model.UsageFilter) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildListFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count usages: %w", err)
	}
	return count, nil
}

func (r *mongoUsageRepository) Update(ctx context.Context, id string, usage *model.Usage) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", usageerrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"asset_id":   usage.AssetID,
			"start_time": usage.StartTime,
			"end_time":   usage.EndTime,
			"other_info": usage.OtherInfo,
			"updated_at": time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update usage: %w", err)
	}

	if result.MatchedCount == 0 {
		return usageerrors.ErrNotFound
	}

	return nil
}

func (r *mongoUsageRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", usageerrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete usage: %w", err)
	}

	if result.DeletedCount == 0 {
		return usageerrors.ErrNotFound
	}

	return nil
}

// FindCandidates returns the usages of one asset that could possibly
// conflict with [start, end]. Every span the boundary policy flags satisfies
// start_time <= end AND end_time >= start, so the exact predicate only has
// to run over this superset.
func (r *mongoUsageRepository) FindCandidates(ctx context.Context, assetID string, start, end time.Time) ([]*model.Usage, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"asset_id":   assetID,
		"start_time": bson.M{"$lte": end},
		"end_time":   bson.M{"$gte": start},
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find conflict candidates: %w", err)
	}
	defer cursor.Close(ctx)

	var usages []*model.Usage
	if err = cursor.All(ctx, &usages); err != nil {
		return nil, fmt.Errorf("failed to decode conflict candidates: %w", err)
	}

	return usages, nil
}

func (r *mongoUsageRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

func buildListFilter(filter *model.UsageFilter) bson.M {
	query := bson.M{}

	if filter.AssetID != "" {
		query["asset_id"] = filter.AssetID
	}
	if filter.UserID != "" {
		query["user_id"] = filter.UserID
	}

	// A usage matches the range when its span intersects it: it either ends
	// after the range starts or starts before the range ends.
	if filter.StartTime != nil || filter.EndTime != nil {
		var rangeClauses []bson.M
		if filter.StartTime != nil {
			rangeClauses = append(rangeClauses, bson.M{"end_time": bson.M{"$gte": *filter.StartTime}})
		}
		if filter.EndTime != nil {
			rangeClauses = append(rangeClauses, bson.M{"start_time": bson.M{"$lte": *filter.EndTime}})
		}
		query["$or"] = rangeClauses
	}

	return query
}
