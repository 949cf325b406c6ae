package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"practice-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrVersionConflict is returned when a versioned update lost the race with
// a concurrent writer; the caller should re-read and retry.
var ErrVersionConflict = errors.New("mock test result modified concurrently")

type ResultRepository struct {
	Col *mongo.Collection
}

func NewResultRepository(db *mongo.Database) *ResultRepository {
	return &ResultRepository{Col: db.Collection("mock_test_results")}
}

// FindOrCreate returns the result document for (user, mockTest), creating an
// empty one on first touch. The unique index keeps concurrent first touches
// from producing two documents.
func (r *ResultRepository) FindOrCreate(ctx context.Context, userID, mockTestID string) (*models.MockTestResult, error) {
	filter := bson.M{"user_id": userID, "mock_test_id": mockTestID}
	update := bson.M{
		"$setOnInsert": bson.M{
			"_id":        primitive.NewObjectID().Hex(),
			"results":    []models.TypeScore{},
			"version":    int64(0),
			"created_at": time.Now(),
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var res models.MockTestResult
	err := r.Col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&res)
	if err != nil {
		return nil, fmt.Errorf("failed to load mock test result: %w", err)
	}
	return &res, nil
}

func (r *ResultRepository) Find(ctx context.Context, userID, mockTestID string) (*models.MockTestResult, error) {
	var res models.MockTestResult
	err := r.Col.FindOne(ctx, bson.M{"user_id": userID, "mock_test_id": mockTestID}).Decode(&res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// SaveResults writes the recomputed skill scores, guarded by the version the
// caller read. A concurrent append bumps the version and this write returns
// ErrVersionConflict instead of clobbering it.
func (r *ResultRepository) SaveResults(ctx context.Context, res *models.MockTestResult) error {
	filter := bson.M{"_id": res.ID, "version": res.Version}
	update := bson.M{
		"$set": bson.M{"results": res.Results},
		"$inc": bson.M{"version": 1},
	}

	out, err := r.Col.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to save mock test result: %w", err)
	}
	if out.MatchedCount == 0 {
		return ErrVersionConflict
	}
	res.Version++
	return nil
}

func (r *ResultRepository) FindAllByUser(ctx context.Context, userID string) ([]models.MockTestResult, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.Col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find mock test results: %w", err)
	}
	defer cur.Close(ctx)

	var results []models.MockTestResult
	if err = cur.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode mock test results: %w", err)
	}
	return results, nil
}

func (r *ResultRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "mock_test_id", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
	}
	_, err := r.Col.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create result indexes: %w", err)
	}
	return nil
}
