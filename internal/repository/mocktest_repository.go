package repository

import (
	"context"
	"fmt"
	"time"

	"practice-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MockTestRepository struct {
	Col *mongo.Collection
}

func NewMockTestRepository(db *mongo.Database) *MockTestRepository {
	return &MockTestRepository{Col: db.Collection("mock_tests")}
}

func (r *MockTestRepository) Create(ctx context.Context, mt *models.MockTest) error {
	if mt.ID == "" {
		mt.ID = primitive.NewObjectID().Hex()
	}
	if mt.CreatedAt.IsZero() {
		mt.CreatedAt = time.Now()
	}
	_, err := r.Col.InsertOne(ctx, mt)
	if err != nil {
		return fmt.Errorf("failed to insert mock test: %w", err)
	}
	return nil
}

func (r *MockTestRepository) FindByID(ctx context.Context, id string) (*models.MockTest, error) {
	var mt models.MockTest
	err := r.Col.FindOne(ctx, bson.M{"_id": id}).Decode(&mt)
	if err != nil {
		return nil, err
	}
	return &mt, nil
}

func (r *MockTestRepository) FindAll(ctx context.Context, page, limit int) ([]models.MockTest, int64, error) {
	total, err := r.Col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count mock tests: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cur, err := r.Col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find mock tests: %w", err)
	}
	defer cur.Close(ctx)

	var tests []models.MockTest
	if err = cur.All(ctx, &tests); err != nil {
		return nil, 0, fmt.Errorf("failed to decode mock tests: %w", err)
	}
	return tests, total, nil
}

func (r *MockTestRepository) Delete(ctx context.Context, id string) error {
	res, err := r.Col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete mock test: %w", err)
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
