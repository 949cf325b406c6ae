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

type PracticeRepository struct {
	Col *mongo.Collection
}

func NewPracticeRepository(db *mongo.Database) *PracticeRepository {
	return &PracticeRepository{Col: db.Collection("practiced")}
}

// MarkPracticed records that the user attempted a question. $addToSet under
// the unique (user, type, subtype) index makes the call idempotent: repeats
// and concurrent submissions of the same question leave one entry.
func (r *PracticeRepository) MarkPracticed(ctx context.Context, userID string, qType models.QuestionType, subtype models.QuestionSubtype, questionID string) (*models.PracticeRecord, error) {
	now := time.Now()
	filter := bson.M{
		"user_id":       userID,
		"question_type": qType,
		"subtype":       subtype,
	}
	update := bson.M{
		"$addToSet": bson.M{"practiced_questions": questionID},
		"$set":      bson.M{"updated_at": now},
		"$setOnInsert": bson.M{
			"_id":        primitive.NewObjectID().Hex(),
			"created_at": now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var rec models.PracticeRecord
	err := r.Col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&rec)
	if err != nil {
		return nil, fmt.Errorf("failed to mark question practiced: %w", err)
	}
	return &rec, nil
}

// AddCompletedMockTest appends a finished mock test to the user's record,
// also with set semantics.
func (r *PracticeRepository) AddCompletedMockTest(ctx context.Context, userID string, mockTestID string) error {
	now := time.Now()
	filter := bson.M{
		"user_id":       userID,
		"question_type": "mock_test",
		"subtype":       "mock_test",
	}
	update := bson.M{
		"$addToSet": bson.M{"completed_mock_tests": mockTestID},
		"$set":      bson.M{"updated_at": now},
		"$setOnInsert": bson.M{
			"_id":        primitive.NewObjectID().Hex(),
			"created_at": now,
		},
	}
	opts := options.Update().SetUpsert(true)

	_, err := r.Col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to record completed mock test: %w", err)
	}
	return nil
}

func (r *PracticeRepository) Find(ctx context.Context, userID string, qType models.QuestionType, subtype models.QuestionSubtype) (*models.PracticeRecord, error) {
	filter := bson.M{
		"user_id":       userID,
		"question_type": qType,
		"subtype":       subtype,
	}
	var rec models.PracticeRecord
	err := r.Col.FindOne(ctx, filter).Decode(&rec)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// PracticedIDs returns the practiced question IDs for a key, empty when the
// user has no record yet.
func (r *PracticeRepository) PracticedIDs(ctx context.Context, userID string, qType models.QuestionType, subtype models.QuestionSubtype) ([]string, error) {
	rec, err := r.Find(ctx, userID, qType, subtype)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec.PracticedQuestions, nil
}

func (r *PracticeRepository) FindAllByUser(ctx context.Context, userID string) ([]models.PracticeRecord, error) {
	cur, err := r.Col.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to find practice records: %w", err)
	}
	defer cur.Close(ctx)

	var records []models.PracticeRecord
	if err = cur.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode practice records: %w", err)
	}
	return records, nil
}

func (r *PracticeRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "question_type", Value: 1},
				{Key: "subtype", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := r.Col.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create practice indexes: %w", err)
	}
	return nil
}
