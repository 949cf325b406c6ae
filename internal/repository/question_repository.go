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

type QuestionRepository struct {
	Col *mongo.Collection
}

func NewQuestionRepository(db *mongo.Database) *QuestionRepository {
	return &QuestionRepository{Col: db.Collection("questions")}
}

func (r *QuestionRepository) Create(ctx context.Context, question *models.Question) error {
	if question.ID == "" {
		question.ID = primitive.NewObjectID().Hex()
	}
	if question.CreatedAt.IsZero() {
		question.CreatedAt = time.Now()
	}
	_, err := r.Col.InsertOne(ctx, question)
	if err != nil {
		return fmt.Errorf("failed to insert question: %w", err)
	}
	return nil
}

func (r *QuestionRepository) FindByID(ctx context.Context, id string) (*models.Question, error) {
	var question models.Question
	err := r.Col.FindOne(ctx, bson.M{"_id": id}).Decode(&question)
	if err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *QuestionRepository) FindBySubtype(ctx context.Context, subtype models.QuestionSubtype, page, limit int) ([]models.Question, int64, error) {
	filter := bson.M{"subtype": subtype}

	total, err := r.Col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count questions: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "question_number", Value: 1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cur, err := r.Col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find questions: %w", err)
	}
	defer cur.Close(ctx)

	var questions []models.Question
	if err = cur.All(ctx, &questions); err != nil {
		return nil, 0, fmt.Errorf("failed to decode questions: %w", err)
	}
	return questions, total, nil
}

// FindNotPracticed returns up to limit questions of a subtype the user has
// not attempted yet, excluding the given IDs.
func (r *QuestionRepository) FindNotPracticed(ctx context.Context, subtype models.QuestionSubtype, practicedIDs []string, limit int) ([]models.Question, error) {
	filter := bson.M{"subtype": subtype}
	if len(practicedIDs) > 0 {
		filter["_id"] = bson.M{"$nin": practicedIDs}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "question_number", Value: 1}}).
		SetLimit(int64(limit))

	cur, err := r.Col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find unpracticed questions: %w", err)
	}
	defer cur.Close(ctx)

	var questions []models.Question
	if err = cur.All(ctx, &questions); err != nil {
		return nil, fmt.Errorf("failed to decode questions: %w", err)
	}
	return questions, nil
}

func (r *QuestionRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Question, error) {
	cur, err := r.Col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to find questions: %w", err)
	}
	defer cur.Close(ctx)

	var questions []models.Question
	if err = cur.All(ctx, &questions); err != nil {
		return nil, fmt.Errorf("failed to decode questions: %w", err)
	}
	return questions, nil
}

func (r *QuestionRepository) Update(ctx context.Context, id string, update bson.M) error {
	res, err := r.Col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	if err != nil {
		return fmt.Errorf("failed to update question: %w", err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *QuestionRepository) Delete(ctx context.Context, id string) error {
	res, err := r.Col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *QuestionRepository) NextQuestionNumber(ctx context.Context, subtype models.QuestionSubtype) (int64, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "question_number", Value: -1}})
	var last models.Question
	err := r.Col.FindOne(ctx, bson.M{"subtype": subtype}, opts).Decode(&last)
	if err == mongo.ErrNoDocuments {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return last.QuestionNumber + 1, nil
}

func (r *QuestionRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "type", Value: 1}, {Key: "subtype", Value: 1}}},
		{Keys: bson.D{{Key: "subtype", Value: 1}, {Key: "question_number", Value: 1}}},
	}
	_, err := r.Col.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create question indexes: %w", err)
	}
	return nil
}
