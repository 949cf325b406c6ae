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

type SubscriptionRepository struct {
	Col *mongo.Collection
}

func NewSubscriptionRepository(db *mongo.Database) *SubscriptionRepository {
	return &SubscriptionRepository{Col: db.Collection("subscriptions")}
}

// FindActiveByUser returns the user's current active subscription. A user
// keeps at most one active subscription; historical rows stay inactive.
func (r *SubscriptionRepository) FindActiveByUser(ctx context.Context, userID string) (*models.Subscription, error) {
	filter := bson.M{
		"user_id":   userID,
		"is_active": true,
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "started_at", Value: -1}})

	var sub models.Subscription
	err := r.Col.FindOne(ctx, filter, opts).Decode(&sub)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// Debit atomically consumes one unit of the quota counter. The filter only
// matches while the counter is positive, so concurrent debits can never push
// it below zero. Returns false when no document matched; the caller re-reads
// the subscription to classify why.
func (r *SubscriptionRepository) Debit(ctx context.Context, userID string, kind models.QuotaKind) (*models.Subscription, bool, error) {
	field := kind.CounterField()
	filter := bson.M{
		"user_id":   userID,
		"is_active": true,
		field:       bson.M{"$gt": 0},
	}
	update := bson.M{
		"$inc": bson.M{field: -1},
		"$set": bson.M{"updated_at": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var sub models.Subscription
	err := r.Col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&sub)
	if err == mongo.ErrNoDocuments {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to debit %s: %w", kind, err)
	}
	return &sub, true, nil
}

// CreditByID returns one unit onto the exact subscription document a debit
// came from. Keyed by _id so a refund lands on the same row even if the
// user's active subscription changed in between.
func (r *SubscriptionRepository) CreditByID(ctx context.Context, id string, kind models.QuotaKind) error {
	update := bson.M{
		"$inc": bson.M{kind.CounterField(): 1},
		"$set": bson.M{"updated_at": time.Now()},
	}
	res, err := r.Col.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to credit %s: %w", kind, err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ApplyPlan stacks a plan's allotment onto the user's active subscription
// with a single $inc, creating the subscription when the user has none.
func (r *SubscriptionRepository) ApplyPlan(ctx context.Context, userID string, plan models.PlanType, payment models.PaymentInfo) (*models.Subscription, error) {
	allot := models.PlanAllotments[plan]
	now := time.Now()

	filter := bson.M{"user_id": userID, "is_active": true}
	update := bson.M{
		"$inc": bson.M{
			"mock_test_limit": allot.MockTests,
			"credits":         allot.AICredits,
		},
		"$set": bson.M{
			"plan_type":    plan,
			"payment_info": payment,
			"updated_at":   now,
		},
		// user_id and is_active are seeded from the equality filter on
		// insert; repeating them here would conflict.
		"$setOnInsert": bson.M{
			"_id":           primitive.NewObjectID().Hex(),
			"started_at":    now,
			"no_expiration": true,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var sub models.Subscription
	err := r.Col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&sub)
	if err != nil {
		return nil, fmt.Errorf("failed to apply plan %s: %w", plan, err)
	}
	return &sub, nil
}

func (r *SubscriptionRepository) Deactivate(ctx context.Context, id string) error {
	update := bson.M{"$set": bson.M{"is_active": false, "updated_at": time.Now()}}
	res, err := r.Col.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to deactivate subscription: %w", err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *SubscriptionRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "is_active", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "started_at", Value: -1}},
		},
	}
	_, err := r.Col.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create subscription indexes: %w", err)
	}
	return nil
}
