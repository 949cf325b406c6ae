package service

import (
	"context"
	"log"

	"practice-service/internal/apperr"
	"practice-service/internal/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// SubscriptionStore is the storage contract the entitlement ledger needs.
// Debit must be an atomic conditional decrement; see the repository.
type SubscriptionStore interface {
	Debit(ctx context.Context, userID string, kind models.QuotaKind) (*models.Subscription, bool, error)
	CreditByID(ctx context.Context, id string, kind models.QuotaKind) error
	FindActiveByUser(ctx context.Context, userID string) (*models.Subscription, error)
	ApplyPlan(ctx context.Context, userID string, plan models.PlanType, payment models.PaymentInfo) (*models.Subscription, error)
	Deactivate(ctx context.Context, id string) error
}

// Publisher emits domain events; event.EventPublisher satisfies it.
type Publisher interface {
	Publish(eventType string, payload interface{}) error
}

// EntitlementService gates consumable quotas. Debits are reserved up front,
// before any expensive downstream work, and callers compensate with Credit
// when that work fails.
type EntitlementService struct {
	Store  SubscriptionStore
	Events Publisher
}

func NewEntitlementService(store SubscriptionStore, events Publisher) *EntitlementService {
	return &EntitlementService{Store: store, Events: events}
}

func quotaLabel(kind models.QuotaKind) string {
	if kind == models.QuotaMockTests {
		return "mock test"
	}
	return "AI credits"
}

// CheckAndDebit consumes one unit of the quota and returns the subscription
// the unit came from. The returned subscription's ID must be pinned by the
// caller for any compensating Credit: refunds target the exact document that
// was debited, not whatever is active for the user by then.
func (s *EntitlementService) CheckAndDebit(ctx context.Context, userID string, kind models.QuotaKind) (*models.Subscription, error) {
	sub, ok, err := s.Store.Debit(ctx, userID, kind)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	if ok {
		s.publish("quota.debited", map[string]interface{}{
			"user_id":         userID,
			"kind":            kind,
			"subscription_id": sub.ID,
		})
		return sub, nil
	}

	// Nothing matched the conditional decrement: either the user has no
	// active subscription or the counter already hit zero. Re-read to tell
	// the cases apart.
	cur, err := s.Store.FindActiveByUser(ctx, userID)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.SubscriptionNotFound()
	}
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	if cur.PlanType == models.PlanFree {
		return nil, apperr.UpgradeRequired()
	}
	return nil, apperr.QuotaExhausted(quotaLabel(kind))
}

// Credit returns one unit onto the subscription a debit came from. Used only
// as compensation after downstream failure.
func (s *EntitlementService) Credit(ctx context.Context, subscriptionID string, kind models.QuotaKind) error {
	if err := s.Store.CreditByID(ctx, subscriptionID, kind); err != nil {
		return err
	}
	s.publish("quota.refunded", map[string]interface{}{
		"subscription_id": subscriptionID,
		"kind":            kind,
	})
	return nil
}

// ApplyPlan stacks a paid tier's allotment onto the user's subscription.
func (s *EntitlementService) ApplyPlan(ctx context.Context, userID string, plan models.PlanType, payment models.PaymentInfo) (*models.Subscription, error) {
	if _, ok := models.PlanAllotments[plan]; !ok {
		return nil, apperr.Validation("unknown plan type %q", plan)
	}
	sub, err := s.Store.ApplyPlan(ctx, userID, plan, payment)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	s.publish("subscription.upgraded", map[string]interface{}{
		"user_id":         userID,
		"subscription_id": sub.ID,
		"plan_type":       plan,
	})
	return sub, nil
}

// HandlePaymentSucceeded satisfies event.PaymentHandler: a confirmed
// payment tops up the user's subscription with the purchased plan.
func (s *EntitlementService) HandlePaymentSucceeded(ctx context.Context, userID string, plan models.PlanType, payment models.PaymentInfo) error {
	_, err := s.ApplyPlan(ctx, userID, plan, payment)
	return err
}

// Cancel deactivates the user's active subscription. Remaining quota on the
// row is kept but unreachable until a new plan reactivates it.
func (s *EntitlementService) Cancel(ctx context.Context, userID string) error {
	sub, err := s.GetActive(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.Store.Deactivate(ctx, sub.ID); err != nil {
		return apperr.Persistence(err)
	}
	s.publish("subscription.cancelled", map[string]interface{}{
		"user_id":         userID,
		"subscription_id": sub.ID,
	})
	return nil
}

func (s *EntitlementService) GetActive(ctx context.Context, userID string) (*models.Subscription, error) {
	sub, err := s.Store.FindActiveByUser(ctx, userID)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.SubscriptionNotFound()
	}
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	return sub, nil
}

func (s *EntitlementService) publish(eventType string, payload interface{}) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(eventType, payload); err != nil {
		log.Printf("failed to publish %s event: %v", eventType, err)
	}
}
