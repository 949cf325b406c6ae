package service

import (
	"context"
	"sync"
	"testing"

	"practice-service/internal/apperr"
	"practice-service/internal/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// fakeSubStore mirrors the repository's conditional-decrement semantics in
// memory so debit/credit behavior can be exercised without Mongo.
type fakeSubStore struct {
	mu   sync.Mutex
	subs map[string]*models.Subscription // keyed by user ID
}

func newFakeSubStore(subs ...*models.Subscription) *fakeSubStore {
	st := &fakeSubStore{subs: make(map[string]*models.Subscription)}
	for _, s := range subs {
		st.subs[s.UserID] = s
	}
	return st
}

func (st *fakeSubStore) counter(s *models.Subscription, kind models.QuotaKind) *int {
	if kind == models.QuotaMockTests {
		return &s.MockTestLimit
	}
	return &s.Credits
}

func (st *fakeSubStore) Debit(ctx context.Context, userID string, kind models.QuotaKind) (*models.Subscription, bool, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.subs[userID]
	if !ok || !s.IsActive || *st.counter(s, kind) <= 0 {
		return nil, false, nil
	}
	*st.counter(s, kind)--
	cp := *s
	return &cp, true, nil
}

func (st *fakeSubStore) CreditByID(ctx context.Context, id string, kind models.QuotaKind) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	for _, s := range st.subs {
		if s.ID == id {
			*st.counter(s, kind)++
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

func (st *fakeSubStore) FindActiveByUser(ctx context.Context, userID string) (*models.Subscription, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.subs[userID]
	if !ok || !s.IsActive {
		return nil, mongo.ErrNoDocuments
	}
	cp := *s
	return &cp, nil
}

func (st *fakeSubStore) ApplyPlan(ctx context.Context, userID string, plan models.PlanType, payment models.PaymentInfo) (*models.Subscription, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.subs[userID]
	if !ok {
		s = &models.Subscription{ID: "sub-" + userID, UserID: userID, PlanType: models.PlanFree, IsActive: true}
		st.subs[userID] = s
	}
	s.ApplyPlan(plan)
	s.PaymentInfo = payment
	cp := *s
	return &cp, nil
}

func (st *fakeSubStore) Deactivate(ctx context.Context, id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	for _, s := range st.subs {
		if s.ID == id {
			s.IsActive = false
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

func (st *fakeSubStore) credits(userID string) int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.subs[userID].Credits
}

func (st *fakeSubStore) mockTests(userID string) int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.subs[userID].MockTestLimit
}

// recordingPublisher captures event types for assertion.
type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(eventType string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
	return nil
}

func (p *recordingPublisher) has(eventType string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range p.events {
		if e == eventType {
			return true
		}
	}
	return false
}

func TestCheckAndDebitConsumesOneCredit(t *testing.T) {
	store := newFakeSubStore(&models.Subscription{
		ID: "s1", UserID: "u1", PlanType: models.PlanBronze, IsActive: true, Credits: 3,
	})
	events := &recordingPublisher{}
	svc := NewEntitlementService(store, events)

	sub, err := svc.CheckAndDebit(context.Background(), "u1", models.QuotaAICredits)
	if err != nil {
		t.Fatalf("CheckAndDebit failed: %v", err)
	}
	if sub.ID != "s1" {
		t.Errorf("debited subscription = %s, want s1", sub.ID)
	}
	if got := store.credits("u1"); got != 2 {
		t.Errorf("credits after debit = %d, want 2", got)
	}
	if !events.has("quota.debited") {
		t.Error("expected quota.debited event")
	}
}

func TestCheckAndDebitLastUnitRace(t *testing.T) {
	store := newFakeSubStore(&models.Subscription{
		ID: "s1", UserID: "u1", PlanType: models.PlanBronze, IsActive: true, Credits: 1,
	})
	svc := NewEntitlementService(store, nil)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CheckAndDebit(context.Background(), "u1", models.QuotaAICredits)
		}(i)
	}
	wg.Wait()

	var succeeded, exhausted int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case apperr.IsCode(err, apperr.CodeQuotaExhausted):
			exhausted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 || exhausted != 1 {
		t.Errorf("succeeded=%d exhausted=%d, want exactly one of each", succeeded, exhausted)
	}
	if got := store.credits("u1"); got != 0 {
		t.Errorf("credits = %d, want 0 (never negative)", got)
	}
}

func TestCheckAndDebitClassification(t *testing.T) {
	tests := []struct {
		name string
		subs []*models.Subscription
		want apperr.Code
	}{
		{
			name: "no active subscription",
			subs: nil,
			want: apperr.CodeSubscriptionNotFound,
		},
		{
			name: "inactive subscription",
			subs: []*models.Subscription{{ID: "s1", UserID: "u1", PlanType: models.PlanBronze, Credits: 5}},
			want: apperr.CodeSubscriptionNotFound,
		},
		{
			name: "free plan out of credits",
			subs: []*models.Subscription{{ID: "s1", UserID: "u1", PlanType: models.PlanFree, IsActive: true}},
			want: apperr.CodeUpgradeRequired,
		},
		{
			name: "paid plan out of credits",
			subs: []*models.Subscription{{ID: "s1", UserID: "u1", PlanType: models.PlanGold, IsActive: true}},
			want: apperr.CodeQuotaExhausted,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewEntitlementService(newFakeSubStore(tt.subs...), nil)
			_, err := svc.CheckAndDebit(context.Background(), "u1", models.QuotaAICredits)
			if !apperr.IsCode(err, tt.want) {
				t.Errorf("error = %v, want code %s", err, tt.want)
			}
		})
	}
}

func TestCreditRestoresDebitedUnit(t *testing.T) {
	store := newFakeSubStore(&models.Subscription{
		ID: "s1", UserID: "u1", PlanType: models.PlanSilver, IsActive: true, Credits: 10,
	})
	events := &recordingPublisher{}
	svc := NewEntitlementService(store, events)

	sub, err := svc.CheckAndDebit(context.Background(), "u1", models.QuotaAICredits)
	if err != nil {
		t.Fatalf("CheckAndDebit failed: %v", err)
	}
	if err := svc.Credit(context.Background(), sub.ID, models.QuotaAICredits); err != nil {
		t.Fatalf("Credit failed: %v", err)
	}
	if got := store.credits("u1"); got != 10 {
		t.Errorf("credits after refund = %d, want 10", got)
	}
	if !events.has("quota.refunded") {
		t.Error("expected quota.refunded event")
	}
}

func TestApplyPlanStacksAllotments(t *testing.T) {
	store := newFakeSubStore(&models.Subscription{
		ID: "s1", UserID: "u1", PlanType: models.PlanFree, IsActive: true, MockTestLimit: 1, Credits: 2,
	})
	svc := NewEntitlementService(store, nil)

	sub, err := svc.ApplyPlan(context.Background(), "u1", models.PlanBronze, models.PaymentInfo{TransactionID: "tx1"})
	if err != nil {
		t.Fatalf("ApplyPlan failed: %v", err)
	}
	if sub.PlanType != models.PlanBronze {
		t.Errorf("plan = %s, want Bronze", sub.PlanType)
	}
	if sub.MockTestLimit != 6 || sub.Credits != 102 {
		t.Errorf("counters = %d/%d, want 6/102 (allotment adds, never resets)", sub.MockTestLimit, sub.Credits)
	}

	sub, err = svc.ApplyPlan(context.Background(), "u1", models.PlanBronze, models.PaymentInfo{TransactionID: "tx2"})
	if err != nil {
		t.Fatalf("second ApplyPlan failed: %v", err)
	}
	if sub.MockTestLimit != 11 || sub.Credits != 202 {
		t.Errorf("counters = %d/%d, want 11/202 after restacking", sub.MockTestLimit, sub.Credits)
	}
}

func TestApplyPlanRejectsUnknownPlan(t *testing.T) {
	svc := NewEntitlementService(newFakeSubStore(), nil)
	_, err := svc.ApplyPlan(context.Background(), "u1", models.PlanType("Platinum"), models.PaymentInfo{})
	if !apperr.IsCode(err, apperr.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCancelDeactivatesSubscription(t *testing.T) {
	store := newFakeSubStore(&models.Subscription{
		ID: "s1", UserID: "u1", PlanType: models.PlanBronze, IsActive: true, Credits: 3,
	})
	svc := NewEntitlementService(store, nil)

	if err := svc.Cancel(context.Background(), "u1"); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if _, err := svc.GetActive(context.Background(), "u1"); !apperr.IsCode(err, apperr.CodeSubscriptionNotFound) {
		t.Fatalf("expected no active subscription after cancel, got %v", err)
	}
	_, err := svc.CheckAndDebit(context.Background(), "u1", models.QuotaAICredits)
	if !apperr.IsCode(err, apperr.CodeSubscriptionNotFound) {
		t.Fatalf("expected debit to fail after cancel, got %v", err)
	}
}

func TestGetActiveNotFound(t *testing.T) {
	svc := NewEntitlementService(newFakeSubStore(), nil)
	_, err := svc.GetActive(context.Background(), "nobody")
	if !apperr.IsCode(err, apperr.CodeSubscriptionNotFound) {
		t.Fatalf("expected subscription-not-found, got %v", err)
	}
}
