package models

import "time"

type PlanType string

const (
	PlanFree   PlanType = "Free"
	PlanBronze PlanType = "Bronze"
	PlanSilver PlanType = "Silver"
	PlanGold   PlanType = "Gold"
)

// PlanAllotment is the consumable top-up a paid plan grants. Applying a plan
// adds the allotment onto the existing counters; it never resets them.
type PlanAllotment struct {
	MockTests int
	AICredits int
}

var PlanAllotments = map[PlanType]PlanAllotment{
	PlanFree:   {MockTests: 0, AICredits: 0},
	PlanBronze: {MockTests: 5, AICredits: 100},
	PlanSilver: {MockTests: 10, AICredits: 300},
	PlanGold:   {MockTests: 15, AICredits: 700},
}

// QuotaKind selects which consumable counter an entitlement operation
// targets.
type QuotaKind string

const (
	QuotaAICredits QuotaKind = "aicredits"
	QuotaMockTests QuotaKind = "mock"
)

// CounterField maps a quota kind to its bson field on Subscription.
func (k QuotaKind) CounterField() string {
	if k == QuotaMockTests {
		return "mock_test_limit"
	}
	return "credits"
}

type PaymentInfo struct {
	TransactionID string  `bson:"transaction_id,omitempty" json:"transaction_id,omitempty"`
	Provider      string  `bson:"provider,omitempty" json:"provider,omitempty"`
	Amount        float64 `bson:"amount,omitempty" json:"amount,omitempty"`
	Currency      string  `bson:"currency,omitempty" json:"currency,omitempty"`
}

// Subscription is the per-user entitlement record. Counters are only ever
// mutated through atomic $inc updates; see repository.SubscriptionRepository.
type Subscription struct {
	ID            string      `bson:"_id,omitempty" json:"id"`
	UserID        string      `bson:"user_id" json:"user_id"`
	PlanType      PlanType    `bson:"plan_type" json:"plan_type"`
	IsActive      bool        `bson:"is_active" json:"is_active"`
	MockTestLimit int         `bson:"mock_test_limit" json:"mock_test_limit"`
	Credits       int         `bson:"credits" json:"credits"`
	StartedAt     time.Time   `bson:"started_at" json:"started_at"`
	ExpiresAt     *time.Time  `bson:"expires_at,omitempty" json:"expires_at,omitempty"`
	NoExpiration  bool        `bson:"no_expiration" json:"no_expiration"`
	PaymentInfo   PaymentInfo `bson:"payment_info,omitempty" json:"payment_info,omitempty"`
	UpdatedAt     time.Time   `bson:"updated_at" json:"updated_at"`
}

// ApplyPlan adds a plan's allotment onto the subscription counters and
// switches the plan type. Reapplying the same tier stacks another allotment.
func (s *Subscription) ApplyPlan(plan PlanType) {
	allot := PlanAllotments[plan]
	s.PlanType = plan
	s.MockTestLimit += allot.MockTests
	s.Credits += allot.AICredits
	s.IsActive = true
}
