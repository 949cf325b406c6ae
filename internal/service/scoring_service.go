package service

import (
	"context"
	"log"

	"practice-service/internal/apperr"
	"practice-service/internal/assessment"
	"practice-service/internal/models"
	"practice-service/internal/scoring"

	"go.mongodb.org/mongo-driver/mongo"
)

type QuestionStore interface {
	FindByID(ctx context.Context, id string) (*models.Question, error)
}

type PracticeStore interface {
	MarkPracticed(ctx context.Context, userID string, qType models.QuestionType, subtype models.QuestionSubtype, questionID string) (*models.PracticeRecord, error)
}

// Assessor scores subjective submissions; assessment.Adapter satisfies it.
type Assessor interface {
	Score(ctx context.Context, q *models.Question, sub assessment.Submission) (*assessment.Outcome, error)
}

// AttemptScore is the result of one scored attempt. Exactly one of Rule and
// Assessed is set, depending on whether the subtype is objective.
type AttemptScore struct {
	Question     *models.Question
	Subscription *models.Subscription
	Rule         *scoring.Result
	Assessed     *assessment.Outcome
}

// Value is the single score recorded against the attempt.
func (a *AttemptScore) Value() float64 {
	if a.Assessed != nil {
		return a.Assessed.Score
	}
	if a.Rule != nil {
		return a.Rule.Score
	}
	return 0
}

// ScoringService runs the attempt pipeline: gate quota, score, record
// practice. Quota is debited before scoring so it is reserved against
// concurrent use; any failure after the debit is compensated with a credit.
type ScoringService struct {
	Questions    QuestionStore
	Practice     PracticeStore
	Entitlements *EntitlementService
	Assessor     Assessor
	Events       Publisher
}

func NewScoringService(questions QuestionStore, practice PracticeStore, entitlements *EntitlementService, assessor Assessor, events Publisher) *ScoringService {
	return &ScoringService{
		Questions:    questions,
		Practice:     practice,
		Entitlements: entitlements,
		Assessor:     assessor,
		Events:       events,
	}
}

// ScoreAttempt evaluates a submitted answer for a question, consuming one AI
// credit. After the debit exactly one of two things happens: the scored
// attempt is recorded, or the credit is returned.
func (s *ScoringService) ScoreAttempt(ctx context.Context, userID, questionID string, ans scoring.Answer, sub assessment.Submission) (*AttemptScore, error) {
	q, err := s.Questions.FindByID(ctx, questionID)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NotFound("Question not found")
	}
	if err != nil {
		return nil, apperr.Persistence(err)
	}

	debited, err := s.Entitlements.CheckAndDebit(ctx, userID, models.QuotaAICredits)
	if err != nil {
		return nil, err
	}

	out := &AttemptScore{Question: q, Subscription: debited}
	if q.Subtype.Subjective() {
		out.Assessed, err = s.Assessor.Score(ctx, q, sub)
	} else {
		out.Rule, err = scoring.Evaluate(q, ans)
	}
	if err != nil {
		s.Compensate(ctx, debited.ID, models.QuotaAICredits)
		return nil, err
	}

	if _, perr := s.Practice.MarkPracticed(ctx, userID, q.Type, q.Subtype, q.ID); perr != nil {
		s.Compensate(ctx, debited.ID, models.QuotaAICredits)
		return nil, apperr.Persistence(perr)
	}

	s.publish("attempt.scored", map[string]interface{}{
		"user_id":     userID,
		"question_id": q.ID,
		"subtype":     q.Subtype,
		"score":       out.Value(),
	})
	return out, nil
}

// Compensate returns a debited unit after downstream failure. A failed
// credit leaves the ledger short by one unit with no automatic retry, so it
// is logged loudly for manual reconciliation.
func (s *ScoringService) Compensate(ctx context.Context, subscriptionID string, kind models.QuotaKind) {
	if err := s.Entitlements.Credit(ctx, subscriptionID, kind); err != nil {
		log.Printf("FATAL: refund of %s on subscription %s failed, manual reconciliation required: %v", kind, subscriptionID, err)
	}
}

func (s *ScoringService) publish(eventType string, payload interface{}) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(eventType, payload); err != nil {
		log.Printf("failed to publish %s event: %v", eventType, err)
	}
}
