package service

import (
	"context"
	"errors"
	"log"
	"time"

	"practice-service/internal/apperr"
	"practice-service/internal/assessment"
	"practice-service/internal/models"
	"practice-service/internal/repository"
	"practice-service/internal/scoring"

	"go.mongodb.org/mongo-driver/mongo"
)

type ResultStore interface {
	FindOrCreate(ctx context.Context, userID, mockTestID string) (*models.MockTestResult, error)
	Find(ctx context.Context, userID, mockTestID string) (*models.MockTestResult, error)
	SaveResults(ctx context.Context, res *models.MockTestResult) error
	FindAllByUser(ctx context.Context, userID string) ([]models.MockTestResult, error)
}

type MockTestStore interface {
	FindByID(ctx context.Context, id string) (*models.MockTest, error)
}

type CompletionStore interface {
	AddCompletedMockTest(ctx context.Context, userID, mockTestID string) error
}

type QuestionBatchStore interface {
	FindByIDs(ctx context.Context, ids []string) ([]models.Question, error)
}

// ResultService aggregates mock test attempts into per-skill and overall
// scores.
type ResultService struct {
	Results      ResultStore
	MockTests    MockTestStore
	Questions    QuestionBatchStore
	Practice     CompletionStore
	Scoring      *ScoringService
	Entitlements *EntitlementService
	Events       Publisher
}

func NewResultService(results ResultStore, mockTests MockTestStore, questions QuestionBatchStore, practice CompletionStore, scoringSvc *ScoringService, entitlements *EntitlementService, events Publisher) *ResultService {
	return &ResultService{
		Results:      results,
		MockTests:    mockTests,
		Questions:    questions,
		Practice:     practice,
		Scoring:      scoringSvc,
		Entitlements: entitlements,
		Events:       events,
	}
}

// Concurrent appends to the same result document retry on version conflict
// instead of racing into a stale average.
const maxRecordRetries = 5

// RecordAttempt appends a scored attempt to the user's result for the mock
// test and recomputes the skill average from the full attempt list. The
// append and recompute are written as one versioned update.
func (s *ResultService) RecordAttempt(ctx context.Context, userID, mockTestID string, q *models.Question, score float64) error {
	for i := 0; i < maxRecordRetries; i++ {
		res, err := s.Results.FindOrCreate(ctx, userID, mockTestID)
		if err != nil {
			return apperr.Persistence(err)
		}

		entry := res.SkillEntry(q.Type)
		entry.Attempts = append(entry.Attempts, models.Attempt{
			QuestionID:      q.ID,
			QuestionSubtype: q.Subtype,
			Score:           score,
			SubmittedAt:     time.Now(),
		})
		entry.Recompute()

		err = s.Results.SaveResults(ctx, res)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrVersionConflict) {
			return apperr.Persistence(err)
		}
	}
	return apperr.Persistence(repository.ErrVersionConflict)
}

// StartMockTest consumes one mock test attempt and returns the test with its
// questions.
func (s *ResultService) StartMockTest(ctx context.Context, userID, mockTestID string) (*models.MockTest, []models.Question, error) {
	mt, err := s.MockTests.FindByID(ctx, mockTestID)
	if err == mongo.ErrNoDocuments {
		return nil, nil, apperr.NotFound("Mock test not found")
	}
	if err != nil {
		return nil, nil, apperr.Persistence(err)
	}

	debited, err := s.Entitlements.CheckAndDebit(ctx, userID, models.QuotaMockTests)
	if err != nil {
		return nil, nil, err
	}

	questions, err := s.Questions.FindByIDs(ctx, mt.Questions)
	if err != nil {
		s.Scoring.Compensate(ctx, debited.ID, models.QuotaMockTests)
		return nil, nil, apperr.Persistence(err)
	}

	s.publish("mocktest.started", map[string]interface{}{
		"user_id":      userID,
		"mock_test_id": mockTestID,
	})
	return mt, questions, nil
}

// SubmitAttempt scores one question inside a mock test and folds the score
// into the aggregated result. A persistence failure after scoring refunds
// the AI credit consumed by the scoring step.
func (s *ResultService) SubmitAttempt(ctx context.Context, userID, mockTestID, questionID string, ans scoring.Answer, sub assessment.Submission) (*AttemptScore, error) {
	mt, err := s.MockTests.FindByID(ctx, mockTestID)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NotFound("Mock test not found")
	}
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	if !mt.Contains(questionID) {
		return nil, apperr.Validation("question does not belong to this mock test")
	}

	score, err := s.Scoring.ScoreAttempt(ctx, userID, questionID, ans, sub)
	if err != nil {
		return nil, err
	}

	if err := s.RecordAttempt(ctx, userID, mockTestID, score.Question, score.Value()); err != nil {
		s.Scoring.Compensate(ctx, score.Subscription.ID, models.QuotaAICredits)
		return nil, err
	}
	return score, nil
}

// FinalResult rolls the per-skill averages into the overall score and marks
// the mock test completed for the user. Skills without attempts stay out of
// the overall mean.
func (s *ResultService) FinalResult(ctx context.Context, userID, mockTestID string) (*models.FinalResult, error) {
	res, err := s.Results.Find(ctx, userID, mockTestID)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NotFound("No result found for this mock test")
	}
	if err != nil {
		return nil, apperr.Persistence(err)
	}

	final := res.ComputeFinal(time.Now())

	// Completion is a set-add; recomputing the final result twice is safe.
	if err := s.Practice.AddCompletedMockTest(ctx, userID, mockTestID); err != nil {
		return nil, apperr.Persistence(err)
	}

	s.publish("mocktest.completed", map[string]interface{}{
		"user_id":      userID,
		"mock_test_id": mockTestID,
		"total_score":  final.TotalScore,
	})
	return &final, nil
}

// History lists the user's mock test results, newest first.
func (s *ResultService) History(ctx context.Context, userID string) ([]models.MockTestResult, error) {
	results, err := s.Results.FindAllByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	return results, nil
}

func (s *ResultService) publish(eventType string, payload interface{}) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(eventType, payload); err != nil {
		log.Printf("failed to publish %s event: %v", eventType, err)
	}
}
