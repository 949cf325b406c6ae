package service

import (
	"context"
	"errors"
	"testing"

	"practice-service/internal/apperr"
	"practice-service/internal/assessment"
	"practice-service/internal/models"
	"practice-service/internal/scoring"

	"go.mongodb.org/mongo-driver/mongo"
)

type fakeQuestionStore struct {
	questions map[string]*models.Question
}

func (st *fakeQuestionStore) FindByID(ctx context.Context, id string) (*models.Question, error) {
	q, ok := st.questions[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return q, nil
}

// fakePracticeStore mirrors the repository's $addToSet semantics: marking
// the same question again leaves the set unchanged.
type fakePracticeStore struct {
	marked []string
	err    error
}

func (st *fakePracticeStore) MarkPracticed(ctx context.Context, userID string, qType models.QuestionType, subtype models.QuestionSubtype, questionID string) (*models.PracticeRecord, error) {
	if st.err != nil {
		return nil, st.err
	}
	seen := false
	for _, id := range st.marked {
		if id == questionID {
			seen = true
			break
		}
	}
	if !seen {
		st.marked = append(st.marked, questionID)
	}
	return &models.PracticeRecord{UserID: userID, QuestionType: qType, Subtype: subtype, PracticedQuestions: st.marked}, nil
}

type fakeAssessor struct {
	out *assessment.Outcome
	err error
}

func (a *fakeAssessor) Score(ctx context.Context, q *models.Question, sub assessment.Submission) (*assessment.Outcome, error) {
	return a.out, a.err
}

func newScoringFixture(credits int, questions ...*models.Question) (*ScoringService, *fakeSubStore, *fakePracticeStore) {
	subs := newFakeSubStore(&models.Subscription{
		ID: "s1", UserID: "u1", PlanType: models.PlanBronze, IsActive: true, Credits: credits,
	})
	qs := &fakeQuestionStore{questions: make(map[string]*models.Question)}
	for _, q := range questions {
		qs.questions[q.ID] = q
	}
	practice := &fakePracticeStore{}
	svc := NewScoringService(qs, practice, NewEntitlementService(subs, nil), &fakeAssessor{}, nil)
	return svc, subs, practice
}

func mcqSingleQuestion() *models.Question {
	return &models.Question{
		ID:             "q1",
		Type:           models.TypeReading,
		Subtype:        models.SubtypeMcqSingle,
		Options:        []string{"A", "B", "C"},
		CorrectAnswers: []string{"B"},
	}
}

func TestScoreAttemptObjective(t *testing.T) {
	svc, subs, practice := newScoringFixture(5, mcqSingleQuestion())

	out, err := svc.ScoreAttempt(context.Background(), "u1", "q1", scoring.Answer{Selections: []string{"B"}}, assessment.Submission{})
	if err != nil {
		t.Fatalf("ScoreAttempt failed: %v", err)
	}
	if out.Rule == nil || out.Assessed != nil {
		t.Fatal("objective attempt must carry a rule result only")
	}
	if out.Value() != 1 {
		t.Errorf("score = %v, want 1", out.Value())
	}
	if out.Subscription.ID != "s1" {
		t.Errorf("subscription = %s, want s1", out.Subscription.ID)
	}
	if got := subs.credits("u1"); got != 4 {
		t.Errorf("credits = %d, want 4 (one consumed)", got)
	}
	if len(practice.marked) != 1 || practice.marked[0] != "q1" {
		t.Errorf("practiced = %v, want [q1]", practice.marked)
	}
}

func TestScoreAttemptMarksPracticedOnce(t *testing.T) {
	svc, _, practice := newScoringFixture(5, mcqSingleQuestion())

	for i := 0; i < 2; i++ {
		if _, err := svc.ScoreAttempt(context.Background(), "u1", "q1", scoring.Answer{Selections: []string{"B"}}, assessment.Submission{}); err != nil {
			t.Fatalf("ScoreAttempt #%d failed: %v", i+1, err)
		}
	}
	if len(practice.marked) != 1 {
		t.Errorf("practiced set = %v, want exactly one entry after repeat attempts", practice.marked)
	}
}

func TestScoreAttemptSubjective(t *testing.T) {
	svc, subs, _ := newScoringFixture(5, &models.Question{
		ID: "q2", Type: models.TypeSpeaking, Subtype: models.SubtypeReadAloud, Prompt: "text",
	})
	svc.Assessor = &fakeAssessor{out: &assessment.Outcome{Score: 77, Detail: map[string]any{"fluency": 70.0}}}

	out, err := svc.ScoreAttempt(context.Background(), "u1", "q2", scoring.Answer{}, assessment.Submission{AudioBase64: "QUJD"})
	if err != nil {
		t.Fatalf("ScoreAttempt failed: %v", err)
	}
	if out.Assessed == nil || out.Rule != nil {
		t.Fatal("subjective attempt must carry an assessed outcome only")
	}
	if out.Value() != 77 {
		t.Errorf("score = %v, want 77", out.Value())
	}
	if got := subs.credits("u1"); got != 4 {
		t.Errorf("credits = %d, want 4", got)
	}
}

func TestScoreAttemptQuestionNotFound(t *testing.T) {
	svc, subs, _ := newScoringFixture(5)

	_, err := svc.ScoreAttempt(context.Background(), "u1", "missing", scoring.Answer{}, assessment.Submission{})
	if !apperr.IsCode(err, apperr.CodeNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
	if got := subs.credits("u1"); got != 5 {
		t.Errorf("credits = %d, want 5 (nothing debited before lookup)", got)
	}
}

func TestScoreAttemptRefusedWithoutQuota(t *testing.T) {
	svc, _, practice := newScoringFixture(0, mcqSingleQuestion())

	_, err := svc.ScoreAttempt(context.Background(), "u1", "q1", scoring.Answer{Selections: []string{"B"}}, assessment.Submission{})
	if !apperr.IsCode(err, apperr.CodeQuotaExhausted) {
		t.Fatalf("expected quota-exhausted, got %v", err)
	}
	if len(practice.marked) != 0 {
		t.Error("attempt must not be recorded when quota is exhausted")
	}
}

func TestScoreAttemptRefundsOnAssessorFailure(t *testing.T) {
	svc, subs, _ := newScoringFixture(5, &models.Question{
		ID: "q2", Type: models.TypeSpeaking, Subtype: models.SubtypeReadAloud, Prompt: "text",
	})
	svc.Assessor = &fakeAssessor{err: apperr.ScoringUnavailable(errors.New("provider down"))}

	_, err := svc.ScoreAttempt(context.Background(), "u1", "q2", scoring.Answer{}, assessment.Submission{AudioBase64: "QUJD"})
	if !apperr.IsCode(err, apperr.CodeScoringUnavailable) {
		t.Fatalf("expected scoring-unavailable, got %v", err)
	}
	if got := subs.credits("u1"); got != 5 {
		t.Errorf("credits = %d, want 5 (debit compensated)", got)
	}
}

func TestScoreAttemptRefundsOnInvalidAnswer(t *testing.T) {
	svc, subs, _ := newScoringFixture(5, mcqSingleQuestion())

	// Two selections on a single-answer question fails rule evaluation after
	// the debit; the credit must come back.
	_, err := svc.ScoreAttempt(context.Background(), "u1", "q1", scoring.Answer{Selections: []string{"A", "B"}}, assessment.Submission{})
	if !apperr.IsCode(err, apperr.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if got := subs.credits("u1"); got != 5 {
		t.Errorf("credits = %d, want 5 (debit compensated)", got)
	}
}

func TestScoreAttemptRefundsOnPracticeFailure(t *testing.T) {
	svc, subs, practice := newScoringFixture(5, mcqSingleQuestion())
	practice.err = errors.New("write failed")

	_, err := svc.ScoreAttempt(context.Background(), "u1", "q1", scoring.Answer{Selections: []string{"B"}}, assessment.Submission{})
	if !apperr.IsCode(err, apperr.CodePersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if got := subs.credits("u1"); got != 5 {
		t.Errorf("credits = %d, want 5 (debit compensated)", got)
	}
}
