package service

import (
	"context"
	"math/rand"

	"practice-service/internal/apperr"
	"practice-service/internal/models"
	"practice-service/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type QuestionService struct {
	Repo     *repository.QuestionRepository
	Practice *repository.PracticeRepository
}

func NewQuestionService(repo *repository.QuestionRepository, practice *repository.PracticeRepository) *QuestionService {
	return &QuestionService{Repo: repo, Practice: practice}
}

// Create validates and stores an authored question. Answer-key shape is
// enforced here so the scoring engine can assume well-formed keys.
func (s *QuestionService) Create(ctx context.Context, q *models.Question) error {
	if !models.ValidSubtype(q.Type, q.Subtype) {
		return apperr.Validation("subtype %q does not belong to type %q", q.Subtype, q.Type)
	}

	switch q.Subtype {
	case models.SubtypeMcqSingle, models.SubtypeListeningMcqSingle:
		if len(q.CorrectAnswers) != 1 {
			return apperr.Validation("single-answer questions need exactly one correct answer")
		}
		if len(q.Options) == 0 {
			return apperr.Validation("options are required")
		}
	case models.SubtypeMcqMultiple, models.SubtypeListeningMcqMultiple:
		if len(q.Options) == 0 || len(q.CorrectAnswers) == 0 {
			return apperr.Validation("options and correct answers are required")
		}
	case models.SubtypeReorderParagraphs:
		// options holds the canonical paragraph order; it doubles as the
		// answer key.
		if len(q.Options) < 2 {
			return apperr.Validation("reorder questions need at least two paragraphs")
		}
	case models.SubtypeReadingFillInTheBlanks, models.SubtypeRWFillInTheBlanks,
		models.SubtypeListeningFillInTheBlanks:
		// All fill-in-the-blank variants score against the blanks list.
		if len(q.Blanks) == 0 {
			return apperr.Validation("blanks are required")
		}
		for _, b := range q.Blanks {
			if b.CorrectAnswer == "" {
				return apperr.Validation("blank %d is missing its correct answer", b.Index)
			}
		}
	}

	num, err := s.Repo.NextQuestionNumber(ctx, q.Subtype)
	if err != nil {
		return apperr.Persistence(err)
	}
	q.QuestionNumber = num

	if err := s.Repo.Create(ctx, q); err != nil {
		return apperr.Persistence(err)
	}
	return nil
}

// Get returns a question prepared for serving: reorder paragraphs come back
// shuffled so the canonical order is not leaked by position.
func (s *QuestionService) Get(ctx context.Context, id string) (*models.Question, error) {
	q, err := s.Repo.FindByID(ctx, id)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NotFound("Question not found")
	}
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	prepareForServing(q)
	return q, nil
}

func (s *QuestionService) List(ctx context.Context, subtype models.QuestionSubtype, page, limit int) ([]models.Question, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	questions, total, err := s.Repo.FindBySubtype(ctx, subtype, page, limit)
	if err != nil {
		return nil, 0, apperr.Persistence(err)
	}
	for i := range questions {
		prepareForServing(&questions[i])
	}
	return questions, total, nil
}

// ListUnpracticed serves fresh questions: those the user has not attempted
// for this subtype yet.
func (s *QuestionService) ListUnpracticed(ctx context.Context, userID string, qType models.QuestionType, subtype models.QuestionSubtype, limit int) ([]models.Question, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	practiced, err := s.Practice.PracticedIDs(ctx, userID, qType, subtype)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	questions, err := s.Repo.FindNotPracticed(ctx, subtype, practiced, limit)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	for i := range questions {
		prepareForServing(&questions[i])
	}
	return questions, nil
}

func (s *QuestionService) Update(ctx context.Context, id string, update map[string]interface{}) error {
	err := s.Repo.Update(ctx, id, bson.M(update))
	if err == mongo.ErrNoDocuments {
		return apperr.NotFound("Question not found")
	}
	if err != nil {
		return apperr.Persistence(err)
	}
	return nil
}

func (s *QuestionService) Delete(ctx context.Context, id string) error {
	err := s.Repo.Delete(ctx, id)
	if err == mongo.ErrNoDocuments {
		return apperr.NotFound("Question not found")
	}
	if err != nil {
		return apperr.Persistence(err)
	}
	return nil
}

// prepareForServing scrambles answer-key material that must not reach the
// client as-is. Reorder questions store the canonical paragraph order in
// options, so a shuffled copy is served instead.
func prepareForServing(q *models.Question) {
	if q.Subtype != models.SubtypeReorderParagraphs {
		return
	}
	shuffled := append([]string(nil), q.Options...)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	q.Options = shuffled
}
