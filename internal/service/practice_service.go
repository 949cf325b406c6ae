package service

import (
	"context"

	"practice-service/internal/apperr"
	"practice-service/internal/models"
	"practice-service/internal/repository"
)

// SubtypeProgress summarizes how far a user is through one question bank.
type SubtypeProgress struct {
	QuestionType models.QuestionType    `json:"question_type"`
	Subtype      models.QuestionSubtype `json:"subtype"`
	Practiced    int                    `json:"practiced"`
}

type PracticeService struct {
	Repo *repository.PracticeRepository
}

func NewPracticeService(repo *repository.PracticeRepository) *PracticeService {
	return &PracticeService{Repo: repo}
}

// MarkPracticed records a question attempt; repeated and concurrent calls
// for the same question collapse into one entry.
func (s *PracticeService) MarkPracticed(ctx context.Context, userID string, qType models.QuestionType, subtype models.QuestionSubtype, questionID string) (*models.PracticeRecord, error) {
	rec, err := s.Repo.MarkPracticed(ctx, userID, qType, subtype, questionID)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	return rec, nil
}

// Progress lists per-subtype practiced counts across all of the user's
// records.
func (s *PracticeService) Progress(ctx context.Context, userID string) ([]SubtypeProgress, error) {
	records, err := s.Repo.FindAllByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Persistence(err)
	}

	progress := make([]SubtypeProgress, 0, len(records))
	for _, rec := range records {
		// The synthetic mock_test record tracks completions, not questions.
		if rec.QuestionType == "mock_test" {
			continue
		}
		progress = append(progress, SubtypeProgress{
			QuestionType: rec.QuestionType,
			Subtype:      rec.Subtype,
			Practiced:    len(rec.PracticedQuestions),
		})
	}
	return progress, nil
}

// CompletedMockTests returns the IDs of mock tests the user has finished.
func (s *PracticeService) CompletedMockTests(ctx context.Context, userID string) ([]string, error) {
	records, err := s.Repo.FindAllByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	var completed []string
	for _, rec := range records {
		completed = append(completed, rec.CompletedMockTests...)
	}
	return completed, nil
}
