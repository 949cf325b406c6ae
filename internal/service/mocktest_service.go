package service

import (
	"context"

	"practice-service/internal/apperr"
	"practice-service/internal/models"
	"practice-service/internal/repository"

	"go.mongodb.org/mongo-driver/mongo"
)

type MockTestService struct {
	Repo      *repository.MockTestRepository
	Questions *repository.QuestionRepository
}

func NewMockTestService(repo *repository.MockTestRepository, questions *repository.QuestionRepository) *MockTestService {
	return &MockTestService{Repo: repo, Questions: questions}
}

func (s *MockTestService) Create(ctx context.Context, mt *models.MockTest) error {
	if mt.Name == "" {
		return apperr.Validation("name is required")
	}
	if mt.Duration <= 0 {
		return apperr.Validation("duration must be positive")
	}
	if len(mt.Questions) == 0 {
		return apperr.Validation("a mock test needs at least one question")
	}

	found, err := s.Questions.FindByIDs(ctx, mt.Questions)
	if err != nil {
		return apperr.Persistence(err)
	}
	if len(found) != len(mt.Questions) {
		return apperr.Validation("mock test references questions that do not exist")
	}

	if err := s.Repo.Create(ctx, mt); err != nil {
		return apperr.Persistence(err)
	}
	return nil
}

func (s *MockTestService) Get(ctx context.Context, id string) (*models.MockTest, error) {
	mt, err := s.Repo.FindByID(ctx, id)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NotFound("Mock test not found")
	}
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	return mt, nil
}

func (s *MockTestService) List(ctx context.Context, page, limit int) ([]models.MockTest, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	tests, total, err := s.Repo.FindAll(ctx, page, limit)
	if err != nil {
		return nil, 0, apperr.Persistence(err)
	}
	return tests, total, nil
}

func (s *MockTestService) Delete(ctx context.Context, id string) error {
	err := s.Repo.Delete(ctx, id)
	if err == mongo.ErrNoDocuments {
		return apperr.NotFound("Mock test not found")
	}
	if err != nil {
		return apperr.Persistence(err)
	}
	return nil
}
