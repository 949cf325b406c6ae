package handlers

import (
	"net/http"
	"strconv"

	"practice-service/internal/apperr"
	"practice-service/internal/middleware"
	"practice-service/internal/models"
	"practice-service/internal/service"

	"github.com/gin-gonic/gin"
)

type MockTestHandler struct {
	Tests   *service.MockTestService
	Results *service.ResultService
}

func NewMockTestHandler(tests *service.MockTestService, results *service.ResultService) *MockTestHandler {
	return &MockTestHandler{Tests: tests, Results: results}
}

func (h *MockTestHandler) CreateMockTest(c *gin.Context) {
	var mt models.MockTest
	if err := c.ShouldBindJSON(&mt); err != nil {
		respondError(c, apperr.Validation("invalid request body: %v", err))
		return
	}
	if err := h.Tests.Create(c.Request.Context(), &mt); err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, mt)
}

func (h *MockTestHandler) ListMockTests(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	tests, total, err := h.Tests.List(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{
		"mock_tests": tests,
		"total":      total,
		"page":       page,
	})
}

func (h *MockTestHandler) GetMockTest(c *gin.Context) {
	mt, err := h.Tests.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, mt)
}

func (h *MockTestHandler) DeleteMockTest(c *gin.Context) {
	if err := h.Tests.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"message": "deleted"})
}

// StartMockTest consumes one mock test attempt and returns the test with
// its questions.
func (h *MockTestHandler) StartMockTest(c *gin.Context) {
	mt, questions, err := h.Results.StartMockTest(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{
		"mock_test": mt,
		"questions": questions,
	})
}

// SubmitAttempt scores one question inside a mock test and folds the score
// into the per-skill result.
func (h *MockTestHandler) SubmitAttempt(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("invalid request body: %v", err))
		return
	}

	out, err := h.Results.SubmitAttempt(c.Request.Context(), middleware.UserID(c), c.Param("id"), req.QuestionID, req.answer(), req.submission())
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, attemptPayload(out))
}

// GetResultHistory lists the user's mock test results, newest first.
func (h *MockTestHandler) GetResultHistory(c *gin.Context) {
	results, err := h.Results.History(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, results)
}

// GetFinalResult rolls up the per-skill averages and marks the mock test
// completed.
func (h *MockTestHandler) GetFinalResult(c *gin.Context) {
	final, err := h.Results.FinalResult(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, final)
}
