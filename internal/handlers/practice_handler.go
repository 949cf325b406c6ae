package handlers

import (
	"net/http"

	"practice-service/internal/middleware"
	"practice-service/internal/service"

	"github.com/gin-gonic/gin"
)

type PracticeHandler struct {
	Service *service.PracticeService
}

func NewPracticeHandler(s *service.PracticeService) *PracticeHandler {
	return &PracticeHandler{Service: s}
}

func (h *PracticeHandler) GetProgress(c *gin.Context) {
	progress, err := h.Service.Progress(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, progress)
}

func (h *PracticeHandler) GetCompletedMockTests(c *gin.Context) {
	completed, err := h.Service.CompletedMockTests(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"completed_mock_tests": completed})
}
