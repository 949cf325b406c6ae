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

type QuestionHandler struct {
	Service *service.QuestionService
}

func NewQuestionHandler(s *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{Service: s}
}

func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	var question models.Question
	if err := c.ShouldBindJSON(&question); err != nil {
		respondError(c, apperr.Validation("invalid request body: %v", err))
		return
	}
	question.CreatedBy = middleware.UserID(c)

	if err := h.Service.Create(c.Request.Context(), &question); err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, question)
}

func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	question, err := h.Service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, question)
}

func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	subtype := models.QuestionSubtype(c.Param("subtype"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	questions, total, err := h.Service.List(c.Request.Context(), subtype, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{
		"questions": questions,
		"total":     total,
		"page":      page,
	})
}

// ListUnpracticed serves questions the user has not attempted yet for one
// subtype.
func (h *QuestionHandler) ListUnpracticed(c *gin.Context) {
	qType := models.QuestionType(c.Param("type"))
	subtype := models.QuestionSubtype(c.Param("subtype"))
	if !models.ValidSubtype(qType, subtype) {
		respondError(c, apperr.Validation("subtype %q does not belong to type %q", subtype, qType))
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	questions, err := h.Service.ListUnpracticed(c.Request.Context(), middleware.UserID(c), qType, subtype, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, questions)
}

func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	var update map[string]interface{}
	if err := c.ShouldBindJSON(&update); err != nil {
		respondError(c, apperr.Validation("invalid request body: %v", err))
		return
	}
	if err := h.Service.Update(c.Request.Context(), c.Param("id"), update); err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"message": "updated"})
}

func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	if err := h.Service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"message": "deleted"})
}
