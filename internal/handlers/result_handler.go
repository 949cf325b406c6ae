package handlers

import (
	"net/http"

	"practice-service/internal/apperr"
	"practice-service/internal/assessment"
	"practice-service/internal/middleware"
	"practice-service/internal/scoring"
	"practice-service/internal/service"

	"github.com/gin-gonic/gin"
)

// ResultHandler scores practice submissions outside of mock tests.
type ResultHandler struct {
	Scoring *service.ScoringService
}

func NewResultHandler(s *service.ScoringService) *ResultHandler {
	return &ResultHandler{Scoring: s}
}

// submitRequest carries every answer shape; each subtype reads the fields
// it needs. Spoken subtypes submit audio, written ones text, objective ones
// selections, blanks or an ordering.
type submitRequest struct {
	QuestionID  string                `json:"question_id" binding:"required"`
	Selections  []string              `json:"selections"`
	Blanks      []scoring.BlankAnswer `json:"blanks"`
	Ordering    []string              `json:"ordering"`
	Text        string                `json:"text"`
	AudioBase64 string                `json:"audio_base64"`
	AudioFormat string                `json:"audio_format"`
	Accent      string                `json:"accent"`
}

func (r *submitRequest) answer() scoring.Answer {
	return scoring.Answer{
		Selections: r.Selections,
		Blanks:     r.Blanks,
		Ordering:   r.Ordering,
		Text:       r.Text,
	}
}

func (r *submitRequest) submission() assessment.Submission {
	return assessment.Submission{
		AudioBase64: r.AudioBase64,
		AudioFormat: r.AudioFormat,
		Accent:      r.Accent,
		Text:        r.Text,
	}
}

// SubmitResult scores a practice answer. One AI credit is consumed per
// successful evaluation.
func (h *ResultHandler) SubmitResult(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("invalid request body: %v", err))
		return
	}

	out, err := h.Scoring.ScoreAttempt(c.Request.Context(), middleware.UserID(c), req.QuestionID, req.answer(), req.submission())
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, attemptPayload(out))
}

// attemptPayload renders an attempt score: the rule engine's result as-is,
// or the assessment breakdown with the reduced score folded in.
func attemptPayload(out *service.AttemptScore) interface{} {
	if out.Assessed != nil {
		data := gin.H{"score": out.Assessed.Score}
		for k, v := range out.Assessed.Detail {
			data[k] = v
		}
		return data
	}
	return out.Rule
}
