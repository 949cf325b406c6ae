// Package scoring holds the rule-based evaluators for objective question
// subtypes. Every evaluator is a pure function over the question's answer
// key and the submitted response.
package scoring

import (
	"fmt"

	"practice-service/internal/apperr"
	"practice-service/internal/models"
)

// BlankAnswer is one submitted blank, addressed by the blank's index.
type BlankAnswer struct {
	Index          int    `json:"index"`
	SelectedAnswer string `json:"selectedAnswer"`
}

// Answer is the submitted payload. Which field is set depends on the
// subtype: Selections for MCQ variants, Blanks or Ordering for the
// positional types, Text for subjective submissions forwarded to the
// external adapter.
type Answer struct {
	Selections []string      `json:"answer,omitempty"`
	Blanks     []BlankAnswer `json:"blanks,omitempty"`
	Ordering   []string      `json:"ordering,omitempty"`
	Text       string        `json:"text,omitempty"`
}

// Result is the common evaluation outcome across subtypes.
type Result struct {
	Score         float64  `json:"score"`
	Total         int      `json:"total"`
	IsCorrect     *bool    `json:"isCorrect,omitempty"`
	AllCorrect    bool     `json:"correctAnswersGiven"`
	Feedback      string   `json:"feedback"`
	UserAnswer    []string `json:"userAnswer,omitempty"`
	CorrectAnswer []string `json:"correctAnswer,omitempty"`
}

// Evaluate dispatches to the subtype's evaluator. Subjective subtypes are
// not handled here; callers route those through the assessment adapter.
func Evaluate(q *models.Question, ans Answer) (*Result, error) {
	switch q.Subtype {
	case models.SubtypeMcqMultiple:
		return EvaluateMcqMultiple(q, ans.Selections), nil
	case models.SubtypeMcqSingle:
		if len(ans.Selections) != 1 {
			return nil, apperr.Validation("exactly one answer is required")
		}
		return EvaluateMcqSingle(q, ans.Selections[0]), nil
	case models.SubtypeReadingFillInTheBlanks, models.SubtypeRWFillInTheBlanks:
		return EvaluateFillInTheBlanks(q, ans.Blanks), nil
	case models.SubtypeListeningFillInTheBlanks:
		return EvaluateListeningFillInTheBlanks(q, ans.Ordering), nil
	case models.SubtypeReorderParagraphs:
		return EvaluateReorderParagraphs(q, ans.Ordering), nil
	case models.SubtypeListeningMcqMultiple:
		return EvaluateListeningMcqMultiple(q, ans.Selections), nil
	case models.SubtypeListeningMcqSingle:
		return EvaluateListeningMcqSingle(q, ans.Selections)
	default:
		return nil, apperr.Validation("subtype %s is not scored by the rule engine", q.Subtype)
	}
}

// matchCount counts the distinct submitted answers that are members of the
// correct-answer set. Duplicates in the submission count once, so the score
// can never exceed the size of the answer key.
func matchCount(submitted, correct []string) int {
	correctSet := make(map[string]bool, len(correct))
	for _, c := range correct {
		correctSet[c] = true
	}
	count := 0
	for _, a := range submitted {
		if correctSet[a] {
			count++
			delete(correctSet, a)
		}
	}
	return count
}

// EvaluateMcqMultiple scores a multiple-answer MCQ as the number of
// submitted selections found in the correct-answer set. There is no penalty
// for wrong extras beyond not counting them.
func EvaluateMcqMultiple(q *models.Question, selections []string) *Result {
	score := matchCount(selections, q.CorrectAnswers)
	total := len(q.CorrectAnswers)
	return &Result{
		Score:      float64(score),
		Total:      total,
		AllCorrect: score == total,
		Feedback:   fmt.Sprintf("You scored %d out of %d.", score, total),
	}
}

// EvaluateMcqSingle scores a single-answer MCQ as 1 or 0. The answer key is
// guaranteed a single element at question-creation time.
func EvaluateMcqSingle(q *models.Question, answer string) *Result {
	isCorrect := false
	for _, c := range q.CorrectAnswers {
		if c == answer {
			isCorrect = true
			break
		}
	}
	score := 0.0
	feedback := "Incorrect answer!"
	if isCorrect {
		score = 1
		feedback = "Correct answer!"
	}
	return &Result{
		Score:      score,
		Total:      1,
		IsCorrect:  &isCorrect,
		AllCorrect: isCorrect,
		Feedback:   feedback,
	}
}

// EvaluateFillInTheBlanks matches each submitted blank against the stored
// blank with the same index; only exact string equality counts.
func EvaluateFillInTheBlanks(q *models.Question, blanks []BlankAnswer) *Result {
	byIndex := make(map[int]string, len(q.Blanks))
	for _, b := range q.Blanks {
		byIndex[b.Index] = b.CorrectAnswer
	}

	score := 0
	seen := make(map[int]bool, len(blanks))
	for _, ub := range blanks {
		if seen[ub.Index] {
			continue
		}
		seen[ub.Index] = true
		if correct, ok := byIndex[ub.Index]; ok && correct == ub.SelectedAnswer {
			score++
		}
	}

	total := len(q.Blanks)
	return &Result{
		Score:      float64(score),
		Total:      total,
		AllCorrect: score == total,
		Feedback:   fmt.Sprintf("You scored %d out of %d.", score, total),
	}
}

// EvaluateListeningFillInTheBlanks matches submitted answers positionally
// against the question's blanks list.
func EvaluateListeningFillInTheBlanks(q *models.Question, answers []string) *Result {
	score := 0
	for i, userAnswer := range answers {
		if i >= len(q.Blanks) {
			break
		}
		if q.Blanks[i].CorrectAnswer != "" && q.Blanks[i].CorrectAnswer == userAnswer {
			score++
		}
	}

	total := len(q.Blanks)
	return &Result{
		Score:      float64(score),
		Total:      total,
		AllCorrect: score == total,
		Feedback:   fmt.Sprintf("You scored %d out of %d.", score, total),
	}
}

// EvaluateReorderParagraphs counts positions where the submitted ordering
// matches the canonical ordering. This is deliberately a positional
// comparison, not an edit distance: one transposition costs two points.
func EvaluateReorderParagraphs(q *models.Question, ordering []string) *Result {
	correct := q.Options
	score := 0
	for i, userAnswer := range ordering {
		if i < len(correct) && userAnswer == correct[i] {
			score++
		}
	}

	total := len(correct)
	return &Result{
		Score:         float64(score),
		Total:         total,
		AllCorrect:    score == total,
		Feedback:      fmt.Sprintf("You scored %d out of %d points.", score, total),
		UserAnswer:    ordering,
		CorrectAnswer: correct,
	}
}

// EvaluateListeningMcqMultiple scores like mcq_multiple.
func EvaluateListeningMcqMultiple(q *models.Question, selections []string) *Result {
	return EvaluateMcqMultiple(q, selections)
}

// EvaluateListeningMcqSingle rejects submissions with more than one
// selection, then scores by membership.
func EvaluateListeningMcqSingle(q *models.Question, selections []string) (*Result, error) {
	if len(selections) > 1 {
		return nil, apperr.Validation("multiple answers are not allowed")
	}
	score := matchCount(selections, q.CorrectAnswers)
	total := len(q.CorrectAnswers)
	return &Result{
		Score:      float64(score),
		Total:      total,
		AllCorrect: score == total,
		Feedback:   fmt.Sprintf("You scored %d out of %d.", score, total),
	}, nil
}
