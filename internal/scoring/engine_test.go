package scoring

import (
	"testing"

	"practice-service/internal/apperr"
	"practice-service/internal/models"
)

func TestEvaluateMcqMultiple(t *testing.T) {
	q := &models.Question{
		Subtype:        models.SubtypeMcqMultiple,
		CorrectAnswers: []string{"A", "B", "C"},
	}

	tests := []struct {
		name       string
		selections []string
		score      float64
		allCorrect bool
	}{
		{"all correct", []string{"A", "B", "C"}, 3, true},
		{"partial", []string{"A", "C"}, 2, false},
		{"wrong extras do not penalize", []string{"A", "B", "X", "Y"}, 2, false},
		{"duplicates count once", []string{"A", "A", "A"}, 1, false},
		{"none", []string{"X"}, 0, false},
		{"empty", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := EvaluateMcqMultiple(q, tt.selections)
			if res.Score != tt.score {
				t.Errorf("score = %v, want %v", res.Score, tt.score)
			}
			if res.Total != 3 {
				t.Errorf("total = %d, want 3", res.Total)
			}
			if res.AllCorrect != tt.allCorrect {
				t.Errorf("allCorrect = %v, want %v", res.AllCorrect, tt.allCorrect)
			}
		})
	}
}

func TestEvaluateMcqSingle(t *testing.T) {
	q := &models.Question{
		Subtype:        models.SubtypeMcqSingle,
		CorrectAnswers: []string{"B"},
	}

	res := EvaluateMcqSingle(q, "B")
	if res.Score != 1 || res.IsCorrect == nil || !*res.IsCorrect {
		t.Errorf("correct answer scored %v (isCorrect %v)", res.Score, res.IsCorrect)
	}
	if res.Feedback != "Correct answer!" {
		t.Errorf("feedback = %q", res.Feedback)
	}

	res = EvaluateMcqSingle(q, "A")
	if res.Score != 0 || res.IsCorrect == nil || *res.IsCorrect {
		t.Errorf("wrong answer scored %v (isCorrect %v)", res.Score, res.IsCorrect)
	}
	if res.Feedback != "Incorrect answer!" {
		t.Errorf("feedback = %q", res.Feedback)
	}
}

func TestEvaluateMcqSingleRequiresOneSelection(t *testing.T) {
	q := &models.Question{
		Subtype:        models.SubtypeMcqSingle,
		CorrectAnswers: []string{"B"},
	}

	_, err := Evaluate(q, Answer{Selections: []string{"A", "B"}})
	if !apperr.IsCode(err, apperr.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	_, err = Evaluate(q, Answer{})
	if !apperr.IsCode(err, apperr.CodeValidation) {
		t.Fatalf("expected validation error for empty submission, got %v", err)
	}
}

func TestEvaluateFillInTheBlanks(t *testing.T) {
	q := &models.Question{
		Subtype: models.SubtypeReadingFillInTheBlanks,
		Blanks: []models.Blank{
			{Index: 1, CorrectAnswer: "growth"},
			{Index: 2, CorrectAnswer: "decline"},
			{Index: 3, CorrectAnswer: "stable"},
		},
	}

	tests := []struct {
		name   string
		blanks []BlankAnswer
		score  float64
	}{
		{"all correct", []BlankAnswer{
			{Index: 1, SelectedAnswer: "growth"},
			{Index: 2, SelectedAnswer: "decline"},
			{Index: 3, SelectedAnswer: "stable"},
		}, 3},
		{"exact match only", []BlankAnswer{
			{Index: 1, SelectedAnswer: "Growth"},
			{Index: 2, SelectedAnswer: "decline"},
		}, 1},
		{"unknown index ignored", []BlankAnswer{
			{Index: 9, SelectedAnswer: "growth"},
		}, 0},
		{"duplicate index counts once", []BlankAnswer{
			{Index: 1, SelectedAnswer: "growth"},
			{Index: 1, SelectedAnswer: "growth"},
		}, 1},
		{"order does not matter", []BlankAnswer{
			{Index: 3, SelectedAnswer: "stable"},
			{Index: 1, SelectedAnswer: "growth"},
		}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := EvaluateFillInTheBlanks(q, tt.blanks)
			if res.Score != tt.score {
				t.Errorf("score = %v, want %v", res.Score, tt.score)
			}
			if res.Total != 3 {
				t.Errorf("total = %d, want 3", res.Total)
			}
		})
	}
}

func TestEvaluateListeningFillInTheBlanks(t *testing.T) {
	q := &models.Question{
		Subtype: models.SubtypeListeningFillInTheBlanks,
		Blanks: []models.Blank{
			{Index: 1, CorrectAnswer: "cold"},
			{Index: 2, CorrectAnswer: "winter"},
		},
	}

	res := EvaluateListeningFillInTheBlanks(q, []string{"cold", "winter"})
	if res.Score != 2 || !res.AllCorrect {
		t.Errorf("score = %v allCorrect = %v", res.Score, res.AllCorrect)
	}

	// Positional comparison: swapped answers both miss.
	res = EvaluateListeningFillInTheBlanks(q, []string{"winter", "cold"})
	if res.Score != 0 {
		t.Errorf("swapped answers scored %v, want 0", res.Score)
	}

	// Extra submitted answers beyond the blank count are ignored.
	res = EvaluateListeningFillInTheBlanks(q, []string{"cold", "winter", "extra"})
	if res.Score != 2 {
		t.Errorf("score = %v, want 2", res.Score)
	}
}

func TestEvaluateReorderParagraphs(t *testing.T) {
	q := &models.Question{
		Subtype: models.SubtypeReorderParagraphs,
		Options: []string{"A", "B", "C"},
	}

	tests := []struct {
		name     string
		ordering []string
		score    float64
	}{
		{"canonical order", []string{"A", "B", "C"}, 3},
		// Positional, not permutation distance: one transposition costs 2.
		{"single transposition", []string{"B", "A", "C"}, 1},
		{"full rotation", []string{"B", "C", "A"}, 0},
		{"partial submission", []string{"A"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := EvaluateReorderParagraphs(q, tt.ordering)
			if res.Score != tt.score {
				t.Errorf("score = %v, want %v", res.Score, tt.score)
			}
			if res.Total != 3 {
				t.Errorf("total = %d, want 3", res.Total)
			}
		})
	}

	res := EvaluateReorderParagraphs(q, []string{"B", "A", "C"})
	if len(res.UserAnswer) != 3 || len(res.CorrectAnswer) != 3 {
		t.Errorf("expected both orderings echoed back, got %v / %v", res.UserAnswer, res.CorrectAnswer)
	}
}

func TestEvaluateListeningMcqSingle(t *testing.T) {
	q := &models.Question{
		Subtype:        models.SubtypeListeningMcqSingle,
		CorrectAnswers: []string{"C"},
	}

	res, err := EvaluateListeningMcqSingle(q, []string{"C"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Score != 1 {
		t.Errorf("score = %v, want 1", res.Score)
	}

	_, err = EvaluateListeningMcqSingle(q, []string{"A", "C"})
	if !apperr.IsCode(err, apperr.CodeValidation) {
		t.Fatalf("expected validation error for multiple selections, got %v", err)
	}
}

func TestEvaluateDispatchRejectsSubjective(t *testing.T) {
	q := &models.Question{Subtype: models.SubtypeReadAloud}
	_, err := Evaluate(q, Answer{})
	if !apperr.IsCode(err, apperr.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
