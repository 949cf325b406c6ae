package models

import (
	"math"
	"time"
)

type Attempt struct {
	QuestionID      string          `bson:"question_id" json:"question_id"`
	QuestionSubtype QuestionSubtype `bson:"question_subtype" json:"question_subtype"`
	Score           float64         `bson:"score" json:"score"`
	SubmittedAt     time.Time       `bson:"submitted_at" json:"submitted_at"`
}

// TypeScore collects the attempts of one skill within a mock test.
// AverageScore is derived: it is always recomputed from the full attempts
// list, never adjusted incrementally.
type TypeScore struct {
	Type         QuestionType `bson:"type" json:"type"`
	Attempts     []Attempt    `bson:"attempts" json:"attempts"`
	AverageScore float64      `bson:"average_score" json:"average_score"`
}

// Recompute sets AverageScore to the arithmetic mean of the attempt scores.
func (t *TypeScore) Recompute() {
	if len(t.Attempts) == 0 {
		t.AverageScore = 0
		return
	}
	var total float64
	for _, a := range t.Attempts {
		total += a.Score
	}
	t.AverageScore = total / float64(len(t.Attempts))
}

// MockTestResult is keyed by (user, mockTest) with a unique index. Version
// is bumped on every write so concurrent attempt appends can be retried
// instead of racing into a stale average.
type MockTestResult struct {
	ID         string      `bson:"_id,omitempty" json:"id"`
	UserID     string      `bson:"user_id" json:"user_id"`
	MockTestID string      `bson:"mock_test_id" json:"mock_test_id"`
	Results    []TypeScore `bson:"results" json:"results"`
	Version    int64       `bson:"version" json:"-"`
	CreatedAt  time.Time   `bson:"created_at" json:"created_at"`
}

// SkillEntry returns the TypeScore for a skill, creating it when the skill
// has not been attempted yet.
func (m *MockTestResult) SkillEntry(t QuestionType) *TypeScore {
	for i := range m.Results {
		if m.Results[i].Type == t {
			return &m.Results[i]
		}
	}
	m.Results = append(m.Results, TypeScore{Type: t})
	return &m.Results[len(m.Results)-1]
}

// FinalResult is the rolled-up mock test score. Skills without attempts are
// absent from the overall mean rather than pulled in as zeroes.
type FinalResult struct {
	Speaking   float64   `json:"speaking"`
	Listening  float64   `json:"listening"`
	Reading    float64   `json:"reading"`
	Writing    float64   `json:"writing"`
	TotalScore float64   `json:"totalScore"`
	TestDate   time.Time `json:"testDate"`
}

// ComputeFinal rolls per-skill averages into the overall score: the mean of
// the skills that have at least one attempt, rounded to 2 decimal places.
func (m *MockTestResult) ComputeFinal(now time.Time) FinalResult {
	final := FinalResult{TestDate: now}

	var sum float64
	var attempted int
	for _, r := range m.Results {
		if len(r.Attempts) == 0 {
			continue
		}
		switch r.Type {
		case TypeSpeaking:
			final.Speaking = r.AverageScore
		case TypeListening:
			final.Listening = r.AverageScore
		case TypeReading:
			final.Reading = r.AverageScore
		case TypeWriting:
			final.Writing = r.AverageScore
		}
		sum += r.AverageScore
		attempted++
	}
	if attempted > 0 {
		final.TotalScore = math.Round(sum/float64(attempted)*100) / 100
	}
	return final
}
