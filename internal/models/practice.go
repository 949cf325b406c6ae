package models

import "time"

// PracticeRecord tracks which questions a user has already attempted for one
// (user, questionType, subtype) key. practicedQuestions has set semantics:
// re-adding an existing ID is a no-op, enforced with $addToSet upserts under
// a unique index on the key.
type PracticeRecord struct {
	ID                 string          `bson:"_id,omitempty" json:"id"`
	UserID             string          `bson:"user_id" json:"user_id"`
	QuestionType       QuestionType    `bson:"question_type" json:"question_type"`
	Subtype            QuestionSubtype `bson:"subtype" json:"subtype"`
	PracticedQuestions []string        `bson:"practiced_questions" json:"practiced_questions"`
	CompletedMockTests []string        `bson:"completed_mock_tests,omitempty" json:"completed_mock_tests,omitempty"`
	CreatedAt          time.Time       `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time       `bson:"updated_at" json:"updated_at"`
}
