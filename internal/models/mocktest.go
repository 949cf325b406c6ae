package models

import "time"

// MockTest is a bundle of question IDs attempted as one scored session.
type MockTest struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Duration  int       `bson:"duration" json:"duration"` // minutes
	Questions []string  `bson:"questions" json:"questions"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Contains reports whether the question belongs to this mock test.
func (m *MockTest) Contains(questionID string) bool {
	for _, id := range m.Questions {
		if id == questionID {
			return true
		}
	}
	return false
}
