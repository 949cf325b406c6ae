package models

import "time"

type QuestionType string

const (
	TypeSpeaking  QuestionType = "speaking"
	TypeWriting   QuestionType = "writing"
	TypeReading   QuestionType = "reading"
	TypeListening QuestionType = "listening"
)

type QuestionSubtype string

const (
	// Speaking
	SubtypeReadAloud           QuestionSubtype = "read_aloud"
	SubtypeRepeatSentence      QuestionSubtype = "repeat_sentence"
	SubtypeDescribeImage       QuestionSubtype = "describe_image"
	SubtypeRespondToSituation  QuestionSubtype = "respond_to_situation"
	SubtypeAnswerShortQuestion QuestionSubtype = "answer_short_question"

	// Writing
	SubtypeSummarizeWrittenText QuestionSubtype = "summarize_written_text"
	SubtypeWriteEmail           QuestionSubtype = "write_email"

	// Reading
	SubtypeRWFillInTheBlanks      QuestionSubtype = "rw_fill_in_the_blanks"
	SubtypeMcqMultiple            QuestionSubtype = "mcq_multiple"
	SubtypeReorderParagraphs      QuestionSubtype = "reorder_paragraphs"
	SubtypeReadingFillInTheBlanks QuestionSubtype = "reading_fill_in_the_blanks"
	SubtypeMcqSingle              QuestionSubtype = "mcq_single"

	// Listening
	SubtypeSummarizeSpokenText      QuestionSubtype = "summarize_spoken_text"
	SubtypeListeningFillInTheBlanks QuestionSubtype = "listening_fill_in_the_blanks"
	SubtypeListeningMcqMultiple     QuestionSubtype = "listening_multiple_choice_multiple_answers"
	SubtypeListeningMcqSingle       QuestionSubtype = "listening_multiple_choice_single_answers"
)

// subtypesByType drives creation-time validation: a question's subtype must
// belong to its skill type.
var subtypesByType = map[QuestionType][]QuestionSubtype{
	TypeSpeaking: {
		SubtypeReadAloud, SubtypeRepeatSentence, SubtypeDescribeImage,
		SubtypeRespondToSituation, SubtypeAnswerShortQuestion,
	},
	TypeWriting: {
		SubtypeSummarizeWrittenText, SubtypeWriteEmail,
	},
	TypeReading: {
		SubtypeRWFillInTheBlanks, SubtypeMcqMultiple, SubtypeReorderParagraphs,
		SubtypeReadingFillInTheBlanks, SubtypeMcqSingle,
	},
	TypeListening: {
		SubtypeSummarizeSpokenText, SubtypeListeningFillInTheBlanks,
		SubtypeListeningMcqMultiple, SubtypeListeningMcqSingle,
	},
}

func ValidSubtype(t QuestionType, s QuestionSubtype) bool {
	for _, st := range subtypesByType[t] {
		if st == s {
			return true
		}
	}
	return false
}

// SubjectiveSubtypes are scored by the external assessment adapter rather
// than the rule-based engine.
var SubjectiveSubtypes = map[QuestionSubtype]bool{
	SubtypeReadAloud:            true,
	SubtypeRepeatSentence:       true,
	SubtypeDescribeImage:        true,
	SubtypeRespondToSituation:   true,
	SubtypeAnswerShortQuestion:  true,
	SubtypeSummarizeWrittenText: true,
	SubtypeWriteEmail:           true,
	SubtypeSummarizeSpokenText:  true,
}

func (s QuestionSubtype) Subjective() bool {
	return SubjectiveSubtypes[s]
}

type Blank struct {
	Index         int      `bson:"index" json:"index"`
	Options       []string `bson:"options,omitempty" json:"options,omitempty"`
	CorrectAnswer string   `bson:"correct_answer" json:"correct_answer"`
}

type Question struct {
	ID                 string          `bson:"_id,omitempty" json:"id"`
	Type               QuestionType    `bson:"type" json:"type"`
	Subtype            QuestionSubtype `bson:"subtype" json:"subtype"`
	Heading            string          `bson:"heading,omitempty" json:"heading,omitempty"`
	Prompt             string          `bson:"prompt,omitempty" json:"prompt,omitempty"`
	Text               string          `bson:"text,omitempty" json:"text,omitempty"`
	AudioURL           string          `bson:"audio_url,omitempty" json:"audio_url,omitempty"`
	AudioConvertedText string          `bson:"audio_converted_text,omitempty" json:"audio_converted_text,omitempty"`
	ImageURL           string          `bson:"image_url,omitempty" json:"image_url,omitempty"`
	Blanks             []Blank         `bson:"blanks,omitempty" json:"blanks,omitempty"`
	Options            []string        `bson:"options,omitempty" json:"options,omitempty"`
	CorrectAnswers     []string        `bson:"correct_answers,omitempty" json:"correct_answers,omitempty"`
	CorrectText        string          `bson:"correct_text,omitempty" json:"correct_text,omitempty"`
	QuestionNumber     int64           `bson:"question_number,omitempty" json:"question_number,omitempty"`
	CreatedBy          string          `bson:"created_by,omitempty" json:"created_by,omitempty"`
	CreatedAt          time.Time       `bson:"created_at" json:"created_at"`
}

// ExpectedText returns the reference text the external assessment compares
// a spoken response against.
func (q *Question) ExpectedText() string {
	if q.AudioConvertedText != "" {
		return q.AudioConvertedText
	}
	return q.Prompt
}
