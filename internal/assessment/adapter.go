package assessment

import (
	"context"
	"strings"

	"practice-service/internal/apperr"
	"practice-service/internal/models"
)

// Submission carries the learner's answer for a subjective question. Spoken
// subtypes fill the audio fields; written subtypes fill Text. For
// answer_short_question Text holds the transcript of the spoken answer.
type Submission struct {
	AudioBase64 string
	AudioFormat string
	Accent      string
	Text        string
}

// Outcome is the reduced result of an external assessment: the single score
// recorded against the attempt plus the per-dimension breakdown returned to
// the client.
type Outcome struct {
	Score  float64
	Detail map[string]any
}

// Adapter routes subjective submissions to the external assessors and
// reduces their responses to an Outcome.
type Adapter struct {
	Speech *SpeechClient
	Rubric *RubricClient
}

func NewAdapter(speech *SpeechClient, rubric *RubricClient) *Adapter {
	return &Adapter{Speech: speech, Rubric: rubric}
}

// Score assesses a submission for q. The assessors being unreachable or
// returning an unparseable payload surfaces as a scoring-unavailable error;
// individual malformed sub-fields inside an otherwise valid speech payload
// default to zero instead.
func (ad *Adapter) Score(ctx context.Context, q *models.Question, sub Submission) (*Outcome, error) {
	switch q.Subtype {
	case models.SubtypeReadAloud:
		return ad.scoreReadAloud(ctx, q, sub)
	case models.SubtypeRepeatSentence:
		return ad.scoreRepeatSentence(ctx, q, sub)
	case models.SubtypeRespondToSituation, models.SubtypeDescribeImage:
		return ad.scoreRespondToSituation(ctx, q, sub)
	case models.SubtypeAnswerShortQuestion:
		return ad.scoreShortAnswer(ctx, q, sub)
	case models.SubtypeSummarizeWrittenText:
		return ad.scoreWrittenSummary(ctx, q, sub)
	case models.SubtypeWriteEmail:
		return ad.scoreEmail(ctx, q, sub)
	case models.SubtypeSummarizeSpokenText:
		return ad.scoreSpokenSummary(ctx, q, sub)
	default:
		return nil, apperr.Validation("subtype %q is not scored externally", q.Subtype)
	}
}

func (ad *Adapter) assess(ctx context.Context, q *models.Question, sub Submission) (*SpeechAssessment, error) {
	if strings.TrimSpace(sub.AudioBase64) == "" {
		return nil, apperr.Validation("audio is required")
	}
	accent := sub.Accent
	if accent == "" {
		accent = "us"
	}
	format := sub.AudioFormat
	if format == "" {
		format = "mp3"
	}
	a, err := ad.Speech.Assess(ctx, sub.AudioBase64, format, q.ExpectedText(), accent)
	if err != nil {
		return nil, apperr.ScoringUnavailable(err)
	}
	return a, nil
}

func (ad *Adapter) scoreReadAloud(ctx context.Context, q *models.Question, sub Submission) (*Outcome, error) {
	a, err := ad.assess(ctx, q, sub)
	if err != nil {
		return nil, err
	}

	speaking := a.Number("overall", "overall_score")
	reading := a.Number("reading", "accuracy")
	good, average, bad := WordBuckets(a.WordScores(), 90, 60)

	return &Outcome{
		Score: ReduceReadAloud(speaking, reading),
		Detail: map[string]any{
			"speakingScore": speaking,
			"readingScore":  reading,
			"content":       a.Number("metadata", "content_relevance"),
			"fluency":       a.Number("fluency", "overall_score"),
			"pronunciation": a.Number("pronunciation", "overall_score"),
			"goodWords":     good,
			"averageWords":  average,
			"badWords":      bad,
		},
	}, nil
}

func (ad *Adapter) scoreRespondToSituation(ctx context.Context, q *models.Question, sub Submission) (*Outcome, error) {
	a, err := ad.assess(ctx, q, sub)
	if err != nil {
		return nil, err
	}

	speaking := a.Number("overall", "overall_score")
	fluency := a.Number("fluency", "overall_score")
	pronunciation := a.Number("pronunciation", "overall_score")
	good, average, bad := WordBuckets(a.WordScores(), 90, 60)

	return &Outcome{
		Score: ReduceRespondToSituation(speaking, fluency, pronunciation),
		Detail: map[string]any{
			"speakingScore": speaking,
			"content":       a.Number("metadata", "content_relevance"),
			"fluency":       fluency,
			"pronunciation": pronunciation,
			"goodWords":     good,
			"averageWords":  average,
			"badWords":      bad,
		},
	}, nil
}

func (ad *Adapter) scoreRepeatSentence(ctx context.Context, q *models.Question, sub Submission) (*Outcome, error) {
	a, err := ad.assess(ctx, q, sub)
	if err != nil {
		return nil, err
	}

	speaking := a.Number("overall", "english_proficiency_scores", "mock_pte", "prediction")
	content := a.Number("metadata", "content_relevance") / 100
	listening := RepeatSentenceListening(
		a.Number("fluency", "english_proficiency_scores", "mock_pte", "prediction"), content)
	good, average, bad := WordBuckets(a.WordScores(), 85, 60)

	return &Outcome{
		// Pronunciation-based speaking prediction is the recorded score.
		Score: speaking,
		Detail: map[string]any{
			"speakingScore":  speaking,
			"listeningScore": listening,
			"content":        content,
			"fluency":        a.Number("fluency", "overall_score"),
			"pronunciation":  a.Number("pronunciation", "overall_score"),
			"predictedText":  a.String("metadata", "predicted_text"),
			"totalWords":     a.Number("reading", "words_read"),
			"goodWords":      good,
			"averageWords":   average,
			"badWords":       bad,
		},
	}, nil
}

func (ad *Adapter) scoreShortAnswer(ctx context.Context, q *models.Question, sub Submission) (*Outcome, error) {
	if strings.TrimSpace(sub.Text) == "" {
		return nil, apperr.Validation("answer transcript is required")
	}
	s, err := ad.Rubric.ScoreShortAnswer(ctx, q.ExpectedText(), sub.Text)
	if err != nil {
		return nil, apperr.ScoringUnavailable(err)
	}
	return &Outcome{
		Score: ReduceShortAnswer(s.Speaking, s.Listening),
		Detail: map[string]any{
			"speaking":       s.Speaking,
			"listening":      s.Listening,
			"enablingSkills": s.EnablingSkills,
			"fluency":        s.Fluency,
			"pronunciation":  s.Pronunciation,
		},
	}, nil
}

func (ad *Adapter) scoreWrittenSummary(ctx context.Context, q *models.Question, sub Submission) (*Outcome, error) {
	if strings.TrimSpace(sub.Text) == "" {
		return nil, apperr.Validation("summary text is required")
	}
	s, err := ad.Rubric.ScoreWrittenSummary(ctx, q.Prompt, sub.Text)
	if err != nil {
		return nil, apperr.ScoringUnavailable(err)
	}
	return &Outcome{
		Score: s.Score,
		Detail: map[string]any{
			"score":           s.Score,
			"content":         s.Content,
			"grammar":         s.Grammar,
			"form":            s.Form,
			"vocabularyRange": s.VocabularyRange,
			"feedback":        s.Feedback,
		},
	}, nil
}

func (ad *Adapter) scoreEmail(ctx context.Context, q *models.Question, sub Submission) (*Outcome, error) {
	if strings.TrimSpace(sub.Text) == "" {
		return nil, apperr.Validation("email text is required")
	}
	s, err := ad.Rubric.ScoreEmail(ctx, q.Prompt, sub.Text)
	if err != nil {
		return nil, apperr.ScoringUnavailable(err)
	}
	return &Outcome{
		Score: s.Score,
		Detail: map[string]any{
			"score":           s.Score,
			"content":         s.Content,
			"grammar":         s.Grammar,
			"spelling":        s.Spelling,
			"form":            s.Form,
			"organization":    s.Organization,
			"emailConvention": s.EmailConvention,
			"vocabularyRange": s.VocabularyRange,
			"feedback":        s.Feedback,
		},
	}, nil
}

func (ad *Adapter) scoreSpokenSummary(ctx context.Context, q *models.Question, sub Submission) (*Outcome, error) {
	if strings.TrimSpace(sub.Text) == "" {
		return nil, apperr.Validation("summary text is required")
	}
	s, err := ad.Rubric.ScoreSpokenSummary(ctx, q.ExpectedText(), sub.Text)
	if err != nil {
		return nil, apperr.ScoringUnavailable(err)
	}
	return &Outcome{
		Score: s.TotalScore,
		Detail: map[string]any{
			"scores":     s.Scores,
			"totalScore": s.TotalScore,
			"wordCount":  s.WordCount,
			"feedback":   s.Feedback,
		},
	}, nil
}
