package assessment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// RubricClient scores free-text answers against a task rubric through a
// chat-completions endpoint.
type RubricClient struct {
	Client  *http.Client
	BaseURL string
	APIKey  string
	Model   string
}

func NewRubricClient(baseURL, apiKey, model string, timeout time.Duration) *RubricClient {
	return &RubricClient{
		Client:  &http.Client{Timeout: timeout},
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   model,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *RubricClient) complete(ctx context.Context, system, user string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0.3,
		MaxTokens:   500,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("rubric request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("rubric read failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("rubric returned status %d: %s", resp.StatusCode, raw)
	}

	var cr chatResponse
	if err := json.Unmarshal(raw, &cr); err != nil {
		return "", fmt.Errorf("rubric returned unparseable payload: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("rubric returned no choices")
	}
	return cr.Choices[0].Message.Content, nil
}

// WrittenSummaryScore is the rubric for summarize_written_text, out of 7.
type WrittenSummaryScore struct {
	Score           float64 `json:"score"`
	Content         float64 `json:"content"`
	Grammar         float64 `json:"grammar"`
	Form            float64 `json:"form"`
	VocabularyRange float64 `json:"vocabularyRange"`
	Feedback        string  `json:"feedback"`
}

const writtenSummarySystem = "You are an expert at evaluating summaries of written texts."

func writtenSummaryPrompt(original, summary string) string {
	return fmt.Sprintf(`You are an expert at evaluating summaries of written texts. Below is the original paragraph and the summary written by the user.

Original Paragraph:
%s

User's Summary:
%s

Please evaluate the user's summary and provide a score out of 7 in the following categories:
- Content (0-2)
- Grammar (0-2)
- Form (0-1)
- Vocabulary Range (0-2)

Return the result in exactly the following format with no additional commentary. Do not change the labels or the order.

Score: X/7
Enabling Skills:
Content: X/2
Grammar: X/2
Form: X/1
Vocabulary Range: X/2

Feedback: Your feedback goes here`, original, summary)
}

var (
	reScore7  = regexp.MustCompile(`(?i)Score:\s*([\d.]+)\s*/\s*7`)
	reContent = regexp.MustCompile(`(?i)Content:\s*([\d.]+)\s*/\s*2`)
	reGrammar = regexp.MustCompile(`(?i)Grammar:\s*([\d.]+)\s*/\s*2`)
	reForm    = regexp.MustCompile(`(?i)Form:\s*([\d.]+)\s*/\s*1`)
	reVocab   = regexp.MustCompile(`(?i)Vocabulary Range:\s*([\d.]+)\s*/\s*2`)
	reFeed    = regexp.MustCompile(`(?is)Feedback:\s*(.*)`)
)

// ScoreWrittenSummary evaluates a summarize_written_text answer. The score
// is the rubric's /7 value verbatim.
func (c *RubricClient) ScoreWrittenSummary(ctx context.Context, original, summary string) (*WrittenSummaryScore, error) {
	text, err := c.complete(ctx, writtenSummarySystem, writtenSummaryPrompt(original, summary))
	if err != nil {
		return nil, err
	}
	return ParseWrittenSummary(text)
}

func ParseWrittenSummary(text string) (*WrittenSummaryScore, error) {
	score := reScore7.FindStringSubmatch(text)
	content := reContent.FindStringSubmatch(text)
	grammar := reGrammar.FindStringSubmatch(text)
	form := reForm.FindStringSubmatch(text)
	vocab := reVocab.FindStringSubmatch(text)
	if score == nil || content == nil || grammar == nil || form == nil || vocab == nil {
		return nil, fmt.Errorf("incomplete rubric response: %q", text)
	}

	out := &WrittenSummaryScore{
		Score:           parseFloat(score[1]),
		Content:         parseFloat(content[1]),
		Grammar:         parseFloat(grammar[1]),
		Form:            parseFloat(form[1]),
		VocabularyRange: parseFloat(vocab[1]),
		Feedback:        "No feedback provided.",
	}
	if fb := reFeed.FindStringSubmatch(text); fb != nil {
		out.Feedback = strings.TrimSpace(fb[1])
	}
	return out, nil
}

// EmailScore is the rubric for write_email, out of 15 with seven enabling
// skill sub-scores.
type EmailScore struct {
	Score           float64 `json:"score"`
	Content         float64 `json:"content"`
	Grammar         float64 `json:"grammar"`
	Spelling        float64 `json:"spelling"`
	Form            float64 `json:"form"`
	Organization    float64 `json:"organization"`
	EmailConvention float64 `json:"emailConvention"`
	VocabularyRange float64 `json:"vocabularyRange"`
	Feedback        string  `json:"feedback"`
}

func emailPrompt(prompt, answer string) string {
	return fmt.Sprintf(`You are an expert at evaluating emails written for a given situation. Below is the situation prompt and the email written by the user.

Situation:
%s

User's Email:
%s

Please evaluate the user's email and provide a score out of 15 in the following categories:
- Content (0-3)
- Grammar (0-2)
- Spelling (0-2)
- Form (0-2)
- Organization (0-2)
- Email Convention (0-2)
- Vocabulary Range (0-2)

Return the result in exactly the following format with no additional commentary. Do not change the labels or the order.

Score: X/15
Enabling Skills:
Content: X/3
Grammar: X/2
Spelling: X/2
Form: X/2
Organization: X/2
Email Convention: X/2
Vocabulary Range: X/2

Feedback: Your feedback goes here`, prompt, answer)
}

var reEmail = regexp.MustCompile(`(?is)Score:\s*(\d+(?:\.\d+)?)\s*/\s*15\s*Enabling Skills:\s*Content:\s*([\d.]+)\s*/\s*3\s*Grammar:\s*([\d.]+)\s*/\s*2\s*Spelling:\s*([\d.]+)\s*/\s*2\s*Form:\s*([\d.]+)\s*/\s*2\s*Organization:\s*([\d.]+)\s*/\s*2\s*Email Convention:\s*([\d.]+)\s*/\s*2\s*Vocabulary Range:\s*([\d.]+)\s*/\s*2\s*Feedback:\s*(.+)`)

// ScoreEmail evaluates a write_email answer. The score is the rubric's /15
// value verbatim.
func (c *RubricClient) ScoreEmail(ctx context.Context, prompt, answer string) (*EmailScore, error) {
	text, err := c.complete(ctx, writtenSummarySystem, emailPrompt(prompt, answer))
	if err != nil {
		return nil, err
	}
	return ParseEmail(text)
}

func ParseEmail(text string) (*EmailScore, error) {
	m := reEmail.FindStringSubmatch(text)
	if m == nil {
		return nil, fmt.Errorf("incomplete rubric response: %q", text)
	}
	return &EmailScore{
		Score:           parseFloat(m[1]),
		Content:         parseFloat(m[2]),
		Grammar:         parseFloat(m[3]),
		Spelling:        parseFloat(m[4]),
		Form:            parseFloat(m[5]),
		Organization:    parseFloat(m[6]),
		EmailConvention: parseFloat(m[7]),
		VocabularyRange: parseFloat(m[8]),
		Feedback:        strings.TrimSpace(m[9]),
	}, nil
}

// SpokenSummaryScore is the rubric for summarize_spoken_text, out of 10.
type SpokenSummaryScore struct {
	Scores struct {
		Content    float64 `json:"content"`
		Form       float64 `json:"form"`
		Grammar    float64 `json:"grammar"`
		Vocabulary float64 `json:"vocabulary"`
		Coherence  float64 `json:"coherence"`
	} `json:"scores"`
	TotalScore float64 `json:"total_score"`
	WordCount  int     `json:"word_count"`
	Feedback   struct {
		Strengths    string `json:"strengths"`
		Improvements string `json:"improvements"`
		Overall      string `json:"overall"`
	} `json:"feedback"`
}

const spokenSummarySystem = "You are an expert language assessor specializing in the 'Summarize Spoken Text' task. Provide accurate, fair, and constructive assessments."

func spokenSummaryPrompt(transcript, summary string) string {
	return fmt.Sprintf(`TASK: Evaluate how well the user's summary captures the key information from the original recording's transcript.

ORIGINAL TRANSCRIPT:
"%s"

USER'S SUMMARY:
"%s"

SCORING CRITERIA (Total: 10 points):
1. Content (0-2 points)
2. Form (0-2 points): single sentence between 5-75 words
3. Grammar (0-2 points)
4. Vocabulary (0-2 points)
5. Coherence (0-2 points)

Format your response as JSON:
{
  "scores": {"content": 0, "form": 0, "grammar": 0, "vocabulary": 0, "coherence": 0},
  "total_score": 0,
  "word_count": 0,
  "feedback": {"strengths": "...", "improvements": "...", "overall": "..."}
}`, transcript, summary)
}

// ScoreSpokenSummary evaluates a summarize_spoken_text answer. The score is
// the rubric's /10 value verbatim.
func (c *RubricClient) ScoreSpokenSummary(ctx context.Context, transcript, summary string) (*SpokenSummaryScore, error) {
	text, err := c.complete(ctx, spokenSummarySystem, spokenSummaryPrompt(transcript, summary))
	if err != nil {
		return nil, err
	}
	var out SpokenSummaryScore
	if err := json.Unmarshal([]byte(extractJSON(text)), &out); err != nil {
		return nil, fmt.Errorf("unparseable rubric response: %w", err)
	}
	return &out, nil
}

// ShortAnswerScore is the rubric for answer_short_question. Speaking and
// Listening are in [0,1].
type ShortAnswerScore struct {
	Speaking       float64 `json:"Speaking"`
	Listening      float64 `json:"Listening"`
	EnablingSkills string  `json:"EnablingSkills"`
	Fluency        float64 `json:"Fluency"`
	Pronunciation  float64 `json:"Pronunciation"`
}

const shortAnswerSystem = "You are an expert language assessor evaluating user responses based on several criteria."

func shortAnswerPrompt(question, answer string) string {
	return fmt.Sprintf(`Evaluate the speaking and listening abilities of a user based on a question prompt and their response.

**Question:**
"%s"

**User's Answer:**
"%s"

Score Speaking out of 1 (content, relevance, clarity), Listening out of 1 (how well the user understood the question), mark EnablingSkills YES or NO, and score Fluency and Pronunciation out of 1 each.

Format your response as JSON exactly like this:
{
    "Speaking": 0,
    "Listening": 0,
    "EnablingSkills": "[YES/NO]",
    "Fluency": 0,
    "Pronunciation": 0
}`, question, answer)
}

// ScoreShortAnswer evaluates an answer_short_question transcript.
func (c *RubricClient) ScoreShortAnswer(ctx context.Context, question, answer string) (*ShortAnswerScore, error) {
	text, err := c.complete(ctx, shortAnswerSystem, shortAnswerPrompt(question, answer))
	if err != nil {
		return nil, err
	}
	var out ShortAnswerScore
	if err := json.Unmarshal([]byte(extractJSON(text)), &out); err != nil {
		return nil, fmt.Errorf("unparseable rubric response: %w", err)
	}
	return &out, nil
}

// extractJSON trims any prose the model wrapped around the JSON object.
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return text[start : end+1]
	}
	return text
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
