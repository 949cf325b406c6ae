package assessment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// SpeechClient calls the external speech-assessment API. The provider
// returns nested JSON sub-scores; extraction is tolerant because individual
// fields missing or of the wrong type must degrade the score, not fail the
// request.
type SpeechClient struct {
	Client  *http.Client
	BaseURL string
	APIKey  string
}

func NewSpeechClient(baseURL, apiKey string, timeout time.Duration) *SpeechClient {
	return &SpeechClient{
		Client:  &http.Client{Timeout: timeout},
		BaseURL: baseURL,
		APIKey:  apiKey,
	}
}

type speechRequest struct {
	AudioBase64  string `json:"audio_base64"`
	AudioFormat  string `json:"audio_format"`
	ExpectedText string `json:"expected_text"`
}

// SpeechAssessment is the raw provider payload, kept as a generic document
// so malformed sub-fields can be defaulted individually.
type SpeechAssessment struct {
	doc map[string]any
}

// Assess submits scripted speech for assessment. accent selects the
// provider's scoring model (e.g. "us", "uk").
func (c *SpeechClient) Assess(ctx context.Context, audioBase64, audioFormat, expectedText, accent string) (*SpeechAssessment, error) {
	body, err := json.Marshal(speechRequest{
		AudioBase64:  audioBase64,
		AudioFormat:  audioFormat,
		ExpectedText: expectedText,
	})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/speech-assessment/scripted/%s", c.BaseURL, accent)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("api-key", c.APIKey)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("speech assessment request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("speech assessment read failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("speech assessment returned status %d: %s", resp.StatusCode, raw)
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("speech assessment returned unparseable payload: %w", err)
	}
	return &SpeechAssessment{doc: doc}, nil
}

// Number walks the nested path and returns the numeric leaf, defaulting to
// 0 (with a server-side log line) when the field is missing or not a
// number.
func (a *SpeechAssessment) Number(path ...string) float64 {
	var cur any = a.doc
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			log.Printf("speech assessment: missing field %v, defaulting to 0", path)
			return 0
		}
		cur = m[key]
	}
	n, ok := cur.(float64)
	if !ok {
		log.Printf("speech assessment: non-numeric field %v, defaulting to 0", path)
		return 0
	}
	return n
}

// String is like Number for string leaves, defaulting to "".
func (a *SpeechAssessment) String(path ...string) string {
	var cur any = a.doc
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return ""
		}
		cur = m[key]
	}
	s, _ := cur.(string)
	return s
}

// WordScores returns each recognized word's pronunciation score, or nil
// when the provider omitted per-word detail.
func (a *SpeechAssessment) WordScores() []float64 {
	pron, ok := a.doc["pronunciation"].(map[string]any)
	if !ok {
		return nil
	}
	words, ok := pron["words"].([]any)
	if !ok {
		return nil
	}
	scores := make([]float64, 0, len(words))
	for _, w := range words {
		wm, ok := w.(map[string]any)
		if !ok {
			continue
		}
		score, _ := wm["word_score"].(float64)
		scores = append(scores, score)
	}
	return scores
}

// NewAssessmentFromDoc builds an assessment directly from a decoded
// document. Used by tests and by adapters that receive the payload from a
// queue instead of the HTTP client.
func NewAssessmentFromDoc(doc map[string]any) *SpeechAssessment {
	return &SpeechAssessment{doc: doc}
}
