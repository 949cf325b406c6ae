package assessment

import "testing"

func TestParseWrittenSummary(t *testing.T) {
	text := `Score: 5.5/7
Enabling Skills:
Content: 2/2
Grammar: 1.5/2
Form: 1/1
Vocabulary Range: 1/2

Feedback: Good coverage of the main points, minor grammar slips.`

	got, err := ParseWrittenSummary(text)
	if err != nil {
		t.Fatalf("ParseWrittenSummary failed: %v", err)
	}
	if got.Score != 5.5 {
		t.Errorf("score = %v, want 5.5", got.Score)
	}
	if got.Content != 2 || got.Grammar != 1.5 || got.Form != 1 || got.VocabularyRange != 1 {
		t.Errorf("sub-scores = %v/%v/%v/%v", got.Content, got.Grammar, got.Form, got.VocabularyRange)
	}
	if got.Feedback != "Good coverage of the main points, minor grammar slips." {
		t.Errorf("feedback = %q", got.Feedback)
	}
}

func TestParseWrittenSummaryIncomplete(t *testing.T) {
	if _, err := ParseWrittenSummary("Sorry, I cannot evaluate this."); err == nil {
		t.Fatal("expected error for incomplete rubric response")
	}
}

func TestParseWrittenSummaryMissingFeedback(t *testing.T) {
	text := `Score: 4/7
Content: 1/2
Grammar: 1/2
Form: 1/1
Vocabulary Range: 1/2`

	got, err := ParseWrittenSummary(text)
	if err != nil {
		t.Fatalf("ParseWrittenSummary failed: %v", err)
	}
	if got.Feedback != "No feedback provided." {
		t.Errorf("feedback = %q", got.Feedback)
	}
}

func TestParseEmail(t *testing.T) {
	text := `Score: 12/15
Enabling Skills:
Content: 3/3
Grammar: 1.5/2
Spelling: 2/2
Form: 2/2
Organization: 1.5/2
Email Convention: 1/2
Vocabulary Range: 1/2

Feedback: Well structured email with a clear request.`

	got, err := ParseEmail(text)
	if err != nil {
		t.Fatalf("ParseEmail failed: %v", err)
	}
	if got.Score != 12 {
		t.Errorf("score = %v, want 12", got.Score)
	}
	if got.Content != 3 || got.Spelling != 2 || got.EmailConvention != 1 {
		t.Errorf("sub-scores = %v/%v/%v", got.Content, got.Spelling, got.EmailConvention)
	}
	if got.Feedback != "Well structured email with a clear request." {
		t.Errorf("feedback = %q", got.Feedback)
	}
}

func TestParseEmailIncomplete(t *testing.T) {
	if _, err := ParseEmail("Score: 12/15"); err == nil {
		t.Fatal("expected error for incomplete rubric response")
	}
}

func TestExtractJSON(t *testing.T) {
	wrapped := "Here is the evaluation:\n```json\n{\"total_score\": 8}\n```\nHope this helps."
	if got := extractJSON(wrapped); got != `{"total_score": 8}` {
		t.Errorf("extractJSON = %q", got)
	}
	if got := extractJSON("no braces here"); got != "no braces here" {
		t.Errorf("extractJSON fallback = %q", got)
	}
}
