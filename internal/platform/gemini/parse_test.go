package gemini

import (
	"testing"

	"github.com/audifyai/callaudit-backend/internal/domain"
)

func TestParseVerdictWellFormed(t *testing.T) {
	text := "Verdict: Yes\nConfidence: 92%\nReasoning: The agent opened with a professional greeting and thanked the caller."
	verdict, confidence, reasoning := ParseVerdict(text)
	if verdict != domain.VerdictYes {
		t.Fatalf("verdict = %q", verdict)
	}
	if confidence != domain.ConfidenceHigh {
		t.Fatalf("confidence = %q", confidence)
	}
	if reasoning != "The agent opened with a professional greeting and thanked the caller." {
		t.Fatalf("reasoning = %q", reasoning)
	}
}

func TestParseVerdictWordConfidence(t *testing.T) {
	verdict, confidence, _ := ParseVerdict("Verdict: No\nConfidence: Medium\nReasoning: No greeting heard.")
	if verdict != domain.VerdictNo || confidence != domain.ConfidenceMedium {
		t.Fatalf("got %q/%q", verdict, confidence)
	}
}

func TestParseVerdictPartial(t *testing.T) {
	verdict, _, _ := ParseVerdict("Verdict: Partial\nConfidence: 60%\nReasoning: Greeting present but no company name.")
	if verdict != domain.VerdictPartial {
		t.Fatalf("verdict = %q", verdict)
	}
}

func TestParseVerdictSloppyOutput(t *testing.T) {
	verdict, confidence, reasoning := ParseVerdict("Yes, the agent greeted the customer warmly. I'd estimate about 75% certainty.")
	if verdict != domain.VerdictYes {
		t.Fatalf("verdict = %q", verdict)
	}
	if confidence != domain.ConfidenceMedium {
		t.Fatalf("confidence = %q", confidence)
	}
	if reasoning == "" {
		t.Fatalf("reasoning should fall back to the raw text")
	}
}

func TestBucketConfidence(t *testing.T) {
	cases := []struct {
		pct  int
		want domain.Confidence
	}{
		{0, domain.ConfidenceLow},
		{49, domain.ConfidenceLow},
		{50, domain.ConfidenceMedium},
		{79, domain.ConfidenceMedium},
		{80, domain.ConfidenceHigh},
		{100, domain.ConfidenceHigh},
	}
	for _, tc := range cases {
		if got := BucketConfidence(tc.pct); got != tc.want {
			t.Errorf("BucketConfidence(%d) = %q, want %q", tc.pct, got, tc.want)
		}
	}
}
