package gemini

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/audifyai/callaudit-backend/internal/domain"
)

var (
	verdictRe    = regexp.MustCompile(`(?im)^\s*verdict\s*:\s*(yes|no|partial)\b`)
	percentRe    = regexp.MustCompile(`(\d{1,3})\s*%`)
	confWordRe   = regexp.MustCompile(`(?im)^\s*confidence\s*:\s*(low|medium|high)\b`)
	reasoningRe  = regexp.MustCompile(`(?is)reasoning\s*:\s*(.+)$`)
	verdictWords = map[string]domain.Verdict{
		"yes":     domain.VerdictYes,
		"no":      domain.VerdictNo,
		"partial": domain.VerdictPartial,
	}
)

// ParseVerdict extracts verdict, confidence, and reasoning from the model's
// free text. The prompt asks for an exact "Verdict / Confidence / Reasoning"
// layout but the model does not always comply, so parsing falls back to
// keyword scanning rather than failing.
func ParseVerdict(text string) (domain.Verdict, domain.Confidence, string) {
	verdict := parseVerdictWord(text)
	confidence := parseConfidence(text)
	reasoning := parseReasoning(text)
	return verdict, confidence, reasoning
}

func parseVerdictWord(text string) domain.Verdict {
	if m := verdictRe.FindStringSubmatch(text); m != nil {
		return verdictWords[strings.ToLower(m[1])]
	}
	lower := strings.ToLower(text)
	// Order matters: "partial" often co-occurs with "yes"/"no" phrasing.
	if strings.Contains(lower, "partial") {
		return domain.VerdictPartial
	}
	if strings.Contains(lower, "yes") {
		return domain.VerdictYes
	}
	if strings.Contains(lower, "no") {
		return domain.VerdictNo
	}
	return domain.VerdictNo
}

func parseConfidence(text string) domain.Confidence {
	if m := confWordRe.FindStringSubmatch(text); m != nil {
		switch strings.ToLower(m[1]) {
		case "high":
			return domain.ConfidenceHigh
		case "medium":
			return domain.ConfidenceMedium
		default:
			return domain.ConfidenceLow
		}
	}
	if m := percentRe.FindStringSubmatch(text); m != nil {
		pct, err := strconv.Atoi(m[1])
		if err == nil {
			return BucketConfidence(pct)
		}
	}
	return domain.ConfidenceLow
}

// BucketConfidence maps a 0-100 self-reported score into the three-level
// confidence scale used everywhere downstream.
func BucketConfidence(pct int) domain.Confidence {
	switch {
	case pct >= 80:
		return domain.ConfidenceHigh
	case pct >= 50:
		return domain.ConfidenceMedium
	default:
		return domain.ConfidenceLow
	}
}

func parseReasoning(text string) string {
	if m := reasoningRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	// No labeled reasoning: keep the lines that are not verdict/confidence
	// boilerplate so the operator still sees something.
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		lower := strings.ToLower(trimmed)
		if strings.HasPrefix(lower, "verdict") || strings.HasPrefix(lower, "confidence") {
			continue
		}
		kept = append(kept, trimmed)
	}
	if len(kept) == 0 {
		return strings.TrimSpace(text)
	}
	return strings.Join(kept, " ")
}
