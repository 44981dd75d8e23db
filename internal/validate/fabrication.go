package validate

import (
	"strings"

	"talkdoc/internal/artifact"
	"talkdoc/internal/textmetrics"
)

// Fabrication verifies that every metric's supporting quote appears verbatim
// in the transcript. Both sides are whitespace-normalized first; case and
// punctuation differences still count as a mismatch, since the point is to
// catch paraphrase and invention. Suspect metrics are warnings, never
// errors: transcript segmentation artifacts produce false positives, so the
// caller decides whether the suspect ratio (surfaced in SubScores) warrants
// escalation. Metrics with empty quotes are a structural defect and are not
// examined here.
func Fabrication(metrics []artifact.Metric, transcript string) *Result {
	r := NewResult()
	if len(metrics) == 0 {
		return r
	}

	normalizedTranscript := textmetrics.NormalizeWhitespace(transcript)

	suspects := 0
	for _, m := range metrics {
		quote := textmetrics.NormalizeWhitespace(m.Quote)
		if quote == "" {
			continue
		}
		if !strings.Contains(normalizedTranscript, quote) {
			suspects++
			r.Warnf("metric %q: supporting quote not found verbatim in transcript: %q", m.Value, m.Quote)
		}
	}

	r.SubScores = map[string]float64{
		"suspect_ratio": float64(suspects) / float64(len(metrics)),
	}
	return r
}

// SweepNumericClaims is an advisory second pass over the assembled document:
// every quantitative claim appearing in the generated sections is checked
// for presence in the transcript. Claims the speaker never uttered are
// warnings for human review.
func SweepNumericClaims(sections map[string]string, transcript string) *Result {
	r := NewResult()

	var all strings.Builder
	for _, body := range sections {
		all.WriteString(body)
		all.WriteString(" ")
	}

	seen := make(map[string]bool)
	for _, claim := range textmetrics.ExtractNumericClaims(all.String()) {
		if seen[claim] {
			continue
		}
		seen[claim] = true
		if !strings.Contains(transcript, claim) {
			r.Warnf("claim %q does not appear in the transcript; review for accuracy", claim)
		}
	}

	return r
}
