package validate

import (
	"strings"

	"talkdoc/internal/artifact"
	"talkdoc/internal/identity"
	"talkdoc/internal/textmetrics"
)

// Consistency rejects documents generated about the wrong subject. It counts
// case-insensitive whole-word mentions of the expected entity across all
// section texts and compares against every other known entity name. A
// different entity mentioned strictly more often than the expected one, or
// an expected entity mentioned nowhere, is fatal: a wrong-subject document
// has zero salvage value, so there is no warn tier.
func Consistency(sections map[string]string, expected string, known []string) *Result {
	r := NewResult()

	expected = strings.TrimSpace(expected)
	if expected == "" {
		r.Errorf("no expected entity to verify against")
		return r
	}

	var all strings.Builder
	for _, body := range sections {
		all.WriteString(body)
		all.WriteString(" ")
	}
	text := all.String()

	expectedCount := textmetrics.WholeWordCount(text, expected)
	if expectedCount == 0 {
		r.Errorf("expected entity %q is not mentioned anywhere in the document", expected)
		return r
	}

	topName := ""
	topCount := 0
	normalizedExpected := identity.Normalize(expected)
	for _, name := range known {
		if identity.Normalize(name) == normalizedExpected {
			continue
		}
		if count := textmetrics.WholeWordCount(text, name); count > topCount {
			topCount = count
			topName = name
		}
	}

	if topCount > expectedCount {
		r.Errorf("document subject mismatch: expected %q (%d mentions) but %q dominates (%d mentions)",
			expected, expectedCount, topName, topCount)
	}

	return r
}

// Identity gates the pipeline on the resolver's verdict: no confident match
// is fatal, and a fuzzy match below the warn threshold is flagged for human
// review.
func Identity(confidence float64, method string, warnBelow float64) *Result {
	r := NewResult()
	switch method {
	case artifact.MatchNone, "":
		r.Errorf("no confident entity match (best confidence %.2f)", confidence)
	case artifact.MatchFuzzy:
		if confidence < warnBelow {
			r.Warnf("entity matched fuzzily with confidence %.2f; verify the match", confidence)
		}
	}
	return r
}
