package validate

import (
	"strings"

	"talkdoc/internal/artifact"
)

// TranscriptThresholds configure the transcript quality gate.
type TranscriptThresholds struct {
	MinChars       int `yaml:"min_chars"`
	MinWords       int `yaml:"min_words"`
	MinSegments    int `yaml:"min_segments"`
	ShortWarnChars int `yaml:"short_warn_chars"`
}

// DefaultTranscriptThresholds mirror the floors a talk transcript must clear
// before any generation work is worth attempting.
func DefaultTranscriptThresholds() TranscriptThresholds {
	return TranscriptThresholds{
		MinChars:       1000,
		MinWords:       100,
		MinSegments:    50,
		ShortWarnChars: 5000,
	}
}

// Transcript gates the pipeline on transcript quality: existence, minimum
// length, meaningful word count, and segment density. A transcript above the
// hard floors but still short gets a warning since the generated document
// may lack detail.
func Transcript(t *artifact.Transcript, th TranscriptThresholds) *Result {
	r := NewResult()

	text := t.Text
	if strings.TrimSpace(text) == "" {
		r.Errorf("transcript is empty")
		return r
	}

	if len(text) < th.MinChars {
		r.Errorf("transcript too short: %d chars (minimum %d)", len(text), th.MinChars)
	}

	words := len(strings.Fields(text))
	if words < th.MinWords {
		r.Errorf("transcript lacks meaningful content: only %d words (minimum %d)", words, th.MinWords)
	}

	segments := t.SegmentCount
	if segments == 0 {
		segments = len(t.Segments)
	}
	if segments < th.MinSegments {
		r.Errorf("too few transcript segments: %d (minimum %d)", segments, th.MinSegments)
	}

	if !r.Failed() && len(text) < th.ShortWarnChars {
		r.Warnf("short transcript (%d chars); generated document may lack detail", len(text))
	}

	return r
}
