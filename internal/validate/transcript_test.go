package validate

import (
	"strings"
	"testing"

	"talkdoc/internal/artifact"
)

func makeTranscript(words, segments int) *artifact.Transcript {
	return &artifact.Transcript{
		Text:         strings.TrimSpace(strings.Repeat("kubernetes platform migration story word ", words/5)),
		SegmentCount: segments,
	}
}

func TestTranscriptGate(t *testing.T) {
	th := DefaultTranscriptThresholds()

	tests := []struct {
		name       string
		transcript *artifact.Transcript
		want       Status
	}{
		{"healthy transcript", makeTranscript(1500, 120), StatusPass},
		{"empty transcript", &artifact.Transcript{}, StatusFail},
		{"too few segments", makeTranscript(1500, 10), StatusFail},
		{"too few words", makeTranscript(50, 120), StatusFail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Transcript(tt.transcript, th)
			if r.Status != tt.want {
				t.Errorf("got %v (errors=%v warnings=%v), want %v", r.Status, r.Errors, r.Warnings, tt.want)
			}
		})
	}
}

func TestTranscriptShortButValidWarns(t *testing.T) {
	tr := makeTranscript(400, 120) // above all hard floors, below the short-warning line
	r := Transcript(tr, DefaultTranscriptThresholds())
	if r.Status != StatusWarn {
		t.Fatalf("expected warn, got %v (errors=%v)", r.Status, r.Errors)
	}
	if len(r.Warnings) != 1 {
		t.Errorf("expected one warning, got %v", r.Warnings)
	}
}

func TestTranscriptSegmentsFallback(t *testing.T) {
	tr := makeTranscript(1500, 0)
	tr.Segments = make([]artifact.Segment, 80)
	r := Transcript(tr, DefaultTranscriptThresholds())
	if r.Status != StatusPass {
		t.Errorf("segment slice should back segment count, got %v (%v)", r.Status, r.Errors)
	}
}
