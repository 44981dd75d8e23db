package validate

import (
	"reflect"
	"strings"
	"testing"

	"talkdoc/internal/artifact"
)

const fabricationTranscript = "so in the end we saw an 80% reduction in deploy time " +
	"and we went from 2 hours to 5 minutes for a full rollout"

func TestFabricationVerbatimQuotePasses(t *testing.T) {
	metrics := []artifact.Metric{
		{Value: "80%", Quote: "we saw an 80% reduction"},
	}
	r := Fabrication(metrics, fabricationTranscript)
	if r.Status != StatusPass {
		t.Fatalf("expected pass, got %v (%v)", r.Status, r.Warnings)
	}
	if len(r.Warnings) != 0 {
		t.Errorf("expected zero warnings, got %v", r.Warnings)
	}
	if r.SubScores["suspect_ratio"] != 0 {
		t.Errorf("expected suspect_ratio 0, got %v", r.SubScores["suspect_ratio"])
	}
}

func TestFabricationParaphrasedQuoteWarnsNeverFails(t *testing.T) {
	metrics := []artifact.Metric{
		{Value: "80%", Quote: "massive 80% reduction"},
	}
	r := Fabrication(metrics, fabricationTranscript)
	if r.Status != StatusWarn {
		t.Fatalf("expected warn, got %v", r.Status)
	}
	if len(r.Warnings) != 1 {
		t.Errorf("expected exactly one warning, got %v", r.Warnings)
	}
	if r.Failed() {
		t.Error("fabrication suspicion must never fail on its own")
	}
	if r.SubScores["suspect_ratio"] != 1.0 {
		t.Errorf("expected suspect_ratio 1.0, got %v", r.SubScores["suspect_ratio"])
	}
}

func TestFabricationWhitespaceNormalized(t *testing.T) {
	metrics := []artifact.Metric{
		{Value: "80%", Quote: "we saw\n  an 80%\treduction"},
	}
	r := Fabrication(metrics, fabricationTranscript)
	if r.Status != StatusPass {
		t.Errorf("whitespace differences should be normalized away, got %v (%v)", r.Status, r.Warnings)
	}
}

func TestFabricationCaseDifferenceIsSuspect(t *testing.T) {
	metrics := []artifact.Metric{
		{Value: "80%", Quote: "We Saw An 80% Reduction"},
	}
	r := Fabrication(metrics, fabricationTranscript)
	if r.Status != StatusWarn {
		t.Errorf("case differences are a mismatch, got %v", r.Status)
	}
}

func TestFabricationEmptyMetricsPasses(t *testing.T) {
	r := Fabrication(nil, fabricationTranscript)
	if r.Status != StatusPass {
		t.Errorf("no claims to verify: expected pass, got %v", r.Status)
	}
}

func TestFabricationEmptyQuoteSkipped(t *testing.T) {
	// Empty quotes are a structural defect; the detector only examines
	// non-empty quotes.
	metrics := []artifact.Metric{
		{Value: "80%", Quote: ""},
		{Value: "5 minutes", Quote: "from 2 hours to 5 minutes"},
	}
	r := Fabrication(metrics, fabricationTranscript)
	if r.Status != StatusPass {
		t.Errorf("expected pass, got %v (%v)", r.Status, r.Warnings)
	}
}

func TestFabricationSuspectRatio(t *testing.T) {
	metrics := []artifact.Metric{
		{Value: "80%", Quote: "we saw an 80% reduction"},
		{Value: "99%", Quote: "an astonishing 99% uptime gain"},
	}
	r := Fabrication(metrics, fabricationTranscript)
	if got := r.SubScores["suspect_ratio"]; got != 0.5 {
		t.Errorf("expected suspect_ratio 0.5, got %v", got)
	}
}

func TestFabricationIdempotent(t *testing.T) {
	metrics := []artifact.Metric{{Value: "80%", Quote: "massive 80% reduction"}}
	a := Fabrication(metrics, fabricationTranscript)
	b := Fabrication(metrics, fabricationTranscript)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("expected bit-identical results, got %+v and %+v", a, b)
	}
}

func TestSweepNumericClaims(t *testing.T) {
	sections := map[string]string{
		"Impact": "Deploys dropped by 80% and the team saved $40,000.",
	}
	r := SweepNumericClaims(sections, fabricationTranscript)
	if r.Status != StatusWarn {
		t.Fatalf("expected warn for unsupported claim, got %v", r.Status)
	}
	found := false
	for _, w := range r.Warnings {
		if strings.Contains(w, "$40,000") {
			found = true
		}
		if strings.Contains(w, "80%") {
			t.Errorf("80%% appears in the transcript and should not be flagged: %v", r.Warnings)
		}
	}
	if !found {
		t.Errorf("expected $40,000 to be flagged, got %v", r.Warnings)
	}
}
