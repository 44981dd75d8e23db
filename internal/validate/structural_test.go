package validate

import (
	"encoding/json"
	"strings"
	"testing"

	"talkdoc/internal/artifact"
)

func analysisFromJSON(t *testing.T, raw string) *artifact.StructuredAnalysis {
	t.Helper()
	var a artifact.StructuredAnalysis
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		t.Fatalf("bad test fixture: %v", err)
	}
	return &a
}

func deepSchema() Schema {
	return Schema{
		Required: []string{"entities", "layers", "integration_patterns", "metrics", "sections"},
		Counts: []CountRule{
			{Key: "entities", Ideal: 5, Critical: 4},
			{Key: "layers", Ideal: 3, Critical: 3},
			{Key: "integration_patterns", Ideal: 2, Critical: 1},
		},
		Sections: []SectionRule{
			{Name: "background", MinWords: 10, CriticalWords: 3},
			{Name: "implementation_details", MinWords: 10, CriticalWords: 3, MaxWords: 40},
		},
		RequireQuotes: true,
	}
}

func validAnalysisJSON() string {
	longText := strings.Repeat("the platform grew steadily over time ", 4)
	doc := map[string]any{
		"entities": []map[string]string{
			{"name": "Kubernetes"}, {"name": "Prometheus"}, {"name": "Argo CD"},
			{"name": "Envoy"}, {"name": "Helm"},
		},
		"layers": []map[string]any{
			{"name": "infrastructure", "components": []string{"EKS"}},
			{"name": "platform", "components": []string{"Argo CD"}},
			{"name": "application", "components": []string{"payments"}},
		},
		"integration_patterns": []map[string]string{
			{"name": "gitops"}, {"name": "sidecar"},
		},
		"metrics": []map[string]string{
			{"value": "80%", "quote": "we saw an 80% reduction in deploy time"},
		},
		"sections": map[string]string{
			"background":             longText,
			"implementation_details": longText,
		},
	}
	raw, _ := json.Marshal(doc)
	return string(raw)
}

func TestStructureValidAnalysisPasses(t *testing.T) {
	a := analysisFromJSON(t, validAnalysisJSON())
	r := Structure(a, deepSchema())
	if r.Status != StatusPass {
		t.Fatalf("expected pass, got %v (errors=%v warnings=%v)", r.Status, r.Errors, r.Warnings)
	}
}

func TestStructureMissingKeyFails(t *testing.T) {
	a := analysisFromJSON(t, `{"entities": [{"name":"Kubernetes"}], "sections": {}}`)
	r := Structure(a, deepSchema())
	if r.Status != StatusFail {
		t.Fatalf("expected fail, got %v", r.Status)
	}
	joined := strings.Join(r.Errors, "; ")
	for _, key := range []string{"layers", "integration_patterns", "metrics"} {
		if !strings.Contains(joined, key) {
			t.Errorf("expected missing-field error for %q, got %v", key, r.Errors)
		}
	}
}

// Four entities against an ideal of five and a critical floor of four must
// warn, never pass; three must fail.
func TestStructureCountTiers(t *testing.T) {
	a := analysisFromJSON(t, validAnalysisJSON())
	a.Entities = a.Entities[:4]
	r := Structure(a, deepSchema())
	if r.Status != StatusWarn {
		t.Fatalf("4 of 5 entities: expected warn, got %v (errors=%v)", r.Status, r.Errors)
	}

	a.Entities = a.Entities[:3]
	r = Structure(a, deepSchema())
	if r.Status != StatusFail {
		t.Fatalf("3 of 5 entities: expected fail, got %v", r.Status)
	}
}

func TestStructureMissingSectionFails(t *testing.T) {
	a := analysisFromJSON(t, validAnalysisJSON())
	delete(a.Sections, "background")
	r := Structure(a, deepSchema())
	if r.Status != StatusFail {
		t.Fatalf("expected fail, got %v", r.Status)
	}
}

func TestStructureSectionWordTiers(t *testing.T) {
	a := analysisFromJSON(t, validAnalysisJSON())

	a.Sections["background"] = "brief but above critical floor"
	r := Structure(a, deepSchema())
	if r.Status != StatusWarn {
		t.Fatalf("short section: expected warn, got %v (errors=%v)", r.Status, r.Errors)
	}

	a.Sections["background"] = "too short"
	r = Structure(a, deepSchema())
	if r.Status != StatusFail {
		t.Fatalf("critically short section: expected fail, got %v", r.Status)
	}
}

func TestStructureOverlongSectionWarns(t *testing.T) {
	a := analysisFromJSON(t, validAnalysisJSON())
	a.Sections["implementation_details"] = strings.Repeat("word ", 60)
	r := Structure(a, deepSchema())
	if r.Status != StatusWarn {
		t.Fatalf("overlong section: expected warn, got %v", r.Status)
	}
}

func TestStructureEmptyQuoteFails(t *testing.T) {
	a := analysisFromJSON(t, validAnalysisJSON())
	a.Metrics[0].Quote = ""
	r := Structure(a, deepSchema())
	if r.Status != StatusFail {
		t.Fatalf("empty quote: expected fail, got %v", r.Status)
	}
	if len(r.Errors) == 0 || !strings.Contains(r.Errors[0], "quote") {
		t.Errorf("expected quote error, got %v", r.Errors)
	}
}

func TestStructureErrorOutranksWarnings(t *testing.T) {
	a := analysisFromJSON(t, validAnalysisJSON())
	a.Entities = a.Entities[:4] // warn
	a.Metrics[0].Quote = ""     // fail
	r := Structure(a, deepSchema())
	if r.Status != StatusFail {
		t.Fatalf("expected fail to outrank warn, got %v", r.Status)
	}
	if len(r.Warnings) == 0 {
		t.Error("expected the warning to be retained alongside the error")
	}
}

func TestStructureSchemaDriven(t *testing.T) {
	// A looser schema accepts what the strict one warns about.
	loose := Schema{
		Required: []string{"entities", "sections"},
		Counts:   []CountRule{{Key: "entities", Ideal: 2, Critical: 1}},
	}
	a := analysisFromJSON(t, validAnalysisJSON())
	a.Entities = a.Entities[:2]
	if r := Structure(a, loose); r.Status != StatusPass {
		t.Errorf("loose schema: expected pass, got %v (%v)", r.Status, r.Warnings)
	}
	if r := Structure(a, deepSchema()); r.Status != StatusFail {
		t.Errorf("strict schema: expected fail, got %v", r.Status)
	}
}
