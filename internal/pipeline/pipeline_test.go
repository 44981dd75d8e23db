package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"talkdoc/internal/artifact"
	"talkdoc/internal/checkpoint"
	"talkdoc/internal/config"
	"talkdoc/internal/database"
	"talkdoc/internal/directory"
	"talkdoc/internal/generate"
	"talkdoc/internal/score"
	"talkdoc/internal/transcript"
	"talkdoc/internal/validate"
)

// mockProvider answers the first call with the analysis and every later call
// with section prose.
type mockProvider struct {
	analysis string
	section  string
	calls    int
}

func (m *mockProvider) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	m.calls++
	if m.calls == 1 {
		return m.analysis, nil
	}
	return m.section, nil
}

func (m *mockProvider) IsConfigured() bool { return true }

const goodAnalysis = `{
	"entities": [
		{"name": "Kubernetes", "category": "orchestration", "usage_context": "cluster scheduling"},
		{"name": "Prometheus", "category": "observability", "usage_context": "metrics"},
		{"name": "Envoy", "category": "networking", "usage_context": "service mesh"},
		{"name": "Argo CD", "category": "delivery", "usage_context": "gitops"},
		{"name": "Helm", "category": "delivery", "usage_context": "packaging"}
	],
	"layers": [
		{"name": "compute", "components": ["Kubernetes"]},
		{"name": "network", "components": ["Envoy"]},
		{"name": "delivery", "components": ["Argo CD", "Helm"]}
	],
	"integration_patterns": [
		{"name": "sidecar", "description": "Envoy next to each pod"},
		{"name": "gitops", "description": "Argo CD reconciles manifests"},
		{"name": "canary", "description": "progressive rollout"}
	],
	"metrics": [
		{"value": "2 hours → 5 minutes", "quote": "deploy time went from two hours to five minutes"},
		{"value": "80% fewer incidents", "quote": "we saw eighty percent fewer incidents"},
		{"value": "3x throughput", "quote": "throughput tripled after the migration"},
		{"value": "$40k saved monthly", "quote": "we save about forty thousand dollars a month"}
	],
	"sections": {"summary": "Acme Corp migrated its platform to Kubernetes."},
	"opportunities": []
}`

func sectionProse() string {
	sentence := "Acme Corp engineers ran kubectl against the v1.26 cluster in every phase and solved each scaling challenge with care and detailed runbooks written for the whole team. "
	return strings.Repeat(sentence, 8)
}

func transcriptJSON() string {
	quotes := "deploy time went from two hours to five minutes. " +
		"we saw eighty percent fewer incidents. " +
		"throughput tripled after the migration. " +
		"we save about forty thousand dollars a month. "
	filler := strings.Repeat("and then we kept iterating on the platform week after week. ", 100)
	return fmt.Sprintf(`{"title": "Scaling Kubernetes", "text": %q, "duration_seconds": 1800, "segment_count": 120}`,
		quotes+filler)
}

func testConfig(t *testing.T, dataDir string) *config.Config {
	t.Helper()
	return &config.Config{
		Identity: config.Identity{Floor: 0.70, WarnBelow: 0.85},
		Transcript: config.Transcript{
			Thresholds: validate.DefaultTranscriptThresholds(),
		},
		Schemas: map[string]validate.Schema{
			"deep_analysis": {
				Required: []string{"entities", "layers", "integration_patterns", "metrics", "sections"},
				Counts: []validate.CountRule{
					{Key: "entities", Ideal: 5, Critical: 4},
					{Key: "layers", Ideal: 3, Critical: 2},
					{Key: "integration_patterns", Ideal: 3, Critical: 2},
					{Key: "metrics", Ideal: 3, Critical: 2},
				},
				RequireQuotes: true,
			},
			"case_study": {
				Required: []string{"sections", "entities"},
				Sections: []validate.SectionRule{
					{Name: "executive_summary", MinWords: 100, CriticalWords: 50},
					{Name: "implementation_details", MinWords: 300, CriticalWords: 150},
					{Name: "conclusion", MinWords: 100, CriticalWords: 50},
				},
			},
			"reference_architecture": {
				Required: []string{"sections", "entities"},
				Sections: []validate.SectionRule{
					{Name: "executive_summary", MinWords: 100, CriticalWords: 50},
					{Name: "architecture_overview", MinWords: 150, CriticalWords: 75},
					{Name: "conclusion", MinWords: 100, CriticalWords: 50},
				},
			},
		},
		Scoring: score.DefaultRubric(),
		Output:  config.Output{DataDir: dataDir},
	}
}

func testPipeline(t *testing.T, transcriptBody string) (*Pipeline, *database.DB) {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(transcriptBody))
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	membersPath := filepath.Join(dir, "members.json")
	members := `[{"name": "Acme Corp", "aliases": ["Acme"]}, {"name": "Globex"}]`
	if err := os.WriteFile(membersPath, []byte(members), 0o644); err != nil {
		t.Fatalf("writing members fixture: %v", err)
	}

	db, err := database.Open(filepath.Join(dir, "talkdoc.db"))
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := testConfig(t, dir)
	scorer, err := score.New(cfg.Scoring)
	if err != nil {
		t.Fatalf("scorer: %v", err)
	}

	return &Pipeline{
		cfg:         cfg,
		db:          db,
		docType:     artifact.DocTypeCaseStudy,
		transcripts: transcript.New(srv.URL),
		directory:   directory.New("", membersPath, 24, false, db),
		analyzer:    generate.NewAnalyzer(&mockProvider{analysis: goodAnalysis, section: sectionProse()}, 1024),
		scorer:      scorer,
	}, db
}

func TestRunCompletes(t *testing.T) {
	p, db := testPipeline(t, transcriptJSON())

	result, err := p.Run(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "Acme Corp")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.Report.State != checkpoint.Completed {
		t.Fatalf("expected completed run, got %v\nerrors: %v", result.Report.State, result.Report.Errors)
	}
	if result.Document == nil {
		t.Fatal("expected an assembled document")
	}
	if result.Score == nil || *result.Score < 0.6 {
		t.Errorf("expected a solid composite score, got %v", result.Score)
	}

	run, err := db.GetRun(result.RunID)
	if err != nil || run == nil {
		t.Fatalf("expected persisted run: %v", err)
	}
	if run.State != "completed" {
		t.Errorf("expected run state completed, got %q", run.State)
	}
	if run.Company == nil || *run.Company != "Acme Corp" {
		t.Error("expected verified company recorded")
	}
	if run.DocumentSlug == nil {
		t.Fatal("expected document slug recorded")
	}

	records, _ := db.GetCheckpoints(result.RunID)
	if len(records) != 9 {
		t.Errorf("expected all 9 checkpoints recorded, got %d", len(records))
	}

	doc, _ := db.GetDocument(*run.DocumentSlug)
	if doc == nil {
		t.Fatal("expected document persisted")
	}

	path := filepath.Join(p.cfg.GetDataDir(), "documents", *run.DocumentSlug+".md")
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected document file on disk: %v", err)
	}
}

// The reference architecture type swaps in its own schema and the full
// 13-section layout.
func TestRunReferenceArchitectureCompletes(t *testing.T) {
	p, db := testPipeline(t, transcriptJSON())
	p.docType = artifact.DocTypeReferenceArchitecture

	result, err := p.Run(context.Background(), "dQw4w9WgXcQ", "Acme Corp")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Report.State != checkpoint.Completed {
		t.Fatalf("expected completed run, got %v\nerrors: %v", result.Report.State, result.Report.Errors)
	}

	doc := result.Document
	if doc == nil {
		t.Fatal("expected an assembled document")
	}
	if !strings.Contains(doc.Document.Title, "Reference Architecture") {
		t.Errorf("expected reference architecture title, got %q", doc.Document.Title)
	}
	if len(doc.Document.Sections) != 13 {
		t.Errorf("expected the 13-section layout, got %d sections", len(doc.Document.Sections))
	}
	if !strings.Contains(doc.Markdown, "## Architecture Overview") {
		t.Error("expected architecture overview section in the rendered document")
	}

	run, _ := db.GetRun(result.RunID)
	if run == nil || run.State != "completed" {
		t.Fatalf("expected persisted completed run, got %+v", run)
	}
}

// A transcript below the hard floors stops the run at the first checkpoint
// and persists nothing downstream.
func TestRunStopsOnBadTranscript(t *testing.T) {
	p, db := testPipeline(t, `{"text": "too short", "segment_count": 2}`)

	result, err := p.Run(context.Background(), "dQw4w9WgXcQ", "Acme Corp")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.Report.State != checkpoint.StoppedFail {
		t.Fatalf("expected stopped-fail, got %v", result.Report.State)
	}
	if result.Document != nil {
		t.Error("a failed run must not carry a document")
	}

	records, _ := db.GetCheckpoints(result.RunID)
	if len(records) != 1 {
		t.Errorf("expected only the transcript checkpoint recorded, got %d", len(records))
	}

	run, _ := db.GetRun(result.RunID)
	if run.State != "stopped-fail" {
		t.Errorf("expected run state stopped-fail, got %q", run.State)
	}

	docs, _ := db.ListDocuments()
	if len(docs) != 0 {
		t.Errorf("expected no documents persisted, got %d", len(docs))
	}
}

// An unknown company stops the run at the identity checkpoint.
func TestRunStopsOnUnknownCompany(t *testing.T) {
	p, _ := testPipeline(t, transcriptJSON())

	result, err := p.Run(context.Background(), "dQw4w9WgXcQ", "Completely Unknown Startup")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Report.State != checkpoint.StoppedFail {
		t.Fatalf("expected stopped-fail, got %v", result.Report.State)
	}
	if len(result.Report.Entries) != 2 {
		t.Errorf("expected run to stop at identity, got %d entries", len(result.Report.Entries))
	}
}
