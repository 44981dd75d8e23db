package generate

import (
	"context"
	"fmt"
	"log"
	"strings"

	"talkdoc/internal/artifact"
)

// Transcripts are truncated before prompting so a three-hour talk does not
// blow the context window.
const maxTranscriptChars = 24000

const analysisPrompt = `You are a technical analyst extracting structured facts from a conference talk transcript.

The talk is given by or about: %s

Extract ONLY what the transcript actually says. Every metric must carry the exact sentence from the transcript that states it, copied verbatim. Do not invent entities, numbers, or quotes.

Transcript:
%s

Respond with ONLY this JSON:
{
    "entities": [{"name": "Technology or project name", "category": "e.g. orchestration, observability", "usage_context": "How it is used"}],
    "layers": [{"name": "Architecture layer", "components": ["component", "..."]}],
    "integration_patterns": [{"name": "Pattern name", "description": "How the pieces connect"}],
    "metrics": [{"value": "e.g. 80%% reduction", "quote": "Exact verbatim transcript sentence"}],
    "sections": {"summary": "2-3 paragraph factual summary of the talk"},
    "opportunities": [{"timestamp": 120, "description": "Moment worth a screenshot", "section": "architecture_overview"}]
}`

const sectionPrompt = `You are writing the "%s" section of a technical document about how %s uses the technologies below.

Base every statement on the structured analysis and the transcript excerpt. Be specific: name tools, versions, commands, and outcomes. Avoid marketing language. Write 2-5 paragraphs of markdown (no heading).

Structured analysis:
%s

Transcript excerpt:
%s

Respond with ONLY the section prose.`

// Canonical section orders per document type. The schema of the same name
// in the config validates the finished document against these sections.
var (
	caseStudySections = []string{
		"executive_summary",
		"background",
		"technical_challenge",
		"implementation_details",
		"results_and_impact",
		"lessons_learned",
		"conclusion",
	}

	referenceArchitectureSections = []string{
		"executive_summary",
		"background",
		"technical_challenge",
		"architecture_overview",
		"cncf_projects",
		"integration_patterns",
		"architecture_diagrams",
		"implementation_details",
		"observability_operations",
		"security_compliance",
		"results_and_impact",
		"lessons_learned",
		"conclusion",
	}
)

// SectionsFor returns the section order for a document type. Unknown types
// fall back to the case study layout.
func SectionsFor(docType string) []string {
	if docType == artifact.DocTypeReferenceArchitecture {
		return referenceArchitectureSections
	}
	return caseStudySections
}

// Analyzer drives the generation provider for one run.
type Analyzer struct {
	provider  Provider
	maxTokens int
}

// NewAnalyzer creates an analyzer around a configured provider.
func NewAnalyzer(provider Provider, maxTokens int) *Analyzer {
	return &Analyzer{provider: provider, maxTokens: maxTokens}
}

// Analyze asks the provider for a structured analysis of the transcript.
func (a *Analyzer) Analyze(ctx context.Context, t *artifact.Transcript, company string) (*artifact.StructuredAnalysis, error) {
	if a.provider == nil {
		return nil, fmt.Errorf("no generation provider available")
	}

	prompt := fmt.Sprintf(analysisPrompt, company, truncate(t.Text, maxTranscriptChars))
	response, err := a.provider.Generate(ctx, prompt, a.maxTokens)
	if err != nil {
		return nil, fmt.Errorf("generating analysis: %w", err)
	}

	analysis, err := ParseAnalysis(response)
	if err != nil {
		return nil, err
	}
	log.Printf("Analysis extracted: %d entities, %d metrics, %d sections",
		len(analysis.Entities), len(analysis.Metrics), len(analysis.Sections))
	return analysis, nil
}

// WriteSections generates prose for each named section, one provider call per
// section so a single bad response does not poison the whole document.
func (a *Analyzer) WriteSections(ctx context.Context, analysis *artifact.StructuredAnalysis, t *artifact.Transcript, company string, names []string) (map[string]string, error) {
	if a.provider == nil {
		return nil, fmt.Errorf("no generation provider available")
	}

	summary := analysisSummary(analysis)
	excerpt := truncate(t.Text, maxTranscriptChars/2)

	sections := make(map[string]string, len(names))
	for _, name := range names {
		prompt := fmt.Sprintf(sectionPrompt, name, company, summary, excerpt)
		response, err := a.provider.Generate(ctx, prompt, a.maxTokens)
		if err != nil {
			return nil, fmt.Errorf("generating section %q: %w", name, err)
		}
		sections[name] = strings.TrimSpace(stripFences(response))
	}
	return sections, nil
}

// analysisSummary renders the structured analysis as a compact prompt block.
func analysisSummary(analysis *artifact.StructuredAnalysis) string {
	var b strings.Builder

	b.WriteString("Entities:\n")
	for _, e := range analysis.Entities {
		fmt.Fprintf(&b, "- %s (%s): %s\n", e.Name, e.Category, e.UsageContext)
	}

	if len(analysis.Layers) > 0 {
		b.WriteString("Layers:\n")
		for _, l := range analysis.Layers {
			fmt.Fprintf(&b, "- %s: %s\n", l.Name, strings.Join(l.Components, ", "))
		}
	}

	if len(analysis.IntegrationPatterns) > 0 {
		b.WriteString("Integration patterns:\n")
		for _, p := range analysis.IntegrationPatterns {
			fmt.Fprintf(&b, "- %s: %s\n", p.Name, p.Description)
		}
	}

	if len(analysis.Metrics) > 0 {
		b.WriteString("Metrics:\n")
		for _, m := range analysis.Metrics {
			fmt.Fprintf(&b, "- %s (%q)\n", m.Value, m.Quote)
		}
	}

	for name, text := range analysis.Sections {
		fmt.Fprintf(&b, "%s:\n%s\n", name, text)
	}

	return b.String()
}

func truncate(text string, max int) string {
	if len(text) <= max {
		return text
	}
	return text[:max]
}
