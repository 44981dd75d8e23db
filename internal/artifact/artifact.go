// Package artifact defines the JSON artifacts exchanged between pipeline
// stages: the source transcript, the structured analysis produced by the
// generation step, the assembled document, and the identity verification
// record. Artifacts are written once and never mutated downstream.
package artifact

import (
	"encoding/json"
	"fmt"
	"os"
)

// Match methods reported by the identity resolver.
const (
	MatchExact = "exact"
	MatchFuzzy = "fuzzy"
	MatchNone  = "none"
)

// Document types the pipeline can produce. Each has its own structural
// schema and section order.
const (
	DocTypeCaseStudy             = "case_study"
	DocTypeReferenceArchitecture = "reference_architecture"
)

// Segment is a single timed transcript segment.
type Segment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// Transcript is the source of truth for fabrication checks. Immutable once
// fetched.
type Transcript struct {
	VideoID         string    `json:"video_id,omitempty"`
	Title           string    `json:"title,omitempty"`
	Text            string    `json:"text"`
	DurationSeconds float64   `json:"duration_seconds"`
	SegmentCount    int       `json:"segment_count"`
	Segments        []Segment `json:"segments,omitempty"`
}

// Entity is a named technology or project with its usage context.
type Entity struct {
	Name         string `json:"name"`
	Category     string `json:"category,omitempty"`
	UsageContext string `json:"usage_context,omitempty"`
}

// Layer is one architectural layer and its components.
type Layer struct {
	Name       string   `json:"name"`
	Components []string `json:"components"`
}

// IntegrationPattern describes how components are wired together.
type IntegrationPattern struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Metric is a quantitative claim with its supporting verbatim quote from the
// transcript. An empty quote is a structural defect, checked upstream of
// fabrication detection.
type Metric struct {
	Value string `json:"value"`
	Quote string `json:"quote"`
}

// Opportunity marks a transcript moment worth capturing as a screenshot.
type Opportunity struct {
	Timestamp   int    `json:"timestamp"`
	Description string `json:"description,omitempty"`
	Section     string `json:"section,omitempty"`
}

// StructuredAnalysis is the generation step's structured output, validated
// before any prose is generated from it. List fields decode to nil when the
// key is absent, which is how the structural validator distinguishes a
// missing key from an empty list.
type StructuredAnalysis struct {
	Entities            []Entity             `json:"entities"`
	Layers              []Layer              `json:"layers"`
	IntegrationPatterns []IntegrationPattern `json:"integration_patterns"`
	Metrics             []Metric             `json:"metrics"`
	Sections            map[string]string    `json:"sections"`
	Opportunities       []Opportunity        `json:"opportunities"`
}

// MetricSummary is a row in the assembled document's metric table.
type MetricSummary struct {
	Metric      string `json:"metric"`
	Improvement string `json:"improvement,omitempty"`
}

// GeneratedDocument is the final assembled document. Built once, then only
// scored.
type GeneratedDocument struct {
	Title    string            `json:"title"`
	Sections map[string]string `json:"sections"`
	Entities []Entity          `json:"entities"`
	Metrics  []MetricSummary   `json:"metrics"`
}

// MatchResult is the identity resolver's verdict for a claimed entity name.
type MatchResult struct {
	QueryName   string  `json:"query_name"`
	MatchedName *string `json:"matched_name"`
	Confidence  float64 `json:"confidence"`
	Method      string  `json:"method"`
}

// Matched reports whether the resolver found a confident match.
func (m MatchResult) Matched() bool {
	return m.Method != MatchNone && m.MatchedName != nil
}

// FieldCounts returns the length of every list-valued field that was present
// in the source JSON, keyed by field name. Absent fields are omitted.
func (a *StructuredAnalysis) FieldCounts() map[string]int {
	counts := make(map[string]int)
	if a.Entities != nil {
		counts["entities"] = len(a.Entities)
	}
	if a.Layers != nil {
		counts["layers"] = len(a.Layers)
	}
	if a.IntegrationPatterns != nil {
		counts["integration_patterns"] = len(a.IntegrationPatterns)
	}
	if a.Metrics != nil {
		counts["metrics"] = len(a.Metrics)
	}
	if a.Opportunities != nil {
		counts["opportunities"] = len(a.Opportunities)
	}
	if a.Sections != nil {
		counts["sections"] = len(a.Sections)
	}
	return counts
}

// SectionTexts returns the section-name to section-text mapping.
func (a *StructuredAnalysis) SectionTexts() map[string]string {
	return a.Sections
}

// MetricQuotes returns the supporting quote for every metric, in order.
func (a *StructuredAnalysis) MetricQuotes() []string {
	quotes := make([]string, len(a.Metrics))
	for i, m := range a.Metrics {
		quotes[i] = m.Quote
	}
	return quotes
}

// FieldCounts returns list-field lengths for fields present in the source
// JSON.
func (d *GeneratedDocument) FieldCounts() map[string]int {
	counts := make(map[string]int)
	if d.Entities != nil {
		counts["entities"] = len(d.Entities)
	}
	if d.Metrics != nil {
		counts["metrics"] = len(d.Metrics)
	}
	if d.Sections != nil {
		counts["sections"] = len(d.Sections)
	}
	return counts
}

// SectionTexts returns the section-name to section-text mapping.
func (d *GeneratedDocument) SectionTexts() map[string]string {
	return d.Sections
}

// MetricQuotes is empty for assembled documents; quote checking happens at
// the analysis stage.
func (d *GeneratedDocument) MetricQuotes() []string { return nil }

// Load reads and decodes a JSON artifact from path. Malformed or missing
// files are the one condition that escalates straight to a fatal error, since
// there is nothing meaningful to validate.
func Load[T any](path string) (*T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading artifact: %w", err)
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parsing artifact %s: %w", path, err)
	}
	return &v, nil
}

// Save writes v to path as indented JSON.
func Save(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding artifact: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing artifact: %w", err)
	}
	return nil
}
