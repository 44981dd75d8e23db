package validate

import (
	"talkdoc/internal/textmetrics"
)

// Document is the read-only view the structural validator needs. Both the
// structured analysis and the assembled document satisfy it, so one schema
// engine serves every document type.
type Document interface {
	// FieldCounts maps each list-valued field present in the artifact to
	// its length. Absent fields are omitted entirely.
	FieldCounts() map[string]int
	// SectionTexts maps section names to section bodies.
	SectionTexts() map[string]string
	// MetricQuotes returns the supporting quote of each metric, in order.
	MetricQuotes() []string
}

// CountRule sets the ideal target and the hard critical floor for a
// list-valued field. Counts at or above Ideal pass, counts from Critical up
// to Ideal warn, counts below Critical fail.
type CountRule struct {
	Key      string `yaml:"key"`
	Ideal    int    `yaml:"ideal"`
	Critical int    `yaml:"critical"`
}

// SectionRule sets word-count expectations for a named section. Missing
// sections fail; word counts below CriticalWords fail; below MinWords warn;
// above MaxWords (when set) warn.
type SectionRule struct {
	Name          string `yaml:"name"`
	MinWords      int    `yaml:"min_words"`
	CriticalWords int    `yaml:"critical_words"`
	MaxWords      int    `yaml:"max_words"`
}

// minimum characters for a metric quote to count as substantive
const minQuoteChars = 10

// Schema declares what a well-formed document of one type looks like. The
// validator itself never branches on document type; only the schema varies.
type Schema struct {
	Required      []string      `yaml:"required"`
	Counts        []CountRule   `yaml:"counts"`
	Sections      []SectionRule `yaml:"sections"`
	RequireQuotes bool          `yaml:"require_quotes"`
}

// Structure validates doc against schema: required fields present, list
// counts above their floors, required sections present with adequate word
// counts, and (when the schema demands it) a substantive supporting quote on
// every metric.
func Structure(doc Document, schema Schema) *Result {
	r := NewResult()

	counts := doc.FieldCounts()
	sections := doc.SectionTexts()

	for _, key := range schema.Required {
		if _, ok := counts[key]; ok {
			continue
		}
		if key == "sections" && sections != nil {
			continue
		}
		r.Errorf("missing required field %q", key)
	}

	for _, rule := range schema.Counts {
		count, ok := counts[rule.Key]
		if !ok {
			// Absence is reported by the required-field check; an
			// unrequired absent field is not a count violation.
			continue
		}
		switch {
		case count < rule.Critical:
			r.Errorf("field %q has %d items (critical floor %d)", rule.Key, count, rule.Critical)
		case count < rule.Ideal:
			r.Warnf("field %q has %d items (%d recommended)", rule.Key, count, rule.Ideal)
		}
	}

	for _, rule := range schema.Sections {
		body, ok := sections[rule.Name]
		if !ok || body == "" {
			r.Errorf("missing required section %q", rule.Name)
			continue
		}
		words := textmetrics.CountWords(body)
		switch {
		case rule.CriticalWords > 0 && words < rule.CriticalWords:
			r.Errorf("section %q has %d words (critical floor %d)", rule.Name, words, rule.CriticalWords)
		case rule.MinWords > 0 && words < rule.MinWords:
			r.Warnf("section %q has %d words (%d recommended)", rule.Name, words, rule.MinWords)
		case rule.MaxWords > 0 && words > rule.MaxWords:
			r.Warnf("section %q has %d words (at most %d recommended)", rule.Name, words, rule.MaxWords)
		}
	}

	if schema.RequireQuotes {
		for i, quote := range doc.MetricQuotes() {
			if len(textmetrics.NormalizeWhitespace(quote)) < minQuoteChars {
				r.Errorf("metric %d has an empty or too-short supporting quote", i+1)
			}
		}
	}

	return r
}
