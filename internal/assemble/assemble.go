// Package assemble builds the final markdown document from the verified
// identity, the structured analysis, and the generated section prose. It is
// the last stage that creates content; everything after it only judges.
package assemble

import (
	"fmt"
	"strings"
	"text/template"

	"talkdoc/internal/artifact"
)

// Input carries everything the assembler consumes. All fields are read-only.
type Input struct {
	// DocType selects the document kind for the title; empty means case study.
	DocType      string
	Match        artifact.MatchResult
	Transcript   *artifact.Transcript
	Analysis     *artifact.StructuredAnalysis
	Sections     map[string]string
	SectionOrder []string
	// Links maps entity or project names to URLs for the hyperlink pass.
	Links map[string]string
}

// Output is the assembled document in both structured and rendered form.
type Output struct {
	Document *artifact.GeneratedDocument
	Markdown string
	Slug     string
}

const documentTemplate = `# {{.Title}}

{{range .Sections}}## {{.Heading}}

{{.Body}}

{{end}}{{if .Metrics}}## Key Metrics

| Metric | Improvement |
|---|---|
{{range .Metrics}}| {{.Metric}} | {{.Improvement}} |
{{end}}
{{end}}{{if .SourceURL}}---

Source: [{{.SourceTitle}}]({{.SourceURL}})
{{end}}`

type renderSection struct {
	Heading string
	Body    string
}

type renderData struct {
	Title       string
	Sections    []renderSection
	Metrics     []artifact.MetricSummary
	SourceTitle string
	SourceURL   string
}

var docTmpl = template.Must(template.New("document").Parse(documentTemplate))

// Assemble builds the document. It refuses to run when the identity resolver
// produced no confident match: a document about the wrong subject is worse
// than no document.
func Assemble(in Input) (*Output, error) {
	if !in.Match.Matched() {
		return nil, fmt.Errorf("refusing to assemble: identity unverified for %q (method %s)",
			in.Match.QueryName, in.Match.Method)
	}
	company := *in.Match.MatchedName

	label := "Case Study"
	if in.DocType == artifact.DocTypeReferenceArchitecture {
		label = "Reference Architecture"
	}
	title := company + " " + label
	if in.Transcript != nil && in.Transcript.Title != "" {
		title = fmt.Sprintf("%s %s: %s", company, label, in.Transcript.Title)
	}

	metrics := summarizeMetrics(in.Analysis)

	doc := &artifact.GeneratedDocument{
		Title:    title,
		Sections: in.Sections,
		Entities: in.Analysis.Entities,
		Metrics:  metrics,
	}

	data := renderData{Title: title, Metrics: metrics}
	for _, name := range in.SectionOrder {
		body, ok := in.Sections[name]
		if !ok || strings.TrimSpace(body) == "" {
			continue
		}
		data.Sections = append(data.Sections, renderSection{
			Heading: humanize(name),
			Body:    strings.TrimSpace(body),
		})
	}
	if in.Transcript != nil && in.Transcript.VideoID != "" {
		data.SourceTitle = in.Transcript.Title
		if data.SourceTitle == "" {
			data.SourceTitle = "Conference talk"
		}
		data.SourceURL = "https://www.youtube.com/watch?v=" + in.Transcript.VideoID
	}

	var b strings.Builder
	if err := docTmpl.Execute(&b, data); err != nil {
		return nil, fmt.Errorf("rendering document: %w", err)
	}

	markdown := b.String()
	if len(in.Links) > 0 {
		markdown = AddHyperlinks(markdown, in.Links)
	}

	return &Output{
		Document: doc,
		Markdown: markdown,
		Slug:     Slugify(title),
	}, nil
}

// summarizeMetrics turns raw metric claims into the document's metric table.
// Values that already express a before/after transition carry it into the
// improvement column.
func summarizeMetrics(analysis *artifact.StructuredAnalysis) []artifact.MetricSummary {
	if analysis == nil {
		return nil
	}
	summaries := make([]artifact.MetricSummary, 0, len(analysis.Metrics))
	for _, m := range analysis.Metrics {
		summary := artifact.MetricSummary{Metric: m.Value}
		if strings.Contains(m.Value, "→") {
			summary.Improvement = m.Value
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

// humanize turns a snake_case section name into a title-case heading.
func humanize(name string) string {
	words := strings.Split(name, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		if w == "cncf" {
			words[i] = "CNCF"
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
