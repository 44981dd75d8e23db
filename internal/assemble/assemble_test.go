package assemble

import (
	"strings"
	"testing"

	"talkdoc/internal/artifact"
	"talkdoc/internal/validate"
)

func matched(name string) artifact.MatchResult {
	return artifact.MatchResult{
		QueryName:   name,
		MatchedName: &name,
		Confidence:  1.0,
		Method:      artifact.MatchExact,
	}
}

func sampleInput() Input {
	return Input{
		Match:      matched("Acme Corp"),
		Transcript: &artifact.Transcript{VideoID: "dQw4w9WgXcQ", Title: "Scaling Kubernetes"},
		Analysis: &artifact.StructuredAnalysis{
			Entities: []artifact.Entity{{Name: "Kubernetes", Category: "orchestration"}},
			Metrics:  []artifact.Metric{{Value: "2 hours → 5 minutes", Quote: "deploys went from 2 hours to 5 minutes"}},
		},
		Sections: map[string]string{
			"executive_summary": "Acme Corp runs Kubernetes at scale.",
			"conclusion":        "The migration paid off.",
		},
		SectionOrder: []string{"executive_summary", "conclusion"},
	}
}

func TestAssembleRendersDocument(t *testing.T) {
	out, err := Assemble(sampleInput())
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	if out.Document.Title != "Acme Corp Case Study: Scaling Kubernetes" {
		t.Errorf("unexpected title %q", out.Document.Title)
	}
	if out.Slug != "acme-corp-case-study-scaling-kubernetes" {
		t.Errorf("unexpected slug %q", out.Slug)
	}
	if !strings.Contains(out.Markdown, "## Executive Summary") {
		t.Error("expected humanized section heading")
	}
	if !strings.Contains(out.Markdown, "## Key Metrics") {
		t.Error("expected metric table")
	}
	if !strings.Contains(out.Markdown, "youtube.com/watch?v=dQw4w9WgXcQ") {
		t.Error("expected source attribution")
	}

	// Section order must follow SectionOrder, not map order.
	summaryIdx := strings.Index(out.Markdown, "## Executive Summary")
	conclusionIdx := strings.Index(out.Markdown, "## Conclusion")
	if summaryIdx > conclusionIdx {
		t.Error("sections rendered out of order")
	}
}

func TestAssembleReferenceArchitectureTitle(t *testing.T) {
	in := sampleInput()
	in.DocType = artifact.DocTypeReferenceArchitecture

	out, err := Assemble(in)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if out.Document.Title != "Acme Corp Reference Architecture: Scaling Kubernetes" {
		t.Errorf("unexpected title %q", out.Document.Title)
	}
	if out.Slug != "acme-corp-reference-architecture-scaling-kubernetes" {
		t.Errorf("unexpected slug %q", out.Slug)
	}
}

func TestAssembleRefusesUnverifiedIdentity(t *testing.T) {
	in := sampleInput()
	in.Match = artifact.MatchResult{QueryName: "Acme Corp", Method: artifact.MatchNone}
	if _, err := Assemble(in); err == nil {
		t.Error("expected refusal without a verified identity")
	}
}

func TestAssembleAppliesHyperlinks(t *testing.T) {
	in := sampleInput()
	in.Links = map[string]string{"Kubernetes": "https://kubernetes.io"}
	in.Sections["executive_summary"] = "Acme Corp runs Kubernetes at scale. Kubernetes handles scheduling."

	out, err := Assemble(in)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if strings.Count(out.Markdown, "[Kubernetes](https://kubernetes.io)") != 1 {
		t.Errorf("expected exactly one linked occurrence:\n%s", out.Markdown)
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Acme Corp Case Study", "acme-corp-case-study"},
		{"  Spaces  and -- dashes ", "spaces-and-dashes"},
		{"Ünïcode & symbols!", "n-code-symbols"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAddHyperlinksPrefersLongestTerm(t *testing.T) {
	md := "We deploy with Argo CD every day."
	out := AddHyperlinks(md, map[string]string{
		"Argo":    "https://argoproj.github.io",
		"Argo CD": "https://argo-cd.readthedocs.io",
	})
	if !strings.Contains(out, "[Argo CD](https://argo-cd.readthedocs.io)") {
		t.Errorf("expected longest term linked, got %q", out)
	}
}

func TestAddHyperlinksSuffixedTerm(t *testing.T) {
	md := "Intuit Inc. runs its platform on Kubernetes."
	out := AddHyperlinks(md, map[string]string{"Intuit Inc.": "https://www.intuit.com"})
	if !strings.Contains(out, "[Intuit Inc.](https://www.intuit.com)") {
		t.Errorf("expected suffixed term linked, got %q", out)
	}
}

func TestAddHyperlinksSkipsHeadings(t *testing.T) {
	md := "## Kubernetes Overview\n\nKubernetes schedules workloads."
	out := AddHyperlinks(md, map[string]string{"Kubernetes": "https://kubernetes.io"})
	if strings.Contains(out, "## [Kubernetes]") {
		t.Error("heading must stay plain")
	}
	if !strings.Contains(out, "[Kubernetes](https://kubernetes.io) schedules") {
		t.Errorf("body occurrence must be linked, got %q", out)
	}
}

func TestValidateScreenshots(t *testing.T) {
	clean := "![arch](screenshots/screenshot_01.png)\n![dash](screenshots/screenshot_02.png)"
	if r := ValidateScreenshots(clean); r.Status != validate.StatusPass {
		t.Errorf("expected pass for sequential unique screenshots, got %v: %v", r.Status, r.Warnings)
	}

	dup := "![a](screenshots/screenshot_01.png)\n![b](screenshots/screenshot_01.png)"
	if r := ValidateScreenshots(dup); r.Status != validate.StatusFail {
		t.Errorf("expected fail for duplicate reference, got %v", r.Status)
	}

	gap := "![a](screenshots/screenshot_01.png)\n![b](screenshots/screenshot_03.png)"
	r := ValidateScreenshots(gap)
	if r.Status != validate.StatusWarn {
		t.Errorf("expected warn for numbering gap, got %v", r.Status)
	}

	none := "no images at all"
	if r := ValidateScreenshots(none); r.Status != validate.StatusPass {
		t.Errorf("expected pass with no screenshots, got %v", r.Status)
	}
}
