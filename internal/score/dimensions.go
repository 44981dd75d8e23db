package score

import (
	"regexp"
	"strings"

	"talkdoc/internal/artifact"
	"talkdoc/internal/textmetrics"
)

// Keyword groups behind the specificity dimension. Each satisfied group adds
// a fixed increment, so no single group can dominate.
var (
	commandIndicators = []string{"kubectl", "helm", "eksctl", "```", "argo", "terraform"}
	configIndicators  = []string{"apiVersion:", "kind:", "metadata:", "spec:", "replicas:", "nodeGroups:"}
	specificTechs     = []string{"envoy", "istio", "prometheus", "grafana", "argo", "flux", "calico"}
	techPatterns      = []string{"sidecar", "operator", "circuit breaker", "canary", "blue-green", "rolling"}
	versionPattern    = regexp.MustCompile(`v\d+\.\d+`)
)

func allSectionText(doc *artifact.GeneratedDocument) string {
	var b strings.Builder
	for _, body := range doc.Sections {
		b.WriteString(body)
		b.WriteString(" ")
	}
	return b.String()
}

// bonus adds amount to score, capped at 1.0.
func bonus(score, amount float64) float64 {
	if score+amount > 1.0 {
		return 1.0
	}
	return score + amount
}

// scoreEntityDepth tiers on the number of named entities, with bonuses for
// category diversity and a substantial integration-patterns section.
func scoreEntityDepth(doc *artifact.GeneratedDocument) float64 {
	var score float64
	switch n := len(doc.Entities); {
	case n >= 5:
		score = 1.0
	case n == 4:
		score = 0.8
	case n == 3:
		score = 0.6
	case n == 2:
		score = 0.4
	default:
		score = 0.2
	}

	categories := make(map[string]bool)
	for _, e := range doc.Entities {
		if e.Category != "" {
			categories[e.Category] = true
		}
	}
	if len(categories) >= 3 {
		score = bonus(score, 0.1)
	}

	if textmetrics.CountWords(doc.Sections["integration_patterns"]) > 500 {
		score = bonus(score, 0.1)
	}

	return score
}

// scoreSpecificity awards a fixed increment per satisfied indicator group:
// commands or code, version numbers, configuration keys, specific
// technologies, and technical patterns.
func scoreSpecificity(doc *artifact.GeneratedDocument) float64 {
	text := allSectionText(doc)
	lower := strings.ToLower(text)

	score := 0.0

	for _, indicator := range commandIndicators {
		if strings.Contains(lower, indicator) {
			score += 0.2
			break
		}
	}

	if versionPattern.MatchString(text) {
		score += 0.2
	}

	for _, indicator := range configIndicators {
		if strings.Contains(text, indicator) {
			score += 0.2
			break
		}
	}

	techs := 0
	for _, tech := range specificTechs {
		if strings.Contains(lower, tech) {
			techs++
		}
	}
	if techs >= 3 {
		score += 0.2
	}

	patterns := 0
	for _, pattern := range techPatterns {
		if strings.Contains(lower, pattern) {
			patterns++
		}
	}
	if patterns >= 2 {
		score += 0.2
	}

	if score > 1.0 {
		return 1.0
	}
	return score
}

// scoreImplementationDetail tiers on the implementation section's word
// count, with bonuses for describing phases and for naming challenges and
// their solutions.
func scoreImplementationDetail(doc *artifact.GeneratedDocument) float64 {
	body := doc.Sections["implementation_details"]
	words := textmetrics.CountWords(body)

	var score float64
	switch {
	case words >= 700:
		score = 1.0
	case words >= 500:
		score = 0.8
	case words >= 300:
		score = 0.6
	default:
		score = 0.4
	}

	lower := strings.ToLower(body)
	for _, keyword := range []string{"phase", "step", "stage"} {
		if strings.Contains(lower, keyword) {
			score = bonus(score, 0.1)
			break
		}
	}
	for _, keyword := range []string{"challenge", "issue", "problem", "solution"} {
		if strings.Contains(lower, keyword) {
			score = bonus(score, 0.1)
			break
		}
	}

	return score
}

// scoreMetricQuality tiers on the number of quantitative metrics, with
// bonuses for before/after values and category diversity.
func scoreMetricQuality(doc *artifact.GeneratedDocument) float64 {
	var score float64
	switch n := len(doc.Metrics); {
	case n >= 4:
		score = 1.0
	case n == 3:
		score = 0.8
	case n == 2:
		score = 0.6
	case n == 1:
		score = 0.4
	default:
		score = 0.2
	}

	if len(doc.Metrics) > 0 {
		beforeAfter := true
		for _, m := range doc.Metrics {
			if m.Improvement != "" && !strings.Contains(m.Improvement, "→") {
				beforeAfter = false
				break
			}
		}
		if beforeAfter {
			score = bonus(score, 0.1)
		}
	}

	var metricText strings.Builder
	for _, m := range doc.Metrics {
		metricText.WriteString(strings.ToLower(m.Metric))
		metricText.WriteString(" ")
	}
	diverse := 0
	for _, category := range []string{"latency", "throughput", "error", "cost", "time", "frequency"} {
		if strings.Contains(metricText.String(), category) {
			diverse++
		}
	}
	if diverse >= 2 {
		score = bonus(score, 0.1)
	}

	return score
}

// scoreStructuralCompleteness tiers on the number of sections present, with
// bonuses for substantial diagram and observability sections.
func scoreStructuralCompleteness(doc *artifact.GeneratedDocument) float64 {
	var score float64
	switch n := len(doc.Sections); {
	case n >= 13:
		score = 1.0
	case n >= 11:
		score = 0.8
	case n >= 9:
		score = 0.6
	case n >= 7:
		score = 0.4
	default:
		score = 0.2
	}

	if textmetrics.CountWords(doc.Sections["architecture_diagrams"]) > 200 {
		score = bonus(score, 0.1)
	}
	if textmetrics.CountWords(doc.Sections["observability_operations"]) > 300 {
		score = bonus(score, 0.1)
	}

	return score
}
