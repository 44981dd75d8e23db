package generate

import (
	"encoding/json"
	"fmt"
	"strings"

	"talkdoc/internal/artifact"
)

// stripFences removes a markdown code fence wrapping an LLM response.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	lines := strings.Split(text, "\n")
	endIdx := len(lines) - 1
	for i := len(lines) - 1; i > 0; i-- {
		if strings.TrimSpace(lines[i]) == "```" {
			endIdx = i
			break
		}
	}
	return strings.Join(lines[1:endIdx], "\n")
}

// ParseAnalysis decodes an LLM response into a structured analysis, handling
// markdown code fences. The analysis is returned exactly as the model wrote
// it; the structural checkpoint decides whether it is usable.
func ParseAnalysis(text string) (*artifact.StructuredAnalysis, error) {
	text = stripFences(text)
	if text == "" {
		return nil, fmt.Errorf("empty analysis response")
	}

	var analysis artifact.StructuredAnalysis
	if err := json.Unmarshal([]byte(text), &analysis); err != nil {
		return nil, fmt.Errorf("parsing analysis response: %w", err)
	}
	return &analysis, nil
}

// ParseSections decodes an LLM response carrying a section-name to prose
// mapping.
func ParseSections(text string) (map[string]string, error) {
	text = stripFences(text)
	if text == "" {
		return nil, fmt.Errorf("empty sections response")
	}

	var sections map[string]string
	if err := json.Unmarshal([]byte(text), &sections); err != nil {
		return nil, fmt.Errorf("parsing sections response: %w", err)
	}
	return sections, nil
}
