package assemble

import (
	"sort"
	"strings"

	"talkdoc/internal/textmetrics"
)

// AddHyperlinks links the first plain-text occurrence of each term to its
// URL. Later occurrences stay plain so documents don't read like link farms.
// Terms already inside a markdown link are left alone.
func AddHyperlinks(markdown string, links map[string]string) string {
	// Longest terms first so "Argo CD" wins over "Argo".
	terms := make([]string, 0, len(links))
	for term := range links {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if len(terms[i]) != len(terms[j]) {
			return len(terms[i]) > len(terms[j])
		}
		return terms[i] < terms[j]
	})

	for _, term := range terms {
		markdown = linkFirst(markdown, term, links[term])
	}
	return markdown
}

func linkFirst(markdown, term, url string) string {
	pattern, err := textmetrics.WordBoundaryPattern(term)
	if err != nil {
		return markdown
	}

	for _, loc := range pattern.FindAllStringIndex(markdown, -1) {
		if insideLink(markdown, loc[0]) || insideHeading(markdown, loc[0]) {
			continue
		}
		matched := markdown[loc[0]:loc[1]]
		return markdown[:loc[0]] + "[" + matched + "](" + url + ")" + markdown[loc[1]:]
	}
	return markdown
}

// insideLink reports whether pos falls inside [...](...) markup.
func insideLink(s string, pos int) bool {
	for i := pos - 1; i >= 0; i-- {
		switch s[i] {
		case '[', '(':
			// Open bracket with no close before pos means we're inside.
			return true
		case ']', ')', '\n':
			return false
		}
	}
	return false
}

// insideHeading reports whether pos sits on a markdown heading line.
func insideHeading(s string, pos int) bool {
	lineStart := strings.LastIndexByte(s[:pos], '\n') + 1
	return strings.HasPrefix(s[lineStart:], "#")
}
