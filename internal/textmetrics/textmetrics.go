// Package textmetrics provides pure text measurement helpers used by the
// validation pipeline: word counting, section extraction from markdown, and
// numeric claim extraction. No I/O.
package textmetrics

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	markdownChars  = regexp.MustCompile("[*_`#\\[\\]()]")
	sectionHeading = regexp.MustCompile(`(?m)^##\s+(.+)$`)
	whitespaceRun  = regexp.MustCompile(`\s+`)
)

// Numeric claim patterns: percentages, multipliers, counted nouns,
// durations, and currency amounts.
var claimPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\d+%`),
	regexp.MustCompile(`(?i)\d+x\b`),
	regexp.MustCompile(`(?i)\d[,\d]*\s+(?:pods?|services?|nodes?|clusters?|users?|requests?|microservices?|deployments?)`),
	regexp.MustCompile(`(?i)\d+\s+(?:hours?|minutes?|seconds?|days?|weeks?|months?)`),
	regexp.MustCompile(`\$\d[,\d]*`),
}

// CountWords counts words in text after stripping markdown formatting
// characters.
func CountWords(text string) int {
	stripped := markdownChars.ReplaceAllString(text, "")
	return len(strings.Fields(stripped))
}

// NormalizeWhitespace collapses every whitespace run to a single space and
// trims the ends. Case and punctuation are left untouched.
func NormalizeWhitespace(text string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
}

// ExtractSections splits markdown content into a section-name to section-text
// mapping using level-two headings as boundaries.
func ExtractSections(content string) map[string]string {
	sections := make(map[string]string)
	locs := sectionHeading.FindAllStringSubmatchIndex(content, -1)
	for i, loc := range locs {
		name := strings.TrimSpace(content[loc[2]:loc[3]])
		bodyStart := loc[1]
		bodyEnd := len(content)
		if i+1 < len(locs) {
			bodyEnd = locs[i+1][0]
		}
		sections[name] = strings.TrimSpace(content[bodyStart:bodyEnd])
	}
	return sections
}

// ExtractNumericClaims returns every quantitative claim found in text:
// percentages, multipliers, counted resources, durations, and dollar amounts.
// Duplicates are preserved; callers that need uniqueness dedupe themselves.
func ExtractNumericClaims(text string) []string {
	var claims []string
	for _, p := range claimPatterns {
		claims = append(claims, p.FindAllString(text, -1)...)
	}
	return claims
}

// WholeWordCount counts case-insensitive whole-word occurrences of term in
// text. Multi-word terms match as a phrase.
func WholeWordCount(text, term string) int {
	p, err := WordBoundaryPattern(strings.TrimSpace(term))
	if err != nil {
		return 0
	}
	return len(p.FindAllString(text, -1))
}

// WordBoundaryPattern compiles a case-insensitive pattern matching term as a
// whole word or phrase. The \b assertions only hold next to word characters,
// so a term ending in punctuation ("Intuit Inc.") gets no trailing assertion;
// a blanket trailing \b would make such a term unmatchable before whitespace.
func WordBoundaryPattern(term string) (*regexp.Regexp, error) {
	if term == "" {
		return nil, fmt.Errorf("empty term")
	}
	prefix := ""
	if r, _ := utf8.DecodeRuneInString(term); isWordRune(r) {
		prefix = `\b`
	}
	suffix := ""
	if r, _ := utf8.DecodeLastRuneInString(term); isWordRune(r) {
		suffix = `\b`
	}
	return regexp.Compile(`(?i)` + prefix + regexp.QuoteMeta(term) + suffix)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
