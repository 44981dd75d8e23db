// Package identity resolves a claimed entity name against a directory of
// canonical entity records. Exact matches win outright; otherwise a
// token-sort similarity score decides, gated by a configurable floor.
package identity

import (
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"talkdoc/internal/artifact"
)

// DefaultFloor is the minimum fuzzy similarity accepted as a match.
const DefaultFloor = 0.70

// EntityRecord is a canonical entity name plus zero or more aliases, drawn
// from the membership directory. Read-only for the duration of a run.
type EntityRecord struct {
	Name    string   `json:"name"`
	Aliases []string `json:"aliases,omitempty"`
}

// corporate suffixes stripped before comparison
var nameSuffixes = []string{
	" inc.", " inc", " llc", " ltd.", " ltd", " corporation", " corp.", " corp",
}

// Normalize lowercases a name and strips common corporate suffixes.
func Normalize(name string) string {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for _, suffix := range nameSuffixes {
		if strings.HasSuffix(normalized, suffix) {
			normalized = strings.TrimSuffix(normalized, suffix)
			break
		}
	}
	return strings.TrimSpace(normalized)
}

// tokenSort rebuilds a normalized name with its tokens in sorted order, so
// "cloud acme" and "acme cloud" compare equal.
func tokenSort(name string) string {
	tokens := strings.Fields(name)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// Similarity returns the token-sort similarity of two names in [0,1].
func Similarity(a, b string) float64 {
	lev := metrics.NewLevenshtein()
	lev.CaseSensitive = false
	return strutil.Similarity(tokenSort(Normalize(a)), tokenSort(Normalize(b)), lev)
}

// Resolve matches query against the candidate records. It returns method
// "exact" with confidence 1.0 on a case-insensitive name or alias match,
// the best-scoring candidate as a "fuzzy" match when its similarity clears
// floor, and method "none" otherwise. An empty candidate list yields method
// "none" with confidence 0; Resolve never fails.
func Resolve(query string, candidates []EntityRecord, floor float64) artifact.MatchResult {
	if floor <= 0 {
		floor = DefaultFloor
	}

	result := artifact.MatchResult{
		QueryName: query,
		Method:    artifact.MatchNone,
	}

	normalizedQuery := Normalize(query)
	if normalizedQuery == "" || len(candidates) == 0 {
		return result
	}

	bestScore := 0.0
	var bestName string

	for _, candidate := range candidates {
		names := append([]string{candidate.Name}, candidate.Aliases...)
		for _, name := range names {
			if Normalize(name) == normalizedQuery {
				matched := candidate.Name
				return artifact.MatchResult{
					QueryName:   query,
					MatchedName: &matched,
					Confidence:  1.0,
					Method:      artifact.MatchExact,
				}
			}
			if score := Similarity(query, name); score > bestScore {
				bestScore = score
				bestName = candidate.Name
			}
		}
	}

	if bestScore < floor {
		result.Confidence = bestScore
		return result
	}

	result.MatchedName = &bestName
	result.Confidence = bestScore
	result.Method = artifact.MatchFuzzy
	return result
}

// KnownNames flattens every canonical name and alias in the directory, used
// by the consistency detector to spot an over-represented wrong subject.
func KnownNames(records []EntityRecord) []string {
	var names []string
	for _, r := range records {
		names = append(names, r.Name)
		names = append(names, r.Aliases...)
	}
	return names
}
