package identity

import "strings"

// PhraseMatch reports whether name appears in text, either as an exact
// case-insensitive substring or as a fuzzy match against a sliding window of
// 2-4 word phrases. Transcripts and feed titles misspell names often enough
// that exact matching alone misses real mentions.
func PhraseMatch(text, name string, floor float64) bool {
	if floor <= 0 {
		floor = DefaultFloor
	}

	normalizedName := Normalize(name)
	if normalizedName == "" {
		return false
	}

	lowerText := strings.ToLower(text)
	if strings.Contains(lowerText, normalizedName) {
		return true
	}

	words := strings.Fields(lowerText)
	nameTokens := len(strings.Fields(normalizedName))

	// Window sizes bracket the name's own token count.
	minWindow := nameTokens - 1
	if minWindow < 2 {
		minWindow = 2
	}
	maxWindow := nameTokens + 1
	if maxWindow < 2 {
		maxWindow = 2
	}
	if maxWindow > 4 {
		maxWindow = 4
	}

	for size := minWindow; size <= maxWindow; size++ {
		for i := 0; i+size <= len(words); i++ {
			window := strings.Join(words[i:i+size], " ")
			if Similarity(window, normalizedName) >= floor {
				return true
			}
		}
	}
	return false
}
