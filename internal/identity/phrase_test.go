package identity

import "testing"

func TestPhraseMatchExactSubstring(t *testing.T) {
	text := "How Acme Corp scaled Kubernetes to 5000 nodes"
	if !PhraseMatch(text, "Acme Corp", 0.85) {
		t.Error("expected exact substring match")
	}
	if !PhraseMatch(text, "acme corp", 0.85) {
		t.Error("expected case-insensitive match")
	}
}

func TestPhraseMatchFuzzyWindow(t *testing.T) {
	// Misspelled in the title, close enough over a 2-word window.
	text := "How Acme Corpp scaled Kubernetes to 5000 nodes"
	if !PhraseMatch(text, "Acme Corp", 0.85) {
		t.Error("expected fuzzy window match for near-miss spelling")
	}
}

func TestPhraseMatchRejectsUnrelated(t *testing.T) {
	text := "Globex platform engineering deep dive"
	if PhraseMatch(text, "Acme Corp", 0.85) {
		t.Error("expected no match for unrelated text")
	}
}

func TestPhraseMatchSuffixNormalization(t *testing.T) {
	text := "A talk about acme"
	if !PhraseMatch(text, "Acme Inc.", 0.85) {
		t.Error("expected match after suffix stripping")
	}
}

func TestPhraseMatchEmptyName(t *testing.T) {
	if PhraseMatch("some text", "", 0.85) {
		t.Error("expected no match for empty name")
	}
}
