// Package presenter verifies that a claimed presenter is actually associated
// with a talk by extracting readable text from profile or speaker pages and
// matching the name against it.
package presenter

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"

	"talkdoc/internal/identity"
)

// Verification is the outcome of checking one presenter against one page.
type Verification struct {
	Name     string
	PageURL  string
	Found    bool
	Strict   bool // true when the name matched as an exact substring
	PageText string
}

// Verifier fetches pages and checks presenter names against them.
type Verifier struct {
	client     *http.Client
	matchFloor float64
}

// NewVerifier creates a page-based presenter verifier. matchFloor gates the
// fuzzy fallback when the exact name is absent.
func NewVerifier(matchFloor float64) *Verifier {
	return &Verifier{
		client: &http.Client{
			Timeout: 15 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		matchFloor: matchFloor,
	}
}

// Verify fetches pageURL, extracts its readable text, and reports whether
// name appears on it.
func (v *Verifier) Verify(ctx context.Context, name, pageURL string) (*Verification, error) {
	text, err := v.fetchPageText(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	result := &Verification{Name: name, PageURL: pageURL, PageText: text}
	if text == "" {
		return result, nil
	}

	if strings.Contains(strings.ToLower(text), strings.ToLower(strings.TrimSpace(name))) {
		result.Found = true
		result.Strict = true
		return result, nil
	}

	if identity.PhraseMatch(text, name, v.matchFloor) {
		result.Found = true
	}
	return result, nil
}

// MatchInText checks a presenter name against already-extracted text, for
// callers that have the transcript or description in hand.
func (v *Verifier) MatchInText(name, text string) bool {
	if strings.Contains(strings.ToLower(text), strings.ToLower(strings.TrimSpace(name))) {
		return true
	}
	return identity.PhraseMatch(text, name, v.matchFloor)
}

func (v *Verifier) fetchPageText(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "talkdoc/1.0 (talk documentation tool)")

	resp, err := v.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", &httpError{code: resp.StatusCode}
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil
	}

	parsedURL, _ := url.Parse(pageURL)
	page, err := readability.FromReader(strings.NewReader(string(bodyBytes)), parsedURL)
	if err != nil {
		log.Printf("No extractable content from %s", pageURL)
		return "", nil
	}

	return strings.TrimSpace(page.TextContent), nil
}

type httpError struct {
	code int
}

func (e *httpError) Error() string {
	return http.StatusText(e.code)
}
