package assemble

import (
	"regexp"
	"strings"
)

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)
	dashRuns     = regexp.MustCompile(`-{2,}`)
)

// Slugify turns a title into a filesystem- and URL-safe slug.
func Slugify(s string) string {
	slug := strings.ToLower(strings.TrimSpace(s))
	slug = nonSlugChars.ReplaceAllString(slug, "-")
	slug = dashRuns.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
