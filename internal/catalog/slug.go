package catalog

import (
	"crypto/rand"
	"regexp"
	"strings"
)

const slugSuffixLen = 6

const slugAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

var (
	nonSlugCharsRe   = regexp.MustCompile(`[^a-z0-9\s]`)
	whitespaceRunRe  = regexp.MustCompile(`\s+`)
	nonSlugStrictRe  = regexp.MustCompile(`[^a-z0-9-]`)
	hyphenRunRe      = regexp.MustCompile(`-{2,}`)
	leadTrailHyphens = regexp.MustCompile(`^-+|-+$`)
)

// GenerateSlug derives a URL-safe slug from a title and appends a random
// 6-character suffix. The suffix keeps collision probability low enough that
// no uniqueness check happens at generation time; the store's UNIQUE
// constraint remains the authority.
func GenerateSlug(title string) string {
	base := strings.ToLower(title)
	base = nonSlugCharsRe.ReplaceAllString(base, "")
	base = whitespaceRunRe.ReplaceAllString(strings.TrimSpace(base), "-")

	return base + "-" + randomSuffix()
}

// SanitizeSlug normalizes a hand-edited slug: lower-case, strip characters
// outside [a-z0-9-], collapse hyphen runs, trim leading/trailing hyphens.
// It does not guarantee uniqueness.
func SanitizeSlug(candidate string) string {
	s := strings.ToLower(candidate)
	s = nonSlugStrictRe.ReplaceAllString(s, "")
	s = hyphenRunRe.ReplaceAllString(s, "-")
	s = leadTrailHyphens.ReplaceAllString(s, "")

	return s
}

func randomSuffix() string {
	buf := make([]byte, slugSuffixLen)
	_, _ = rand.Read(buf)

	for i, b := range buf {
		buf[i] = slugAlphabet[int(b)%len(slugAlphabet)]
	}

	return string(buf)
}
