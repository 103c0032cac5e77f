package handoff

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/dotcommander/dothook/internal/transcript"
)

const fallbackSlug = "handoff"

var stopWords = map[string]bool{ //nolint:gochecknoglobals // read-only lookup table
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true,
}

// Slug derives a short kebab-case name from the first user messages:
// up to three alphanumeric words longer than three characters.
func Slug(msgs []transcript.ConversationMessage) string {
	var texts []string
	for _, m := range msgs {
		if m.Role != transcript.RoleUser {
			continue
		}
		texts = append(texts, transcript.TruncateRunes(m.Content, 100, ""))
		if len(texts) == 3 {
			break
		}
	}
	if len(texts) == 0 {
		return fallbackSlug
	}

	var keywords []string
	for _, w := range strings.Fields(strings.ToLower(strings.Join(texts, " "))) {
		w = foldAccents(w)
		if utf8.RuneCountInString(w) <= 3 || stopWords[w] || !isAlnum(w) {
			continue
		}
		keywords = append(keywords, w)
		if len(keywords) == 3 {
			break
		}
	}
	if len(keywords) == 0 {
		return fallbackSlug
	}
	return strings.Join(keywords, "-")
}

func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func isAlnum(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}
