package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

var (
	bracketedPattern = regexp.MustCompile(`\([^)]*\)|\[[^\]]*\]|\{[^}]*\}`)
	featuredPattern  = regexp.MustCompile(`(?i)\b(?:feat|ft|featuring)\.?\s+.*$`)
	whitespaceRun    = regexp.MustCompile(`\s+`)
)

// diacriticsFolder decomposes characters and removes combining marks, so
// "Björk" and "Bjork" normalize to the same key.
var diacriticsFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeKey derives the clustering key for a display name. An empty result
// means the name carried no usable signal (for example punctuation only) and
// the caller must exclude the item from name-based matching.
func NormalizeKey(name string) string {
	key := strings.TrimSpace(name)
	if key == "" {
		return ""
	}
	key = bracketedPattern.ReplaceAllString(key, " ")
	key = featuredPattern.ReplaceAllString(key, " ")
	key = width.Fold.String(key)
	if folded, _, err := transform.String(diacriticsFolder, key); err == nil {
		key = folded
	}
	key = strings.ToLower(key)

	var b strings.Builder
	b.Grow(len(key))
	for _, r := range key {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	key = whitespaceRun.ReplaceAllString(strings.TrimSpace(b.String()), " ")
	return key
}
