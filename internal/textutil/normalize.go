package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var (
	hyphenBreakPattern = regexp.MustCompile(`(\p{L})-\s*\n\s*(\p{L})`)
	whitespacePattern  = regexp.MustCompile(`\s+`)
)

// Normalize converts OCR output into a single clean line: NFC form, words
// split across lines by a hyphen rejoined, runs of whitespace collapsed.
func Normalize(text string) string {
	text = norm.NFC.String(text)
	text = hyphenBreakPattern.ReplaceAllString(text, "$1$2")
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Words splits text into spoken words. Tokens without any letter or digit
// (stray punctuation, OCR noise) are dropped.
func Words(text string) []string {
	fields := strings.Fields(text)
	out := fields[:0]
	for _, field := range fields {
		if strings.IndexFunc(field, isWordRune) >= 0 {
			out = append(out, field)
		}
	}
	return out
}

// WordCount returns len(Words(text)).
func WordCount(text string) int {
	return len(Words(text))
}

// LetterCount counts letters and digits, used for scripts written without
// spaces.
func LetterCount(text string) int {
	n := 0
	for _, r := range text {
		if isWordRune(r) {
			n++
		}
	}
	return n
}

// IsUpper reports whether text contains at least one cased letter and is
// unchanged by upper-casing.
func IsUpper(text string) bool {
	hasCased := false
	for _, r := range text {
		if unicode.IsLower(r) || unicode.IsUpper(r) {
			hasCased = true
			break
		}
	}
	if !hasCased {
		return false
	}
	return cases.Upper(language.Und).String(text) == text
}

// IsLower reports whether text contains at least one cased letter and is
// unchanged by lower-casing.
func IsLower(text string) bool {
	if !strings.ContainsFunc(text, unicode.IsLetter) {
		return false
	}
	return cases.Lower(language.Und).String(text) == text
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
