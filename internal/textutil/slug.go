package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Slug turns an archive title into a lowercase ASCII directory name.
// Accents are folded ("Astérix" → "asterix") and every run of other
// characters becomes a single hyphen. Titles with nothing left are "comic".
func Slug(title string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range norm.NFKD.String(title) {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(unicode.ToLower(r))
		default:
			pendingDash = true
		}
	}
	if b.Len() == 0 {
		return "comic"
	}
	return b.String()
}
