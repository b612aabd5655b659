package textutil

import (
	"strings"
	"unicode"
)

var onomatopoeia = map[string]struct{}{}

func init() {
	for _, word := range []string{
		"pow", "bam", "boom", "crash", "bang", "wham", "smash", "crack",
		"slam", "thud", "whack", "kaboom", "kapow", "blam", "zap", "whoosh",
		"crunch", "thwack", "splash", "bonk", "snap", "zoom", "thump", "klang",
		"clang", "sok", "pop", "swish", "rumble", "krak", "bzzt", "vroom",
	} {
		onomatopoeia[squeeze(word)] = struct{}{}
	}
}

// IsOnomatopoeia reports whether every word in text is a sound-effect word.
// Letter runs are squeezed before lookup so "BOOOOM!" matches "boom".
func IsOnomatopoeia(text string) bool {
	words := Words(text)
	if len(words) == 0 || len(words) > 3 {
		return false
	}
	for _, word := range words {
		if _, ok := onomatopoeia[squeeze(word)]; !ok {
			return false
		}
	}
	return true
}

// squeeze lower-cases a word, drops non-letters and collapses repeated
// letters.
func squeeze(word string) string {
	var b strings.Builder
	var last rune
	for _, r := range strings.ToLower(word) {
		if !unicode.IsLetter(r) {
			continue
		}
		if r == last {
			continue
		}
		b.WriteRune(r)
		last = r
	}
	return b.String()
}
