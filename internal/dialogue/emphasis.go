package dialogue

import (
	"strings"

	"motioncomic/internal/scene"
	"motioncomic/internal/textutil"
)

// Emphasis derives delivery hints from the line text and kind. Shouting is
// all-caps text ending in "!" or any "!!"; whispering is parenthesized text
// or lower-case text trailing off in an ellipsis; captions are narrated as
// thought.
func Emphasis(kind scene.Kind, text string) scene.Emphasis {
	var e scene.Emphasis
	if kind == scene.KindCaption {
		e |= scene.EmphasisThought
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return e
	}

	if strings.Contains(text, "!!") || (strings.HasSuffix(text, "!") && textutil.IsUpper(text)) {
		e |= scene.EmphasisShout
	}

	parenthesized := strings.HasPrefix(text, "(") && strings.HasSuffix(text, ")")
	trailing := strings.HasSuffix(text, "...") || strings.HasSuffix(text, "…")
	if parenthesized || (trailing && textutil.IsLower(text)) {
		e |= scene.EmphasisWhisper
	}
	return e
}
