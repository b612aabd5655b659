package language

import (
	"strings"
	"unicode"

	"golang.org/x/text/language"
)

type entry struct {
	tag       language.Tag
	tesseract string   // traineddata name
	alt3      string   // ISO 639-2 alternate (e.g. "fre" vs "fra")
	display   string   // Human-readable name
	words     []string // Full word forms (e.g. "english")
}

var languages = []entry{
	{language.English, "eng", "", "English", []string{"english"}},
	{language.Spanish, "spa", "", "Spanish", []string{"spanish"}},
	{language.French, "fra", "fre", "French", []string{"french"}},
	{language.German, "deu", "ger", "German", []string{"german"}},
	{language.Italian, "ita", "", "Italian", []string{"italian"}},
	{language.Portuguese, "por", "", "Portuguese", []string{"portuguese"}},
	{language.Japanese, "jpn", "", "Japanese", []string{"japanese"}},
	{language.Korean, "kor", "", "Korean", []string{"korean"}},
	{language.Chinese, "chi_sim", "zho", "Chinese", []string{"chinese", "chi"}},
	{language.Russian, "rus", "", "Russian", []string{"russian"}},
	{language.Dutch, "nld", "dut", "Dutch", []string{"dutch"}},
	{language.Polish, "pol", "", "Polish", []string{"polish"}},
}

var byKey map[string]*entry

func init() {
	byKey = make(map[string]*entry, len(languages)*4)
	for i := range languages {
		e := &languages[i]
		base, _ := e.tag.Base()
		byKey[base.String()] = e
		byKey[e.tesseract] = e
		if e.alt3 != "" {
			byKey[e.alt3] = e
		}
		for _, w := range e.words {
			byKey[w] = e
		}
	}
}

func lookup(tag language.Tag) *entry {
	base, conf := tag.Base()
	if conf == language.No {
		return nil
	}
	return byKey[base.String()]
}

// Parse converts a BCP 47 tag, an ISO 639 code, a tesseract traineddata name
// or an English language word into a language tag. Unrecognized input yields
// language.Und.
func Parse(code string) language.Tag {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return language.Und
	}
	if e, ok := byKey[code]; ok {
		return e.tag
	}
	tag, err := language.Parse(code)
	if err != nil {
		return language.Und
	}
	return tag
}

// TesseractCode returns the traineddata name for tag, or "eng" when the
// language has no known model.
func TesseractCode(tag language.Tag) string {
	if e := lookup(tag); e != nil {
		return e.tesseract
	}
	return "eng"
}

// DisplayName returns a human-readable language name. Returns "Unknown" for
// language.Und.
func DisplayName(tag language.Tag) string {
	if tag == language.Und {
		return "Unknown"
	}
	if e := lookup(tag); e != nil {
		return e.display
	}
	return strings.ToUpper(tag.String())
}

// IsCJK reports whether the language is written without word spacing.
func IsCJK(tag language.Tag) bool {
	base, conf := tag.Base()
	if conf == language.No {
		return false
	}
	switch base.String() {
	case "ja", "zh", "ko":
		return true
	default:
		return false
	}
}

// Guess refines hint using the scripts present in text. Text that is mostly
// Han, Kana or Hangul overrides a Latin hint; otherwise hint is returned.
func Guess(text string, hint language.Tag) language.Tag {
	var letters, han, kana, hangul int
	for _, r := range text {
		switch {
		case unicode.In(r, unicode.Hiragana, unicode.Katakana):
			kana++
		case unicode.Is(unicode.Hangul, r):
			hangul++
		case unicode.Is(unicode.Han, r):
			han++
		case unicode.IsLetter(r):
			letters++
		}
	}
	cjk := han + kana + hangul
	if cjk == 0 || cjk < letters {
		return hint
	}
	switch {
	case hangul > 0 && hangul >= han+kana:
		return language.Korean
	case kana > 0:
		return language.Japanese
	case IsCJK(hint):
		return hint
	default:
		return language.Chinese
	}
}
