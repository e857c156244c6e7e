package segment

import (
	"strings"
	"unicode"
)

// stripped covers emoji and decorative symbol ranges that vision models
// frequently hallucinate around overlay text. Currency and math symbols
// stay: prices and "50%+" style claims are real overlay content.
var stripped = []*unicode.RangeTable{
	unicode.So, // other symbols, includes emoji blocks and dingbats
	unicode.Sk, // modifier symbols
	unicode.Cs, // surrogates from broken transport encodings
	unicode.Co, // private use
}

func isStripped(r rune) bool {
	if r == '‍' || r == '︎' || r == '️' || r == '⃣' {
		// zero-width joiner, variation selectors, combining keycap
		return true
	}
	return unicode.IsOneOf(stripped, r)
}

// Normalize cleans a raw detection string for storage and returns the
// comparison key alongside it. The display form keeps original casing and
// diacritics; only emoji/symbol noise is removed and whitespace collapsed.
// ok is false when nothing but stripped characters remained.
func Normalize(raw string) (display, key string, ok bool) {
	var b strings.Builder
	for _, r := range raw {
		if isStripped(r) {
			continue
		}
		if unicode.IsSpace(r) {
			b.WriteByte(' ')
			continue
		}
		b.WriteRune(r)
	}
	display = strings.Join(strings.Fields(b.String()), " ")
	if display == "" {
		return "", "", false
	}
	return display, strings.ToLower(display), true
}
