// Package llmjson extracts JSON payloads from free-form language model
// output. Models are asked for strict JSON but routinely wrap it in prose,
// markdown fences, smart quotes or trailing commas; callers get a typed
// result instead of a panic or a silent zero value.
package llmjson

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

var ErrNoJSON = errors.New("llmjson: no JSON structure found")

var trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)

var quoteReplacer = strings.NewReplacer(
	"“", `"`, // left double quotation mark
	"”", `"`, // right double quotation mark
	"‘", "'",
	"’", "'",
)

// Extract locates the first balanced JSON array or object in text and
// unmarshals it into v. Smart quotes and trailing commas are normalized
// before parsing. Returns ErrNoJSON when no bracket structure exists.
func Extract(text string, v interface{}) error {
	raw, err := firstStructure(text)
	if err != nil {
		return err
	}
	cleaned := trailingCommaRe.ReplaceAllString(quoteReplacer.Replace(raw), "$1")
	if err := json.Unmarshal([]byte(cleaned), v); err == nil {
		return nil
	}
	// The normalized form may have broken string contents containing
	// legitimate curly quotes; retry on the untouched slice.
	return json.Unmarshal([]byte(raw), v)
}

// ExtractArray is Extract restricted to a top-level array.
func ExtractArray(text string, v interface{}) error {
	idx := strings.IndexByte(text, '[')
	if idx < 0 {
		return ErrNoJSON
	}
	return Extract(text[idx:], v)
}

// firstStructure returns the first balanced {...} or [...] substring.
// Brackets inside JSON strings are ignored.
func firstStructure(text string) (string, error) {
	start := -1
	for i, r := range text {
		if r == '{' || r == '[' {
			start = i
			break
		}
	}
	if start < 0 {
		return "", ErrNoJSON
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}
	return "", ErrNoJSON
}
