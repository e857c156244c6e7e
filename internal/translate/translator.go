// Package translate batches segment texts into one multi-language
// translation request. Translation quality is best-effort: an unparsable
// reply degrades to source text, only transport failures surface as errors.
package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/brandops/backend/internal/gemini"
	"github.com/brandops/backend/internal/llmjson"
)

// DefaultLanguages are the seven supported target markets.
var DefaultLanguages = []string{"EN", "FR", "DE", "IT", "ES", "PT", "NL"}

const systemPrompt = `You translate short marketing copy for a direct-to-consumer apparel brand.
Keep translations punchy and natural for social video overlays. Preserve intentional
capitalization, numbers, prices and percentages exactly.`

// Translator issues the batched translation call.
type Translator struct {
	client *gemini.Client
}

func NewTranslator(client *gemini.Client) *Translator {
	return &Translator{client: client}
}

// TranslateBatch translates all texts into every target language in one
// request. The result is index-aligned with texts; each element maps a
// language code to the translated string, pre-filled with the source text
// so that any missing (segment, language) pair falls back verbatim.
// The returned error is transport-level only and pipeline-fatal.
func (t *Translator) TranslateBatch(ctx context.Context, texts, langs []string) ([]map[string]string, error) {
	result := make([]map[string]string, len(texts))
	for i, text := range texts {
		result[i] = make(map[string]string, len(langs))
		for _, lang := range langs {
			result[i][lang] = text
		}
	}
	if len(texts) == 0 {
		return result, nil
	}

	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Translate each of the following %d texts into the languages %s.\n\n",
		len(texts), strings.Join(langs, ", "))
	for i, text := range texts {
		fmt.Fprintf(&prompt, "[%d] %s\n", i, text)
	}
	fmt.Fprintf(&prompt, "\nReturn ONLY a JSON array with exactly %d elements, in input order. "+
		"Each element is an object mapping each language code to the translated text. "+
		"Example element: {%q: \"...\", %q: \"...\"}", len(texts), langs[0], langs[len(langs)-1])

	reply, err := t.client.GenerateText(ctx, systemPrompt, prompt.String())
	if err != nil {
		return nil, fmt.Errorf("translation request: %w", err)
	}

	applyReply(result, reply, langs)
	return result, nil
}

// applyReply merges a model reply into the pre-filled fallback maps. Any
// parse failure leaves the fallbacks untouched.
func applyReply(result []map[string]string, reply string, langs []string) {
	var parsed []map[string]string
	if err := llmjson.ExtractArray(reply, &parsed); err != nil {
		log.Warn().Err(err).Msg("unparsable translation reply, falling back to source text")
		return
	}
	if len(parsed) != len(result) {
		log.Warn().Int("expected", len(result)).Int("got", len(parsed)).
			Msg("translation count mismatch, extra entries ignored")
	}

	for i := range result {
		if i >= len(parsed) {
			break
		}
		for _, lang := range langs {
			if text, ok := lookupLang(parsed[i], lang); ok && strings.TrimSpace(text) != "" {
				result[i][lang] = text
			}
		}
	}
}

// lookupLang tolerates case differences in the model's language keys.
func lookupLang(m map[string]string, lang string) (string, bool) {
	if v, ok := m[lang]; ok {
		return v, true
	}
	for k, v := range m {
		if strings.EqualFold(k, lang) {
			return v, true
		}
	}
	return "", false
}
