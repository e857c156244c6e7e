// Package quality re-queries the language model after rendering to rate
// each language's translated text for human review. Ratings are advisory:
// a checker failure never fails the job.
package quality

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/brandops/backend/internal/gemini"
	"github.com/brandops/backend/internal/llmjson"
)

// Issue flags one translated segment as awkward or bad.
type Issue struct {
	SegmentIndex int    `json:"segment_index"`
	Text         string `json:"text"`
	Rating       string `json:"rating"` // awkward, bad
	Note         string `json:"note,omitempty"`
}

// Check is the per-language review result.
type Check struct {
	Passed bool    `json:"passed"`
	Issues []Issue `json:"issues"`
}

const systemPrompt = `You are a native-speaker reviewer of marketing copy translations.
Rate each text for how natural it reads in the given language.`

// Checker rates rendered translations.
type Checker struct {
	client *gemini.Client
}

func NewChecker(client *gemini.Client) *Checker {
	return &Checker{client: client}
}

// CheckLanguage rates the translated texts for one language. Any model or
// parse failure degrades to a passing check with no issues.
func (c *Checker) CheckLanguage(ctx context.Context, lang string, texts []string) Check {
	if len(texts) == 0 {
		return Check{Passed: true}
	}

	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Language: %s. Rate each text as \"natural\", \"awkward\" or \"bad\".\n\n", lang)
	for i, text := range texts {
		fmt.Fprintf(&prompt, "[%d] %s\n", i, text)
	}
	prompt.WriteString("\nReturn ONLY a JSON array, one element per text, in order: " +
		`{"index": <n>, "rating": "<natural|awkward|bad>", "note": "<short reason when not natural>"}`)

	reply, err := c.client.GenerateText(ctx, systemPrompt, prompt.String())
	if err != nil {
		log.Warn().Err(err).Str("lang", lang).Msg("quality check request failed, skipping")
		return Check{Passed: true}
	}

	var ratings []struct {
		Index  int    `json:"index"`
		Rating string `json:"rating"`
		Note   string `json:"note"`
	}
	if err := llmjson.ExtractArray(reply, &ratings); err != nil {
		log.Warn().Err(err).Str("lang", lang).Msg("unparsable quality check reply, skipping")
		return Check{Passed: true}
	}

	check := Check{Passed: true}
	for _, r := range ratings {
		rating := strings.ToLower(strings.TrimSpace(r.Rating))
		if rating == "natural" || rating == "" {
			continue
		}
		if r.Index < 0 || r.Index >= len(texts) {
			continue
		}
		check.Passed = false
		check.Issues = append(check.Issues, Issue{
			SegmentIndex: r.Index,
			Text:         texts[r.Index],
			Rating:       rating,
			Note:         r.Note,
		})
	}
	return check
}
