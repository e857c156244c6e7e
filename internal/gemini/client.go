// Package gemini is a minimal client for the Gemini generateContent API,
// shared by the overlay text detector, the translator and the quality
// checker. Responses are returned as raw text; callers own the parsing
// because the model does not guarantee schema compliance.
package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

const defaultAPIBase = "https://generativelanguage.googleapis.com/v1beta/models"

// Client issues generateContent requests against one model.
type Client struct {
	apiKey     string
	model      string
	apiBase    string
	httpClient *http.Client
}

func NewClient(apiKey, model string) *Client {
	return &Client{
		apiKey:  apiKey,
		model:   model,
		apiBase: defaultAPIBase,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

// WithBaseURL overrides the API endpoint, used by tests.
func (c *Client) WithBaseURL(base string) *Client {
	c.apiBase = base
	return c
}

// GenerateText sends a text-only prompt and returns the model's reply.
func (c *Client) GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	parts := []map[string]interface{}{
		{"text": userPrompt},
	}
	return c.generate(ctx, systemPrompt, parts)
}

// GenerateFromImage sends a prompt plus one inline image.
func (c *Client) GenerateFromImage(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	parts := []map[string]interface{}{
		{"text": prompt},
		{"inline_data": map[string]string{
			"mime_type": mimeType,
			"data":      base64.StdEncoding.EncodeToString(image),
		}},
	}
	return c.generate(ctx, "", parts)
}

func (c *Client) generate(ctx context.Context, systemPrompt string, parts []map[string]interface{}) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("Gemini API key not configured")
	}

	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{"parts": parts},
		},
		"generationConfig": map[string]interface{}{
			"temperature":      0.3,
			"responseMimeType": "application/json",
		},
		"safetySettings": []map[string]string{
			{"category": "HARM_CATEGORY_HARASSMENT", "threshold": "BLOCK_NONE"},
			{"category": "HARM_CATEGORY_HATE_SPEECH", "threshold": "BLOCK_NONE"},
			{"category": "HARM_CATEGORY_SEXUALLY_EXPLICIT", "threshold": "BLOCK_NONE"},
			{"category": "HARM_CATEGORY_DANGEROUS_CONTENT", "threshold": "BLOCK_NONE"},
		},
	}
	if systemPrompt != "" {
		reqBody["system_instruction"] = map[string]interface{}{
			"parts": []map[string]string{{"text": systemPrompt}},
		}
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/%s:generateContent", c.apiBase, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("Gemini API request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Gemini API error (status %d): %s", resp.StatusCode, string(body))
	}

	var geminiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
			FinishReason string `json:"finishReason"`
		} `json:"candidates"`
		PromptFeedback struct {
			BlockReason string `json:"blockReason"`
		} `json:"promptFeedback"`
	}
	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}

	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		if geminiResp.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("Gemini blocked: %s", geminiResp.PromptFeedback.BlockReason)
		}
		return "", fmt.Errorf("empty Gemini response")
	}
	if fr := geminiResp.Candidates[0].FinishReason; fr != "" && fr != "STOP" {
		log.Warn().Str("finish_reason", fr).Msg("Gemini stopped early")
	}

	return geminiResp.Candidates[0].Content.Parts[0].Text, nil
}
