// Package vision extracts on-screen overlay text from sampled video frames
// with a vision-capable language model.
package vision

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/brandops/backend/internal/gemini"
	"github.com/brandops/backend/internal/llmjson"
	"github.com/brandops/backend/internal/segment"
)

const detectPrompt = `You are analyzing a single frame from a marketing video for an apparel brand.

List every piece of text that was added to the video in post-production (captions, promotional copy, calls to action).

Do NOT include:
- brand logos or text printed on the garments or products themselves
- size labels on clothing tags
- watermarks

Return ONLY a strict JSON array, no commentary. Each element:
{"text": "<exact text>", "position": "<top|center|bottom|center-top|center-bottom>", "x": <horizontal center as percent 0-100>, "y": <vertical center as percent 0-100>}

Return [] if the frame contains no post-production text.`

// Detector turns one frame image into raw text detections.
type Detector struct {
	client *gemini.Client
}

func NewDetector(client *gemini.Client) *Detector {
	return &Detector{client: client}
}

// DetectFrame analyzes one frame. An unparsable model reply yields zero
// detections rather than an error; only transport-level failures are
// returned, and the caller is expected to absorb those per frame too.
func (d *Detector) DetectFrame(ctx context.Context, framePath string) ([]segment.Detection, error) {
	image, err := os.ReadFile(framePath)
	if err != nil {
		return nil, fmt.Errorf("read frame: %w", err)
	}

	reply, err := d.client.GenerateFromImage(ctx, detectPrompt, image, "image/jpeg")
	if err != nil {
		return nil, err
	}

	var detections []segment.Detection
	if err := llmjson.ExtractArray(reply, &detections); err != nil {
		log.Warn().Err(err).Str("frame", framePath).Msg("unparsable detection reply, skipping frame")
		return nil, nil
	}

	valid := detections[:0]
	for _, det := range detections {
		if det.Text == "" {
			continue
		}
		valid = append(valid, det)
	}
	return valid, nil
}
