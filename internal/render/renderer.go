package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/brandops/backend/internal/ffmpeg"
)

// Canvas is the fixed output geometry for localized videos (vertical
// social format).
const (
	CanvasWidth  = 1080
	CanvasHeight = 1920
)

// LocalizedCue is one translated segment ready for rendering.
type LocalizedCue struct {
	Text     string
	Start    float64
	End      float64
	Position string
	X        *float64 // percent, overrides Position when present
	Y        *float64
	Style    Style
}

// Renderer produces one burned-in output video per language.
type Renderer struct {
	overlays *OverlayRenderer
}

func NewRenderer(fontPath string) *Renderer {
	return &Renderer{overlays: NewOverlayRenderer(fontPath, CanvasWidth)}
}

// RenderLanguage burns the cues into input and writes the result to
// output. Standard-style cues go into one ASS track; rounded-style cues
// become timed image overlays. Both are applied in a single encoding pass.
// scratchDir holds the track and overlay images and is owned by the caller.
func (r *Renderer) RenderLanguage(ctx context.Context, input, output string, cues []LocalizedCue, fontSize int, scratchDir string) error {
	if err := os.MkdirAll(scratchDir, 0755); err != nil {
		return fmt.Errorf("create scratch dir: %w", err)
	}

	var trackCues []Cue
	var overlays []ffmpeg.TimedOverlay

	for i, c := range cues {
		cx, cy := ResolvePosition(c.Position, c.X, c.Y, CanvasWidth, CanvasHeight)
		p := c.Style.Params()

		if !p.Rounded {
			trackCues = append(trackCues, Cue{
				Text:  c.Text,
				Start: c.Start,
				End:   c.End,
				Style: c.Style,
				X:     cx,
				Y:     cy,
			})
			continue
		}

		imgPath := filepath.Join(scratchDir, fmt.Sprintf("overlay_%03d.png", i))
		w, h, err := r.overlays.Render(c.Text, fontSize, p, imgPath)
		if err != nil {
			return fmt.Errorf("render overlay image: %w", err)
		}
		overlays = append(overlays, ffmpeg.TimedOverlay{
			Path:  imgPath,
			Start: c.Start,
			End:   c.End,
			X:     cx - w/2,
			Y:     cy - h/2,
		})
	}

	req := ffmpeg.BurnInRequest{
		Input:    input,
		Output:   output,
		Overlays: overlays,
	}
	if len(trackCues) > 0 {
		trackPath := filepath.Join(scratchDir, "track.ass")
		track := BuildTrack(trackCues, CanvasWidth, CanvasHeight, fontSize)
		if err := os.WriteFile(trackPath, []byte(track), 0644); err != nil {
			return fmt.Errorf("write subtitle track: %w", err)
		}
		req.SubtitlePath = trackPath
	}

	log.Info().Str("output", output).Int("track_cues", len(trackCues)).
		Int("overlay_cues", len(overlays)).Msg("rendering language")
	return ffmpeg.BurnIn(ctx, req)
}
