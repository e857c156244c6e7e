package render

import (
	"fmt"

	"github.com/fogleman/gg"
)

const (
	boxPadX      = 48.0
	boxPadY      = 32.0
	cornerRadius = 28.0
	lineSpacing  = 1.3
)

// OverlayRenderer draws rounded-corner text boxes as transparent PNGs for
// the styles the ASS box primitives cannot express.
type OverlayRenderer struct {
	fontPath string
	maxWidth float64 // wrap threshold in pixels
}

func NewOverlayRenderer(fontPath string, canvasW int) *OverlayRenderer {
	return &OverlayRenderer{
		fontPath: fontPath,
		maxWidth: 0.8 * float64(canvasW),
	}
}

// Render draws text centered in a rounded rectangle sized to the wrapped
// text and writes it to outPath. Returns the image dimensions so the
// caller can position the composite.
func (o *OverlayRenderer) Render(text string, fontSize int, p Params, outPath string) (w, h int, err error) {
	// Measuring pass on a throwaway context.
	measure := gg.NewContext(1, 1)
	if err := measure.LoadFontFace(o.fontPath, float64(fontSize)); err != nil {
		return 0, 0, fmt.Errorf("load font %s: %w", o.fontPath, err)
	}

	lines := []string{text}
	if tw, _ := measure.MeasureString(text); tw > o.maxWidth-2*boxPadX {
		lines = measure.WordWrap(text, o.maxWidth-2*boxPadX)
	}

	var maxLineW float64
	for _, line := range lines {
		if lw, _ := measure.MeasureString(line); lw > maxLineW {
			maxLineW = lw
		}
	}
	lineH := float64(fontSize) * lineSpacing

	w = int(maxLineW + 2*boxPadX + 0.5)
	h = int(float64(len(lines))*lineH + 2*boxPadY + 0.5)

	ctx := gg.NewContext(w, h)
	if err := ctx.LoadFontFace(o.fontPath, float64(fontSize)); err != nil {
		return 0, 0, fmt.Errorf("load font %s: %w", o.fontPath, err)
	}

	ctx.DrawRoundedRectangle(0, 0, float64(w), float64(h), cornerRadius)
	ctx.SetColor(p.BoxColor)
	ctx.Fill()

	ctx.SetColor(p.TextColor)
	for i, line := range lines {
		y := boxPadY + (float64(i)+0.5)*lineH
		ctx.DrawStringAnchored(line, float64(w)/2, y, 0.5, 0.5)
	}

	if err := ctx.SavePNG(outPath); err != nil {
		return 0, 0, fmt.Errorf("save overlay: %w", err)
	}
	return w, h, nil
}
