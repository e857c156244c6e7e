package render

import (
	"fmt"
	"strings"
)

// fadeMs is the fade-in/fade-out applied to every cue.
const fadeMs = 150

// Cue is one subtitle event with resolved screen coordinates (the anchor
// point of the centered text block).
type Cue struct {
	Text  string
	Start float64
	End   float64
	Style Style
	X     int
	Y     int
}

// BuildTrack emits an ASS subtitle track for the given cues. One named
// style section entry is produced per distinct Style in use; events
// position themselves with \pos overrides against the fixed canvas.
func BuildTrack(cues []Cue, canvasW, canvasH, fontSize int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "[Script Info]\nScriptType: v4.00+\nPlayResX: %d\nPlayResY: %d\nWrapStyle: 0\nScaledBorderAndShadow: yes\n\n", canvasW, canvasH)

	b.WriteString("[V4+ Styles]\n")
	b.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, BackColour, Bold, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV\n")
	for _, s := range stylesInUse(cues) {
		p := s.Params()
		outline := 2
		if p.BorderStyle == 3 {
			// With an opaque box the outline width becomes box padding.
			outline = 8
		}
		fmt.Fprintf(&b, "Style: %s,Arial,%d,%s,%s,1,%d,%d,0,5,0,0,0\n",
			styleID(s), fontSize, p.ASSPrimary, p.ASSBack, p.BorderStyle, outline)
	}

	b.WriteString("\n[Events]\n")
	b.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
	for _, c := range cues {
		fmt.Fprintf(&b, "Dialogue: 0,%s,%s,%s,,0,0,0,,{\\pos(%d,%d)\\fad(%d,%d)}%s\n",
			assTimestamp(c.Start), assTimestamp(c.End), styleID(c.Style),
			c.X, c.Y, fadeMs, fadeMs, escapeASS(c.Text))
	}

	return b.String()
}

func stylesInUse(cues []Cue) []Style {
	seen := make(map[Style]bool)
	var styles []Style
	for _, c := range cues {
		if !seen[c.Style] {
			seen[c.Style] = true
			styles = append(styles, c.Style)
		}
	}
	return styles
}

func styleID(s Style) string {
	return "S" + strings.ReplaceAll(s.String(), "-", "_")
}

// assTimestamp formats seconds as H:MM:SS.cc (centisecond precision).
func assTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	totalCs := int(seconds*100 + 0.5)
	h := totalCs / 360000
	totalCs %= 360000
	m := totalCs / 6000
	totalCs %= 6000
	s := totalCs / 100
	cs := totalCs % 100
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, cs)
}

// escapeASS neutralizes override-block braces and maps newlines to hard
// line breaks.
func escapeASS(text string) string {
	text = strings.ReplaceAll(text, "{", "(")
	text = strings.ReplaceAll(text, "}", ")")
	return strings.ReplaceAll(text, "\n", `\N`)
}

// anchorPoints maps named positions to canvas-relative center points.
var anchorPoints = map[string][2]float64{
	"top":           {0.5, 0.10},
	"center-top":    {0.5, 0.30},
	"center":        {0.5, 0.50},
	"center-bottom": {0.5, 0.70},
	"bottom":        {0.5, 0.90},
}

// ResolvePosition converts a named anchor or explicit percent coordinates
// to absolute pixels on the canvas. Percent coordinates take precedence
// when present; an unrecognized or empty anchor falls back to bottom.
func ResolvePosition(position string, xPct, yPct *float64, canvasW, canvasH int) (int, int) {
	rel, ok := anchorPoints[position]
	if !ok {
		rel = anchorPoints["bottom"]
	}
	x := rel[0] * float64(canvasW)
	y := rel[1] * float64(canvasH)
	if xPct != nil {
		x = *xPct / 100 * float64(canvasW)
	}
	if yPct != nil {
		y = *yPct / 100 * float64(canvasH)
	}
	return int(x + 0.5), int(y + 0.5)
}
