// Package render produces one subtitled output video per target language:
// an ASS track for box/outline styles plus composited rounded-box image
// overlays, burned in by a single ffmpeg pass.
package render

import (
	"fmt"
	"image/color"
)

// Style is the closed set of supported subtitle looks. Unknown style names
// are rejected at construction time, never silently defaulted.
type Style int

const (
	StyleBlackBox Style = iota // white text on a solid black box
	StyleWhiteBox              // black text on a solid white box
	StyleOutline               // white text with a black outline, no box
	StyleRoundedWhite          // black text in a white rounded-corner box
	StyleRoundedBlack          // white text in a black rounded-corner box
)

var styleNames = map[Style]string{
	StyleBlackBox:     "black-box",
	StyleWhiteBox:     "white-box",
	StyleOutline:      "outline",
	StyleRoundedWhite: "rounded-white",
	StyleRoundedBlack: "rounded-black",
}

// ParseStyle resolves a style name. The empty string selects the default
// black box look.
func ParseStyle(name string) (Style, error) {
	if name == "" {
		return StyleBlackBox, nil
	}
	for s, n := range styleNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown subtitle style %q", name)
}

func (s Style) String() string {
	if n, ok := styleNames[s]; ok {
		return n
	}
	return fmt.Sprintf("style(%d)", int(s))
}

// Params are the render parameters a style maps to. The mapping is total:
// every Style value has defined parameters.
type Params struct {
	// ASS colours are &HAABBGGRR. Used by the subtitle track path.
	ASSPrimary string
	ASSBack    string
	// BorderStyle 3 draws an opaque box, 1 an outline.
	BorderStyle int
	// Rounded styles cannot be expressed with ASS box primitives and are
	// rendered as composited image overlays instead.
	Rounded bool
	// Colours for the image overlay path.
	TextColor color.RGBA
	BoxColor  color.RGBA
}

var (
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	black = color.RGBA{R: 0, G: 0, B: 0, A: 255}
)

// Params returns the render parameters for the style.
func (s Style) Params() Params {
	switch s {
	case StyleWhiteBox:
		return Params{
			ASSPrimary:  "&H00000000",
			ASSBack:     "&H00FFFFFF",
			BorderStyle: 3,
			TextColor:   black,
			BoxColor:    white,
		}
	case StyleOutline:
		return Params{
			ASSPrimary:  "&H00FFFFFF",
			ASSBack:     "&H00000000",
			BorderStyle: 1,
			TextColor:   white,
			BoxColor:    black,
		}
	case StyleRoundedWhite:
		return Params{
			Rounded:   true,
			TextColor: black,
			BoxColor:  white,
		}
	case StyleRoundedBlack:
		return Params{
			Rounded:   true,
			TextColor: white,
			BoxColor:  black,
		}
	default: // StyleBlackBox
		return Params{
			ASSPrimary:  "&H00FFFFFF",
			ASSBack:     "&H00000000",
			BorderStyle: 3,
			TextColor:   white,
			BoxColor:    black,
		}
	}
}
