package render

import (
	"strings"
	"testing"
)

func TestParseStyle_KnownNames(t *testing.T) {
	for _, name := range []string{"black-box", "white-box", "outline", "rounded-white", "rounded-black"} {
		s, err := ParseStyle(name)
		if err != nil {
			t.Fatalf("ParseStyle(%q): %v", name, err)
		}
		if s.String() != name {
			t.Fatalf("round trip failed: %q -> %q", name, s.String())
		}
	}
}

func TestParseStyle_EmptyIsDefault(t *testing.T) {
	s, err := ParseStyle("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s != StyleBlackBox {
		t.Fatalf("expected default black-box, got %v", s)
	}
}

func TestParseStyle_UnknownRejected(t *testing.T) {
	if _, err := ParseStyle("sparkly"); err == nil {
		t.Fatal("expected error for unknown style")
	}
}

func TestStyleParams_TotalMapping(t *testing.T) {
	for _, s := range []Style{StyleBlackBox, StyleWhiteBox, StyleOutline, StyleRoundedWhite, StyleRoundedBlack} {
		p := s.Params()
		if p.Rounded {
			continue
		}
		if p.ASSPrimary == "" || p.ASSBack == "" || p.BorderStyle == 0 {
			t.Fatalf("incomplete params for %v: %+v", s, p)
		}
	}
	if !StyleRoundedWhite.Params().Rounded || !StyleRoundedBlack.Params().Rounded {
		t.Fatal("rounded styles must take the overlay path")
	}
}

func TestBuildTrack_TimingAndPosition(t *testing.T) {
	track := BuildTrack([]Cue{
		{Text: "SALE", Start: 0, End: 1.0, Style: StyleBlackBox, X: 540, Y: 1730},
		{Text: "NEW DROP", Start: 2.5, End: 3.0, Style: StyleBlackBox, X: 540, Y: 190},
	}, 1080, 1920, 64)

	for _, want := range []string{
		"PlayResX: 1080",
		"PlayResY: 1920",
		"Dialogue: 0,0:00:00.00,0:00:01.00,Sblack_box,,0,0,0,,{\\pos(540,1730)\\fad(150,150)}SALE",
		"Dialogue: 0,0:00:02.50,0:00:03.00,Sblack_box,,0,0,0,,{\\pos(540,190)\\fad(150,150)}NEW DROP",
	} {
		if !strings.Contains(track, want) {
			t.Fatalf("track missing %q:\n%s", want, track)
		}
	}
}

func TestBuildTrack_OneStyleSectionPerStyle(t *testing.T) {
	track := BuildTrack([]Cue{
		{Text: "a", Start: 0, End: 1, Style: StyleBlackBox},
		{Text: "b", Start: 1, End: 2, Style: StyleBlackBox},
		{Text: "c", Start: 2, End: 3, Style: StyleOutline},
	}, 1080, 1920, 64)

	if got := strings.Count(track, "Style: Sblack_box,"); got != 1 {
		t.Fatalf("expected 1 black_box style line, got %d", got)
	}
	if got := strings.Count(track, "Style: Soutline,"); got != 1 {
		t.Fatalf("expected 1 outline style line, got %d", got)
	}
}

func TestEscapeASS(t *testing.T) {
	got := escapeASS("line1\nline2 {x}")
	if got != `line1\Nline2 (x)` {
		t.Fatalf("got %q", got)
	}
}

func TestResolvePosition_NamedAnchors(t *testing.T) {
	x, y := ResolvePosition("bottom", nil, nil, 1080, 1920)
	if x != 540 || y != 1728 {
		t.Fatalf("bottom anchor: got (%d,%d)", x, y)
	}
	x, y = ResolvePosition("center", nil, nil, 1080, 1920)
	if x != 540 || y != 960 {
		t.Fatalf("center anchor: got (%d,%d)", x, y)
	}
}

func TestResolvePosition_PercentOverrides(t *testing.T) {
	px := 25.0
	py := 10.0
	x, y := ResolvePosition("bottom", &px, &py, 1080, 1920)
	if x != 270 || y != 192 {
		t.Fatalf("percent override: got (%d,%d)", x, y)
	}
}

func TestResolvePosition_UnknownAnchorFallsBack(t *testing.T) {
	x, y := ResolvePosition("sideways", nil, nil, 1080, 1920)
	bx, by := ResolvePosition("bottom", nil, nil, 1080, 1920)
	if x != bx || y != by {
		t.Fatalf("unknown anchor should fall back to bottom: got (%d,%d)", x, y)
	}
}

func TestAssTimestamp(t *testing.T) {
	cases := map[float64]string{
		0:       "0:00:00.00",
		1.5:     "0:00:01.50",
		61.25:   "0:01:01.25",
		3599.99: "0:59:59.99",
		3600:    "1:00:00.00",
	}
	for in, want := range cases {
		if got := assTimestamp(in); got != want {
			t.Fatalf("assTimestamp(%v) = %q want %q", in, got, want)
		}
	}
}
