package segment

import (
	"math"
	"testing"
)

const interval = 0.5

func det(text string) Detection {
	return Detection{Text: text}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

// Three sightings of "SALE" at 0.0, 0.5 and 2.5 with empty frames between
// must yield two segments: the 2.0s gap exceeds the 0.5s tolerance.
func TestBuilder_GapSplitsOccurrences(t *testing.T) {
	b := NewBuilder(interval, nil)
	b.ObserveFrame(0.0, []Detection{det("SALE")})
	b.ObserveFrame(0.5, []Detection{det("SALE")})
	b.ObserveFrame(1.0, nil)
	b.ObserveFrame(1.5, nil)
	b.ObserveFrame(2.0, nil)
	b.ObserveFrame(2.5, []Detection{det("SALE")})

	segs := b.Finish(0)
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments got %d: %+v", len(segs), segs)
	}
	if !approx(segs[0].Start, 0.0) || !approx(segs[0].End, 1.0) {
		t.Fatalf("first segment timing wrong: %+v", segs[0])
	}
	if !approx(segs[1].Start, 2.5) || !approx(segs[1].End, 3.0) {
		t.Fatalf("second segment timing wrong: %+v", segs[1])
	}
}

func TestBuilder_AdjacentFramesMerge(t *testing.T) {
	b := NewBuilder(interval, nil)
	b.ObserveFrame(0.0, []Detection{det("NEW DROP")})
	b.ObserveFrame(0.5, []Detection{det("NEW DROP")})
	b.ObserveFrame(1.0, []Detection{det("NEW DROP")})

	segs := b.Finish(0)
	if len(segs) != 1 {
		t.Fatalf("expected 1 segment got %d", len(segs))
	}
	if !approx(segs[0].Start, 0.0) || !approx(segs[0].End, 1.5) {
		t.Fatalf("timing wrong: %+v", segs[0])
	}
}

// Detections at t and t+g merge iff g <= frame interval, even when the
// stream itself skipped the frames in between.
func TestBuilder_MergeContract(t *testing.T) {
	b := NewBuilder(interval, nil)
	b.ObserveFrame(0.0, []Detection{det("FREE SHIPPING")})
	b.ObserveFrame(0.5, []Detection{det("FREE SHIPPING")})
	if segs := b.Finish(0); len(segs) != 1 {
		t.Fatalf("g == f must merge, got %d segments", len(segs))
	}

	b = NewBuilder(interval, nil)
	b.ObserveFrame(0.0, []Detection{det("FREE SHIPPING")})
	b.ObserveFrame(2.5, []Detection{det("FREE SHIPPING")})
	segs := b.Finish(0)
	if len(segs) != 2 {
		t.Fatalf("g > f must split, got %d segments", len(segs))
	}
	if segs[0].End >= segs[1].Start {
		t.Fatalf("segments not disjoint: %+v", segs)
	}
	if !approx(segs[1].Start, 2.5) {
		t.Fatalf("second occurrence must start at its detection: %+v", segs[1])
	}
}

func TestBuilder_ClosingContract(t *testing.T) {
	b := NewBuilder(interval, nil)
	b.ObserveFrame(0.0, []Detection{det("LAST CHANCE"), det("SHOP NOW")})
	b.ObserveFrame(0.5, []Detection{det("SHOP NOW")})
	b.ObserveFrame(1.0, []Detection{det("SHOP NOW")})

	segs := b.Finish(0)
	lastFrame := 1.0
	for _, s := range segs {
		if s.End > lastFrame+interval+1e-6 {
			t.Fatalf("segment ends past last frame + interval: %+v", s)
		}
		if s.End <= s.Start {
			t.Fatalf("segment end precedes start: %+v", s)
		}
	}
}

// Case and emoji noise must not split a continuous segment; display text
// keeps the first sighting's casing.
func TestBuilder_NormalizedMatching(t *testing.T) {
	b := NewBuilder(interval, nil)
	b.ObserveFrame(0.0, []Detection{det("Summer Sale")})
	b.ObserveFrame(0.5, []Detection{det("SUMMER SALE 🔥")})

	segs := b.Finish(0)
	if len(segs) != 1 {
		t.Fatalf("expected 1 segment got %d: %+v", len(segs), segs)
	}
	if segs[0].Text != "Summer Sale" {
		t.Fatalf("display text should keep first casing, got %q", segs[0].Text)
	}
}

func TestBuilder_EmojiOnlyDetectionDiscarded(t *testing.T) {
	b := NewBuilder(interval, nil)
	b.ObserveFrame(0.0, []Detection{det("🔥🔥🔥")})
	if segs := b.Finish(0); len(segs) != 0 {
		t.Fatalf("expected no segments got %+v", segs)
	}
}

func TestBuilder_BrandAndSizeFilters(t *testing.T) {
	b := NewBuilder(interval, []string{"Thread & Loom"})
	b.ObserveFrame(0.0, []Detection{det("THREAD & LOOM"), det("S M L XL"), det("Organic Cotton Tees")})
	b.ObserveFrame(0.5, []Detection{det("THREAD & LOOM"), det("Organic Cotton Tees")})

	segs := b.Finish(0)
	if len(segs) != 1 {
		t.Fatalf("expected only the copy segment, got %+v", segs)
	}
	if segs[0].Text != "Organic Cotton Tees" {
		t.Fatalf("wrong survivor: %q", segs[0].Text)
	}
}

func TestBuilder_LongSpanFilteredAsPrintedText(t *testing.T) {
	b := NewBuilder(interval, nil)
	for ts := 0.0; ts <= 9.0; ts += interval {
		b.ObserveFrame(ts, []Detection{det("garment print")})
	}
	// 9.5s of 10.0s total exceeds the 70% printed-text heuristic
	if segs := b.Finish(10.0); len(segs) != 0 {
		t.Fatalf("expected printed-text span dropped, got %+v", segs)
	}
}

func TestBuilder_FinalMergeUnifiesNearSegments(t *testing.T) {
	b := NewBuilder(interval, nil)
	b.ObserveFrame(0.0, []Detection{det("30% OFF")})
	b.ObserveFrame(0.5, nil) // flicker: detector missed one frame
	b.ObserveFrame(1.0, []Detection{det("30% OFF")})
	b.ObserveFrame(1.5, []Detection{det("30% OFF")})

	segs := b.Finish(0)
	if len(segs) != 1 {
		t.Fatalf("expected flicker healed into 1 segment, got %+v", segs)
	}
	if !approx(segs[0].Start, 0.0) || !approx(segs[0].End, 2.0) {
		t.Fatalf("merged timing wrong: %+v", segs[0])
	}
}

func TestBuilder_PositionFromFirstSighting(t *testing.T) {
	x := 50.0
	y := 80.0
	b := NewBuilder(interval, nil)
	b.ObserveFrame(0.0, []Detection{{Text: "SHOP THE LOOK", Position: "bottom", X: &x, Y: &y}})
	b.ObserveFrame(0.5, []Detection{{Text: "SHOP THE LOOK"}})

	segs := b.Finish(0)
	if len(segs) != 1 {
		t.Fatalf("expected 1 segment got %d", len(segs))
	}
	if segs[0].Position != "bottom" || segs[0].X == nil || *segs[0].X != 50.0 {
		t.Fatalf("position metadata lost: %+v", segs[0])
	}
}
