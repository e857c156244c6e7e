package segment

import (
	"math"
	"sort"
)

// Scene is a contiguous timeline partition derived from visual cut
// detection, independent of text content.
type Scene struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// SplitScenes builds scene intervals from raw cut timestamps. Cuts closer
// than epsilon to their predecessor are coalesced into one cluster (the
// cluster keeps its first timestamp), intervals shorter than minDuration
// are merged into the next neighbor (previous for the last interval), and
// bounds are rounded to one decimal. A video shorter than minDuration
// yields a single full-length scene.
func SplitScenes(cuts []float64, duration, epsilon, minDuration float64) []Scene {
	if duration <= 0 {
		return nil
	}

	sorted := make([]float64, 0, len(cuts))
	for _, c := range cuts {
		if c >= 0 && c < duration {
			sorted = append(sorted, c)
		}
	}
	sort.Float64s(sorted)

	// Coalesce near-duplicate cuts. Comparison is against the previous
	// raw cut, so a run of closely spaced cuts collapses to its first.
	kept := []float64{0}
	prev := 0.0
	for _, c := range sorted {
		if c-prev < epsilon {
			prev = c
			continue
		}
		kept = append(kept, c)
		prev = c
	}

	scenes := make([]Scene, 0, len(kept))
	for i, start := range kept {
		end := duration
		if i+1 < len(kept) {
			end = kept[i+1]
		}
		if end-start > timeEps {
			scenes = append(scenes, Scene{Start: start, End: end})
		}
	}

	scenes = mergeShort(scenes, minDuration)

	for i := range scenes {
		scenes[i].Start = round1(scenes[i].Start)
		scenes[i].End = round1(scenes[i].End)
	}
	return scenes
}

func mergeShort(scenes []Scene, minDuration float64) []Scene {
	for len(scenes) > 1 {
		idx := -1
		for i, s := range scenes {
			if s.End-s.Start < minDuration-timeEps {
				idx = i
				break
			}
		}
		if idx < 0 {
			break
		}
		if idx == len(scenes)-1 {
			// Last interval merges backward.
			scenes[idx-1].End = scenes[idx].End
			scenes = scenes[:idx]
			continue
		}
		scenes[idx+1].Start = scenes[idx].Start
		scenes = append(scenes[:idx], scenes[idx+1:]...)
	}
	return scenes
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// AssignToScenes times caller-supplied overlay texts by mapping the i-th
// text onto the i-th scene. Surplus texts all land on the last scene;
// surplus scenes carry no text. Blank texts are dropped.
func AssignToScenes(texts []string, scenes []Scene) []Segment {
	if len(scenes) == 0 {
		return nil
	}
	var segs []Segment
	for i, text := range texts {
		display, _, ok := Normalize(text)
		if !ok {
			continue
		}
		scene := scenes[len(scenes)-1]
		if i < len(scenes) {
			scene = scenes[i]
		}
		segs = append(segs, Segment{
			Text:     display,
			Start:    scene.Start,
			End:      scene.End,
			Position: "bottom",
		})
	}
	return segs
}
