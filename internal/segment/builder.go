// Package segment turns noisy per-frame overlay text detections into
// temporally coherent text segments, and partitions timelines into scenes
// from visual cut points.
package segment

import (
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// timeEps absorbs float drift when comparing frame timestamps.
const timeEps = 1e-6

// finalMergeGap is the maximum silence between two closed segments of
// identical text that still get unified in the post-processing pass.
const finalMergeGap = 0.5

// maxSpanFraction marks text visible for most of the video as printed on
// the product rather than added in post.
const maxSpanFraction = 0.70

// minTextRunes below which a detection is treated as OCR noise.
const minTextRunes = 2

var sizeLabelRe = regexp.MustCompile(`^(?i)(xxs|xs|s|m|l|xl|xxl|xxxl|2xl|3xl|4xl)([\s/|,-]+(xxs|xs|s|m|l|xl|xxl|xxxl|2xl|3xl|4xl))*$`)

// Detection is one vision-model sighting of a text fragment in one frame.
type Detection struct {
	Text     string   `json:"text"`
	Position string   `json:"position,omitempty"` // top, center, bottom, center-top, center-bottom
	X        *float64 `json:"x,omitempty"`        // percent of canvas width
	Y        *float64 `json:"y,omitempty"`        // percent of canvas height
}

// Segment is a time-bounded unit of overlay text. Start is strictly less
// than End and Text is non-empty after normalization.
type Segment struct {
	Text     string   `json:"text"`
	Start    float64  `json:"start"`
	End      float64  `json:"end"`
	Position string   `json:"position,omitempty"`
	X        *float64 `json:"x,omitempty"`
	Y        *float64 `json:"y,omitempty"`
}

type openEntry struct {
	key      string
	text     string
	position string
	x, y     *float64
	start    float64
	lastSeen float64 // timestamp of the most recent sighting
}

// Builder consumes frame detections in non-decreasing timestamp order.
// Matching is exact on the normalized key; a detection extends an open
// entry only while the gap from its last sighting stays within one frame
// interval, otherwise the text is treated as having reappeared.
type Builder struct {
	interval  float64
	brandKeys map[string]bool
	open      []*openEntry
	closed    []Segment
}

// NewBuilder creates a builder for the given frame interval. brandNames
// are filtered out of the final result when a segment consists of nothing
// else (a logo sighting, not overlay copy).
func NewBuilder(frameInterval float64, brandNames []string) *Builder {
	keys := make(map[string]bool, len(brandNames))
	for _, n := range brandNames {
		if _, key, ok := Normalize(n); ok {
			keys[key] = true
		}
	}
	return &Builder{interval: frameInterval, brandKeys: keys}
}

// ObserveFrame folds one frame's detections into the open entry table.
func (b *Builder) ObserveFrame(ts float64, detections []Detection) {
	seen := make(map[string]bool, len(detections))

	for _, d := range detections {
		display, key, ok := Normalize(d.Text)
		if !ok {
			continue
		}
		if seen[key] {
			continue
		}
		seen[key] = true

		e := b.findOpen(key)
		if e == nil {
			b.openNew(key, display, d, ts)
			continue
		}
		if ts-e.lastSeen <= b.interval+timeEps {
			e.lastSeen = ts
			if e.position == "" {
				e.position = d.Position
			}
			if e.x == nil {
				e.x, e.y = d.X, d.Y
			}
			continue
		}
		// Same text after a gap: a new occurrence, not a continuation.
		b.closeEntry(e, e.lastSeen+b.interval)
		b.openNew(key, display, d, ts)
	}

	// Exact-match absence closes an entry at the current timestamp.
	// Fuzzy matches deliberately do not keep entries open.
	remaining := b.open[:0]
	for _, e := range b.open {
		if seen[e.key] {
			remaining = append(remaining, e)
			continue
		}
		b.closed = append(b.closed, b.toSegment(e, ts))
	}
	b.open = remaining
}

// Finish closes remaining entries at lastSeen plus one frame interval and
// runs the post-processing filters. totalDuration bounds the printed-text
// span heuristic; pass 0 to skip it.
func (b *Builder) Finish(totalDuration float64) []Segment {
	for _, e := range b.open {
		b.closed = append(b.closed, b.toSegment(e, e.lastSeen+b.interval))
	}
	b.open = nil

	kept := b.closed[:0]
	for _, s := range b.closed {
		if b.discard(s, totalDuration) {
			continue
		}
		kept = append(kept, s)
	}

	merged := mergeFinal(kept, finalMergeGap)
	sort.Slice(merged, func(i, j int) bool { return merged[i].Start < merged[j].Start })
	return merged
}

func (b *Builder) findOpen(key string) *openEntry {
	for _, e := range b.open {
		if e.key == key {
			return e
		}
	}
	return nil
}

func (b *Builder) openNew(key, display string, d Detection, ts float64) {
	b.open = append(b.open, &openEntry{
		key:      key,
		text:     display,
		position: d.Position,
		x:        d.X,
		y:        d.Y,
		start:    ts,
		lastSeen: ts,
	})
}

func (b *Builder) closeEntry(e *openEntry, end float64) {
	b.closed = append(b.closed, b.toSegment(e, end))
}

func (b *Builder) toSegment(e *openEntry, end float64) Segment {
	if end <= e.start {
		end = e.start + b.interval
	}
	return Segment{
		Text:     e.text,
		Start:    e.start,
		End:      end,
		Position: e.position,
		X:        e.x,
		Y:        e.y,
	}
}

func (b *Builder) discard(s Segment, totalDuration float64) bool {
	_, key, ok := Normalize(s.Text)
	if !ok {
		return true
	}
	if b.brandKeys[key] {
		log.Debug().Str("text", s.Text).Msg("segment dropped: brand name only")
		return true
	}
	if sizeLabelRe.MatchString(key) {
		log.Debug().Str("text", s.Text).Msg("segment dropped: size label")
		return true
	}
	if len([]rune(strings.ReplaceAll(key, " ", ""))) < minTextRunes {
		return true
	}
	if totalDuration > 0 && s.End-s.Start > maxSpanFraction*totalDuration {
		log.Debug().Str("text", s.Text).Float64("span", s.End-s.Start).
			Msg("segment dropped: spans most of the video, likely printed on product")
		return true
	}
	return false
}

// mergeFinal unifies closed segments with identical normalized text that
// overlap or sit within gap seconds of each other.
func mergeFinal(segs []Segment, gap float64) []Segment {
	byKey := make(map[string][]Segment)
	order := make([]string, 0, len(segs))
	for _, s := range segs {
		_, key, _ := Normalize(s.Text)
		if _, ok := byKey[key]; !ok {
			order = append(order, key)
		}
		byKey[key] = append(byKey[key], s)
	}

	var out []Segment
	for _, key := range order {
		group := byKey[key]
		sort.Slice(group, func(i, j int) bool { return group[i].Start < group[j].Start })
		cur := group[0]
		for _, s := range group[1:] {
			if s.Start-cur.End <= gap+timeEps {
				if s.End > cur.End {
					cur.End = s.End
				}
				continue
			}
			out = append(out, cur)
			cur = s
		}
		out = append(out, cur)
	}
	return out
}
