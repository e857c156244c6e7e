package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog/log"
)

// Frame is one sampled still image. Timestamp is implied by ordinal
// position: (Index-1) * frame interval.
type Frame struct {
	Index     int
	Timestamp float64
	Path      string
}

// ExtractFrames samples videoPath at the given rate into workDir, bounded
// to maxDuration seconds. Filenames sort lexicographically in frame order.
// A tool failure or an empty result is "no content to analyze", not an
// error: the caller receives an empty slice.
func ExtractFrames(ctx context.Context, videoPath, workDir string, fps, maxDuration float64) ([]Frame, error) {
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return nil, fmt.Errorf("create frame dir: %w", err)
	}

	pattern := filepath.Join(workDir, "frame_%05d.jpg")
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-hide_banner", "-loglevel", "error",
		"-i", videoPath,
		"-t", fmt.Sprintf("%.3f", maxDuration),
		"-vf", fmt.Sprintf("fps=%g", fps),
		"-q:v", "2",
		"-y",
		pattern,
	)

	if output, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warn().Err(err).Str("video", videoPath).Str("output", string(output)).
			Msg("frame extraction failed, treating as no content")
		return nil, nil
	}

	entries, err := os.ReadDir(workDir)
	if err != nil {
		return nil, fmt.Errorf("read frame dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".jpg" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	interval := 1.0 / fps
	frames := make([]Frame, 0, len(names))
	for i, name := range names {
		frames = append(frames, Frame{
			Index:     i + 1,
			Timestamp: float64(i) * interval,
			Path:      filepath.Join(workDir, name),
		})
	}

	if len(frames) == 0 {
		log.Warn().Str("video", videoPath).Msg("ffmpeg produced zero frames")
	}
	return frames, nil
}
