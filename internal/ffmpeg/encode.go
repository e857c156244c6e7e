package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// TimedOverlay is a transparent image composited onto the video for a
// bounded time window (visible while start <= t < end).
type TimedOverlay struct {
	Path  string
	Start float64
	End   float64
	X     int // top-left pixel
	Y     int
}

// BurnInRequest describes one output encode: an ASS subtitle track and/or
// a sequence of timed image overlays applied to the input in a single
// encoding pass. Running both stages in one filtergraph avoids the quality
// loss of chained re-encodes.
type BurnInRequest struct {
	Input        string
	Output       string
	SubtitlePath string // ASS file, may be empty when only overlays exist
	Overlays     []TimedOverlay
}

// BurnIn renders the request with ffmpeg. The audio stream is copied
// untouched. A non-zero tool exit is returned as an error with the tail of
// the tool output attached.
func BurnIn(ctx context.Context, req BurnInRequest) error {
	if req.SubtitlePath == "" && len(req.Overlays) == 0 {
		return fmt.Errorf("burn-in request has no subtitle track and no overlays")
	}

	encoder := SelectEncoder()

	args := []string{"-hide_banner", "-loglevel", "error"}
	if encoder == "h264_vaapi" {
		args = append(args, "-vaapi_device", findRenderDevice())
	}
	args = append(args, "-i", req.Input)
	for _, ov := range req.Overlays {
		args = append(args, "-i", ov.Path)
	}

	var chain strings.Builder
	cur := "0:v"
	next := 0
	if req.SubtitlePath != "" {
		fmt.Fprintf(&chain, "[%s]ass=%s[v%d]", cur, escapeFilterPath(req.SubtitlePath), next)
		cur = fmt.Sprintf("v%d", next)
		next++
	}
	for i, ov := range req.Overlays {
		if chain.Len() > 0 {
			chain.WriteByte(';')
		}
		fmt.Fprintf(&chain, "[%s][%d:v]overlay=%d:%d:enable='gte(t,%s)*lt(t,%s)'[v%d]",
			cur, i+1, ov.X, ov.Y, fmtSeconds(ov.Start), fmtSeconds(ov.End), next)
		cur = fmt.Sprintf("v%d", next)
		next++
	}

	args = append(args, "-filter_complex", chain.String())
	if encoder == "h264_vaapi" {
		// Hardware encoders take frames from GPU memory.
		args[len(args)-1] += fmt.Sprintf(";[%s]format=nv12,hwupload[vhw]", cur)
		cur = "vhw"
	}
	args = append(args,
		"-map", "["+cur+"]",
		"-map", "0:a?",
		"-c:v", encoder,
	)
	if encoder == "libx264" {
		args = append(args, "-preset", "medium", "-crf", "20")
	}
	args = append(args,
		"-c:a", "copy",
		"-y",
		req.Output,
	)

	log.Debug().Str("output", req.Output).Int("overlays", len(req.Overlays)).Msg("starting burn-in encode")
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("encode: %w: %s", err, truncate(string(output), 400))
	}
	return nil
}

func fmtSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// escapeFilterPath quotes a path for use inside a filtergraph argument.
func escapeFilterPath(p string) string {
	r := strings.NewReplacer(`\`, `\\`, `:`, `\:`, `'`, `\'`, `,`, `\,`, `[`, `\[`, `]`, `\]`)
	return "'" + r.Replace(p) + "'"
}
