package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
)

var ptsTimeRe = regexp.MustCompile(`pts_time:([0-9]+(?:\.[0-9]+)?)`)

// DetectSceneCuts runs ffmpeg's content-based scene detection and returns
// the timestamps where the visual difference score exceeds threshold.
func DetectSceneCuts(ctx context.Context, videoPath string, threshold float64) ([]float64, error) {
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-hide_banner",
		"-i", videoPath,
		"-vf", fmt.Sprintf("select='gt(scene,%g)',showinfo", threshold),
		"-f", "null", "-",
	)

	// showinfo writes its trace to stderr
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("scene detection: %w: %s", err, truncate(string(output), 400))
	}

	var cuts []float64
	for _, m := range ptsTimeRe.FindAllStringSubmatch(string(output), -1) {
		if ts, err := strconv.ParseFloat(m[1], 64); err == nil {
			cuts = append(cuts, ts)
		}
	}
	return cuts, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
