package job

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/brandops/backend/internal/ffmpeg"
	"github.com/brandops/backend/internal/gemini"
	"github.com/brandops/backend/internal/quality"
	"github.com/brandops/backend/internal/render"
	"github.com/brandops/backend/internal/segment"
	"github.com/brandops/backend/internal/translate"
	"github.com/brandops/backend/internal/vision"
)

// Sampling and merge constants. 2 fps trades API call volume against
// timing precision: text timing resolves to 0.5s granularity.
const (
	sampleFPS     = 2.0
	frameInterval = 1.0 / sampleFPS
	// maxAnalysisWindow bounds how much video is sampled for detection.
	maxAnalysisWindow = 120.0

	// Scene-cut detection: ffmpeg scene score threshold, coalescing epsilon
	// for near-duplicate cuts, and the minimum kept scene length.
	sceneThreshold   = 0.3
	sceneEpsilon     = 0.3
	sceneMinDuration = 1.0
)

// PipelineConfig wires the concrete stages.
type PipelineConfig struct {
	Vision     *gemini.Client
	Text       *gemini.Client
	FontPath   string
	BrandNames []string
}

// NewStages builds the production pipeline: ffmpeg frame sampling, vision
// detection, segment building, batched translation, ASS/overlay rendering
// and the post-render quality check.
func NewStages(cfg PipelineConfig) Stages {
	detector := vision.NewDetector(cfg.Vision)
	translator := translate.NewTranslator(cfg.Text)
	renderer := render.NewRenderer(cfg.FontPath)
	checker := quality.NewChecker(cfg.Text)

	analyze := func(ctx context.Context, videoPath, workDir string) ([]segment.Segment, error) {
		frameDir := filepath.Join(workDir, "frames")
		// Frames are ephemeral: gone once detection finishes, success or not.
		defer os.RemoveAll(frameDir)

		frames, err := ffmpeg.ExtractFrames(ctx, videoPath, frameDir, sampleFPS, maxAnalysisWindow)
		if err != nil {
			return nil, err
		}
		if len(frames) == 0 {
			return nil, nil
		}

		var duration float64
		if info, err := ffmpeg.Probe(videoPath); err == nil {
			duration = info.Duration
		}

		builder := segment.NewBuilder(frameInterval, cfg.BrandNames)
		for _, frame := range frames {
			detections, err := detector.DetectFrame(ctx, frame.Path)
			if err != nil {
				// Per-frame transport failures degrade to zero detections.
				log.Warn().Err(err).Str("frame", frame.Path).Msg("frame detection failed, skipping")
			}
			builder.ObserveFrame(frame.Timestamp, detections)
		}
		return builder.Finish(duration), nil
	}

	scenes := func(ctx context.Context, videoPath string) ([]segment.Scene, error) {
		info, err := ffmpeg.Probe(videoPath)
		if err != nil {
			return nil, err
		}
		cuts, err := ffmpeg.DetectSceneCuts(ctx, videoPath, sceneThreshold)
		if err != nil {
			return nil, err
		}
		return segment.SplitScenes(cuts, info.Duration, sceneEpsilon, sceneMinDuration), nil
	}

	return Stages{
		Analyze:   analyze,
		Scenes:    scenes,
		Translate: translator.TranslateBatch,
		Render:    renderer.RenderLanguage,
		Check:     checker.CheckLanguage,
	}
}
