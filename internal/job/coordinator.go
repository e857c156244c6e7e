package job

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/brandops/backend/internal/quality"
	"github.com/brandops/backend/internal/render"
	"github.com/brandops/backend/internal/segment"
	"github.com/brandops/backend/internal/translate"
)

// Stage functions injected into the coordinator. The split keeps the state
// machine testable without ffmpeg or model calls.
type (
	// AnalyzeFunc derives text segments from the source video.
	AnalyzeFunc func(ctx context.Context, videoPath, workDir string) ([]segment.Segment, error)
	// ScenesFunc partitions the video timeline by visual cut detection.
	ScenesFunc func(ctx context.Context, videoPath string) ([]segment.Scene, error)
	// TranslateFunc returns one language→text map per input text,
	// index-aligned, already carrying source-text fallbacks.
	TranslateFunc func(ctx context.Context, texts, langs []string) ([]map[string]string, error)
	// RenderFunc burns one language's cues into an output video.
	RenderFunc func(ctx context.Context, input, output string, cues []render.LocalizedCue, fontSize int, scratchDir string) error
	// CheckFunc rates one rendered language's translations.
	CheckFunc func(ctx context.Context, lang string, texts []string) quality.Check
)

// Stages bundles the pipeline implementations.
type Stages struct {
	Analyze   AnalyzeFunc
	Scenes    ScenesFunc
	Translate TranslateFunc
	Render    RenderFunc
	Check     CheckFunc
}

// Request is a job submission.
type Request struct {
	Name      string            `json:"name" validate:"required"`
	Author    string            `json:"author" validate:"required"`
	VideoPath string            `json:"video" validate:"required"`
	Texts     []string          `json:"texts,omitempty"`    // timed via scene cuts instead of detection
	Segments  []segment.Segment `json:"segments,omitempty"` // fully pre-supplied: analysis is skipped
	Style     string            `json:"style"`
	FontSize  int               `json:"font_size"`
	Languages []string          `json:"languages"`
}

const defaultFontSize = 64

// Coordinator drives localization jobs. Each job runs as one detached
// goroutine that owns all mutations of its record; other goroutines only
// read through the store or flip the cancellation flag.
type Coordinator struct {
	store     Store
	stages    Stages
	outputDir string
	workDir   string

	mu     sync.RWMutex
	active map[string]*handle
}

type handle struct {
	cancelled atomic.Bool
}

func NewCoordinator(store Store, stages Stages, outputDir, workDir string) *Coordinator {
	return &Coordinator{
		store:     store,
		stages:    stages,
		outputDir: outputDir,
		workDir:   workDir,
		active:    make(map[string]*handle),
	}
}

// Submit validates the request, persists a queued job and starts its
// pipeline in the background. Returns immediately with the job record.
func (c *Coordinator) Submit(ctx context.Context, req Request) (*Job, error) {
	if _, err := render.ParseStyle(req.Style); err != nil {
		return nil, err
	}

	langs := req.Languages
	if len(langs) == 0 {
		langs = append([]string(nil), translate.DefaultLanguages...)
	}
	for i, l := range langs {
		langs[i] = strings.ToUpper(l)
	}

	fontSize := req.FontSize
	if fontSize <= 0 {
		fontSize = defaultFontSize
	}

	j := &Job{
		ID:            uuid.New().String(),
		Name:          req.Name,
		Author:        req.Author,
		VideoPath:     req.VideoPath,
		Status:        StatusQueued,
		Style:         req.Style,
		FontSize:      fontSize,
		Languages:     langs,
		Texts:         req.Texts,
		Segments:      req.Segments,
		Outputs:       make(map[string]string),
		QualityChecks: make(map[string]quality.Check),
		Progress:      Progress{Total: len(langs)},
		CreatedAt:     time.Now(),
	}
	if err := c.store.Create(ctx, j); err != nil {
		return nil, fmt.Errorf("persist job: %w", err)
	}

	h := &handle{}
	c.mu.Lock()
	c.active[j.ID] = h
	c.mu.Unlock()

	go c.run(j, h)

	log.Info().Str("job", j.ID).Str("name", j.Name).Strs("languages", langs).Msg("job submitted")
	return j, nil
}

// Get returns the persisted job record.
func (c *Coordinator) Get(ctx context.Context, id string) (*Job, error) {
	return c.store.Get(ctx, id)
}

// List returns job records newest-first.
func (c *Coordinator) List(ctx context.Context) ([]*Job, error) {
	return c.store.List(ctx)
}

// Cancel requests cooperative cancellation. Valid only while the job is
// translating or generating; the running pipeline observes the flag at the
// next language-iteration boundary. Already-produced outputs stay in place.
func (c *Coordinator) Cancel(ctx context.Context, id string) error {
	j, err := c.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if j.Status != StatusTranslating && j.Status != StatusGenerating {
		return fmt.Errorf("job %s is %s, only translating or generating jobs can be cancelled", id, j.Status)
	}

	c.mu.RLock()
	h := c.active[id]
	c.mu.RUnlock()
	if h == nil {
		return fmt.Errorf("job %s is not running in this process", id)
	}
	h.cancelled.Store(true)
	log.Info().Str("job", id).Msg("cancellation requested")
	return nil
}

// Delete removes a finished job's record and rendered outputs. The caller
// identity must match the recorded author.
func (c *Coordinator) Delete(ctx context.Context, id, author string) error {
	j, err := c.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if j.Author != author {
		return fmt.Errorf("author mismatch: job belongs to %q", j.Author)
	}
	if !j.Status.Terminal() {
		return fmt.Errorf("job %s is still %s", id, j.Status)
	}
	if err := c.store.Delete(ctx, id); err != nil {
		return err
	}
	if err := os.RemoveAll(filepath.Join(c.outputDir, id)); err != nil {
		log.Warn().Err(err).Str("job", id).Msg("failed to remove rendered outputs")
	}
	return nil
}

// OutputPath returns the rendered file for one language.
func (c *Coordinator) OutputPath(ctx context.Context, id, lang string) (string, error) {
	j, err := c.store.Get(ctx, id)
	if err != nil {
		return "", err
	}
	path, ok := j.Outputs[strings.ToUpper(lang)]
	if !ok {
		return "", fmt.Errorf("no output for language %s", lang)
	}
	return path, nil
}

// run is the per-job pipeline driver. It is the only goroutine mutating j
// after submission.
func (c *Coordinator) run(j *Job, h *handle) {
	ctx := context.Background()
	defer func() {
		c.mu.Lock()
		delete(c.active, j.ID)
		c.mu.Unlock()
	}()

	now := time.Now()
	j.StartedAt = &now

	// Analysis is skipped when the caller supplied timed segments. With
	// bare texts the timeline comes from scene cuts instead of detection.
	switch {
	case len(j.Segments) > 0:
	case len(j.Texts) > 0:
		// Timing texts by cut detection is quick, no analyzing phase.
		scenes, err := c.stages.Scenes(ctx, j.VideoPath)
		if err != nil {
			c.fail(ctx, j, fmt.Sprintf("scene detection failed: %v", err))
			return
		}
		j.Segments = segment.AssignToScenes(j.Texts, scenes)
	default:
		if err := c.transition(ctx, j, StatusAnalyzing); err != nil {
			return
		}
		workDir := filepath.Join(c.workDir, j.ID)
		segs, err := c.stages.Analyze(ctx, j.VideoPath, workDir)
		if err != nil {
			c.fail(ctx, j, fmt.Sprintf("analysis failed: %v", err))
			return
		}
		j.Segments = segs
	}
	if len(j.Segments) == 0 {
		c.fail(ctx, j, "no overlay text found in video")
		return
	}

	if err := c.transition(ctx, j, StatusTranslating); err != nil {
		return
	}
	texts := make([]string, len(j.Segments))
	for i, s := range j.Segments {
		texts[i] = s.Text
	}
	translations, err := c.stages.Translate(ctx, texts, j.Languages)
	if err != nil {
		c.fail(ctx, j, fmt.Sprintf("translation failed: %v", err))
		return
	}

	if h.cancelled.Load() {
		c.markCancelled(ctx, j)
		return
	}
	if err := c.transition(ctx, j, StatusGenerating); err != nil {
		return
	}

	style, _ := render.ParseStyle(j.Style) // validated at submission
	jobOutDir := filepath.Join(c.outputDir, j.ID)

	for _, lang := range j.Languages {
		if h.cancelled.Load() {
			c.markCancelled(ctx, j)
			return
		}

		j.Progress.CurrentLanguage = lang
		c.persist(ctx, j)

		langTexts := make([]string, len(j.Segments))
		cues := make([]render.LocalizedCue, len(j.Segments))
		for i, s := range j.Segments {
			langTexts[i] = translations[i][lang]
			cues[i] = render.LocalizedCue{
				Text:     langTexts[i],
				Start:    s.Start,
				End:      s.End,
				Position: s.Position,
				X:        s.X,
				Y:        s.Y,
				Style:    style,
			}
		}

		outPath := filepath.Join(jobOutDir, strings.ToLower(lang)+".mp4")
		if err := os.MkdirAll(jobOutDir, 0755); err != nil {
			c.fail(ctx, j, fmt.Sprintf("create output dir: %v", err))
			return
		}
		scratch := filepath.Join(c.workDir, j.ID, strings.ToLower(lang))

		err := c.stages.Render(ctx, j.VideoPath, outPath, cues, j.FontSize, scratch)
		os.RemoveAll(scratch)
		if err != nil {
			// One language's encode failure does not abort its siblings.
			log.Error().Err(err).Str("job", j.ID).Str("lang", lang).Msg("language render failed")
			j.FailedLanguages = append(j.FailedLanguages, lang)
		} else {
			j.Outputs[lang] = outPath
			j.QualityChecks[lang] = c.stages.Check(ctx, lang, langTexts)
		}

		j.Progress.Completed++
		c.persist(ctx, j)
	}
	j.Progress.CurrentLanguage = ""

	if len(j.Outputs) == 0 {
		c.fail(ctx, j, "rendering failed for every language")
		return
	}

	done := time.Now()
	j.CompletedAt = &done
	if err := c.transition(ctx, j, StatusDone); err != nil {
		return
	}
	log.Info().Str("job", j.ID).Int("rendered", len(j.Outputs)).
		Int("failed", len(j.FailedLanguages)).Msg("job complete")
}

func (c *Coordinator) transition(ctx context.Context, j *Job, next Status) error {
	if err := j.advance(next); err != nil {
		log.Error().Err(err).Str("job", j.ID).Msg("refusing illegal transition")
		c.fail(ctx, j, err.Error())
		return err
	}
	c.persist(ctx, j)
	return nil
}

func (c *Coordinator) fail(ctx context.Context, j *Job, msg string) {
	j.Status = StatusError
	j.Error = msg
	now := time.Now()
	j.CompletedAt = &now
	c.persist(ctx, j)
	log.Error().Str("job", j.ID).Str("error", msg).Msg("job failed")
}

func (c *Coordinator) markCancelled(ctx context.Context, j *Job) {
	j.Status = StatusCancelled
	j.Cancelled = true
	now := time.Now()
	j.CompletedAt = &now
	c.persist(ctx, j)
	log.Info().Str("job", j.ID).Msg("job cancelled")
}

// persist writes the full record after every mutation. The coordinator is
// the job's single writer, so a version conflict means a bug, not a race
// to resolve; it is logged and the newest version wins on reload.
func (c *Coordinator) persist(ctx context.Context, j *Job) {
	if err := c.store.Update(ctx, j); err != nil {
		log.Error().Err(err).Str("job", j.ID).Msg("failed to persist job state")
	}
}
