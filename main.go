package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/brandops/backend/internal/api"
	"github.com/brandops/backend/internal/config"
	"github.com/brandops/backend/internal/db"
	"github.com/brandops/backend/internal/ffmpeg"
	"github.com/brandops/backend/internal/gemini"
	"github.com/brandops/backend/internal/job"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("LOG_PRETTY") != "" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	cfg := config.Load()

	for _, dir := range []string{cfg.DataPath, cfg.OutputPath, cfg.WorkDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatal().Err(err).Str("dir", dir).Msg("failed to create data directory")
		}
	}

	store, err := db.NewJobStore(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize job store")
	}
	defer store.Close()

	if cfg.GeminiAPIKey == "" {
		log.Warn().Msg("GEMINI_API_KEY not set, detection and translation calls will fail")
	}
	visionClient := gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiVisionModel)
	textClient := gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiTextModel)

	log.Info().Str("encoder", ffmpeg.SelectEncoder()).Msg("video encoder selected")

	stages := job.NewStages(job.PipelineConfig{
		Vision:     visionClient,
		Text:       textClient,
		FontPath:   cfg.FontPath,
		BrandNames: cfg.BrandNames,
	})
	coordinator := job.NewCoordinator(store, stages, cfg.OutputPath, cfg.WorkDir)

	router := api.NewRouter(coordinator, cfg.CORSOrigins)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info().Msg("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	log.Info().Str("port", cfg.Port).Str("output", cfg.OutputPath).Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server failed")
	}
}
