package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/kwhalen/doorboard/internal/config"
	"github.com/kwhalen/doorboard/internal/db"
	"github.com/kwhalen/doorboard/internal/doorboard/service"
	"github.com/kwhalen/doorboard/internal/doorboard/store/sqlite"
	"github.com/kwhalen/doorboard/internal/httpapi"
	"github.com/kwhalen/doorboard/internal/photos"
)

func main() {
	_ = godotenv.Load() // optional .env for dev; real env wins

	cfg, err := config.Load()
	if err != nil {
		l := zerolog.New(os.Stderr)
		l.Fatal().Err(err).Msg("config")
	}

	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, db.Config{Path: cfg.DBPath, Env: cfg.Env})
	if err != nil {
		logger.Fatal().Err(err).Msg("open db")
	}
	defer conn.Close()

	if cfg.Env == "dev" {
		if err := db.SeedDev(ctx, conn); err != nil {
			logger.Fatal().Err(err).Msg("seed dev data")
		}
	}

	writer := db.NewWorker(conn)
	defer writer.Close()

	presenceStore := sqlite.NewPresenceStore(conn, writer)
	directoryStore := sqlite.NewDirectoryStore(conn)

	aggregator := service.NewAggregator(presenceStore, time.Duration(cfg.DebounceSeconds)*time.Second)
	resolver := photos.NewTemplateResolver(cfg.PhotoURLTemplate, logger)
	feed := service.NewFeedService(presenceStore, resolver, cfg.FeedDefaultLimit, cfg.FeedMaxLimit)
	visibility := service.NewVisibilityResolver(directoryStore)

	pruner := service.NewPresencePruner(presenceStore, service.PrunerConfig{
		RetentionDays: cfg.RetentionDays,
		IntervalHours: cfg.PruneIntervalHours,
	}, logger)
	pruner.Start(ctx)
	defer pruner.Stop()

	var customCSS string
	if cfg.CustomCSSPath != "" {
		b, err := os.ReadFile(cfg.CustomCSSPath)
		if err != nil {
			logger.Warn().Err(err).Str("path", cfg.CustomCSSPath).Msg("custom css unreadable, using built-in")
		} else {
			customCSS = string(b)
		}
	}

	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:     logger,
		Addr:       cfg.HTTPAddr,
		Aggregator: aggregator,
		Feed:       feed,
		Visibility: visibility,
		Display: httpapi.DisplayConfig{
			CodeWord:    cfg.CodeWord,
			Doors:       cfg.Doors,
			PollSeconds: cfg.PollSeconds,
			CardCap:     cfg.CardCap,
			CustomCSS:   customCSS,
		},
	})

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("listening")
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("server")
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func newLogger(cfg config.Config) zerolog.Logger {
	switch strings.ToLower(strings.TrimSpace(cfg.LogLevel)) {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn", "warning":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	var out = os.Stdout
	if cfg.LogPretty {
		return zerolog.New(zerolog.ConsoleWriter{Out: out}).With().Timestamp().Logger()
	}
	return zerolog.New(out).With().Timestamp().Str("service", "doorboard").Logger()
}
