package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"hotel_value/internal/adapters/browser"
	"hotel_value/internal/adapters/export"
	"hotel_value/internal/adapters/obilet"
	"hotel_value/internal/adapters/observability"
	"hotel_value/internal/app"
	"hotel_value/internal/domain"
	"hotel_value/internal/shared"
)

func main() {
	_ = godotenv.Load() // a missing .env is fine

	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	log.Logger = observability.NewLogger(cfg.AppEnv, "ingestor", cfg.LogLevel)
	observability.Serve(cfg.MetricsAddr, observability.InitRegistry())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var src domain.ListingSource
	if cfg.UseBrowser {
		src = browser.New(browser.Options{
			Headless:       cfg.Headless,
			ItemSelector:   obilet.Card,
			ScrollAttempts: cfg.ScrollAttempts,
			ScrollWait:     cfg.ScrollWait(),
		})
	} else {
		src = obilet.New(cfg.CollectRPS)
	}
	ing := app.NewIngestionService(src, obilet.ParseListing, cfg.CollectWorkers)

	log.Info().
		Str("base", cfg.BaseURL).
		Strs("cities", cfg.CityCodes).
		Bool("browser", cfg.UseBrowser).
		Str("schedule", cfg.ScrapeSchedule).
		Msg("ingestor starting")

	if cfg.ScrapeSchedule == "" {
		if err := collect(ctx, ing, cfg); err != nil {
			log.Fatal().Err(err).Msg("collection failed")
		}
		return
	}

	c := cron.New()
	if _, err := c.AddFunc(cfg.ScrapeSchedule, func() {
		if err := collect(ctx, ing, cfg); err != nil {
			log.Error().Err(err).Msg("scheduled collection failed")
		}
	}); err != nil {
		log.Fatal().Err(err).Msg("invalid schedule")
	}
	c.Start()
	<-ctx.Done()
	// wait for a running collection to finish
	<-c.Stop().Done()
	log.Info().Msg("ingestor stopped")
}

func collect(ctx context.Context, ing *app.IngestionService, cfg shared.Config) error {
	checkin, checkout := cfg.Checkin, cfg.Checkout
	if checkin == "" || checkout == "" {
		checkin, checkout = obilet.NextWeekend(time.Now())
	}
	urls := make([]string, len(cfg.CityCodes))
	for i, city := range cfg.CityCodes {
		urls[i] = obilet.SearchURL(cfg.BaseURL, city, checkin, checkout, cfg.Adults)
	}

	out, err := ing.Collect(ctx, urls)
	if err != nil {
		return err
	}

	jsonPath := cfg.InputPath
	csvPath := strings.TrimSuffix(jsonPath, filepath.Ext(jsonPath)) + ".csv"
	if err := export.ToFile(jsonPath, func(w io.Writer) error { return export.WriteJSON(w, out.Hotels) }); err != nil {
		return err
	}
	if err := export.ToFile(csvPath, func(w io.Writer) error { return export.WriteCSV(w, out.Hotels) }); err != nil {
		return err
	}
	log.Info().
		Int("hotels", len(out.Hotels)).
		Int("duplicates", out.Duplicates).
		Str("json", jsonPath).
		Str("csv", csvPath).
		Msg("hotels saved")
	return nil
}
