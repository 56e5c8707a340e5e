package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"hotel_value/internal/adapters/export"
	"hotel_value/internal/adapters/observability"
	"hotel_value/internal/app"
	"hotel_value/internal/domain"
	"hotel_value/internal/shared"
	"hotel_value/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	log.Logger = observability.NewLogger(cfg.AppEnv, "analyzer", cfg.LogLevel)
	observability.InitRegistry()
	ctx := context.Background()

	raws, err := readInput(cfg.InputPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.InputPath).Msg("read input")
	}
	log.Info().Int("records", len(raws)).Str("path", cfg.InputPath).Msg("input loaded")

	repo, closer, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("open store")
	}
	defer closer.Close()

	rep, err := app.NewAnalysisService(repo, cfg.NormalizeWorkers).Run(ctx, raws, cfg.TopN, cfg.InputPath)
	if err != nil {
		log.Fatal().Err(err).Msg("analysis failed")
	}
	for field, n := range rep.ParseMisses {
		log.Warn().Str("field", field).Int("records", n).Msg("unparsable values")
	}

	outputs := map[string]func(io.Writer) error{
		"top_value_hotels.json": func(w io.Writer) error { return export.WriteJSON(w, rep.Hotels) },
		"top_value_hotels.csv":  func(w io.Writer) error { return export.WriteCSV(w, rep.Hotels) },
		"top_value_hotels.xlsx": func(w io.Writer) error { return export.WriteXLSX(w, rep.Hotels) },
	}
	for name, write := range outputs {
		path := filepath.Join(cfg.OutputDir, name)
		if err := export.ToFile(path, write); err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("write output")
		}
		log.Info().Str("path", path).Msg("output written")
	}

	if err := export.WriteTable(os.Stdout, rep.Hotels); err != nil {
		log.Fatal().Err(err).Msg("print table")
	}
	fmt.Println(export.Summary(len(rep.Hotels), rep.Run.Eligible, rep.Run.Excluded, rep.Run.Duplicates))
}

func readInput(path string) ([]domain.RawHotel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return domain.DecodeRawHotels(f)
}
