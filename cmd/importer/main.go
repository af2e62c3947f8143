package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"address-api/internal/app"
	"address-api/internal/config"
	"address-api/internal/loader"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	file := flag.String("file", "", "Path to the CSV file to import (defaults to DATA_FILE)")
	truncate := flag.Bool("truncate", false, "Permanently delete existing addresses before importing")
	flag.Parse()

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *file, *truncate); err != nil {
		log.Fatal().Err(err).Msg("import failed")
	}
}

func run(ctx context.Context, file string, truncate bool) error {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		return err
	}
	if file == "" {
		file = cfg.DataFile
	}

	log.Info().Str("file", file).Msg("starting import")

	records, err := loader.NewCSVSource(file).Read(ctx)
	if err != nil {
		return err
	}
	log.Info().Int("records", len(records)).Msg("parsed CSV")

	store, err := app.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		return err
	}

	if truncate {
		if err := store.HardDeleteAll(ctx); err != nil {
			return err
		}
		log.Warn().Msg("existing addresses deleted")
	}

	for i := range records {
		records[i].IsDeleted = false
	}
	if err := store.InsertMany(ctx, records); err != nil {
		return err
	}

	visible, err := store.FetchAll(ctx)
	if err != nil {
		return err
	}

	log.Info().Int("imported", len(records)).Int("visible", len(visible)).Msg("import completed")
	return nil
}
