package main

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/matt-steen/review-tracker/pkg/config"
	"github.com/matt-steen/review-tracker/pkg/controller"
	"github.com/matt-steen/review-tracker/pkg/dates"
	"github.com/matt-steen/review-tracker/pkg/db"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	ctx := context.Background()

	dir, err := config.Dir()
	if err != nil {
		panic(err)
	}

	cfg, err := config.LoadOrCreate(filepath.Join(dir, config.DefaultConfigFileName))
	if err != nil {
		panic(err)
	}

	filePerms := 0o666

	logFile, err := os.OpenFile(cfg.LogPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, fs.FileMode(filePerms))
	if err != nil {
		panic(err)
	}

	defer logFile.Close()

	log.Logger = log.With().Caller().Logger().Output(zerolog.ConsoleWriter{
		Out: logFile, TimeFormat: "2006-01-02_15:04:05",
	})

	log.Info().Msg("starting application...")

	if cfg.Timezone != "" {
		if err := dates.SetZone(cfg.Timezone); err != nil {
			log.Warn().Err(err).Msg("keeping the default timezone")
		}
	}

	store, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		panic(err)
	}

	defer store.Close()

	controller, err := controller.NewController(ctx, store, cfg)
	if err != nil {
		panic(err)
	}

	controller.Go()
}
