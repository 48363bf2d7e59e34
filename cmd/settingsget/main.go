package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/OCharnyshevich/voxelgd/internal/config"
)

func main() {
	var (
		src = flag.String("src", "", "go-getter source of the config file (path, https://, git::, s3::, gcs::)")
		out = flag.String("o", "./voxelgd.yaml", "output file path")
	)
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *src == "" {
		log.Error("source required")
		os.Exit(2)
	}
	if *out == "" {
		log.Error("output file path required")
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := os.RemoveAll(*out); err != nil {
		log.Error("remove previous file", "path", *out, "error", err)
		os.Exit(1)
	}

	log.Info("start downloading config", "src", *src, "path", *out)
	if err := config.Fetch(ctx, *src, *out); err != nil {
		log.Error("download config", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load(*out)
	if err != nil {
		log.Error("downloaded config is invalid", "error", err)
		os.Exit(1)
	}
	log.Info("done downloading config",
		"path", *out,
		"seed", cfg.Seed,
		"generator", cfg.Generator,
		"render_distance", cfg.RenderDistance,
	)
}
