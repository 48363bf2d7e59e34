package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/OCharnyshevich/voxelgd/internal/config"
	"github.com/OCharnyshevich/voxelgd/internal/export"
	"github.com/OCharnyshevich/voxelgd/internal/voxel"
	"github.com/OCharnyshevich/voxelgd/internal/world"
	"github.com/OCharnyshevich/voxelgd/internal/world/gen"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg := config.DefaultConfig()

	fs := flag.NewFlagSet("meshdump", flag.ContinueOnError)
	configPath := fs.String("config", "", "YAML config file")
	out := fs.String("o", "world.obj", "output mesh path; a .zst suffix compresses it")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "world generation seed")
	fs.IntVar(&cfg.RenderDistance, "render-distance", cfg.RenderDistance, "chunks generated around the origin")
	fs.StringVar(&cfg.Generator, "generator", cfg.Generator, "terrain generator: "+strings.Join(gen.Names(), ", "))
	fs.BoolVar(&cfg.SeamlessBorders, "seamless", cfg.SeamlessBorders, "cull faces against neighbouring chunks")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	explicit := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *configPath != "" {
		fromFile, err := config.Load(*configPath)
		if err != nil {
			log.Error("load config", "error", err)
			return 1
		}
		config.Merge(cfg, fromFile, explicit)
	}
	lvl, err := cfg.Level()
	if err != nil {
		log.Error("parse log level", "error", err)
		return 1
	}
	log = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))

	factory, err := gen.Lookup(cfg.Generator)
	if err != nil {
		log.Error("select generator", "error", err)
		return 1
	}

	dims := voxel.DefaultDims()
	w := world.New(world.Options{
		Dims:            dims,
		Seed:            cfg.Seed,
		RenderDistance:  cfg.RenderDistance,
		Settings:        cfg.Settings(dims.Height),
		Generator:       factory,
		Pallet:          cfg.Pallet(),
		SeamlessBorders: cfg.SeamlessBorders,
		Logger:          log,
	})
	defer w.Close()
	w.Rebuild()

	e, err := export.New(filepath.Dir(*out), log)
	if err != nil {
		log.Error("prepare output", "error", err)
		return 1
	}
	path, err := e.WriteWorld(filepath.Base(*out), w, cfg.Generator)
	if err != nil {
		log.Error("export mesh", "error", err)
		return 1
	}
	log.Info("done", "path", path, "chunks", w.Len())
	return 0
}
