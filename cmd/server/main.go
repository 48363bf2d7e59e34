package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/OCharnyshevich/voxelgd/internal/config"
	"github.com/OCharnyshevich/voxelgd/internal/transport/ws"
	"github.com/OCharnyshevich/voxelgd/internal/voxel"
	"github.com/OCharnyshevich/voxelgd/internal/world"
	"github.com/OCharnyshevich/voxelgd/internal/world/gen"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.DefaultConfig()

	configPath := flag.String("config", "", "YAML config file")
	configSrc := flag.String("config-src", "", "go-getter source to fetch the config file from (overrides -config)")
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "viewer stream listen address")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "world generation seed")
	flag.IntVar(&cfg.RenderDistance, "render-distance", cfg.RenderDistance, "chunks generated around the origin")
	flag.StringVar(&cfg.Generator, "generator", cfg.Generator, "terrain generator: "+strings.Join(gen.Names(), ", "))
	flag.BoolVar(&cfg.SeamlessBorders, "seamless", cfg.SeamlessBorders, "cull faces against neighbouring chunks")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	flag.Parse()

	explicit := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	levels := new(slog.LevelVar)
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: levels}))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	src := configSource{path: *configPath, remote: *configSrc}
	if fromFile, err := src.load(ctx, log); err != nil {
		log.Error("load config", "error", err)
		return 1
	} else if fromFile != nil {
		config.Merge(cfg, fromFile, explicit)
	}

	lvl, err := cfg.Level()
	if err != nil {
		log.Error("parse log level", "error", err)
		return 1
	}
	levels.Set(lvl)

	factory, err := gen.Lookup(cfg.Generator)
	if err != nil {
		log.Error("select generator", "error", err)
		return 1
	}

	dims := voxel.DefaultDims()
	renderer := ws.NewRenderer(ws.Options{Dims: dims, Seed: cfg.Seed, Logger: log})
	w := world.New(world.Options{
		Dims:            dims,
		Seed:            cfg.Seed,
		RenderDistance:  cfg.RenderDistance,
		Settings:        cfg.Settings(dims.Height),
		Generator:       factory,
		Renderer:        renderer,
		Pallet:          cfg.Pallet(),
		SeamlessBorders: cfg.SeamlessBorders,
		RebuildDelay:    cfg.RebuildDelay(),
		Logger:          log,
	})
	defer w.Close()
	defer renderer.Close()
	w.Rebuild()

	mux := http.NewServeMux()
	mux.Handle("/ws", renderer.Handler())
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusOK)
	})
	srv := &http.Server{Addr: cfg.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("viewer stream listening", "addr", cfg.Addr, "generator", cfg.Generator, "seed", cfg.Seed)
		serveErr <- srv.ListenAndServe()
	}()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	rl := reloader{log: log, levels: levels, src: src, explicit: explicit, running: cfg, world: w, renderer: renderer}

	exitCode := 0
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case err := <-serveErr:
			if !errors.Is(err, http.ErrServerClosed) {
				log.Error("server error", "error", err)
				exitCode = 1
			}
			break loop
		case <-hup:
			rl.reload(ctx)
		}
	}

	log.Info("shutting down")
	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "error", err)
	}
	return exitCode
}

// reloader applies a re-read config file to the running world. Values set by
// an explicit flag keep the flag value.
type reloader struct {
	log      *slog.Logger
	levels   *slog.LevelVar
	src      configSource
	explicit map[string]bool
	running  *config.Config
	world    *world.World
	renderer *ws.Renderer
}

// reload re-reads the config file and applies it. The world setters each
// request a rebuild; the world collapses them into one.
func (rl *reloader) reload(ctx context.Context) {
	fromFile, err := rl.src.load(ctx, rl.log)
	if err != nil {
		rl.log.Error("reload config", "error", err)
		return
	}
	if fromFile == nil {
		rl.log.Warn("reload requested without a config file")
		return
	}

	if !rl.explicit["log-level"] {
		if lvl, err := fromFile.Level(); err != nil {
			rl.log.Error("reload log level", "error", err)
		} else {
			rl.levels.Set(lvl)
		}
	}

	w := rl.world
	w.SetSettings(fromFile.Settings(w.Dims().Height))
	w.SetPallet(fromFile.Pallet())
	if !rl.explicit["render-distance"] {
		w.SetRenderDistance(fromFile.RenderDistance)
	}
	if !rl.explicit["seed"] {
		w.SetSeed(fromFile.Seed)
		rl.renderer.SetSeed(fromFile.Seed)
	}
	if !rl.explicit["generator"] && fromFile.Generator != rl.running.Generator {
		if factory, err := gen.Lookup(fromFile.Generator); err != nil {
			rl.log.Error("reload generator", "error", err)
		} else {
			w.SetGenerator(factory)
			rl.running.Generator = fromFile.Generator
		}
	}
	if !rl.explicit["seamless"] {
		w.SetSeamlessBorders(fromFile.SeamlessBorders)
	}

	if fromFile.RebuildDelayMs != rl.running.RebuildDelayMs {
		rl.log.Warn("rebuild_delay_ms changed; restart to apply", "running", rl.running.RebuildDelay(), "file", fromFile.RebuildDelay())
	}
	if !rl.explicit["addr"] && fromFile.Addr != rl.running.Addr {
		rl.log.Warn("addr changed; restart to apply", "running", rl.running.Addr, "file", fromFile.Addr)
	}
	rl.log.Info("config reloaded",
		"seed", w.Seed(),
		"render_distance", w.RenderDistance(),
		"generator", rl.running.Generator,
		"seamless_borders", w.SeamlessBorders(),
		"log_level", rl.levels.Level(),
	)
}

type configSource struct {
	path   string
	remote string
}

// load returns nil when no config file is configured.
func (s configSource) load(ctx context.Context, log *slog.Logger) (*config.Config, error) {
	if s.remote != "" {
		dir, err := os.MkdirTemp("", "voxelgd-config-")
		if err != nil {
			return nil, err
		}
		defer os.RemoveAll(dir)

		log.Info("fetching config", "src", s.remote)
		return config.FetchAndLoad(ctx, s.remote, dir)
	}
	if s.path != "" {
		return config.Load(s.path)
	}
	return nil, nil
}
