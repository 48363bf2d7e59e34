package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/OCharnyshevich/voxelgd/internal/render"
	"github.com/OCharnyshevich/voxelgd/internal/voxel"
	"github.com/OCharnyshevich/voxelgd/internal/world/gen"
)

// Config holds the world host configuration.
type Config struct {
	Addr            string     `json:"addr" yaml:"addr"`
	Seed            int64      `json:"seed" yaml:"seed"`
	RenderDistance  int        `json:"render_distance" yaml:"render_distance"`
	Generator       string     `json:"generator" yaml:"generator"` // "sparse", "noise" or "flat"
	SeamlessBorders bool       `json:"seamless_borders" yaml:"seamless_borders"`
	RebuildDelayMs  int        `json:"rebuild_delay_ms" yaml:"rebuild_delay_ms"`
	LogLevel        string     `json:"log_level" yaml:"log_level"`
	Generation      Generation `json:"generation" yaml:"generation"`
	Material        Material   `json:"material" yaml:"material"`
}

// Generation holds the terrain parameters passed to generators.
type Generation struct {
	SeaLevel  int     `json:"sea_level" yaml:"sea_level"`
	Frequency float32 `json:"frequency" yaml:"frequency"`
	Octaves   int     `json:"octaves" yaml:"octaves"`
}

// Material overrides the generic chunk material.
type Material struct {
	Name   string    `json:"name" yaml:"name"`
	Albedo []float32 `json:"albedo" yaml:"albedo"` // RGB or RGBA in [0, 1]
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	s := voxel.DefaultSettings(voxel.Height)
	return &Config{
		Addr:           ":8090",
		Seed:           8675309,
		RenderDistance: 6,
		Generator:      gen.DefaultName,
		RebuildDelayMs: 1500,
		LogLevel:       "info",
		Generation: Generation{
			SeaLevel:  s.SeaLevel,
			Frequency: s.Frequency,
			Octaves:   s.Octaves,
		},
	}
}

// Merge applies file-loaded config values into cfg, but only for fields
// that were NOT explicitly set via CLI flags. explicitFlags contains the
// flag names that were explicitly provided on the command line. Fields
// without a flag always come from the file.
func Merge(cfg *Config, fromFile *Config, explicitFlags map[string]bool) {
	if !explicitFlags["addr"] {
		cfg.Addr = fromFile.Addr
	}
	if !explicitFlags["seed"] {
		cfg.Seed = fromFile.Seed
	}
	if !explicitFlags["render-distance"] {
		cfg.RenderDistance = fromFile.RenderDistance
	}
	if !explicitFlags["generator"] {
		cfg.Generator = fromFile.Generator
	}
	if !explicitFlags["seamless"] {
		cfg.SeamlessBorders = fromFile.SeamlessBorders
	}
	if !explicitFlags["log-level"] {
		cfg.LogLevel = fromFile.LogLevel
	}
	cfg.RebuildDelayMs = fromFile.RebuildDelayMs
	cfg.Generation = fromFile.Generation
	cfg.Material = fromFile.Material
}

// Load reads and validates a YAML config file. Keys missing from the file
// keep their DefaultConfig values.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Settings returns the generation parameters clamped for the given chunk height.
func (c *Config) Settings(height int) voxel.Settings {
	return voxel.Settings{
		SeaLevel:  c.Generation.SeaLevel,
		Frequency: c.Generation.Frequency,
		Octaves:   c.Generation.Octaves,
	}.Clamp(height)
}

// RebuildDelay returns the debounce window for world rebuilds.
func (c *Config) RebuildDelay() time.Duration {
	return time.Duration(c.RebuildDelayMs) * time.Millisecond
}

// Level parses LogLevel. An empty level is info.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	return l, nil
}

// Pallet returns a material pallet with the configured generic material.
// Without a material override it is render.NewPallet.
func (c *Config) Pallet() *render.Pallet {
	p := render.NewPallet()
	if c.Material.Name == "" && len(c.Material.Albedo) == 0 {
		return p
	}

	m := *p.Generic()
	if c.Material.Name != "" {
		m.Name = c.Material.Name
	}
	if n := len(c.Material.Albedo); n >= 3 {
		m.Albedo = mgl32.Vec4{c.Material.Albedo[0], c.Material.Albedo[1], c.Material.Albedo[2], 1}
		if n == 4 {
			m.Albedo[3] = c.Material.Albedo[3]
		}
	}
	p.Set(render.TypeGeneric, &m)
	return p
}
