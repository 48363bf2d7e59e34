package config

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/OCharnyshevich/voxelgd/internal/render"
	"github.com/OCharnyshevich/voxelgd/internal/voxel"
)

const sampleYAML = `
addr: ":9000"
seed: 42
render_distance: 3
generator: noise
seamless_borders: true
rebuild_delay_ms: 250
log_level: debug
generation:
  sea_level: 20
  frequency: 0.05
  octaves: 6
material:
  name: stone
  albedo: [0.5, 0.4, 0.3]
`

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Seed != 8675309 {
		t.Errorf("Seed = %d, want 8675309", cfg.Seed)
	}
	if cfg.RenderDistance != 6 {
		t.Errorf("RenderDistance = %d, want 6", cfg.RenderDistance)
	}
	if cfg.Generator != "sparse" {
		t.Errorf("Generator = %q, want sparse", cfg.Generator)
	}
	if cfg.RebuildDelay() != 1500*time.Millisecond {
		t.Errorf("RebuildDelay() = %v, want 1.5s", cfg.RebuildDelay())
	}
	if got, want := cfg.Settings(voxel.Height), voxel.DefaultSettings(voxel.Height); got != want {
		t.Errorf("Settings() = %+v, want %+v", got, want)
	}
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if cfg.Addr != ":9000" || cfg.Seed != 42 || cfg.RenderDistance != 3 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Generator != "noise" || !cfg.SeamlessBorders {
		t.Errorf("Generator = %q, SeamlessBorders = %v", cfg.Generator, cfg.SeamlessBorders)
	}
	if cfg.RebuildDelay() != 250*time.Millisecond {
		t.Errorf("RebuildDelay() = %v, want 250ms", cfg.RebuildDelay())
	}
	want := voxel.Settings{SeaLevel: 20, Frequency: 0.05, Octaves: 6}
	if got := cfg.Settings(voxel.Height); got != want {
		t.Errorf("Settings() = %+v, want %+v", got, want)
	}
	if lvl, err := cfg.Level(); err != nil || lvl != slog.LevelDebug {
		t.Errorf("Level() = %v, %v; want debug", lvl, err)
	}
}

func TestParseKeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte("seed: 7\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	def := DefaultConfig()
	if cfg.Seed != 7 {
		t.Errorf("Seed = %d, want 7", cfg.Seed)
	}
	if cfg.Addr != def.Addr || cfg.Generation != def.Generation || cfg.RenderDistance != def.RenderDistance {
		t.Errorf("missing keys lost their defaults: %+v", cfg)
	}

	empty, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse(empty): %v", err)
	}
	if empty.Seed != def.Seed {
		t.Errorf("empty document Seed = %d, want %d", empty.Seed, def.Seed)
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"render_distance_zero", "render_distance: 0"},
		{"render_distance_too_far", "render_distance: 65"},
		{"unknown_generator", "generator: perlin"},
		{"unknown_key", "view_distance: 4"},
		{"bad_log_level", "log_level: loud"},
		{"octaves_too_many", "generation: {octaves: 13}"},
		{"negative_sea_level", "generation: {sea_level: -1}"},
		{"zero_frequency", "generation: {frequency: 0}"},
		{"albedo_short", "material: {albedo: [1, 0]}"},
		{"albedo_out_of_range", "material: {albedo: [1, 0, 2]}"},
		{"seed_not_integer", "seed: 1.5"},
		{"not_a_mapping", "- 1\n- 2"},
		{"yaml_syntax", "seed: [1, 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.doc)); err == nil {
				t.Errorf("Parse(%q) succeeded, want error", tt.doc)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	fromFile, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	cfg.Seed = 1
	cfg.Generator = "flat"
	Merge(cfg, fromFile, map[string]bool{"seed": true, "generator": true})

	if cfg.Seed != 1 {
		t.Errorf("Seed = %d, want explicit flag value 1", cfg.Seed)
	}
	if cfg.Generator != "flat" {
		t.Errorf("Generator = %q, want explicit flag value flat", cfg.Generator)
	}
	if cfg.Addr != ":9000" || cfg.RenderDistance != 3 || !cfg.SeamlessBorders {
		t.Errorf("file values not merged: %+v", cfg)
	}
	if cfg.Generation != fromFile.Generation || cfg.Material.Name != "stone" {
		t.Errorf("flagless sections not merged: %+v", cfg)
	}
}

func TestLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
		err  bool
	}{
		{"", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{"WARN", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"chatty", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		cfg := &Config{LogLevel: tt.in}
		got, err := cfg.Level()
		if (err != nil) != tt.err {
			t.Errorf("Level(%q) error = %v, want error %v", tt.in, err, tt.err)
		}
		if got != tt.want {
			t.Errorf("Level(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPallet(t *testing.T) {
	def := DefaultConfig().Pallet()
	if def.Generic().Name != "generic" {
		t.Errorf("default generic material = %q, want generic", def.Generic().Name)
	}

	cfg := &Config{Material: Material{Name: "stone", Albedo: []float32{0.5, 0.4, 0.3}}}
	m := cfg.Pallet().Generic()
	if m.Name != "stone" {
		t.Errorf("Name = %q, want stone", m.Name)
	}
	if m.Albedo != (mgl32.Vec4{0.5, 0.4, 0.3, 1}) {
		t.Errorf("Albedo = %v", m.Albedo)
	}
	if cfg.Pallet().Material(render.TypeGlass) != render.DefaultMaterial() {
		t.Error("unset slots should fall back to the default material")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "voxelgd.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Seed != 42 {
		t.Errorf("Seed = %d, want 42", cfg.Seed)
	}

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Load(missing) error = %v, want fs.ErrNotExist", err)
	}

	bad := filepath.Join(dir, "bad.yaml")
	os.WriteFile(bad, []byte("render_distance: 0\n"), 0o644)
	if _, err := Load(bad); err == nil || !strings.Contains(err.Error(), "bad.yaml") {
		t.Errorf("Load(bad) error = %v, want error naming the file", err)
	}
}

func TestFetchLocal(t *testing.T) {
	src := filepath.Join(t.TempDir(), "remote.yaml")
	if err := os.WriteFile(src, []byte(sampleYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := FetchAndLoad(context.Background(), src, t.TempDir())
	if err != nil {
		t.Fatalf("FetchAndLoad: %v", err)
	}
	if cfg.Seed != 42 || cfg.Generator != "noise" {
		t.Errorf("fetched cfg = %+v", cfg)
	}
}

func TestFetchHTTP(t *testing.T) {
	served := t.TempDir()
	if err := os.WriteFile(filepath.Join(served, "voxelgd.yaml"), []byte(sampleYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(http.FileServer(http.Dir(served)))
	defer srv.Close()

	dst := filepath.Join(t.TempDir(), "nested", "voxelgd.yaml")
	if err := Fetch(context.Background(), srv.URL+"/voxelgd.yaml", dst); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	cfg, err := Load(dst)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":9000" {
		t.Errorf("Addr = %q, want :9000", cfg.Addr)
	}

	if err := Fetch(context.Background(), srv.URL+"/missing.yaml", dst+".2"); err == nil {
		t.Error("Fetch of a missing file should fail")
	}
}
