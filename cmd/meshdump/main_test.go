package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRun(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		code   int
		output bool
	}{
		{"flat", []string{"-generator", "flat", "-render-distance", "1"}, 0, true},
		{"bad_log_level", []string{"-log-level", "loud", "-render-distance", "1"}, 1, false},
		{"unknown_generator", []string{"-generator", "perlin", "-render-distance", "1"}, 1, false},
		{"bad_flag", []string{"-nope"}, 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "world.obj")
			if got := run(append(tt.args, "-o", out)); got != tt.code {
				t.Fatalf("run() = %d, want %d", got, tt.code)
			}
			_, err := os.Stat(out)
			if got := err == nil; got != tt.output {
				t.Errorf("mesh written = %v, want %v", got, tt.output)
			}
		})
	}
}
