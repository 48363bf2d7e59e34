package gen

import (
	"fmt"
	"sort"

	"github.com/OCharnyshevich/voxelgd/internal/voxel"
)

// Source is the random stream a generator draws from.
type Source interface {
	// IntRange returns a uniform integer in [lo, hi].
	IntRange(lo, hi int) int
}

// Generator fills every block of a chunk grid.
type Generator interface {
	Generate(g *voxel.Grid, pos voxel.ChunkPos, src Source, s voxel.Settings) error
}

// Factory builds a Generator for a world seed.
type Factory func(seed int64) Generator

var factories = map[string]Factory{
	"sparse": func(int64) Generator { return NewSparseGenerator() },
	"noise":  func(seed int64) Generator { return NewNoiseGenerator(seed) },
	"flat":   func(int64) Generator { return NewFlatGenerator() },
}

// DefaultName is the generator used when none is configured.
const DefaultName = "sparse"

// Lookup returns the factory registered under name.
func Lookup(name string) (Factory, error) {
	if name == "" {
		name = DefaultName
	}
	f, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown generator %q (known: %v)", name, Names())
	}
	return f, nil
}

// Names returns the registered generator names, sorted.
func Names() []string {
	names := make([]string, 0, len(factories))
	for n := range factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
