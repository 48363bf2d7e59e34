package gen

import (
	"fmt"

	"github.com/ojrac/opensimplex-go"

	"github.com/OCharnyshevich/voxelgd/internal/voxel"
)

const octavePersistence = 0.5

// NoiseGenerator builds a coherent height field from layered OpenSimplex noise.
// Frequency scales world block coordinates and Octaves sets the layer count.
type NoiseGenerator struct {
	noise opensimplex.Noise
}

// NewNoiseGenerator creates a noise generator for the given world seed.
func NewNoiseGenerator(seed int64) *NoiseGenerator {
	return &NoiseGenerator{noise: opensimplex.New(seed)}
}

// Noise2D returns raw 2D noise at (x, y).
func (ng *NoiseGenerator) Noise2D(x, y float64) float64 {
	return ng.noise.Eval2(x, y)
}

// OctaveNoise2D layers octaves of 2D noise, doubling frequency and halving
// amplitude each time. Returns a value in [-1, 1].
func (ng *NoiseGenerator) OctaveNoise2D(x, y float64, octaves int, persistence float64) float64 {
	var total, maxVal float64
	frequency := 1.0
	amplitude := 1.0

	for range octaves {
		total += ng.noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2.0
	}
	if maxVal == 0 {
		return 0
	}
	return max(-1, min(1, total/maxVal))
}

// HeightAt returns the surface height of the column at world block (bx, bz).
func (ng *NoiseGenerator) HeightAt(bx, bz int, d voxel.Dims, s voxel.Settings) int {
	f := float64(s.Frequency)
	n := ng.OctaveNoise2D(float64(bx)*f, float64(bz)*f, s.Octaves, octavePersistence)
	h := s.SeaLevel + int(n*float64(d.Height)/4)
	return max(0, min(d.Height-1, h))
}

func (ng *NoiseGenerator) Generate(grid *voxel.Grid, pos voxel.ChunkPos, _ Source, s voxel.Settings) error {
	if !grid.Allocated() {
		return fmt.Errorf("noise generate: %w", voxel.ErrUnallocated)
	}
	d := grid.Dims()

	heights := make([]int, d.Axis*d.Axis)
	for z := 0; z < d.Axis; z++ {
		for x := 0; x < d.Axis; x++ {
			bx := int(pos.X)*d.Axis + x
			bz := int(pos.Z)*d.Axis + z
			heights[z*d.Axis+x] = ng.HeightAt(bx, bz, d, s)
		}
	}

	return grid.Fill(func(x, y, z int) bool {
		return y <= heights[z*d.Axis+x]
	})
}
