package gen

import (
	"fmt"

	"github.com/OCharnyshevich/voxelgd/internal/voxel"
)

// FlatGenerator fills every block below sea level and leaves the rest as air.
type FlatGenerator struct{}

// NewFlatGenerator creates a FlatGenerator.
func NewFlatGenerator() *FlatGenerator {
	return &FlatGenerator{}
}

func (g *FlatGenerator) Generate(grid *voxel.Grid, _ voxel.ChunkPos, _ Source, s voxel.Settings) error {
	if err := grid.Fill(func(_, y, _ int) bool { return y < s.SeaLevel }); err != nil {
		return fmt.Errorf("flat generate: %w", err)
	}
	return nil
}
