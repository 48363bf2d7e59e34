package gen

import (
	"fmt"

	"github.com/OCharnyshevich/voxelgd/internal/voxel"
)

const (
	belowSeaLevelOdds = 20  // 1 in 20 blocks below sea level is solid
	aboveSeaLevelOdds = 100 // 1 in 100 blocks at or above sea level is solid
)

// SparseGenerator scatters independent solid blocks, denser below sea level.
// Each block takes exactly one draw from the source.
type SparseGenerator struct{}

// NewSparseGenerator creates a SparseGenerator.
func NewSparseGenerator() *SparseGenerator {
	return &SparseGenerator{}
}

func (g *SparseGenerator) Generate(grid *voxel.Grid, _ voxel.ChunkPos, src Source, s voxel.Settings) error {
	err := grid.Fill(func(_, y, _ int) bool {
		n := aboveSeaLevelOdds
		if y < s.SeaLevel {
			n = belowSeaLevelOdds
		}
		return src.IntRange(1, n) == 1
	})
	if err != nil {
		return fmt.Errorf("sparse generate: %w", err)
	}
	return nil
}
