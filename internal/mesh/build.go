package mesh

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/OCharnyshevich/voxelgd/internal/voxel"
)

// Neighbors resolves voxels that lie past a grid's X or Z edge.
// Coordinates are chunk-local and may be negative or >= the axis length.
// Implementations must only read.
type Neighbors interface {
	SolidOutside(x, y, z int) bool
}

// Build emits one quad per exposed face of every solid voxel in g.
//
// A face is exposed when the neighbouring voxel across it is air. Voxels past
// the top or bottom of the grid are always air. Voxels past an X or Z edge are
// air when nb is nil, otherwise nb decides.
//
// Voxels are visited y-outer, z-middle, x-inner, and faces in the order of
// Faces, so the output is identical for identical input.
func Build(g *voxel.Grid, nb Neighbors) Geometry {
	var geo Geometry
	if !g.Allocated() {
		return geo
	}

	d := g.Dims()
	for y := 0; y < d.Height; y++ {
		for z := 0; z < d.Axis; z++ {
			for x := 0; x < d.Axis; x++ {
				if !g.Solid(x, y, z) {
					continue
				}
				origin := mgl32.Vec3{float32(x), float32(y), float32(z)}
				for _, f := range Faces {
					if exposed(g, nb, f, x, y, z) {
						geo.addFace(origin, f)
					}
				}
			}
		}
	}
	return geo
}

func exposed(g *voxel.Grid, nb Neighbors, f Face, x, y, z int) bool {
	dx, dy, dz := f.Step()
	nx, ny, nz := x+dx, y+dy, z+dz

	d := g.Dims()
	if d.Contains(nx, ny, nz) {
		return !g.Solid(nx, ny, nz)
	}
	if nb == nil || ny < 0 || ny >= d.Height {
		return true
	}
	return !nb.SolidOutside(nx, ny, nz)
}

// ExposedFaces returns the exposed faces of the voxel at (x, y, z), in emission
// order. It returns nil for air.
func ExposedFaces(g *voxel.Grid, nb Neighbors, x, y, z int) []Face {
	if !g.Solid(x, y, z) {
		return nil
	}
	var out []Face
	for _, f := range Faces {
		if exposed(g, nb, f, x, y, z) {
			out = append(out, f)
		}
	}
	return out
}
