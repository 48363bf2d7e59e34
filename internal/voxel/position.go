package voxel

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// ChunkPos identifies a chunk in chunk grid space (not world space).
type ChunkPos struct{ X, Z int32 }

// PositionKey packs a chunk coordinate into a 64-bit map key.
// Each axis is reinterpreted as uint32 before shifting, so negative
// coordinates never sign-extend into the other half.
func PositionKey(x, z int32) uint64 {
	return uint64(uint32(x))<<32 | uint64(uint32(z))
}

// PosFromKey is the inverse of PositionKey.
func PosFromKey(key uint64) ChunkPos {
	return ChunkPos{X: int32(uint32(key >> 32)), Z: int32(uint32(key))}
}

// Key returns the position's map key.
func (p ChunkPos) Key() uint64 { return PositionKey(p.X, p.Z) }

// Add returns p offset by (dx, dz) chunks.
func (p ChunkPos) Add(dx, dz int32) ChunkPos {
	return ChunkPos{X: p.X + dx, Z: p.Z + dz}
}

// Origin returns the world-space position of the chunk's (0, 0, 0) corner.
func (p ChunkPos) Origin(d Dims) mgl32.Vec3 {
	return mgl32.Vec3{float32(int(p.X) * d.Axis), 0, float32(int(p.Z) * d.Axis)}
}

func (p ChunkPos) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Z)
}

// FloorDiv divides rounding toward negative infinity.
func FloorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// Mod returns a modulo b in [0, b).
func Mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
