package voxel

import (
	"errors"
	"fmt"
)

const (
	AxisLength = 16 // horizontal edge length of a chunk in blocks
	Height     = 64 // vertical extent of a chunk in blocks
)

var (
	// ErrUnallocated is returned when a grid is accessed before its block storage exists.
	ErrUnallocated = errors.New("voxel: grid storage not allocated")
	// ErrOutOfRange is returned for coordinates outside the grid.
	ErrOutOfRange = errors.New("voxel: coordinate out of range")
)

// Block is the state of a single voxel. The zero value is air.
type Block struct {
	solid bool
}

// Solid is a solid Block.
var Solid = Block{solid: true}

// Air is an empty Block.
var Air = Block{}

func (b Block) IsSolid() bool { return b.solid }

func (b *Block) SetSolid(solid bool) { b.solid = solid }

// Dims are the dimensions of a chunk grid.
type Dims struct {
	Axis   int // X and Z extent
	Height int // Y extent
}

// DefaultDims returns the standard chunk dimensions.
func DefaultDims() Dims {
	return Dims{Axis: AxisLength, Height: Height}
}

// Volume returns the number of blocks a grid of these dimensions holds.
func (d Dims) Volume() int {
	return d.Axis * d.Axis * d.Height
}

// Contains reports whether (x, y, z) addresses a block inside the grid.
func (d Dims) Contains(x, y, z int) bool {
	return x >= 0 && x < d.Axis && z >= 0 && z < d.Axis && y >= 0 && y < d.Height
}

// Index returns the linear index of (x, y, z): x + z*Axis + y*Axis*Axis.
// The caller must ensure the coordinate is inside the grid.
func (d Dims) Index(x, y, z int) int {
	return x + z*d.Axis + y*d.Axis*d.Axis
}

// Grid is a dense 3-D array of blocks. A zero Grid is unallocated.
type Grid struct {
	dims   Dims
	blocks []Block
}

// NewGrid allocates a grid of the given dimensions with every block set to air.
func NewGrid(d Dims) *Grid {
	return &Grid{
		dims:   d,
		blocks: make([]Block, d.Volume()),
	}
}

// Dims returns the grid dimensions.
func (g *Grid) Dims() Dims { return g.dims }

// Len returns the number of stored blocks.
func (g *Grid) Len() int { return len(g.blocks) }

// Allocated reports whether the grid has block storage.
func (g *Grid) Allocated() bool {
	return g != nil && g.blocks != nil
}

// At returns the block at (x, y, z).
func (g *Grid) At(x, y, z int) (Block, error) {
	if !g.Allocated() {
		return Air, fmt.Errorf("block at (%d, %d, %d): %w", x, y, z, ErrUnallocated)
	}
	if !g.dims.Contains(x, y, z) {
		return Air, fmt.Errorf("block at (%d, %d, %d): %w", x, y, z, ErrOutOfRange)
	}
	return g.blocks[g.dims.Index(x, y, z)], nil
}

// Set replaces the block at (x, y, z).
func (g *Grid) Set(x, y, z int, b Block) error {
	if !g.Allocated() {
		return fmt.Errorf("set block at (%d, %d, %d): %w", x, y, z, ErrUnallocated)
	}
	if !g.dims.Contains(x, y, z) {
		return fmt.Errorf("set block at (%d, %d, %d): %w", x, y, z, ErrOutOfRange)
	}
	g.blocks[g.dims.Index(x, y, z)] = b
	return nil
}

// Solid reports whether the block at (x, y, z) is solid.
// Coordinates outside the grid and unallocated grids read as air.
func (g *Grid) Solid(x, y, z int) bool {
	if !g.Allocated() || !g.dims.Contains(x, y, z) {
		return false
	}
	return g.blocks[g.dims.Index(x, y, z)].solid
}

// Reset sets every block to air.
func (g *Grid) Reset() {
	clear(g.blocks)
}

// Fill replaces every block, visiting y outermost, then z, then x.
func (g *Grid) Fill(solid func(x, y, z int) bool) error {
	if !g.Allocated() {
		return fmt.Errorf("fill grid: %w", ErrUnallocated)
	}
	for y := 0; y < g.dims.Height; y++ {
		for z := 0; z < g.dims.Axis; z++ {
			for x := 0; x < g.dims.Axis; x++ {
				g.blocks[g.dims.Index(x, y, z)] = Block{solid: solid(x, y, z)}
			}
		}
	}
	return nil
}

// SolidCount returns the number of solid blocks.
func (g *Grid) SolidCount() int {
	n := 0
	for _, b := range g.blocks {
		if b.solid {
			n++
		}
	}
	return n
}
