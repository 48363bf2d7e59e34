package world

import (
	"errors"
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/OCharnyshevich/voxelgd/internal/mesh"
	"github.com/OCharnyshevich/voxelgd/internal/render"
	"github.com/OCharnyshevich/voxelgd/internal/voxel"
)

// Chunk is one column of voxels and the geometry built from it.
// A Chunk belongs to the World that created it and is not safe for
// concurrent use; World methods serialise access.
type Chunk struct {
	pos      voxel.ChunkPos
	world    *World // not owned; outlives the chunk
	grid     *voxel.Grid
	geometry mesh.Geometry
	instance render.Instance
}

// Pos returns the chunk's grid coordinate.
func (c *Chunk) Pos() voxel.ChunkPos { return c.pos }

// Key returns the chunk's map key.
func (c *Chunk) Key() uint64 { return c.pos.Key() }

// Grid returns the chunk's block storage. Callers must not modify it directly.
func (c *Chunk) Grid() *voxel.Grid { return c.grid }

// Geometry returns the last built mesh. It is empty when nothing is visible.
func (c *Chunk) Geometry() mesh.Geometry { return c.geometry }

// Instance returns the renderer handle, or render.NoInstance.
func (c *Chunk) Instance() render.Instance { return c.instance }

// BlockAt returns the block at local (x, y, z). Unallocated storage and
// out-of-range coordinates are logged and read as air with ok false.
func (c *Chunk) BlockAt(x, y, z int) (b voxel.Block, ok bool) {
	b, err := c.grid.At(x, y, z)
	if err != nil {
		if errors.Is(err, voxel.ErrUnallocated) {
			c.logger().Error("chunk block data not initialized", "chunk", c.pos, "x", x, "y", y, "z", z)
		} else {
			c.logger().Error("block lookup out of range", "chunk", c.pos, "error", err)
		}
		return voxel.Air, false
	}
	return b, true
}

// SetBlock changes one block and rebuilds the mesh.
func (c *Chunk) SetBlock(x, y, z int, solid bool) error {
	b := voxel.Air
	if solid {
		b = voxel.Solid
	}
	if err := c.grid.Set(x, y, z, b); err != nil {
		c.logger().Error("set block", "chunk", c.pos, "error", err)
		return err
	}
	c.Remesh()
	return nil
}

// Generate refills every block from the world's generator and rebuilds the mesh.
func (c *Chunk) Generate() {
	if c.world == nil {
		c.logger().Error("generate called on detached chunk", "chunk", c.pos)
		return
	}
	if !c.grid.Allocated() {
		c.logger().Error("chunk block data not initialized", "chunk", c.pos)
		return
	}

	w := c.world
	if err := w.generator.Generate(c.grid, c.pos, w.rng, w.settings); err != nil {
		c.logger().Error("generate blocks", "chunk", c.pos, "error", err)
	}
	c.logger().Debug("(re)generated blocks", "chunk", c.pos, "solid", c.grid.SolidCount())

	c.Remesh()
}

// Remesh rebuilds the geometry from the current blocks and installs it on the
// render instance. The previous geometry is discarded.
func (c *Chunk) Remesh() {
	var nb mesh.Neighbors
	if c.world != nil && c.world.seamless {
		nb = chunkNeighbors{w: c.world, pos: c.pos}
	}

	geo := mesh.Build(c.grid, nb)
	if geo.Empty() {
		geo = mesh.Geometry{}
	}
	c.geometry = geo
	c.install()

	if geo.Empty() {
		c.logger().Debug("mesh is empty", "chunk", c.pos)
		return
	}
	c.logger().Debug("mesh built",
		"chunk", c.pos,
		"vertices", len(geo.Vertices),
		"faces", geo.FaceCount(),
	)
}

// SyncTransform moves the render instance to the chunk's world-space origin.
func (c *Chunk) SyncTransform() {
	r := c.renderer()
	if r == nil || !c.instance.Valid() {
		return
	}
	if err := r.SetTransform(c.instance, c.pos.Origin(c.world.dims)); err != nil {
		c.logger().Error("sync transform", "chunk", c.pos, "error", err)
	}
}

// Destroy releases the render instance and the block storage.
func (c *Chunk) Destroy() {
	if r := c.renderer(); r != nil && c.instance.Valid() {
		if err := r.FreeInstance(c.instance); err != nil {
			c.logger().Error("free render instance", "chunk", c.pos, "error", err)
		}
	}
	c.instance = render.NoInstance
	c.grid = nil
	c.geometry = mesh.Geometry{}
}

// attach allocates air blocks, builds the (empty) mesh and places the render instance.
func (c *Chunk) attach() {
	c.grid = voxel.NewGrid(c.world.dims)
	c.Remesh()
	c.ensureInstance()
	c.SyncTransform()
}

func (c *Chunk) ensureInstance() {
	if c.instance.Valid() {
		return
	}
	r := c.renderer()
	if r == nil {
		return
	}

	d := c.world.dims
	bounds := render.Bounds{Max: mgl32.Vec3{float32(d.Axis), float32(d.Height), float32(d.Axis)}}
	inst, err := r.CreateInstance(c.Key(), bounds)
	if err != nil {
		c.logger().Error("create render instance", "chunk", c.pos, "error", err)
		return
	}
	c.instance = inst
	c.install()
}

func (c *Chunk) install() {
	r := c.renderer()
	if r == nil || !c.instance.Valid() {
		return
	}
	if err := r.SetGeometry(c.instance, c.geometry, c.world.pallet.Generic()); err != nil {
		c.logger().Error("install geometry", "chunk", c.pos, "error", err)
	}
}

func (c *Chunk) renderer() render.Renderer {
	if c.world == nil {
		return nil
	}
	return c.world.renderer
}

func (c *Chunk) logger() *slog.Logger {
	if c.world == nil || c.world.log == nil {
		return slog.Default()
	}
	return c.world.log
}

// chunkNeighbors resolves voxels past a chunk's X/Z edges from sibling chunks.
// Missing siblings read as air.
type chunkNeighbors struct {
	w   *World
	pos voxel.ChunkPos
}

func (n chunkNeighbors) SolidOutside(x, y, z int) bool {
	axis := n.w.dims.Axis
	p := n.pos.Add(int32(voxel.FloorDiv(x, axis)), int32(voxel.FloorDiv(z, axis)))
	sib, ok := n.w.chunks[p.Key()]
	if !ok {
		return false
	}
	return sib.grid.Solid(voxel.Mod(x, axis), y, voxel.Mod(z, axis))
}
