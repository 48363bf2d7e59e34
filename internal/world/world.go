package world

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/bep/debounce"

	"github.com/OCharnyshevich/voxelgd/internal/mesh"
	"github.com/OCharnyshevich/voxelgd/internal/render"
	"github.com/OCharnyshevich/voxelgd/internal/rng"
	"github.com/OCharnyshevich/voxelgd/internal/voxel"
	"github.com/OCharnyshevich/voxelgd/internal/world/gen"
)

const (
	DefaultSeed           = 8675309
	DefaultRenderDistance = 6
	MaxRenderDistance     = 64
	DefaultRebuildDelay   = 1500 * time.Millisecond
)

// ErrNoChunk is returned for positions that hold no chunk.
var ErrNoChunk = errors.New("world: no chunk at position")

// Options configure a World. Zero fields take their defaults.
type Options struct {
	Dims           voxel.Dims
	Seed           int64
	RenderDistance int
	Settings       voxel.Settings
	Generator      gen.Factory
	Renderer       render.Renderer
	Pallet         *render.Pallet

	// SeamlessBorders makes face culling consult sibling chunks at X/Z edges
	// instead of treating them as air.
	SeamlessBorders bool

	RebuildDelay time.Duration
	Logger       *slog.Logger
}

// World owns a set of chunks keyed by position along with the seed and
// settings used to generate them.
type World struct {
	mu sync.Mutex

	log            *slog.Logger
	dims           voxel.Dims
	seed           int64
	renderDistance int
	settings       voxel.Settings
	factory        gen.Factory
	generator      gen.Generator
	rng            *rng.Source
	renderer       render.Renderer
	pallet         *render.Pallet
	seamless       bool

	chunks    map[uint64]*Chunk
	debounced func(func())
	rebuilds  int
	closed    bool
}

// New creates an empty World. Call Rebuild to populate it.
func New(opts Options) *World {
	if opts.Dims == (voxel.Dims{}) {
		opts.Dims = voxel.DefaultDims()
	}
	if opts.Seed == 0 {
		opts.Seed = DefaultSeed
	}
	if opts.RenderDistance == 0 {
		opts.RenderDistance = DefaultRenderDistance
	}
	if opts.Settings == (voxel.Settings{}) {
		opts.Settings = voxel.DefaultSettings(opts.Dims.Height)
	}
	if opts.Generator == nil {
		opts.Generator = func(int64) gen.Generator { return gen.NewSparseGenerator() }
	}
	if opts.Renderer == nil {
		opts.Renderer = render.NewMemory()
	}
	if opts.Pallet == nil {
		opts.Pallet = render.NewPallet()
	}
	if opts.RebuildDelay <= 0 {
		opts.RebuildDelay = DefaultRebuildDelay
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	return &World{
		log:            opts.Logger,
		dims:           opts.Dims,
		seed:           opts.Seed,
		renderDistance: clampRenderDistance(opts.RenderDistance),
		settings:       opts.Settings.Clamp(opts.Dims.Height),
		factory:        opts.Generator,
		generator:      opts.Generator(opts.Seed),
		rng:            rng.New(opts.Seed),
		renderer:       opts.Renderer,
		pallet:         opts.Pallet,
		seamless:       opts.SeamlessBorders,
		chunks:         make(map[uint64]*Chunk),
		debounced:      debounce.New(opts.RebuildDelay),
	}
}

func clampRenderDistance(v int) int {
	return max(1, min(v, MaxRenderDistance))
}

// Dims returns the chunk dimensions.
func (w *World) Dims() voxel.Dims { return w.dims }

// Seed returns the generation seed.
func (w *World) Seed() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.seed
}

// SetSeed changes the seed and schedules a rebuild.
func (w *World) SetSeed(seed int64) {
	w.mu.Lock()
	w.seed = seed
	w.generator = w.factory(seed)
	w.mu.Unlock()

	w.RequestRebuild()
}

// SetGenerator replaces the generator factory, builds a generator for the
// current seed and schedules a rebuild. A nil factory is ignored.
func (w *World) SetGenerator(f gen.Factory) {
	if f == nil {
		return
	}
	w.mu.Lock()
	w.factory = f
	w.generator = f(w.seed)
	w.mu.Unlock()

	w.RequestRebuild()
}

// SeamlessBorders reports whether face culling consults sibling chunks.
func (w *World) SeamlessBorders() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.seamless
}

// SetSeamlessBorders toggles sibling-aware culling and schedules a rebuild.
func (w *World) SetSeamlessBorders(on bool) {
	w.mu.Lock()
	w.seamless = on
	w.mu.Unlock()

	w.RequestRebuild()
}

// RenderDistance returns the rebuild radius in chunks.
func (w *World) RenderDistance() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.renderDistance
}

// SetRenderDistance changes the rebuild radius, clamped to [1, MaxRenderDistance],
// and schedules a rebuild.
func (w *World) SetRenderDistance(v int) {
	w.mu.Lock()
	w.renderDistance = clampRenderDistance(v)
	w.mu.Unlock()

	w.RequestRebuild()
}

// Settings returns the generation settings.
func (w *World) Settings() voxel.Settings {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.settings
}

// SetSettings replaces the generation settings, clamped to the chunk height,
// and schedules a rebuild.
func (w *World) SetSettings(s voxel.Settings) {
	w.mu.Lock()
	w.settings = s.Clamp(w.dims.Height)
	w.mu.Unlock()

	w.RequestRebuild()
}

// Pallet returns the material pallet.
func (w *World) Pallet() *render.Pallet {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pallet
}

// SetPallet replaces the material pallet and schedules a rebuild.
func (w *World) SetPallet(p *render.Pallet) {
	w.mu.Lock()
	w.pallet = p
	w.mu.Unlock()

	w.RequestRebuild()
}

// RequestRebuild schedules Rebuild after the rebuild delay. Each call restarts
// the delay, so a burst of requests runs a single rebuild.
func (w *World) RequestRebuild() {
	w.debounced(func() { w.Rebuild() })
	w.log.Debug("world rebuild requested")
}

// Rebuilds returns how many times Rebuild has run.
func (w *World) Rebuilds() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rebuilds
}

// Rebuild regenerates every chunk within the render distance of the origin
// and drops chunks outside it. The random source is reseeded first, so equal
// seeds and settings give equal worlds. It returns the number of chunks.
// A closed world is left empty.
func (w *World) Rebuild() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		w.log.Debug("world rebuild skipped, world closed")
		return 0
	}

	start := time.Now()
	w.rng.Seed(w.seed)

	r := int32(w.renderDistance)
	wanted := make(map[uint64]voxel.ChunkPos, (2*r+1)*(2*r+1))
	for cx := -r; cx <= r; cx++ {
		for cz := -r; cz <= r; cz++ {
			p := voxel.ChunkPos{X: cx, Z: cz}
			wanted[p.Key()] = p
		}
	}

	for key, c := range w.chunks {
		if _, ok := wanted[key]; !ok {
			c.Destroy()
			delete(w.chunks, key)
		}
	}
	for key, p := range wanted {
		if _, ok := w.chunks[key]; !ok {
			w.addChunkLocked(p)
		}
	}

	ordered := w.sortedChunksLocked()
	for _, c := range ordered {
		c.Generate()
	}
	if w.seamless {
		// Siblings generated later changed the borders seen by earlier chunks.
		for _, c := range ordered {
			c.Remesh()
		}
	}

	w.rebuilds++
	w.log.Info("world rebuild executed",
		"chunks", len(ordered),
		"seed", w.seed,
		"render_distance", w.renderDistance,
		"elapsed", time.Since(start),
	)
	return len(ordered)
}

// AddChunk creates an all-air chunk at pos, or returns the existing one.
func (w *World) AddChunk(pos voxel.ChunkPos) *Chunk {
	w.mu.Lock()
	defer w.mu.Unlock()

	if c, ok := w.chunks[pos.Key()]; ok {
		return c
	}
	c := w.addChunkLocked(pos)
	w.remeshSiblingsLocked(pos)
	return c
}

func (w *World) addChunkLocked(pos voxel.ChunkPos) *Chunk {
	c := &Chunk{pos: pos, world: w}
	w.chunks[pos.Key()] = c
	c.attach()
	w.log.Debug("chunk added", "chunk", pos)
	return c
}

// RemoveChunk destroys the chunk at pos. It reports whether a chunk was removed.
func (w *World) RemoveChunk(pos voxel.ChunkPos) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	c, ok := w.chunks[pos.Key()]
	if !ok {
		return false
	}
	c.Destroy()
	delete(w.chunks, pos.Key())
	w.remeshSiblingsLocked(pos)
	w.log.Debug("chunk removed", "chunk", pos)
	return true
}

// GenerateChunk regenerates the blocks of the chunk at pos.
func (w *World) GenerateChunk(pos voxel.ChunkPos) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	c, ok := w.chunks[pos.Key()]
	if !ok {
		return fmt.Errorf("generate %v: %w", pos, ErrNoChunk)
	}
	c.Generate()
	w.remeshSiblingsLocked(pos)
	return nil
}

// SetBlock changes one block of the chunk at pos and remeshes what it affects.
func (w *World) SetBlock(pos voxel.ChunkPos, x, y, z int, solid bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	c, ok := w.chunks[pos.Key()]
	if !ok {
		return fmt.Errorf("set block in %v: %w", pos, ErrNoChunk)
	}
	if err := c.SetBlock(x, y, z, solid); err != nil {
		return err
	}
	if !w.seamless {
		return nil
	}

	edge := w.dims.Axis - 1
	if x == 0 {
		w.remeshLocked(pos.Add(-1, 0))
	}
	if x == edge {
		w.remeshLocked(pos.Add(1, 0))
	}
	if z == 0 {
		w.remeshLocked(pos.Add(0, -1))
	}
	if z == edge {
		w.remeshLocked(pos.Add(0, 1))
	}
	return nil
}

func (w *World) remeshLocked(pos voxel.ChunkPos) {
	if c, ok := w.chunks[pos.Key()]; ok {
		c.Remesh()
	}
}

// remeshSiblingsLocked refreshes the four X/Z neighbours of pos when their
// borders depend on it.
func (w *World) remeshSiblingsLocked(pos voxel.ChunkPos) {
	if !w.seamless {
		return
	}
	w.remeshLocked(pos.Add(1, 0))
	w.remeshLocked(pos.Add(-1, 0))
	w.remeshLocked(pos.Add(0, 1))
	w.remeshLocked(pos.Add(0, -1))
}

// Chunk returns the chunk at pos.
func (w *World) Chunk(pos voxel.ChunkPos) (*Chunk, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	c, ok := w.chunks[pos.Key()]
	return c, ok
}

// Len returns the number of chunks.
func (w *World) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.chunks)
}

// Positions returns every chunk position ordered by X, then Z.
func (w *World) Positions() []voxel.ChunkPos {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]voxel.ChunkPos, 0, len(w.chunks))
	for _, c := range w.sortedChunksLocked() {
		out = append(out, c.pos)
	}
	return out
}

// Geometry returns a copy of the mesh of the chunk at pos.
func (w *World) Geometry(pos voxel.ChunkPos) (mesh.Geometry, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	c, ok := w.chunks[pos.Key()]
	if !ok {
		return mesh.Geometry{}, false
	}
	return c.geometry.Clone(), true
}

// ForEachChunk calls fn for every chunk in position order while holding the world lock.
// fn must not call back into the World.
func (w *World) ForEachChunk(fn func(c *Chunk)) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, c := range w.sortedChunksLocked() {
		fn(c)
	}
}

// Close destroys every chunk, releasing their render instances, and cancels
// any pending rebuild. Later rebuilds do nothing.
func (w *World) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.closed = true
	w.debounced(func() {})

	for key, c := range w.chunks {
		c.Destroy()
		delete(w.chunks, key)
	}
}

func (w *World) sortedChunksLocked() []*Chunk {
	out := make([]*Chunk, 0, len(w.chunks))
	for _, c := range w.chunks {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].pos.X != out[j].pos.X {
			return out[i].pos.X < out[j].pos.X
		}
		return out[i].pos.Z < out[j].pos.Z
	})
	return out
}
