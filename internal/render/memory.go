package render

import (
	"fmt"
	"sort"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/OCharnyshevich/voxelgd/internal/mesh"
)

// InstanceState is a snapshot of one instance held by a Memory renderer.
type InstanceState struct {
	Key      uint64
	Bounds   Bounds
	Origin   mgl32.Vec3
	Geometry mesh.Geometry
	Material *Material
	Visible  bool
}

// Memory is a Renderer that keeps every instance in memory.
// It backs offline tools and tests.
type Memory struct {
	mu        sync.Mutex
	next      Instance
	instances map[Instance]*InstanceState
	freed     int
}

// NewMemory creates an empty Memory renderer.
func NewMemory() *Memory {
	return &Memory{instances: make(map[Instance]*InstanceState)}
}

func (m *Memory) CreateInstance(key uint64, bounds Bounds) (Instance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.next++
	m.instances[m.next] = &InstanceState{Key: key, Bounds: bounds, Visible: true}
	return m.next, nil
}

func (m *Memory) SetGeometry(inst Instance, geo mesh.Geometry, mat *Material) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.instances[inst]
	if !ok {
		return fmt.Errorf("set geometry on %d: %w", inst, ErrUnknownInstance)
	}
	st.Geometry = geo.Clone()
	st.Material = mat
	return nil
}

func (m *Memory) SetTransform(inst Instance, origin mgl32.Vec3) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.instances[inst]
	if !ok {
		return fmt.Errorf("set transform on %d: %w", inst, ErrUnknownInstance)
	}
	st.Origin = origin
	return nil
}

func (m *Memory) FreeInstance(inst Instance) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.instances[inst]; !ok {
		return fmt.Errorf("free %d: %w", inst, ErrUnknownInstance)
	}
	delete(m.instances, inst)
	m.freed++
	return nil
}

// Instance returns a copy of the instance's state.
func (m *Memory) Instance(inst Instance) (InstanceState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.instances[inst]
	if !ok {
		return InstanceState{}, false
	}
	return *st, true
}

// Instances returns the live handles in creation order.
func (m *Memory) Instances() []Instance {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Instance, 0, len(m.instances))
	for inst := range m.instances {
		out = append(out, inst)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Freed returns how many instances have been released.
func (m *Memory) Freed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.freed
}
