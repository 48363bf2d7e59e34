// Package render defines the renderer collaborator that receives chunk geometry.
package render

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/OCharnyshevich/voxelgd/internal/mesh"
)

// Instance is an opaque handle to a renderer-side object. The zero value is invalid.
type Instance uint64

// NoInstance is the invalid handle.
const NoInstance Instance = 0

// Valid reports whether the handle refers to an instance.
func (i Instance) Valid() bool { return i != NoInstance }

// ErrUnknownInstance is returned for handles the renderer did not create or already freed.
var ErrUnknownInstance = errors.New("render: unknown instance")

// Bounds is an axis-aligned box in instance-local space.
type Bounds struct {
	Min, Max mgl32.Vec3
}

// Renderer owns drawable instances. Geometry is installed wholesale; an empty
// Geometry means there is nothing to draw.
type Renderer interface {
	// CreateInstance acquires a visible instance identified by key with fixed bounds.
	CreateInstance(key uint64, bounds Bounds) (Instance, error)
	// SetGeometry replaces the instance's geometry and material.
	SetGeometry(inst Instance, geo mesh.Geometry, mat *Material) error
	// SetTransform places the instance at a world-space origin.
	SetTransform(inst Instance, origin mgl32.Vec3) error
	// FreeInstance releases the instance.
	FreeInstance(inst Instance) error
}
