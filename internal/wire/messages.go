package wire

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/OCharnyshevich/voxelgd/internal/mesh"
)

// Version is sent in Hello and bumped on incompatible message changes.
const Version = 1

// Message ids.
const (
	IDHello          int32 = 0x00
	IDCreateInstance int32 = 0x01
	IDGeometry       int32 = 0x02
	IDTransform      int32 = 0x03
	IDFree           int32 = 0x04
)

// Hello opens every viewer stream.
type Hello struct {
	Version int32 `vx:"varint"`
	Axis    int32 `vx:"varint"`
	Height  int32 `vx:"varint"`
	Seed    int64 `vx:"varlong"`
}

func (Hello) MessageID() int32 { return IDHello }

// CreateInstance announces a render instance for the chunk with the given key.
type CreateInstance struct {
	Instance int64      `vx:"varlong"`
	Key      int64      `vx:"varlong"`
	Min      mgl32.Vec3 `vx:"vec3"`
	Max      mgl32.Vec3 `vx:"vec3"`
}

func (CreateInstance) MessageID() int32 { return IDCreateInstance }

// Geometry replaces the mesh of an instance. Empty arrays clear it.
type Geometry struct {
	Instance int64        `vx:"varlong"`
	Material string       `vx:"string"`
	Albedo   mgl32.Vec4   `vx:"vec4"`
	Vertices []mgl32.Vec3 `vx:"vec3s"`
	Normals  []mgl32.Vec3 `vx:"vec3s"`
	UVs      []mgl32.Vec2 `vx:"vec2s"`
	Indices  []uint32     `vx:"u32s"`
}

func (Geometry) MessageID() int32 { return IDGeometry }

// Mesh returns the carried geometry.
func (g Geometry) Mesh() mesh.Geometry {
	return mesh.Geometry{
		Vertices: g.Vertices,
		Normals:  g.Normals,
		UVs:      g.UVs,
		Indices:  g.Indices,
	}
}

// Transform moves an instance to a world-space origin.
type Transform struct {
	Instance int64      `vx:"varlong"`
	Origin   mgl32.Vec3 `vx:"vec3"`
}

func (Transform) MessageID() int32 { return IDTransform }

// Free releases an instance.
type Free struct {
	Instance int64 `vx:"varlong"`
}

func (Free) MessageID() int32 { return IDFree }

// New returns a zero message for id.
func New(id int32) (Message, error) {
	switch id {
	case IDHello:
		return &Hello{}, nil
	case IDCreateInstance:
		return &CreateInstance{}, nil
	case IDGeometry:
		return &Geometry{}, nil
	case IDTransform:
		return &Transform{}, nil
	case IDFree:
		return &Free{}, nil
	default:
		return nil, fmt.Errorf("unknown message id 0x%02X", id)
	}
}
