package mesh

import "github.com/go-gl/mathgl/mgl32"

const (
	verticesPerFace = 4
	indicesPerFace  = 6
)

// faceUVs is the fixed unit-square texture pattern applied to every face.
var faceUVs = [4]mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

// Geometry is a flat-shaded triangle mesh held as parallel buffers.
// Normals and UVs have one entry per vertex.
type Geometry struct {
	Vertices []mgl32.Vec3
	Normals  []mgl32.Vec3
	UVs      []mgl32.Vec2
	Indices  []uint32
}

// Empty reports whether the geometry has nothing to draw.
func (g Geometry) Empty() bool { return len(g.Indices) == 0 }

// FaceCount returns the number of quads in the geometry.
func (g Geometry) FaceCount() int { return len(g.Indices) / indicesPerFace }

// TriangleCount returns the number of triangles in the geometry.
func (g Geometry) TriangleCount() int { return len(g.Indices) / 3 }

// Bounds returns the axis-aligned box enclosing every vertex.
// ok is false for empty geometry.
func (g Geometry) Bounds() (lo, hi mgl32.Vec3, ok bool) {
	if len(g.Vertices) == 0 {
		return lo, hi, false
	}
	lo, hi = g.Vertices[0], g.Vertices[0]
	for _, v := range g.Vertices[1:] {
		for i := range 3 {
			lo[i] = min(lo[i], v[i])
			hi[i] = max(hi[i], v[i])
		}
	}
	return lo, hi, true
}

// Clone returns a deep copy of g.
func (g Geometry) Clone() Geometry {
	return Geometry{
		Vertices: append([]mgl32.Vec3(nil), g.Vertices...),
		Normals:  append([]mgl32.Vec3(nil), g.Normals...),
		UVs:      append([]mgl32.Vec2(nil), g.UVs...),
		Indices:  append([]uint32(nil), g.Indices...),
	}
}

// addFace appends one quad as two triangles. Indices continue from the
// current vertex count; vertices are never shared between faces.
func (g *Geometry) addFace(origin mgl32.Vec3, f Face) {
	info := &faceTable[f]
	base := uint32(len(g.Vertices))

	for _, c := range info.corners {
		g.Vertices = append(g.Vertices, origin.Add(c))
	}
	for range verticesPerFace {
		g.Normals = append(g.Normals, info.normal)
	}
	g.UVs = append(g.UVs, faceUVs[:]...)

	// Clockwise winding.
	g.Indices = append(g.Indices,
		base+0, base+2, base+1,
		base+0, base+3, base+2,
	)
}
