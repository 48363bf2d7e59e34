package mesh

import "github.com/go-gl/mathgl/mgl32"

// Face is one of the six axis-aligned faces of a voxel.
type Face int

// Faces are declared in the order the builder tests them.
const (
	PosZ Face = iota // front
	NegZ             // back
	PosX             // right
	NegX             // left
	PosY             // top
	NegY             // bottom
)

// Faces lists every face in emission order.
var Faces = [6]Face{PosZ, NegZ, PosX, NegX, PosY, NegY}

// Unit cube corners relative to the voxel origin, named by their xyz offsets.
var (
	c000 = mgl32.Vec3{0, 0, 0}
	c100 = mgl32.Vec3{1, 0, 0}
	c110 = mgl32.Vec3{1, 1, 0}
	c010 = mgl32.Vec3{0, 1, 0}
	c001 = mgl32.Vec3{0, 0, 1}
	c101 = mgl32.Vec3{1, 0, 1}
	c111 = mgl32.Vec3{1, 1, 1}
	c011 = mgl32.Vec3{0, 1, 1}
)

type faceInfo struct {
	step    [3]int
	normal  mgl32.Vec3
	corners [4]mgl32.Vec3
}

// Corner order gives clockwise front faces under the index pattern in addFace.
var faceTable = [6]faceInfo{
	PosZ: {step: [3]int{0, 0, 1}, normal: mgl32.Vec3{0, 0, 1}, corners: [4]mgl32.Vec3{c001, c101, c111, c011}},
	NegZ: {step: [3]int{0, 0, -1}, normal: mgl32.Vec3{0, 0, -1}, corners: [4]mgl32.Vec3{c100, c000, c010, c110}},
	PosX: {step: [3]int{1, 0, 0}, normal: mgl32.Vec3{1, 0, 0}, corners: [4]mgl32.Vec3{c101, c100, c110, c111}},
	NegX: {step: [3]int{-1, 0, 0}, normal: mgl32.Vec3{-1, 0, 0}, corners: [4]mgl32.Vec3{c000, c001, c011, c010}},
	PosY: {step: [3]int{0, 1, 0}, normal: mgl32.Vec3{0, 1, 0}, corners: [4]mgl32.Vec3{c011, c111, c110, c010}},
	NegY: {step: [3]int{0, -1, 0}, normal: mgl32.Vec3{0, -1, 0}, corners: [4]mgl32.Vec3{c000, c100, c101, c001}},
}

// Normal returns the outward unit normal of the face.
func (f Face) Normal() mgl32.Vec3 { return faceTable[f].normal }

// Step returns the offset from a voxel to its neighbour across this face.
func (f Face) Step() (dx, dy, dz int) {
	s := faceTable[f].step
	return s[0], s[1], s[2]
}

// Corners returns the face's four corners relative to the voxel origin.
func (f Face) Corners() [4]mgl32.Vec3 { return faceTable[f].corners }

func (f Face) String() string {
	switch f {
	case PosZ:
		return "+Z"
	case NegZ:
		return "-Z"
	case PosX:
		return "+X"
	case NegX:
		return "-X"
	case PosY:
		return "+Y"
	case NegY:
		return "-Y"
	default:
		return "?"
	}
}
