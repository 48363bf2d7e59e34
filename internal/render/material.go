package render

import (
	"log/slog"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// DefaultMaterialName names the fallback material.
const DefaultMaterialName = "UNKNOWN_MATERIAL"

// Material describes the surface a renderer applies to geometry.
type Material struct {
	Name   string
	Albedo mgl32.Vec4
}

var (
	defaultOnce     sync.Once
	defaultMaterial *Material
)

// DefaultMaterial returns the shared fallback material, creating it on first use.
func DefaultMaterial() *Material {
	defaultOnce.Do(func() {
		defaultMaterial = &Material{
			Name:   DefaultMaterialName,
			Albedo: mgl32.Vec4{1, 0, 0.86, 1},
		}
	})
	return defaultMaterial
}

// EnsureDefault points *m at the default material if it is nil.
func EnsureDefault(m **Material, owner string, log *slog.Logger) {
	if *m != nil {
		return
	}
	*m = DefaultMaterial()
	if log != nil {
		log.Debug("material set to default", "owner", owner)
	}
}

// MaterialType selects a slot in a Pallet.
type MaterialType int

const (
	TypeUnknown MaterialType = iota
	TypeGeneric
	TypeGlass
	TypeMetal
	typeCount
)

func (t MaterialType) String() string {
	switch t {
	case TypeUnknown:
		return "unknown"
	case TypeGeneric:
		return "generic"
	case TypeGlass:
		return "glass"
	case TypeMetal:
		return "metal"
	default:
		return "invalid"
	}
}

// Pallet maps material types to materials. Empty slots resolve to the default material.
type Pallet struct {
	materials [typeCount]*Material
}

// NewPallet returns a pallet with a grey generic material and every other slot empty.
func NewPallet() *Pallet {
	p := &Pallet{}
	p.Set(TypeGeneric, &Material{Name: "generic", Albedo: mgl32.Vec4{0.6, 0.6, 0.6, 1}})
	return p
}

// Material returns the material for t, or the default material.
func (p *Pallet) Material(t MaterialType) *Material {
	if p == nil || t < 0 || t >= typeCount || p.materials[t] == nil {
		return DefaultMaterial()
	}
	return p.materials[t]
}

// Set assigns m to slot t. Out-of-range types are ignored.
func (p *Pallet) Set(t MaterialType, m *Material) {
	if t < 0 || t >= typeCount {
		return
	}
	p.materials[t] = m
}

// Generic returns the material used for chunk geometry.
func (p *Pallet) Generic() *Material { return p.Material(TypeGeneric) }
