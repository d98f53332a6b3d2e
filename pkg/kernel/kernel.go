// Package kernel defines the implicit-surface kernel interface used for
// molecular surfaces. Implementations (sdfx) turn a union of atom spheres
// into a signed distance field and polygonize it. The abstraction keeps
// the surface visual independent of the SDF backend.
package kernel

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// ErrEmptySolid is returned when a solid is requested from no spheres.
var ErrEmptySolid = errors.New("kernel: empty solid")

// Sphere is one atom sphere, already inflated by any probe radius.
type Sphere struct {
	Center mgl32.Vec3
	Radius float32
}

// Solid is an opaque handle to a kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract implicit-surface kernel interface.
type Kernel interface {
	// Spheres returns the union of the spheres.
	Spheres(spheres []Sphere) (Solid, error)

	// Boolean operations
	Union(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Offset grows (positive) or shrinks (negative) a solid by d.
	Offset(s Solid, d float64) Solid

	// ToMesh polygonizes a solid with cubic cells of about cellSize.
	ToMesh(s Solid, cellSize float64) (*Mesh, error)
}
