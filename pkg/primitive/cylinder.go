package primitive

import (
	"sync"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// CylinderProps configures Cylinder.
type CylinderProps struct {
	RadialSegments int
	TopCap         bool
	BottomCap      bool
}

// DefaultRadialSegments is used when CylinderProps.RadialSegments < 3.
const DefaultRadialSegments = 16

var cylinderCache sync.Map // CylinderProps -> *Primitive

// Cylinder returns a smooth cylinder of radius 1 along Y from -0.5 to 0.5.
// Results are cached per props.
func Cylinder(props CylinderProps) *Primitive {
	if props.RadialSegments < 3 {
		props.RadialSegments = DefaultRadialSegments
	}
	if p, ok := cylinderCache.Load(props); ok {
		return p.(*Primitive)
	}
	p, _ := cylinderCache.LoadOrStore(props, newCylinder(props))
	return p.(*Primitive)
}

func newCylinder(props CylinderProps) *Primitive {
	n := props.RadialSegments
	p := &Primitive{}

	// side: ring i uses vertices 2i (bottom) and 2i+1 (top)
	for i := 0; i < n; i++ {
		a := 2 * math32.Pi * float32(i) / float32(n)
		c, s := math32.Cos(a), math32.Sin(a)
		normal := mgl32.Vec3{c, 0, s}
		p.Vertices = append(p.Vertices, mgl32.Vec3{c, -0.5, s}, mgl32.Vec3{c, 0.5, s})
		p.Normals = append(p.Normals, normal, normal)
	}
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		b0, t0 := uint32(2*i), uint32(2*i+1)
		b1, t1 := uint32(2*j), uint32(2*j+1)
		p.Indices = append(p.Indices, [3]uint32{b0, t0, b1}, [3]uint32{t0, t1, b1})
	}

	if props.TopCap {
		addCap(p, n, 0.5)
	}
	if props.BottomCap {
		addCap(p, n, -0.5)
	}
	return p
}

// addCap appends a flat disk at height y facing away from the cylinder.
func addCap(p *Primitive, n int, y float32) {
	normal := mgl32.Vec3{0, 1, 0}
	if y < 0 {
		normal = mgl32.Vec3{0, -1, 0}
	}
	center := uint32(len(p.Vertices))
	p.Vertices = append(p.Vertices, mgl32.Vec3{0, y, 0})
	p.Normals = append(p.Normals, normal)
	for i := 0; i < n; i++ {
		a := 2 * math32.Pi * float32(i) / float32(n)
		p.Vertices = append(p.Vertices, mgl32.Vec3{math32.Cos(a), y, math32.Sin(a)})
		p.Normals = append(p.Normals, normal)
	}
	for i := 0; i < n; i++ {
		cur := center + 1 + uint32(i)
		next := center + 1 + uint32((i+1)%n)
		if y > 0 {
			p.Indices = append(p.Indices, [3]uint32{center, next, cur})
		} else {
			p.Indices = append(p.Indices, [3]uint32{center, cur, next})
		}
	}
}
