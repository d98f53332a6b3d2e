// Package primitive defines the static local-space shape templates that the
// mesh builder instances into scenes: spheres, boxes, pyramids, prisms,
// stars, octahedra, cylinders and the perforated halves used for two-part
// symbols. Primitives are immutable once constructed and are shared by
// pointer across any number of builders.
package primitive

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Primitive is an indexed triangle shape centered at the origin.
// Normals has one entry per vertex.
type Primitive struct {
	Vertices []mgl32.Vec3
	Normals  []mgl32.Vec3
	Indices  [][3]uint32
}

// VertexCount returns the number of vertices.
func (p *Primitive) VertexCount() int {
	return len(p.Vertices)
}

// TriangleCount returns the number of triangles.
func (p *Primitive) TriangleCount() int {
	return len(p.Indices)
}

// ---------------------------------------------------------------------------
// Flat-shaded construction helper
// ---------------------------------------------------------------------------

// flatBuilder accumulates triangles that each own their three vertices so
// that every face gets a crisp normal.
type flatBuilder struct {
	p Primitive
}

func (b *flatBuilder) triangle(a, c, d mgl32.Vec3) {
	n := faceNormal(a, c, d)
	base := uint32(len(b.p.Vertices))
	b.p.Vertices = append(b.p.Vertices, a, c, d)
	b.p.Normals = append(b.p.Normals, n, n, n)
	b.p.Indices = append(b.p.Indices, [3]uint32{base, base + 1, base + 2})
}

// quad adds the two triangles (a,b,c) and (a,c,d) sharing one normal.
func (b *flatBuilder) quad(a, c, d, e mgl32.Vec3) {
	n := faceNormal(a, c, d)
	base := uint32(len(b.p.Vertices))
	b.p.Vertices = append(b.p.Vertices, a, c, d, e)
	b.p.Normals = append(b.p.Normals, n, n, n, n)
	b.p.Indices = append(b.p.Indices,
		[3]uint32{base, base + 1, base + 2},
		[3]uint32{base, base + 2, base + 3},
	)
}

// fan adds a polygon as a triangle fan around its centroid. The outline
// must be star-shaped with respect to the centroid.
func (b *flatBuilder) fan(center mgl32.Vec3, outline []mgl32.Vec3) {
	for i := range outline {
		b.triangle(center, outline[i], outline[(i+1)%len(outline)])
	}
}

func (b *flatBuilder) primitive() *Primitive {
	p := b.p
	return &p
}

// faceNormal returns the unit normal of triangle (a,b,c), or the zero vector
// for degenerate triangles.
func faceNormal(a, b, c mgl32.Vec3) mgl32.Vec3 {
	return safeNormalize(b.Sub(a).Cross(c.Sub(a)))
}

func safeNormalize(v mgl32.Vec3) mgl32.Vec3 {
	l := v.Len()
	if l == 0 {
		return mgl32.Vec3{}
	}
	return v.Mul(1 / l)
}
