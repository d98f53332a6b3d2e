// Package mesh accumulates indexed triangle geometry. A Builder appends
// transformed primitives, parametric shapes and raw triangles, tagging every
// triangle with the caller's current group id, and hands the result off as
// a Mesh that is treated as immutable from then on.
package mesh

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// ErrInvalidMesh is returned by Validate for meshes that break the buffer
// invariants.
var ErrInvalidMesh = errors.New("mesh: invalid mesh")

// Mesh is a finished triangle mesh. Vertices and Normals hold 3 floats per
// vertex, Indices 3 per triangle; Groups and IDs hold one entry per triangle.
type Mesh struct {
	VertexCount   int
	TriangleCount int

	Vertices []float32
	Normals  []float32
	Indices  []uint32
	Groups   []uint32
	IDs      []uint32
}

// Empty returns a valid mesh with no geometry.
func Empty() *Mesh {
	return &Mesh{}
}

// IsEmpty reports whether the mesh has no triangles.
func (m *Mesh) IsEmpty() bool {
	return m == nil || m.TriangleCount == 0
}

// Position returns vertex i.
func (m *Mesh) Position(i int) mgl32.Vec3 {
	return mgl32.Vec3{m.Vertices[3*i], m.Vertices[3*i+1], m.Vertices[3*i+2]}
}

// Triangle returns the vertex indices of triangle i.
func (m *Mesh) Triangle(i int) [3]uint32 {
	return [3]uint32{m.Indices[3*i], m.Indices[3*i+1], m.Indices[3*i+2]}
}

// Validate checks the buffer invariants: one group per triangle, consistent
// buffer lengths and every index inside the vertex range.
func (m *Mesh) Validate() error {
	switch {
	case len(m.Vertices) != 3*m.VertexCount:
		return errors.Wrapf(ErrInvalidMesh, "vertex buffer holds %d floats for %d vertices", len(m.Vertices), m.VertexCount)
	case len(m.Normals) != len(m.Vertices):
		return errors.Wrapf(ErrInvalidMesh, "normal buffer holds %d floats, vertex buffer %d", len(m.Normals), len(m.Vertices))
	case len(m.Indices) != 3*m.TriangleCount:
		return errors.Wrapf(ErrInvalidMesh, "index buffer holds %d entries for %d triangles", len(m.Indices), m.TriangleCount)
	case len(m.Groups) != m.TriangleCount:
		return errors.Wrapf(ErrInvalidMesh, "group buffer holds %d entries for %d triangles", len(m.Groups), m.TriangleCount)
	case len(m.IDs) != m.TriangleCount:
		return errors.Wrapf(ErrInvalidMesh, "id buffer holds %d entries for %d triangles", len(m.IDs), m.TriangleCount)
	}
	for i, idx := range m.Indices {
		if int(idx) >= m.VertexCount {
			return errors.Wrapf(ErrInvalidMesh, "index %d at %d out of range (%d vertices)", idx, i, m.VertexCount)
		}
	}
	return nil
}

// GroupRange returns the smallest and largest group id in the mesh.
// ok is false for an empty mesh.
func (m *Mesh) GroupRange() (lo, hi uint32, ok bool) {
	if len(m.Groups) == 0 {
		return 0, 0, false
	}
	lo, hi = m.Groups[0], m.Groups[0]
	for _, g := range m.Groups[1:] {
		lo = min(lo, g)
		hi = max(hi, g)
	}
	return lo, hi, true
}
