// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
package sdfx

import (
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/arose/molstar/pkg/kernel"
	"github.com/arose/molstar/pkg/mesh"
	"github.com/arose/molstar/pkg/structure"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// Marching cubes resolution bounds along the longest bounding box axis.
const (
	minMeshCells = 8
	maxMeshCells = 400
)

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// spheresSDF is the union of many spheres. Evaluation only visits the
// spheres whose centers lie within reach of the query point.
type spheresSDF struct {
	spheres   []kernel.Sphere
	lookup    *structure.Lookup3D
	maxRadius float32
	bb        sdf.Box3
}

func newSpheresSDF(spheres []kernel.Sphere) *spheresSDF {
	centers := make([]mgl32.Vec3, len(spheres))
	s := &spheresSDF{spheres: spheres}
	lo := v3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	hi := v3.Vec{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	for i, sp := range spheres {
		centers[i] = sp.Center
		if sp.Radius > s.maxRadius {
			s.maxRadius = sp.Radius
		}
		r := float64(sp.Radius)
		c := v3.Vec{X: float64(sp.Center[0]), Y: float64(sp.Center[1]), Z: float64(sp.Center[2])}
		lo = v3.Vec{X: math.Min(lo.X, c.X-r), Y: math.Min(lo.Y, c.Y-r), Z: math.Min(lo.Z, c.Z-r)}
		hi = v3.Vec{X: math.Max(hi.X, c.X+r), Y: math.Max(hi.Y, c.Y+r), Z: math.Max(hi.Z, c.Z+r)}
	}
	s.lookup = structure.NewLookup3D(centers)
	s.bb = sdf.Box3{Min: lo, Max: hi}
	return s
}

func (s *spheresSDF) distance(i int, p mgl32.Vec3) float64 {
	sp := s.spheres[i]
	return float64(p.Sub(sp.Center).Len() - sp.Radius)
}

// Evaluate returns the signed distance to the sphere union at p.
func (s *spheresSDF) Evaluate(p v3.Vec) float64 {
	q := mgl32.Vec3{float32(p.X), float32(p.Y), float32(p.Z)}
	// Exact inside and near the surface; an upper bound further out.
	best := math.Inf(1)
	for _, i := range s.lookup.Find(q, 2*s.maxRadius) {
		best = math.Min(best, s.distance(i, q))
	}
	if math.IsInf(best, 1) {
		if i, ok := s.lookup.Nearest(q); ok {
			best = s.distance(i, q)
		}
	}
	return best
}

// BoundingBox returns the bounding box of all spheres.
func (s *spheresSDF) BoundingBox() sdf.Box3 {
	return s.bb
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct{}

// New returns a new SdfxKernel.
func New() *SdfxKernel {
	return &SdfxKernel{}
}

// unwrap extracts the underlying sdf.SDF3 from a kernel.Solid.
func unwrap(s kernel.Solid) sdf.SDF3 {
	return s.(*sdfxSolid).s
}

// wrap creates a kernel.Solid from an sdf.SDF3.
func wrap(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s}
}

// Spheres returns the union of the given spheres. Spheres with a
// non-positive radius are skipped.
func (k *SdfxKernel) Spheres(spheres []kernel.Sphere) (kernel.Solid, error) {
	valid := make([]kernel.Sphere, 0, len(spheres))
	for _, sp := range spheres {
		if sp.Radius > 0 {
			valid = append(valid, sp)
		}
	}
	if len(valid) == 0 {
		return nil, kernel.ErrEmptySolid
	}
	return wrap(newSpheresSDF(valid)), nil
}

// Union returns the union of two solids.
func (k *SdfxKernel) Union(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Union3D(unwrap(a), unwrap(b)))
}

// Intersection returns the intersection of two solids.
func (k *SdfxKernel) Intersection(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Intersect3D(unwrap(a), unwrap(b)))
}

// Offset grows or shrinks a solid by d.
func (k *SdfxKernel) Offset(s kernel.Solid, d float64) kernel.Solid {
	return wrap(sdf.Offset3D(unwrap(s), d))
}

// cellsFor returns the marching cubes cell count along the longest axis.
func cellsFor(s sdf.SDF3, cellSize float64) int {
	if cellSize <= 0 {
		return maxMeshCells
	}
	bb := s.BoundingBox()
	size := bb.Max.Sub(bb.Min)
	extent := math.Max(size.X, math.Max(size.Y, size.Z))
	cells := int(math.Ceil(extent / cellSize))
	return min(max(cells, minMeshCells), maxMeshCells)
}

// ToMesh converts a solid to a triangle mesh using marching cubes.
func (k *SdfxKernel) ToMesh(s kernel.Solid, cellSize float64) (*kernel.Mesh, error) {
	if s == nil {
		return nil, kernel.ErrEmptySolid
	}
	sdf3 := unwrap(s)

	renderer := render.NewMarchingCubesUniform(cellsFor(sdf3, cellSize))
	triangles := render.ToTriangles(sdf3, renderer)

	numTri := len(triangles)
	numVerts := numTri * 3

	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		// Compute face normal.
		n := tri.Normal()
		nx := float32(n.X)
		ny := float32(n.Y)
		nz := float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}

// SaveSTL writes a mesh as a binary STL file.
func SaveSTL(path string, m *mesh.Mesh) error {
	if m.IsEmpty() {
		return errors.Wrap(kernel.ErrEmptySolid, "sdfx: save stl")
	}
	triangles := make([]*sdf.Triangle3, 0, m.TriangleCount)
	vec := func(i uint32) v3.Vec {
		p := m.Position(int(i))
		return v3.Vec{X: float64(p[0]), Y: float64(p[1]), Z: float64(p[2])}
	}
	for t := 0; t < m.TriangleCount; t++ {
		tri := m.Triangle(t)
		triangles = append(triangles, &sdf.Triangle3{vec(tri[0]), vec(tri[1]), vec(tri[2])})
	}
	if err := render.SaveSTL(path, triangles); err != nil {
		return errors.Wrapf(err, "sdfx: save stl %s", path)
	}
	return nil
}
